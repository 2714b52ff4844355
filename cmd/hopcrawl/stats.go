package main

import (
	"context"
	"fmt"
	"io"

	"github.com/nao1215/hopcrawl/internal/config"
	"github.com/nao1215/hopcrawl/internal/database"
	"github.com/nao1215/hopcrawl/internal/model"
	"github.com/nao1215/hopcrawl/internal/report"
	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [home-domain]",
		Short: "Compute domain statistics from the last crawl",
		Long: `Stats loads the visited-URL log of the last crawl (links.txt) into the
statistics database in the output directory and prints the run summary
(stats.csv) together with:

  Subdomains      distinct subdomains of the home domain among visited URLs
  Internal pages  visited URLs directly on the home domain (http or https)

Loading replaces the previous contents of the database. Blank lines and
mailto links are skipped.

Examples:
  # Statistics for the last crawl of spbu.ru
  hopcrawl stats spbu.ru

  # Read the crawl results from another directory
  hopcrawl stats -o ./results spbu.ru

  # Output Markdown
  hopcrawl stats --markdown spbu.ru`,
		Args: cobra.MaximumNArgs(1),
		RunE: runStatsCmd,
	}

	cmd.Flags().StringP("output-dir", "o", config.DefaultOutputDir,
		"Directory holding links.txt and stats.csv")

	addCommonFlags(cmd)

	return cmd
}

// runStatsCmd executes the stats command.
func runStatsCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	return runStats(cmd.Context(), cfg, cmd.OutOrStdout())
}

// runStats loads the visited-URL log, computes the domain statistics and
// prints them after the stored run summary.
func runStats(ctx context.Context, cfg *config.Config, out io.Writer) error {
	summary, err := report.ReadSummaryFile(cfg.StatsPath())
	if err != nil {
		return fmt.Errorf("failed to read run summary: %w", err)
	}
	summary.HomeDomain = cfg.HomeDomain

	db, err := database.Open(cfg.OutputDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if _, err := db.LoadLinksFile(ctx, cfg.LinksPath()); err != nil {
		return err
	}

	domain, err := db.DomainStats(ctx, cfg.HomeDomain)
	if err != nil {
		return err
	}

	rep := model.NewReport(summary)
	rep.Domain = domain
	return outputReport(out, cfg, rep, false)
}
