package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/hopcrawl/internal/config"
	"github.com/nao1215/hopcrawl/internal/database"
	"github.com/nao1215/hopcrawl/internal/model"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is the number of runs listed when --limit is not given.
const defaultHistoryLimit = 20

// historyTimeFormat is the date layout of the history table.
const historyTimeFormat = "2006-01-02 15:04:05"

// NewHistoryCmd creates the history command.
// This command shows runs stored in the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [home-domain]",
		Short: "Show recorded crawl runs",
		Long: `History lists the crawl runs recorded in the history database, newest
first. Without a home domain it lists every domain that has been crawled.

Runs are recorded by 'hopcrawl crawl' unless --no-db is given.

Examples:
  # List crawled domains
  hopcrawl history

  # Show the last 5 runs for spbu.ru
  hopcrawl history -l 5 spbu.ru

  # Compare the two most recent runs
  hopcrawl history --diff spbu.ru

  # Output runs as JSON
  hopcrawl history --json spbu.ru`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", defaultHistoryLimit,
		"Maximum number of runs to show (0 = all)")
	cmd.Flags().BoolP("diff", "d", false,
		"Compare the two most recent runs of the home domain")
	cmd.Flags().BoolP("json", "j", false,
		"Output runs in JSON format")
	cmd.Flags().String("db-dir", "",
		"Directory of the history database (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	diff, err := cmd.Flags().GetBool("diff")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	// Validate arguments before opening the database
	var domain string
	if len(args) > 0 {
		domain, err = config.NormalizeHomeDomain(args[0])
		if err != nil {
			return fmt.Errorf("invalid home domain: %w", err)
		}
	} else if diff {
		return errors.New("home domain is required with --diff")
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case domain == "":
		return listDomains(ctx, db, out)
	case diff:
		return compareLatestRuns(ctx, db, out, domain)
	default:
		return listRuns(ctx, db, out, domain, limit, jsonOutput)
	}
}

// listDomains lists every home domain with recorded runs.
func listDomains(ctx context.Context, db *database.CrawlDB, out io.Writer) error {
	domains, err := db.ListDomains(ctx)
	if err != nil {
		return err
	}

	if len(domains) == 0 {
		fmt.Fprintln(out, "No crawl runs found in the database.")
		fmt.Fprintln(out, "\nUse 'hopcrawl crawl <home-domain>' to crawl a website.")
		return nil
	}

	fmt.Fprintf(out, "Crawled domains (%d):\n\n", len(domains))
	for _, domain := range domains {
		fmt.Fprintf(out, "  • %s\n", domain)
	}
	fmt.Fprintln(out, "\nUse 'hopcrawl history <home-domain>' to see the runs of a domain.")

	return nil
}

// listRuns prints the most recent runs of domain as a table or as JSON.
func listRuns(ctx context.Context, db *database.CrawlDB, out io.Writer, domain string, limit int, jsonOutput bool) error {
	runs, err := db.ListRuns(ctx, domain, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		records := make([]historyRecord, 0, len(runs))
		for _, run := range runs {
			records = append(records, historyRecord{ID: run.ID, Summary: run.Summary})
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	}

	if len(runs) == 0 {
		fmt.Fprintf(out, "No crawl runs found for %s\n", domain)
		fmt.Fprintln(out, "\nUse 'hopcrawl crawl' to crawl this domain.")
		return nil
	}

	fmt.Fprintf(out, "Crawl history for %s (%d runs):\n\n", domain, len(runs))
	fmt.Fprintf(out, "  %-6s  %-19s  %8s  %8s  %6s  %s\n", "ID", "Date", "Visited", "Links", "Dead", "Status")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 66))

	for _, run := range runs {
		s := run.Summary
		fmt.Fprintf(out, "  %-6d  %-19s  %8d  %8d  %6d  %s\n",
			run.ID,
			runDate(run).Format(historyTimeFormat),
			s.VisitedPages,
			s.Links,
			s.DeadLinks,
			runStatus(s),
		)
	}

	fmt.Fprintf(out, "\nUse 'hopcrawl history --diff %s' to compare the latest two runs.\n", domain)

	return nil
}

// compareLatestRuns prints every counter of the two most recent runs of
// domain side by side with the change between them.
func compareLatestRuns(ctx context.Context, db *database.CrawlDB, out io.Writer, domain string) error {
	runs, err := db.ListRuns(ctx, domain, 2)
	if err != nil {
		return err
	}
	if len(runs) < 2 {
		return fmt.Errorf("at least two runs are required to compare, found %d for %s", len(runs), domain)
	}

	current, previous := runs[0], runs[1]
	fmt.Fprintf(out, "Comparing run %d (%s) with run %d (%s) for %s:\n\n",
		current.ID, runDate(current).Format(historyTimeFormat),
		previous.ID, runDate(previous).Format(historyTimeFormat),
		domain,
	)
	fmt.Fprintf(out, "  %-22s  %8s  %8s  %8s\n", "Metric", "Previous", "Current", "Change")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 52))

	before := previous.Summary.Values()
	after := current.Summary.Values()
	for i, label := range model.SummaryHeader {
		fmt.Fprintf(out, "  %-22s  %8d  %8d  %8s\n", label, before[i], after[i], formatDelta(after[i]-before[i]))
	}

	return nil
}

// historyRecord is the JSON form of a stored run.
type historyRecord struct {
	ID int64 `json:"id"`
	*model.Summary
}

// runDate returns when the run started, falling back to when it was saved.
func runDate(run database.RunRecord) time.Time {
	if !run.Summary.StartedAt.IsZero() {
		return run.Summary.StartedAt.Local()
	}
	return run.RecordedAt.Local()
}

// runStatus returns the status column of a run.
func runStatus(s *model.Summary) string {
	if s.Interrupted {
		return "interrupted"
	}
	return "complete"
}

// formatDelta formats a counter change with an explicit sign.
func formatDelta(d int) string {
	if d > 0 {
		return fmt.Sprintf("+%d", d)
	}
	return fmt.Sprintf("%d", d)
}
