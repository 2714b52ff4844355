package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for hopcrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hopcrawl",
		Short: "Breadth-first crawler scoped to a single home domain",
		Long: `hopcrawl crawls a website breadth-first, batch by batch, starting at
https://<home-domain>. Links that leave the home domain are counted but
never followed, links to documents (.pdf, .doc, .docx) are recorded but never
fetched, and every failed fetch is counted as a dead link.

Each run writes the visited-URL log, a summary table and a crawl log to the
output directory. The stats command derives subdomain and internal-page
counts from the visited-URL log.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
