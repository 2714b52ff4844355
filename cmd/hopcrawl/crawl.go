package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/hopcrawl/internal/config"
	"github.com/nao1215/hopcrawl/internal/crawler"
	"github.com/nao1215/hopcrawl/internal/database"
	applog "github.com/nao1215/hopcrawl/internal/log"
	"github.com/nao1215/hopcrawl/internal/model"
	"github.com/nao1215/hopcrawl/internal/report"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [home-domain]",
		Short: "Crawl a website breadth-first within its home domain",
		Long: `Crawl starts at https://<home-domain> and visits pages in batches.

Every batch is fetched concurrently and fully processed before the next one
starts. The crawl stops when no URLs are left or when the number of visited
pages reaches --max-hops. Links outside the home domain are counted but never
followed; links to .pdf, .doc and .docx files are recorded but never fetched.

The following files are written to the output directory:
  links.txt    every visited URL, one per line, in visiting order
  stats.csv    the run summary (header and one row)
  crawler.log  the crawl log

Press Ctrl+C to stop early. The current batch is finished and the partial
summary is still written.

Examples:
  # Crawl spbu.ru with the defaults (batch 8, 500 pages)
  hopcrawl crawl spbu.ru

  # Visit at most 100 pages, 16 at a time
  hopcrawl crawl -n 100 -b 16 spbu.ru

  # Keep the "id" query parameter when URLs are cleaned
  hopcrawl crawl --keep-query id spbu.ru

  # Route requests through a SOCKS5 proxy, 5 requests per second at most
  hopcrawl crawl --proxy 127.0.0.1:9050 --rate 5 spbu.ru

  # Print the summary as JSON
  hopcrawl crawl --json spbu.ru`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("max-hops", "n", config.DefaultMaxHops,
		"Maximum number of pages to visit")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of pages fetched concurrently per batch")
	cmd.Flags().StringSliceP("keep-query", "k", nil,
		"Query parameters kept when URLs are cleaned (repeatable)")

	// Fetch flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:9050)")
	cmd.Flags().Float64("rate", 0,
		"Maximum requests per second (0 = unlimited)")

	// Output flags
	cmd.Flags().StringP("output-dir", "o", config.DefaultOutputDir,
		"Directory for links.txt, stats.csv and crawler.log")
	cmd.Flags().Bool("no-db", false,
		"Do not record the run in the history database")
	cmd.Flags().String("db-dir", "",
		"Directory of the history database (default: XDG data directory)")

	addCommonFlags(cmd)

	return cmd
}

// addCommonFlags registers the flags shared by crawl and stats.
func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .hopcrawl in current or home directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	logger, closeLog, err := setupLogger(cfg.LogPath(), cfg.Verbose, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, finishing current batch...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runCrawl(ctx, cfg, logger, cmd.OutOrStdout())
}

// setupLogger creates a logger that writes Info and above to the crawl log
// file and Warn and above to console. Verbose lowers both to Debug.
// The returned function closes the log file.
func setupLogger(logPath string, verbose bool, console io.Writer) (*slog.Logger, func(), error) {
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) //nolint:gosec // path comes from the output directory
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	fileLevel := slog.LevelInfo
	consoleLevel := slog.LevelWarn
	if verbose {
		fileLevel = slog.LevelDebug
		consoleLevel = slog.LevelDebug
	}

	handler := applog.NewFanoutHandler(
		applog.NewSecureLoggerWithLevel(f, fileLevel).Handler(),
		applog.NewSecureLoggerWithLevel(console, consoleLevel).Handler(),
	)

	return slog.New(handler), func() { _ = f.Close() }, nil //nolint:errcheck // best effort on exit
}

// runCrawl runs one crawl described by cfg and writes its results.
// Extra spider options are applied after the ones derived from cfg.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer, opts ...crawler.SpiderOption) error {
	visitLog, err := crawler.OpenVisitLog(cfg.LinksPath())
	if err != nil {
		return err
	}
	defer func() {
		if err := visitLog.Close(); err != nil {
			logger.Error("failed to close visited-URL log", "path", cfg.LinksPath(), "error", err)
		}
	}()

	fetcher, err := crawler.NewHTTPFetcher(
		crawler.WithTimeout(cfg.Timeout),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithProxy(cfg.ProxyAddress),
		crawler.WithRateLimit(cfg.RequestsPerSecond),
	)
	if err != nil {
		return fmt.Errorf("failed to create fetcher: %w", err)
	}

	spiderOpts := []crawler.SpiderOption{
		crawler.WithBatchSize(cfg.BatchSize),
		crawler.WithMaxHops(cfg.MaxHops),
		crawler.WithKeepQueryParams(cfg.KeepQueryParams),
		crawler.WithVisitLog(visitLog),
		crawler.WithLogger(logger),
	}
	spiderOpts = append(spiderOpts, opts...)

	logger.Info("starting crawl",
		"domain", cfg.HomeDomain,
		"batchSize", cfg.BatchSize,
		"maxHops", cfg.MaxHops,
		"output", cfg.OutputDir,
		"saveToDB", cfg.SaveToDB,
	)

	spider := crawler.NewSpider(cfg.HomeDomain, fetcher, spiderOpts...)
	summary, runErr := spider.Run(ctx)
	if runErr != nil && !summary.Interrupted {
		logger.Error("crawl aborted", "error", runErr)
	}

	if err := report.WriteSummaryFile(cfg.StatsPath(), summary); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	if cfg.SaveToDB {
		// The run context may already be cancelled; the summary is saved anyway.
		if err := saveRun(context.WithoutCancel(ctx), cfg.DBDir, summary, logger); err != nil {
			logger.Error("failed to save run", "domain", summary.HomeDomain, "error", err)
		}
	}

	if err := outputReport(out, cfg, model.NewReport(summary), true); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if runErr != nil && !summary.Interrupted {
		return fmt.Errorf("crawl aborted: %w", runErr)
	}
	return nil
}

// saveRun records summary in the history database in dbDir.
func saveRun(ctx context.Context, dbDir string, summary *model.Summary, logger *slog.Logger) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	id, err := db.SaveRun(ctx, summary)
	if err != nil {
		return err
	}
	logger.Info("run saved", "id", id, "db", db.Path())
	return nil
}

// outputReport writes rep to out in the format selected by cfg.
// header controls the run information block of the text format.
func outputReport(out io.Writer, cfg *config.Config, rep *model.Report, header bool) error {
	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(out, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(out)
	default:
		writer = report.NewSimpleWriter(out, report.WithHeader(header))
	}

	_, err := writer.Write(rep)
	return err
}

// buildConfig creates a Config from defaults, the configuration file and
// the flags the user set explicitly, in that order.
// Flags a command does not define are never reported as changed.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly given file must exist; the implicit search may find nothing.
	if path := config.FindConfigFile(configPath); path != "" {
		file, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		cfg.Apply(file)
		cfg.ConfigFilePath = path
	} else if configPath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	if len(args) > 0 {
		cfg.HomeDomain = args[0]
	}

	if flags.Changed("max-hops") {
		if cfg.MaxHops, err = flags.GetInt("max-hops"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("batch") {
		if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("keep-query") {
		if cfg.KeepQueryParams, err = flags.GetStringSlice("keep-query"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("rate") {
		if cfg.RequestsPerSecond, err = flags.GetFloat64("rate"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("output-dir") {
		if cfg.OutputDir, err = flags.GetString("output-dir"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("db-dir") {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("no-db") {
		noDB, err := flags.GetBool("no-db")
		if err != nil {
			return nil, err
		}
		cfg.SaveToDB = !noDB
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}
