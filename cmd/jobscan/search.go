package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/jobscan/internal/config"
	"github.com/nao1215/jobscan/internal/crawler"
	"github.com/nao1215/jobscan/internal/database"
	"github.com/nao1215/jobscan/internal/fetcher"
	"github.com/nao1215/jobscan/internal/log"
	"github.com/nao1215/jobscan/internal/model"
	"github.com/nao1215/jobscan/internal/pipeline"
	"github.com/nao1215/jobscan/internal/ratelimit"
	"github.com/nao1215/jobscan/internal/report"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [name...]",
		Short: "Run job searches and report every posting found",
		Long: `Search runs the named searches from the search file, every search in the
file when no name is given, or a single ad-hoc search described by flags
when --city is set.

Each search walks the listing pages in order. Job detail pages linked from a
listing page are fetched concurrently, and all requests to one host share a
rate limit. Results are printed and stored in the history database.

Examples:
  # Run every search in .jobscan
  jobscan search

  # Run two named searches
  jobscan search austin-go remote-rust

  # Ad-hoc search
  jobscan search --city "Austin, TX" --level senior --title golang --min-salary 150000

  # Markdown report written to a file
  jobscan search -m -o reports/today.md

Search file (.jobscan) example:
  defaults:
    max_age_days: 7
  searches:
    austin-go:
      city: "Austin, TX"
      level: senior
      title_words: [golang]`,
		Args: cobra.ArbitraryArgs,
		RunE: runSearchCmd,
	}

	addQueryFlags(cmd)

	// Crawl behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().Int("concurrency", config.DefaultMaxConcurrency,
		"Concurrent detail page fetches per search")
	cmd.Flags().Int("rate", config.DefaultRequestsPerSecond,
		"Requests per second allowed to one host")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum listing pages per search (0 = no limit)")
	cmd.Flags().Int("retries", config.DefaultRetryAttempts,
		"Attempts per URL before giving up")
	cmd.Flags().Duration("retry-delay", config.DefaultRetryDelay,
		"Initial delay between attempts")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:9050)")
	cmd.Flags().Bool("single-page-fallback", false,
		"Treat a listing without a page counter as a single page instead of failing")

	// Batch flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of searches run concurrently")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Search file path (default: .jobscan in current or home directory)")

	// Storage flags
	cmd.Flags().Bool("no-db", false, "Do not store results in the history database")
	cmd.Flags().String("db-dir", "", "History database directory (default: XDG data directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runSearchCmd executes the search command.
func runSearchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runSearch(ctx, cmd, cfg, logger)
}

// buildConfig creates a Config from cobra command flags and the search file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	f := cmd.Flags()

	var err error
	if cfg.SearchFilePath, err = f.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.SearchFile, err = loadSearchFile(cfg.SearchFilePath); err != nil {
		return nil, err
	}
	if cfg.Searches, err = resolveSearches(cmd, args, cfg.SearchFile); err != nil {
		return nil, err
	}

	if cfg.Timeout, err = f.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.MaxConcurrency, err = f.GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.RequestsPerSecond, err = f.GetInt("rate"); err != nil {
		return nil, err
	}
	if cfg.MaxPages, err = f.GetInt("max-pages"); err != nil {
		return nil, err
	}
	if cfg.RetryAttempts, err = f.GetInt("retries"); err != nil {
		return nil, err
	}
	if cfg.RetryDelay, err = f.GetDuration("retry-delay"); err != nil {
		return nil, err
	}
	if cfg.ProxyAddress, err = f.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.SinglePageFallback, err = f.GetBool("single-page-fallback"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = f.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = f.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = f.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = f.GetString("output"); err != nil {
		return nil, err
	}

	noDB, err := f.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB

	dbDir, err := f.GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// runSearch runs every configured search and writes the report.
func runSearch(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	searches := make([]pipeline.Search, 0, len(cfg.Searches))
	for _, s := range cfg.Searches {
		q, err := s.Options.Finalize()
		if err != nil {
			return fmt.Errorf("search %q: %w", s.Name, err)
		}
		searches = append(searches, pipeline.Search{Name: s.Name, Query: q})
	}

	logger.Info("starting searches",
		"searches", len(searches),
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	f, err := newFetcher(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create fetcher: %w", err)
	}
	orchestrator := newOrchestrator(cfg, f, logger)

	var store pipeline.ReportStore
	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
		store = db
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline(orchestrator, store, pipeline.WithLogger(logger))
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	progress := cmd.ErrOrStderr()
	startTime := time.Now()
	if len(searches) > 1 {
		fmt.Fprintf(progress, "Running %d searches (concurrency: %d)...\n", len(searches), cfg.BatchSize)
	}

	reports := make([]*model.SearchReport, len(searches))
	var mu sync.Mutex
	batchErr := bp.ProcessBatchWithCallback(ctx, searches, func(r *model.SearchReport, index int) {
		mu.Lock()
		defer mu.Unlock()
		reports[index] = r
		fmt.Fprintf(progress, "[%d/%d] %s: %d jobs\n", index+1, len(searches), r.Name, r.RecordCount())
	})
	fmt.Fprintf(progress, "Completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	done := make([]*model.SearchReport, 0, len(reports))
	for _, r := range reports {
		if r != nil {
			done = append(done, r)
		}
	}

	if err := outputReport(cmd, cfg, done); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if batchErr != nil {
		return batchErr
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return searchFailures(done)
}

// newFetcher builds the HTTP fetcher shared by every search.
func newFetcher(cfg *config.Config, logger *slog.Logger) (*fetcher.HTTPFetcher, error) {
	opts := []fetcher.Option{
		fetcher.WithLimiter(ratelimit.New(ratelimit.WithRate(cfg.RequestsPerSecond, time.Second))),
		fetcher.WithRetryPolicy(fetcher.RetryPolicy{
			MaxAttempts:  cfg.RetryAttempts,
			InitialDelay: cfg.RetryDelay,
			MaxDelay:     fetcher.DefaultRetryPolicy().MaxDelay,
			Multiplier:   fetcher.DefaultRetryPolicy().Multiplier,
		}),
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
		fetcher.WithLogger(logger),
	}
	if cfg.ProxyAddress != "" {
		opts = append(opts, fetcher.WithProxy(cfg.ProxyAddress))
	}
	if file := cfg.SearchFile; file != nil {
		if file.Cookie != "" {
			opts = append(opts, fetcher.WithCookie(file.Cookie))
		}
		if len(file.Headers) > 0 {
			opts = append(opts, fetcher.WithHeaders(file.Headers))
		}
	}
	return fetcher.NewHTTPFetcher(opts...)
}

// newOrchestrator builds the crawler shared by every search.
func newOrchestrator(cfg *config.Config, f fetcher.Fetcher, logger *slog.Logger) *crawler.Orchestrator {
	return crawler.New(f,
		crawler.WithProfile(cfg.SearchFile.Profile()),
		crawler.WithMaxConcurrency(cfg.MaxConcurrency),
		crawler.WithMaxPages(uint(cfg.MaxPages)), //nolint:gosec // validated non-negative
		crawler.WithSinglePageFallback(cfg.SinglePageFallback),
		crawler.WithLogger(logger),
	)
}

// outputReport writes the reports in the requested format.
func outputReport(cmd *cobra.Command, cfg *config.Config, reports []*model.SearchReport) error {
	var output io.Writer = cmd.OutOrStdout()
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports carry search terms and salaries; keep them owner-only.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	var err error
	if len(reports) == 1 {
		_, err = w.Write(reports[0])
	} else {
		_, err = w.WriteBatch(reports)
	}
	return err
}

// errSearchFailed is returned when at least one search failed.
var errSearchFailed = errors.New("search failed")

// searchFailures returns an error naming the failed searches, if any.
func searchFailures(reports []*model.SearchReport) error {
	var failed []string
	for _, r := range reports {
		if r.Failed() {
			failed = append(failed, r.Name)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d searches (%v)", errSearchFailed, len(failed), len(reports), failed)
}
