package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/jobscan/internal/crawler"
	"github.com/nao1215/jobscan/internal/model"
	"github.com/nao1215/jobscan/internal/query"
)

// ErrCrawlFailed is returned by CrawlStep when the crawl ended as failed.
var ErrCrawlFailed = errors.New("crawl failed")

// Crawler runs one search. *crawler.Orchestrator implements it.
type Crawler interface {
	Run(ctx context.Context, q query.Query) *model.CrawlResult
}

var _ Crawler = (*crawler.Orchestrator)(nil)

// CrawlStep crawls the report's query and stores the result on the report.
type CrawlStep struct {
	crawler Crawler
	logger  *slog.Logger
}

// NewCrawlStep creates a CrawlStep running c.
func NewCrawlStep(c Crawler, logger *slog.Logger) *CrawlStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &CrawlStep{crawler: c, logger: logger}
}

// Name implements Step.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do implements Step. The result is attached even when the crawl failed.
func (s *CrawlStep) Do(ctx context.Context, report *model.SearchReport) error {
	result := s.crawler.Run(ctx, report.Query)
	report.Result = result
	if result.Cancelled {
		report.Cancelled = true
	}

	s.logger.Info("search crawled",
		"search", report.Name,
		"status", result.Status.String(),
		"records", len(result.Records),
		"pages", result.PagesCrawled,
	)

	if result.Status == model.StatusFailed {
		if failures := result.Failures(); len(failures) > 0 {
			return fmt.Errorf("%w: %w", ErrCrawlFailed, failures[len(failures)-1])
		}
		return ErrCrawlFailed
	}
	return nil
}

// ReportStore persists search reports. *database.JobDB implements it.
type ReportStore interface {
	SaveSearchReport(ctx context.Context, report *model.SearchReport) (int64, error)
}

// PersistStep stores the report's crawl result.
type PersistStep struct {
	store  ReportStore
	logger *slog.Logger
}

var _ FinalStep = (*PersistStep)(nil)

// NewPersistStep creates a PersistStep writing to store.
func NewPersistStep(store ReportStore, logger *slog.Logger) *PersistStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistStep{store: store, logger: logger}
}

// Name implements Step.
func (s *PersistStep) Name() string {
	return "persist"
}

// RunsAfterCancel implements FinalStep. Cancelled crawls are stored with
// their partial records.
func (s *PersistStep) RunsAfterCancel() bool {
	return true
}

// Do implements Step. Reports without a crawl result are skipped.
func (s *PersistStep) Do(ctx context.Context, report *model.SearchReport) error {
	if report.Result == nil {
		s.logger.Debug("nothing to persist", "search", report.Name)
		return nil
	}

	id, err := s.store.SaveSearchReport(ctx, report)
	if err != nil {
		return fmt.Errorf("failed to save search %q: %w", report.Name, err)
	}
	report.RunID = id
	s.logger.Debug("search persisted", "search", report.Name, "run_id", id)
	return nil
}

// DefaultPipeline returns crawl followed by persist. A failed crawl still
// has its partial result persisted. store may be nil to skip persistence.
func DefaultPipeline(c Crawler, store ReportStore, opts ...Option) *Pipeline {
	p := New(append([]Option{WithContinueOnError(true)}, opts...)...)
	p.AddStep(NewCrawlStep(c, p.logger))
	if store != nil {
		p.AddStep(NewPersistStep(store, p.logger))
	}
	return p
}
