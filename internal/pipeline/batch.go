package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/jobscan/internal/model"
	"github.com/nao1215/jobscan/internal/query"
)

// DefaultBatchConcurrency is how many searches run at once by default.
const DefaultBatchConcurrency = 2

// Search is a named query.
type Search struct {
	Name  string
	Query query.Query
}

// BatchProcessor runs several searches concurrently, each through a fresh
// pipeline from the factory.
type BatchProcessor struct {
	pipelineFactory func() *Pipeline
	concurrency     int
	logger          *slog.Logger

	mu sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets how many searches run at once.
// Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultBatchConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch runs every search and returns their reports in input order.
// A failing search does not stop the others; only cancellation does, in which
// case searches that never started have a nil report.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, searches []Search) ([]*model.SearchReport, error) {
	results := make([]*model.SearchReport, len(searches))
	err := bp.ProcessBatchWithCallback(ctx, searches, func(report *model.SearchReport, index int) {
		bp.mu.Lock()
		results[index] = report
		bp.mu.Unlock()
	})
	return results, err
}

// ProcessBatchWithCallback runs every search and hands each report to
// callback as soon as it is done. callback may be called concurrently.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	searches []Search,
	callback func(report *model.SearchReport, index int),
) error {
	bp.logger.Info("starting batch",
		"searches", len(searches),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, search := range searches {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("running search",
				"search", search.Name,
				"index", i+1,
				"total", len(searches),
			)

			report := model.NewSearchReport(search.Name, search.Query)
			if err := bp.pipelineFactory().Execute(ctx, report); err != nil {
				bp.logger.Warn("search failed",
					"search", search.Name,
					"error", err,
				)
			}

			if callback != nil {
				callback(report, i)
			}
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch complete",
		"searches", len(searches),
		"elapsed", time.Since(startTime),
	)
	return err
}
