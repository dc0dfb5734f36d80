package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/jobscan/internal/model"
	"github.com/nao1215/jobscan/internal/query"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, report *model.SearchReport) error
	callCount atomic.Int32
}

func (m *mockStep) Do(ctx context.Context, report *model.SearchReport) error {
	m.callCount.Add(1)
	if m.doFunc != nil {
		return m.doFunc(ctx, report)
	}
	return nil
}

func (m *mockStep) Name() string {
	return m.name
}

// fakeCrawler returns a canned result per city.
type fakeCrawler struct {
	results map[string]*model.CrawlResult
	calls   atomic.Int32
	delay   time.Duration
}

func (f *fakeCrawler) Run(ctx context.Context, q query.Query) *model.CrawlResult {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if r, ok := f.results[q.City()]; ok {
		return r
	}
	return &model.CrawlResult{Status: model.StatusDone, Records: map[string]model.Record{}}
}

// cancellingCrawler cancels the run while crawling, like an interrupt
// arriving mid-crawl.
type cancellingCrawler struct {
	result *model.CrawlResult
	cancel context.CancelFunc
}

func (c *cancellingCrawler) Run(_ context.Context, _ query.Query) *model.CrawlResult {
	c.cancel()
	return c.result
}

// fakeStore records saved reports.
type fakeStore struct {
	mu      sync.Mutex
	saved   []string
	ctxErrs []error
	err     error
}

func (s *fakeStore) SaveSearchReport(ctx context.Context, report *model.SearchReport) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, report.Name)
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	return int64(len(s.saved)), nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSearch(t *testing.T, name, city string) Search {
	t.Helper()
	opts := query.DefaultOptions()
	opts.City = city
	opts.Level = query.LevelEntry
	q, err := opts.Finalize()
	if err != nil {
		t.Fatalf("failed to build query: %v", err)
	}
	return Search{Name: name, Query: q}
}

func TestPipelineNew(t *testing.T) {
	t.Parallel()

	p := New()
	if p.StepCount() != 0 {
		t.Errorf("expected 0 steps, got %d", p.StepCount())
	}
	if p.continueOnError {
		t.Error("expected continueOnError to default to false")
	}
	if !New(WithContinueOnError(true)).continueOnError {
		t.Error("expected continueOnError to be true")
	}
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	s := testSearch(t, "a", "Austin, TX")

	t.Run("runs steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		p := New(WithLogger(quietLogger()))
		for _, name := range []string{"one", "two", "three"} {
			p.AddStep(&mockStep{name: name, doFunc: func(context.Context, *model.SearchReport) error {
				order = append(order, name)
				return nil
			}})
		}

		report := model.NewSearchReport(s.Name, s.Query)
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(order) != 3 || order[0] != "one" || order[2] != "three" {
			t.Errorf("unexpected order %v", order)
		}
		if len(report.PerformedSteps) != 3 {
			t.Errorf("expected 3 performed steps, got %v", report.PerformedSteps)
		}
	})

	t.Run("stops on error by default", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		second := &mockStep{name: "second"}
		p := New(WithLogger(quietLogger()))
		p.AddSteps(&mockStep{name: "first", doFunc: func(context.Context, *model.SearchReport) error { return boom }}, second)

		report := model.NewSearchReport(s.Name, s.Query)
		if err := p.Execute(context.Background(), report); !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
		if second.callCount.Load() != 0 {
			t.Error("expected second step not to run")
		}
		if report.ErrorMessage != "boom" {
			t.Errorf("expected error message boom, got %q", report.ErrorMessage)
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		second := &mockStep{name: "second"}
		p := New(WithLogger(quietLogger()), WithContinueOnError(true))
		p.AddSteps(&mockStep{name: "first", doFunc: func(context.Context, *model.SearchReport) error { return boom }}, second)

		report := model.NewSearchReport(s.Name, s.Query)
		if err := p.Execute(context.Background(), report); !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
		if second.callCount.Load() != 1 {
			t.Error("expected second step to run")
		}
		if len(report.PerformedSteps) != 1 || report.PerformedSteps[0] != "second" {
			t.Errorf("expected only second to be performed, got %v", report.PerformedSteps)
		}
	})

	t.Run("cancelled context skips plain steps", func(t *testing.T) {
		t.Parallel()

		step := &mockStep{name: "never"}
		p := New(WithLogger(quietLogger()))
		p.AddStep(step)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		report := model.NewSearchReport(s.Name, s.Query)
		if err := p.Execute(ctx, report); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if !report.Cancelled || step.callCount.Load() != 0 {
			t.Error("expected report to be cancelled without running the step")
		}
	})
}

func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	s := testSearch(t, "austin", "Austin, TX")

	t.Run("persists a successful crawl", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{}
		p := DefaultPipeline(&fakeCrawler{}, store, WithLogger(quietLogger()))
		if got := p.StepNames(); len(got) != 2 || got[0] != "crawl" || got[1] != "persist" {
			t.Fatalf("unexpected steps %v", got)
		}

		report := model.NewSearchReport(s.Name, s.Query)
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.RunID != 1 {
			t.Errorf("expected run id 1, got %d", report.RunID)
		}
		if len(store.saved) != 1 || store.saved[0] != "austin" {
			t.Errorf("expected austin to be saved, got %v", store.saved)
		}
	})

	t.Run("persists partial results of a failed crawl", func(t *testing.T) {
		t.Parallel()

		failed := model.NewCrawlResult(time.Now())
		failed.Status = model.StatusFailed
		failed.AddError(model.NewCrawlError(model.StageListing, "https://www.indeed.com/jobs", 2, errors.New("status 500")))

		store := &fakeStore{}
		c := &fakeCrawler{results: map[string]*model.CrawlResult{"Austin, TX": failed}}
		p := DefaultPipeline(c, store, WithLogger(quietLogger()))

		report := model.NewSearchReport(s.Name, s.Query)
		err := p.Execute(context.Background(), report)
		if !errors.Is(err, ErrCrawlFailed) {
			t.Errorf("expected ErrCrawlFailed, got %v", err)
		}
		if len(store.saved) != 1 {
			t.Errorf("expected failed crawl to be persisted, got %v", store.saved)
		}
		if report.Result != failed {
			t.Error("expected crawl result to be attached")
		}
	})

	t.Run("persists partial results of a cancelled crawl", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		partial := model.NewCrawlResult(time.Now())
		partial.Status = model.StatusFailed
		partial.Cancelled = true
		partial.Records["https://www.indeed.com/viewjob?jk=a"] = model.Record{}
		partial.AddError(model.NewCrawlError(model.StageDetail, "", 1, context.Canceled))

		store := &fakeStore{}
		c := &cancellingCrawler{result: partial, cancel: cancel}
		p := DefaultPipeline(c, store, WithLogger(quietLogger()))

		report := model.NewSearchReport(s.Name, s.Query)
		if err := p.Execute(ctx, report); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if !report.Cancelled {
			t.Error("expected report to be cancelled")
		}
		if len(store.saved) != 1 {
			t.Fatalf("expected cancelled crawl to be persisted, got %v", store.saved)
		}
		if store.ctxErrs[0] != nil {
			t.Errorf("expected persist to run without cancellation, got %v", store.ctxErrs[0])
		}
		if report.RunID != 1 {
			t.Errorf("expected run id 1, got %d", report.RunID)
		}
	})

	t.Run("store is optional", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(&fakeCrawler{}, nil, WithLogger(quietLogger()))
		if p.StepCount() != 1 {
			t.Errorf("expected crawl step only, got %v", p.StepNames())
		}
	})

	t.Run("store failure is recorded", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(&fakeCrawler{}, &fakeStore{err: errors.New("disk full")}, WithLogger(quietLogger()))
		report := model.NewSearchReport(s.Name, s.Query)
		if err := p.Execute(context.Background(), report); err == nil {
			t.Error("expected persist error")
		}
		if report.Error == nil {
			t.Error("expected error recorded on report")
		}
	})
}

func TestBatchProcessor(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() })
		if bp.concurrency != DefaultBatchConcurrency {
			t.Errorf("expected concurrency %d, got %d", DefaultBatchConcurrency, bp.concurrency)
		}
		if NewBatchProcessor(func() *Pipeline { return New() }, WithConcurrency(0)).concurrency != DefaultBatchConcurrency {
			t.Error("expected non-positive concurrency to be ignored")
		}
	})

	t.Run("runs every search and keeps input order", func(t *testing.T) {
		t.Parallel()

		searches := []Search{
			testSearch(t, "austin", "Austin, TX"),
			testSearch(t, "denver", "Denver, CO"),
			testSearch(t, "boston", "Boston, MA"),
		}
		c := &fakeCrawler{delay: 5 * time.Millisecond}
		store := &fakeStore{}

		bp := NewBatchProcessor(
			func() *Pipeline { return DefaultPipeline(c, store, WithLogger(quietLogger())) },
			WithConcurrency(2),
			WithBatchLogger(quietLogger()),
		)
		reports, err := bp.ProcessBatch(context.Background(), searches)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(reports) != 3 {
			t.Fatalf("expected 3 reports, got %d", len(reports))
		}
		for i, r := range reports {
			if r == nil || r.Name != searches[i].Name {
				t.Errorf("report %d: expected %s, got %+v", i, searches[i].Name, r)
			}
		}
		if c.calls.Load() != 3 {
			t.Errorf("expected 3 crawls, got %d", c.calls.Load())
		}
	})

	t.Run("callback receives every report", func(t *testing.T) {
		t.Parallel()

		searches := []Search{testSearch(t, "a", "Austin, TX"), testSearch(t, "b", "Boise, ID")}
		bp := NewBatchProcessor(
			func() *Pipeline { return DefaultPipeline(&fakeCrawler{}, nil, WithLogger(quietLogger())) },
			WithBatchLogger(quietLogger()),
		)

		var seen atomic.Int32
		err := bp.ProcessBatchWithCallback(context.Background(), searches, func(*model.SearchReport, int) {
			seen.Add(1)
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen.Load() != 2 {
			t.Errorf("expected 2 callbacks, got %d", seen.Load())
		}
	})
}
