package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/jobscan/internal/extract"
	"github.com/nao1215/jobscan/internal/fetcher"
	"github.com/nao1215/jobscan/internal/indeed"
	"github.com/nao1215/jobscan/internal/model"
	"github.com/nao1215/jobscan/internal/pagination"
	"github.com/nao1215/jobscan/internal/query"
)

const (
	// DefaultMaxConcurrency bounds the detail-page fan-out.
	DefaultMaxConcurrency = 5
	// DefaultMaxPages caps how many listing pages one run visits.
	DefaultMaxPages = 100
)

// Orchestrator crawls searches. One Orchestrator may run several searches,
// concurrently or not; each Run has its own state.
type Orchestrator struct {
	fetcher            fetcher.Fetcher
	profile            indeed.Profile
	pager              pagination.Reader
	maxConcurrency     int
	maxPages           uint
	singlePageFallback bool
	logger             *slog.Logger
	now                func() time.Time
	hook               func(State, uint)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithProfile sets the page selectors.
func WithProfile(p indeed.Profile) Option {
	return func(o *Orchestrator) {
		o.profile = p
	}
}

// WithPaginationReader replaces the profile's page counter reader.
func WithPaginationReader(r pagination.Reader) Option {
	return func(o *Orchestrator) {
		o.pager = r
	}
}

// WithMaxConcurrency bounds the number of detail pages fetched at once.
// Values below 1 are ignored.
func WithMaxConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxConcurrency = n
		}
	}
}

// WithMaxPages caps the listing pages visited. 0 means no cap.
func WithMaxPages(n uint) Option {
	return func(o *Orchestrator) {
		o.maxPages = n
	}
}

// WithSinglePageFallback treats an unreadable page counter as a single page
// instead of failing the run.
func WithSinglePageFallback(enabled bool) Option {
	return func(o *Orchestrator) {
		o.singlePageFallback = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock sets the time source used for timestamps and relative dates.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithTransitionHook registers a function called on entering every state
// with the current listing page.
func WithTransitionHook(fn func(State, uint)) Option {
	return func(o *Orchestrator) {
		o.hook = fn
	}
}

// New creates an Orchestrator that fetches through f.
func New(f fetcher.Fetcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		fetcher:        f,
		profile:        indeed.DefaultProfile(),
		maxConcurrency: DefaultMaxConcurrency,
		maxPages:       DefaultMaxPages,
		logger:         slog.Default(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.pager == nil {
		o.pager = o.profile.PaginationReader()
	}
	return o
}

// Run crawls every listing page of q. It always returns a result; a failed
// or cancelled run keeps the records collected before it stopped.
func (o *Orchestrator) Run(ctx context.Context, q query.Query) *model.CrawlResult {
	r := &run{
		o:         o,
		query:     q,
		result:    model.NewCrawlResult(o.now()),
		collector: NewCollector(),
		visited:   newVisitedSet(),
		logger:    o.logger.With("city", q.City()),
	}
	r.loop(ctx)
	return r.result
}

// run is the state of one Orchestrator.Run.
type run struct {
	o         *Orchestrator
	query     query.Query
	result    *model.CrawlResult
	collector *Collector
	visited   *visitedSet
	logger    *slog.Logger

	state State
	page  uint
	total uint

	listingURL string
	listing    *extract.Document
	links      []string
	outcomes   []detailOutcome

	// pageComplete is false when cancellation stopped dispatching units.
	pageComplete bool
}

// detailOutcome is what one fan-out unit produced.
type detailOutcome struct {
	url    string
	record *model.Record
	err    *model.CrawlError
}

func (r *run) loop(ctx context.Context) {
	r.enter(StateInit)

	for !r.state.Terminal() {
		// Aggregate runs after the barrier even when cancelled so finished
		// units are kept.
		if err := ctx.Err(); err != nil && r.state != StateAggregate {
			r.enter(r.cancel(err))
			break
		}

		switch r.state {
		case StateInit:
			r.page = 1
			r.enter(StateFetchListing)
		case StateFetchListing:
			r.enter(r.fetchListing(ctx))
		case StateExtractLinks:
			r.enter(r.extractLinks())
		case StateFetchDetails:
			r.enter(r.fetchDetails(ctx))
		case StateAggregate:
			r.enter(r.aggregate(ctx))
		case StateNextPage:
			r.page++
			r.enter(StateFetchListing)
		}
	}

	r.finish()
}

func (r *run) enter(s State) {
	r.state = s
	r.logger.Debug("crawl state", "state", s.String(), "page", r.page)
	if r.o.hook != nil {
		r.o.hook(s, r.page)
	}
}

// cancel records a run-level cancellation. The error carries no URL since
// no single fetch caused it.
func (r *run) cancel(err error) State {
	r.result.Cancelled = true
	r.result.AddError(model.NewCrawlError(stageFor(r.state), "", r.page, err))
	r.logger.Warn("crawl cancelled", "page", r.page, "error", err)
	return StateFailed
}

func (r *run) finish() {
	if r.state == StateDone {
		r.result.Status = model.StatusDone
	} else {
		r.result.Status = model.StatusFailed
	}
	r.result.Records = r.collector.Records()
	r.result.TotalPages = r.total
	r.result.FinishedAt = r.o.now()

	r.logger.Info("crawl finished",
		"status", r.result.Status.String(),
		"pages", r.result.PagesCrawled,
		"total_pages", r.total,
		"records", len(r.result.Records),
		"visited", r.visited.len(),
		"errors", len(r.result.Failures()),
	)
}

// fetchListing fetches and parses the current listing page. On the first
// page it also reads the page counter.
func (r *run) fetchListing(ctx context.Context) State {
	q := r.query.AtPage(r.page)
	u, err := q.Encode()
	if err != nil {
		r.result.AddError(model.NewCrawlError(model.StageEncode, "", r.page, err))
		return StateFailed
	}
	r.listingURL = u.String()

	r.result.ListingFetches++
	body, err := r.o.fetcher.Fetch(ctx, r.listingURL)
	if err != nil {
		if ctx.Err() != nil {
			r.result.Cancelled = true
		}
		r.result.AddError(model.NewCrawlError(model.StageListing, r.listingURL, r.page, err))
		r.logger.Error("listing fetch failed", "url", r.listingURL, "page", r.page, "error", err)
		return StateFailed
	}

	doc, err := extract.Parse(body, r.listingURL)
	if err != nil {
		r.result.AddError(model.NewCrawlError(model.StageListing, r.listingURL, r.page, err))
		return StateFailed
	}
	r.listing = doc

	if r.page == 1 {
		return r.readPagination(doc)
	}
	return StateExtractLinks
}

func (r *run) readPagination(doc *extract.Document) State {
	info, err := r.o.pager.ReadPageInfo(doc)
	switch {
	case err == nil:
		r.total = info.Total
	case r.o.singlePageFallback:
		ce := model.NewCrawlError(model.StagePagination, r.listingURL, r.page,
			fmt.Errorf("falling back to a single page: %w", err))
		ce.Warning = true
		r.result.AddError(ce)
		r.logger.Warn("page counter unreadable, crawling one page", "url", r.listingURL, "error", err)
		r.total = 1
	default:
		r.result.AddError(model.NewCrawlError(model.StagePagination, r.listingURL, r.page, err))
		r.logger.Error("page counter unreadable", "url", r.listingURL, "error", err)
		return StateFailed
	}

	if r.o.maxPages > 0 && r.total > r.o.maxPages {
		ce := model.NewCrawlError(model.StagePagination, r.listingURL, r.page,
			fmt.Errorf("%w: %d pages reported, visiting %d", ErrPagesCapped, r.total, r.o.maxPages))
		ce.Warning = true
		r.result.AddError(ce)
		r.total = r.o.maxPages
	}
	r.logger.Info("search pages", "total", r.total)
	return StateExtractLinks
}

// extractLinks keeps the canonical job links of the listing page that no
// earlier page produced.
func (r *run) extractLinks() State {
	raw := r.listing.Links(r.o.profile.ListingLinkSelector, r.o.profile.LinkAttr)
	r.links = r.links[:0]
	for _, link := range raw {
		canonical := indeed.CanonicalURL(link)
		if r.visited.claim(canonical) {
			r.links = append(r.links, canonical)
		}
	}
	if len(raw) == 0 {
		r.logger.Warn("no job links on listing page", "url", r.listingURL, "page", r.page)
	}
	return StateFetchDetails
}

// fetchDetails fetches and extracts every link of the page with bounded
// concurrency. Wait is the page barrier.
func (r *run) fetchDetails(ctx context.Context) State {
	r.outcomes = make([]detailOutcome, len(r.links))

	var g errgroup.Group
	g.SetLimit(r.o.maxConcurrency)

	dispatched := 0
	for i, link := range r.links {
		if ctx.Err() != nil {
			break
		}
		dispatched++
		g.Go(func() error {
			r.outcomes[i] = r.detail(ctx, link)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // units report through outcomes

	r.result.DetailFetches += uint(dispatched)
	r.outcomes = r.outcomes[:dispatched]
	r.pageComplete = dispatched == len(r.links)
	return StateAggregate
}

// detail is one fan-out unit: fetch, parse, extract, build.
func (r *run) detail(ctx context.Context, link string) detailOutcome {
	out := detailOutcome{url: link}

	body, err := r.o.fetcher.Fetch(ctx, link)
	if err != nil {
		if ctx.Err() != nil {
			return out
		}
		ce := model.NewCrawlError(model.StageDetail, link, r.page, err)
		out.err = &ce
		r.logger.Warn("detail fetch failed", "url", link, "error", err)
		return out
	}

	doc, err := extract.Parse(body, link)
	if err != nil {
		ce := model.NewCrawlError(model.StageDetail, link, r.page, err)
		out.err = &ce
		return out
	}

	rec, err := indeed.BuildRecord(doc.Fields(r.o.profile.Detail), link, r.o.now())
	if err != nil {
		ce := model.NewCrawlError(model.StageFields, link, r.page, err)
		out.err = &ce
		r.logger.Warn("detail page skipped", "url", link, "error", err)
		return out
	}
	out.record = &rec
	return out
}

// aggregate merges the page's outcomes and decides what comes next. A
// cancelled run keeps the merged records and ends as failed.
func (r *run) aggregate(ctx context.Context) State {
	added := 0
	for _, out := range r.outcomes {
		if out.err != nil {
			r.result.AddError(*out.err)
		}
		if out.record != nil && r.collector.Insert(out.url, *out.record) {
			added++
		}
	}
	r.outcomes = nil
	if r.pageComplete {
		r.result.PagesCrawled++
	}

	r.logger.Info("listing page done",
		"page", r.page,
		"total_pages", r.total,
		"links", len(r.links),
		"added", added,
		"records", r.collector.Len(),
	)

	if err := ctx.Err(); err != nil {
		return r.cancel(err)
	}
	if r.page < r.total {
		return StateNextPage
	}
	return StateDone
}

// stageFor maps the state a run was in to the stage recorded for errors.
func stageFor(s State) model.Stage {
	switch s {
	case StateFetchDetails, StateAggregate:
		return model.StageDetail
	case StateExtractLinks:
		return model.StageLinks
	default:
		return model.StageListing
	}
}

// ErrPagesCapped marks the warning recorded when the page count is capped.
var ErrPagesCapped = errors.New("page count capped")
