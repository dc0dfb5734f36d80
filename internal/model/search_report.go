package model

import (
	"time"

	"github.com/nao1215/jobscan/internal/query"
)

// SearchReport is the unit a pipeline works on: one named search, its crawl
// result and what the pipeline did with it.
type SearchReport struct {
	// Name is the search name from the search file, or "adhoc".
	Name string `json:"name"`

	// Query is the search being run.
	Query query.Query `json:"-"`

	// URL is the first listing page URL.
	URL string `json:"url"`

	DateStarted time.Time `json:"date_started"`

	Result *CrawlResult `json:"result,omitempty"`

	// PerformedSteps lists the pipeline steps that completed.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// RunID is the database row of the stored run, 0 when not stored.
	RunID int64 `json:"run_id,omitempty"`

	Error        error  `json:"-"`
	ErrorMessage string `json:"error,omitempty"`

	Cancelled bool `json:"cancelled,omitempty"`
}

// NewSearchReport creates a report for the named search.
func NewSearchReport(name string, q query.Query) *SearchReport {
	return &SearchReport{
		Name:        name,
		Query:       q,
		URL:         q.URL(),
		DateStarted: time.Now(),
	}
}

// RecordCount returns the number of collected records.
func (r *SearchReport) RecordCount() int {
	if r.Result == nil {
		return 0
	}
	return len(r.Result.Records)
}

// Failed reports whether the pipeline or the crawl failed.
func (r *SearchReport) Failed() bool {
	return r.Error != nil || (r.Result != nil && r.Result.Status == StatusFailed)
}
