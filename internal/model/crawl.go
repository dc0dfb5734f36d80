package model

import (
	"fmt"
	"sort"
	"time"
)

// Stage names the part of a crawl an error came from.
type Stage int

const (
	// StageEncode is query URL construction.
	StageEncode Stage = iota
	// StageListing is fetching or parsing a listing page.
	StageListing
	// StagePagination is reading the page counter.
	StagePagination
	// StageLinks is extracting job links from a listing page.
	StageLinks
	// StageDetail is fetching or parsing a job detail page.
	StageDetail
	// StageFields is turning extracted fields into a record.
	StageFields
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageEncode:
		return "encode"
	case StageListing:
		return "listing"
	case StagePagination:
		return "pagination"
	case StageLinks:
		return "links"
	case StageDetail:
		return "detail"
	case StageFields:
		return "fields"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Stage) UnmarshalText(text []byte) error {
	for st := StageEncode; st <= StageFields; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown crawl stage %q", string(text))
}

// CrawlError is one failure, or warning, recorded during a crawl.
type CrawlError struct {
	Stage Stage  `json:"stage"`
	URL   string `json:"url,omitempty"`
	Page  uint   `json:"page,omitempty"`

	// Warning marks conditions that were recorded but did not fail anything,
	// such as falling back to a single page.
	Warning bool `json:"warning,omitempty"`

	Err error `json:"-"`

	// Message is Err rendered for serialization.
	Message string `json:"message"`
}

// NewCrawlError builds a CrawlError and fills Message from err.
func NewCrawlError(stage Stage, url string, page uint, err error) CrawlError {
	ce := CrawlError{Stage: stage, URL: url, Page: page, Err: err}
	if err != nil {
		ce.Message = err.Error()
	}
	return ce
}

// Error implements the error interface.
func (e CrawlError) Error() string {
	prefix := e.Stage.String()
	if e.Warning {
		prefix = "warning: " + prefix
	}
	if e.URL != "" {
		return prefix + " " + e.URL + ": " + e.Message
	}
	return prefix + ": " + e.Message
}

// Unwrap returns the underlying error.
func (e CrawlError) Unwrap() error {
	return e.Err
}

// Status is how a crawl ended.
type Status int

const (
	// StatusDone means every page was processed.
	StatusDone Status = iota
	// StatusFailed means the crawl stopped early.
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	if string(text) == "done" {
		*s = StatusDone
	} else {
		*s = StatusFailed
	}
	return nil
}

// CrawlResult is everything one crawl produced. It is returned for failed
// crawls too, with whatever was collected before the failure.
type CrawlResult struct {
	Status Status `json:"status"`

	// Records maps canonical job URL to record.
	Records map[string]Record `json:"records"`

	Errors []CrawlError `json:"errors,omitempty"`

	PagesCrawled   uint `json:"pages_crawled"`
	TotalPages     uint `json:"total_pages"`
	ListingFetches uint `json:"listing_fetches"`
	DetailFetches  uint `json:"detail_fetches"`

	// Cancelled is true when the crawl stopped because its context ended.
	Cancelled bool `json:"cancelled,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewCrawlResult returns an empty result started at the given time.
func NewCrawlResult(startedAt time.Time) *CrawlResult {
	return &CrawlResult{
		Records:   make(map[string]Record),
		StartedAt: startedAt,
	}
}

// AddError records a failure.
func (r *CrawlResult) AddError(e CrawlError) {
	r.Errors = append(r.Errors, e)
}

// Failures returns the recorded errors that are not warnings.
func (r *CrawlResult) Failures() []CrawlError {
	var out []CrawlError
	for _, e := range r.Errors {
		if !e.Warning {
			out = append(out, e)
		}
	}
	return out
}

// Warnings returns the recorded warnings.
func (r *CrawlResult) Warnings() []CrawlError {
	var out []CrawlError
	for _, e := range r.Errors {
		if e.Warning {
			out = append(out, e)
		}
	}
	return out
}

// SortedRecords returns the records ordered by job URL.
func (r *CrawlResult) SortedRecords() []Record {
	keys := make([]string, 0, len(r.Records))
	for k := range r.Records {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Record, 0, len(keys))
	for _, k := range keys {
		out = append(out, r.Records[k])
	}
	return out
}

// SalaryBreakdown counts records per salary kind.
func (r *CrawlResult) SalaryBreakdown() map[SalaryKind]int {
	out := make(map[SalaryKind]int)
	for _, rec := range r.Records {
		out[rec.Job.Salary.Kind]++
	}
	return out
}

// Duration returns how long the crawl ran.
func (r *CrawlResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
