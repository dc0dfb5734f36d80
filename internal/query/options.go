package query

import "strings"

const (
	// DefaultBaseURL is the Indeed job search endpoint.
	DefaultBaseURL = "https://www.indeed.com/jobs"
	// DefaultMaxAgeDays is the default posting age filter.
	DefaultMaxAgeDays = 14
	// DefaultLimit is the default number of results per listing page.
	DefaultLimit = 50
)

// Options describes a search before validation.
// The zero value is not usable; start from DefaultOptions.
type Options struct {
	// BaseURL is the search endpoint. Empty means DefaultBaseURL.
	BaseURL string `yaml:"base_url,omitempty" json:"base_url,omitempty"`

	// City is the location filter. Required.
	City string `yaml:"city" json:"city"`

	// Level is the experience level. Required.
	Level Level `yaml:"level" json:"level"`

	// Radius is the distance from City in miles.
	Radius uint `yaml:"radius" json:"radius"`

	// MaxAgeDays limits results to postings newer than this many days.
	MaxAgeDays uint `yaml:"max_age_days" json:"max_age_days"`

	Sort         Sort         `yaml:"sort" json:"sort"`
	JobType      JobType      `yaml:"job_type" json:"job_type"`
	MinSalary    uint         `yaml:"min_salary" json:"min_salary"`
	AllWords     []string     `yaml:"all_words,omitempty" json:"all_words,omitempty"`
	ExactPhrase  string       `yaml:"exact_phrase,omitempty" json:"exact_phrase,omitempty"`
	AnyWords     []string     `yaml:"any_words,omitempty" json:"any_words,omitempty"`
	ExcludeWords []string     `yaml:"exclude_words,omitempty" json:"exclude_words,omitempty"`
	TitleWords   []string     `yaml:"title_words,omitempty" json:"title_words,omitempty"`
	Company      string       `yaml:"company,omitempty" json:"company,omitempty"`
	ShowJobsFrom ShowJobsFrom `yaml:"show_jobs_from" json:"show_jobs_from"`

	// ExcludeStaffingAgencies restricts results to direct hires.
	ExcludeStaffingAgencies bool `yaml:"exclude_staffing_agencies" json:"exclude_staffing_agencies"`

	// Limit is the page size.
	Limit uint `yaml:"limit" json:"limit"`

	// Start is the result offset. It must be a multiple of Limit.
	Start uint `yaml:"start,omitempty" json:"start,omitempty"`
}

// DefaultOptions returns the default search options.
// City and Level are left empty and must be set before Finalize.
func DefaultOptions() Options {
	return Options{
		BaseURL:                 DefaultBaseURL,
		MaxAgeDays:              DefaultMaxAgeDays,
		Sort:                    SortRelevance,
		JobType:                 JobTypeFullTime,
		ExcludeStaffingAgencies: true,
		ShowJobsFrom:            ShowAll,
		Limit:                   DefaultLimit,
	}
}

// Validate checks the options and returns the first problem found.
func (o Options) Validate() error {
	if strings.TrimSpace(o.City) == "" {
		return ErrNoCity
	}
	if !o.Level.Valid() {
		return ErrInvalidLevel
	}
	if !o.Sort.Valid() {
		return ErrInvalidSort
	}
	if !o.JobType.Valid() {
		return ErrInvalidJobType
	}
	if !o.ShowJobsFrom.Valid() {
		return ErrInvalidShowJobsFrom
	}
	if o.Limit == 0 {
		return ErrInvalidLimit
	}
	if o.Start%o.Limit != 0 {
		return ErrMisalignedStart
	}
	return nil
}

// Finalize validates the options and returns the immutable Query they describe.
func (o Options) Finalize() (Query, error) {
	if err := o.Validate(); err != nil {
		return Query{}, err
	}
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	return Query{opts: o.clone()}, nil
}

func (o Options) clone() Options {
	o.AllWords = cloneWords(o.AllWords)
	o.AnyWords = cloneWords(o.AnyWords)
	o.ExcludeWords = cloneWords(o.ExcludeWords)
	o.TitleWords = cloneWords(o.TitleWords)
	return o
}

func cloneWords(words []string) []string {
	if words == nil {
		return nil
	}
	out := make([]string, len(words))
	copy(out, words)
	return out
}
