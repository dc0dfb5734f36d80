package config

import (
	"fmt"
	"maps"
	"slices"

	"github.com/nao1215/jobscan/internal/indeed"
	"github.com/nao1215/jobscan/internal/query"
)

// SearchSpec is one search as written in the search file. Unset fields fall
// back to the defaults block and then to query.DefaultOptions.
type SearchSpec struct {
	BaseURL      *string             `yaml:"base_url,omitempty"`
	City         *string             `yaml:"city,omitempty"`
	Level        *query.Level        `yaml:"level,omitempty"`
	Radius       *uint               `yaml:"radius,omitempty"`
	MaxAgeDays   *uint               `yaml:"max_age_days,omitempty"`
	Sort         *query.Sort         `yaml:"sort,omitempty"`
	JobType      *query.JobType      `yaml:"job_type,omitempty"`
	MinSalary    *uint               `yaml:"min_salary,omitempty"`
	AllWords     []string            `yaml:"all_words,omitempty"`
	ExactPhrase  *string             `yaml:"exact_phrase,omitempty"`
	AnyWords     []string            `yaml:"any_words,omitempty"`
	ExcludeWords []string            `yaml:"exclude_words,omitempty"`
	TitleWords   []string            `yaml:"title_words,omitempty"`
	Company      *string             `yaml:"company,omitempty"`
	ShowJobsFrom *query.ShowJobsFrom `yaml:"show_jobs_from,omitempty"`
	Limit        *uint               `yaml:"limit,omitempty"`

	ExcludeStaffingAgencies *bool `yaml:"exclude_staffing_agencies,omitempty"`
}

// Apply returns o with every field set in s.
func (s SearchSpec) Apply(o query.Options) query.Options {
	setIf(&o.BaseURL, s.BaseURL)
	setIf(&o.City, s.City)
	setIf(&o.Level, s.Level)
	setIf(&o.Radius, s.Radius)
	setIf(&o.MaxAgeDays, s.MaxAgeDays)
	setIf(&o.Sort, s.Sort)
	setIf(&o.JobType, s.JobType)
	setIf(&o.MinSalary, s.MinSalary)
	setIf(&o.ExactPhrase, s.ExactPhrase)
	setIf(&o.Company, s.Company)
	setIf(&o.ShowJobsFrom, s.ShowJobsFrom)
	setIf(&o.Limit, s.Limit)
	setIf(&o.ExcludeStaffingAgencies, s.ExcludeStaffingAgencies)

	if s.AllWords != nil {
		o.AllWords = slices.Clone(s.AllWords)
	}
	if s.AnyWords != nil {
		o.AnyWords = slices.Clone(s.AnyWords)
	}
	if s.ExcludeWords != nil {
		o.ExcludeWords = slices.Clone(s.ExcludeWords)
	}
	if s.TitleWords != nil {
		o.TitleWords = slices.Clone(s.TitleWords)
	}
	return o
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// File is the structure of the .jobscan search file.
type File struct {
	// Defaults apply to every search unless the search overrides them.
	Defaults SearchSpec `yaml:"defaults,omitempty"`

	// Searches maps search names to their options.
	Searches map[string]SearchSpec `yaml:"searches,omitempty"`

	// Selectors override parts of the built-in Indeed page profile.
	Selectors *indeed.Profile `yaml:"selectors,omitempty"`

	// Cookie is sent with every request, as "name=value; name2=value2".
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers sent with every request.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// SearchNames returns the search names in sorted order.
func (f *File) SearchNames() []string {
	return slices.Sorted(maps.Keys(f.Searches))
}

// GetSearch returns the options of the named search with defaults applied.
func (f *File) GetSearch(name string) (query.Options, error) {
	spec, ok := f.Searches[name]
	if !ok {
		return query.Options{}, fmt.Errorf("%w: %s", ErrSearchNotFound, name)
	}
	return spec.Apply(f.Defaults.Apply(query.DefaultOptions())), nil
}

// Profile returns the built-in Indeed profile with the file's selector
// overrides applied.
func (f *File) Profile() indeed.Profile {
	p := indeed.DefaultProfile()
	if f == nil || f.Selectors == nil {
		return p
	}
	return p.Merge(*f.Selectors)
}
