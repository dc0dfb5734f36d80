package query

import (
	"fmt"
	"strings"
)

// Level is the experience level of a search.
type Level int

const (
	// LevelUnset means no level was chosen. Finalize rejects it.
	LevelUnset Level = iota
	// LevelEntry is entry level.
	LevelEntry
	// LevelMid is mid level.
	LevelMid
	// LevelSenior is senior level.
	LevelSenior
)

// String returns the wire name of the level.
func (l Level) String() string {
	switch l {
	case LevelEntry:
		return "entry_level"
	case LevelMid:
		return "mid_level"
	case LevelSenior:
		return "senior_level"
	default:
		return ""
	}
}

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	return l >= LevelEntry && l <= LevelSenior
}

// ParseLevel parses a level name. Both the wire name ("entry_level") and the
// short form ("entry") are accepted.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "entry_level", "entry":
		return LevelEntry, nil
	case "mid_level", "mid":
		return LevelMid, nil
	case "senior_level", "senior":
		return LevelSenior, nil
	default:
		return LevelUnset, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	v, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Sort is the result ordering.
type Sort int

const (
	// SortRelevance orders results by relevance.
	SortRelevance Sort = iota
	// SortDate orders results by posting date.
	SortDate
)

// String returns the wire name of the sort order.
func (s Sort) String() string {
	switch s {
	case SortRelevance:
		return "relevance"
	case SortDate:
		return "date"
	default:
		return ""
	}
}

// Valid reports whether s is a known sort order.
func (s Sort) Valid() bool {
	return s == SortRelevance || s == SortDate
}

// ParseSort parses a sort order name.
func ParseSort(s string) (Sort, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "relevance":
		return SortRelevance, nil
	case "date":
		return SortDate, nil
	default:
		return SortRelevance, fmt.Errorf("%w: %q", ErrInvalidSort, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Sort) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Sort) UnmarshalText(text []byte) error {
	v, err := ParseSort(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// JobType is the employment type filter.
type JobType int

const (
	// JobTypeFullTime is full-time employment.
	JobTypeFullTime JobType = iota
	// JobTypeContract is contract work.
	JobTypeContract
	// JobTypePartTime is part-time employment.
	JobTypePartTime
	// JobTypeTemporary is temporary employment.
	JobTypeTemporary
	// JobTypeInternship is an internship.
	JobTypeInternship
	// JobTypeCommission is commission-based work.
	JobTypeCommission
)

// String returns the wire name of the job type.
func (j JobType) String() string {
	switch j {
	case JobTypeFullTime:
		return "fulltime"
	case JobTypeContract:
		return "contract"
	case JobTypePartTime:
		return "parttime"
	case JobTypeTemporary:
		return "temporary"
	case JobTypeInternship:
		return "internship"
	case JobTypeCommission:
		return "commission"
	default:
		return ""
	}
}

// Valid reports whether j is a known job type.
func (j JobType) Valid() bool {
	return j >= JobTypeFullTime && j <= JobTypeCommission
}

// ParseJobType parses a job type name. Hyphenated forms such as "full-time"
// are accepted.
func ParseJobType(s string) (JobType, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "") {
	case "fulltime":
		return JobTypeFullTime, nil
	case "contract":
		return JobTypeContract, nil
	case "parttime":
		return JobTypePartTime, nil
	case "temporary":
		return JobTypeTemporary, nil
	case "internship":
		return JobTypeInternship, nil
	case "commission":
		return JobTypeCommission, nil
	default:
		return JobTypeFullTime, fmt.Errorf("%w: %q", ErrInvalidJobType, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (j JobType) MarshalText() ([]byte, error) {
	return []byte(j.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (j *JobType) UnmarshalText(text []byte) error {
	v, err := ParseJobType(string(text))
	if err != nil {
		return err
	}
	*j = v
	return nil
}

// ShowJobsFrom restricts results by who posted them.
type ShowJobsFrom int

const (
	// ShowAll shows jobs from all sources.
	ShowAll ShowJobsFrom = iota
	// ShowJobSites shows jobs from job boards only.
	ShowJobSites
	// ShowEmployers shows jobs posted directly by employers.
	ShowEmployers
)

// String returns the wire name of the source filter.
func (s ShowJobsFrom) String() string {
	switch s {
	case ShowAll:
		return "all"
	case ShowJobSites:
		return "jobsite"
	case ShowEmployers:
		return "employer"
	default:
		return ""
	}
}

// Valid reports whether s is a known source filter.
func (s ShowJobsFrom) Valid() bool {
	return s >= ShowAll && s <= ShowEmployers
}

// ParseShowJobsFrom parses a source filter name.
func ParseShowJobsFrom(s string) (ShowJobsFrom, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all", "":
		return ShowAll, nil
	case "jobsite":
		return ShowJobSites, nil
	case "employer":
		return ShowEmployers, nil
	default:
		return ShowAll, fmt.Errorf("%w: %q", ErrInvalidShowJobsFrom, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s ShowJobsFrom) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ShowJobsFrom) UnmarshalText(text []byte) error {
	v, err := ParseShowJobsFrom(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
