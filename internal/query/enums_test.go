package query

import (
	"errors"
	"testing"
)

func TestLevelTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level Level
		want  string
	}{
		{LevelEntry, "entry_level"},
		{LevelMid, "mid_level"},
		{LevelSenior, "senior_level"},
		{LevelUnset, ""},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}

	if l, err := ParseLevel("mid"); err != nil || l != LevelMid {
		t.Errorf("expected LevelMid, got %v (err %v)", l, err)
	}
	if _, err := ParseLevel("principal"); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("expected ErrInvalidLevel, got %v", err)
	}
}

func TestJobTypeTable(t *testing.T) {
	t.Parallel()

	all := []JobType{
		JobTypeFullTime, JobTypeContract, JobTypePartTime,
		JobTypeTemporary, JobTypeInternship, JobTypeCommission,
	}
	for _, jt := range all {
		parsed, err := ParseJobType(jt.String())
		if err != nil {
			t.Errorf("unexpected error for %s: %v", jt, err)
			continue
		}
		if parsed != jt {
			t.Errorf("expected %v, got %v", jt, parsed)
		}
	}

	if jt, err := ParseJobType("Full-Time"); err != nil || jt != JobTypeFullTime {
		t.Errorf("expected JobTypeFullTime, got %v (err %v)", jt, err)
	}
	if _, err := ParseJobType("volunteer"); !errors.Is(err, ErrInvalidJobType) {
		t.Errorf("expected ErrInvalidJobType, got %v", err)
	}
}

func TestSortAndShowJobsFromTables(t *testing.T) {
	t.Parallel()

	if SortDate.String() != "date" || SortRelevance.String() != "relevance" {
		t.Errorf("unexpected sort names: %q %q", SortDate, SortRelevance)
	}
	if _, err := ParseSort("salary"); !errors.Is(err, ErrInvalidSort) {
		t.Errorf("expected ErrInvalidSort, got %v", err)
	}

	names := map[ShowJobsFrom]string{ShowAll: "all", ShowJobSites: "jobsite", ShowEmployers: "employer"}
	for v, want := range names {
		if v.String() != want {
			t.Errorf("expected %q, got %q", want, v.String())
		}
	}
	if _, err := ParseShowJobsFrom("recruiter"); !errors.Is(err, ErrInvalidShowJobsFrom) {
		t.Errorf("expected ErrInvalidShowJobsFrom, got %v", err)
	}
}

func TestEnumUnmarshalText(t *testing.T) {
	t.Parallel()

	var l Level
	if err := l.UnmarshalText([]byte("senior_level")); err != nil || l != LevelSenior {
		t.Errorf("expected LevelSenior, got %v (err %v)", l, err)
	}

	var s Sort
	if err := s.UnmarshalText([]byte("date")); err != nil || s != SortDate {
		t.Errorf("expected SortDate, got %v (err %v)", s, err)
	}

	var jt JobType
	if err := jt.UnmarshalText([]byte("bogus")); err == nil {
		t.Error("expected error for unknown job type")
	}

	text, err := ShowEmployers.MarshalText()
	if err != nil || string(text) != "employer" {
		t.Errorf("expected employer, got %q (err %v)", text, err)
	}
}
