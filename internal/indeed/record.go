package indeed

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/jobscan/internal/extract"
	"github.com/nao1215/jobscan/internal/model"
)

// FieldError is returned when a required field is missing from a detail page.
type FieldError struct {
	Field string
	URL   string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("required field %q missing on %s", e.Field, e.URL)
}

// BuildRecord turns extracted fields into a record. Only the title is
// required; every other missing field is left at its zero value, and a
// missing or unreadable salary becomes model.SalaryUnspecified.
func BuildRecord(fields extract.Record, jobURL string, now time.Time) (model.Record, error) {
	title := fields.Get(FieldTitle)
	if title == "" {
		return model.Record{}, &FieldError{Field: FieldTitle, URL: jobURL}
	}

	salary := model.ParseSalary(fields.Get(FieldSalary))
	location := fields.Get(FieldLocation)

	companyLocation := fields.Get(FieldCompanyLocation)
	if companyLocation == "" {
		companyLocation = location
	}

	return model.Record{
		Company: model.Company{
			Name:     fields.Get(FieldCompanyName),
			Location: companyLocation,
			Homepage: fields.Get(FieldCompanyHomepage),
			Rating:   ParseRating(fields.Get(FieldCompanyRating)),
		},
		Job: model.Job{
			Title:        title,
			Location:     location,
			AnnualSalary: salary.AnnualPtr(),
			Salary:       salary,
			DatePosted:   ParsePosted(fields.Get(FieldPosted), now),
			URL:          jobURL,
		},
	}, nil
}

var (
	daysAgoPattern  = regexp.MustCompile(`(\d+)\+?\s+days?\s+ago`)
	hoursAgoPattern = regexp.MustCompile(`(\d+)\+?\s+hours?\s+ago`)
	ratingPattern   = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// ParsePosted resolves Indeed's relative posting dates ("Just posted",
// "Today", "Posted 3 days ago", "30+ days ago") against now. Text it does not
// recognize resolves to now.
func ParsePosted(text string, now time.Time) time.Time {
	lower := strings.ToLower(strings.TrimSpace(text))
	switch {
	case lower == "", strings.Contains(lower, "just posted"), strings.Contains(lower, "today"):
		return now
	case strings.Contains(lower, "yesterday"):
		return now.AddDate(0, 0, -1)
	}
	if m := daysAgoPattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return now.AddDate(0, 0, -n)
		}
	}
	if m := hoursAgoPattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return now.Add(-time.Duration(n) * time.Hour)
		}
	}
	return now
}

// ParseRating reads the first number of a rating such as "4.1 out of 5 stars".
// Missing or out-of-range ratings return 0.
func ParseRating(text string) float64 {
	m := ratingPattern.FindString(text)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || v < 0 || v > 5 {
		return 0
	}
	return v
}
