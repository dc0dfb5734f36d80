package model

import "time"

// Job is the posting side of a job record.
type Job struct {
	Title    string `json:"title"`
	Location string `json:"location,omitempty"`

	// AnnualSalary is the annualized pay, nil when the posting shows none.
	AnnualSalary *float64 `json:"annual_salary,omitempty"`

	// Salary is the pay as parsed from the posting.
	Salary Salary `json:"salary"`

	// DatePosted is when the posting went up, resolved against crawl time.
	DatePosted time.Time `json:"date_posted"`

	// URL is the canonical detail page URL and the dedupe key.
	URL string `json:"url"`
}

// Record is one extracted job together with its company.
type Record struct {
	Company Company `json:"company"`
	Job     Job     `json:"job"`
}

// Key returns the dedupe key of the record.
func (r Record) Key() string {
	return r.Job.URL
}
