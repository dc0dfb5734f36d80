package model

import (
	"strings"

	"golang.org/x/text/cases"
)

// Company is the employer side of a job record.
type Company struct {
	// Name is the company name as displayed on the posting.
	Name string `json:"name"`

	// Location is where the company is listed, usually the job location.
	Location string `json:"location,omitempty"`

	// Homepage is the company page URL, empty when the posting has none.
	Homepage string `json:"homepage,omitempty"`

	// Rating is the review score out of 5, 0 when missing.
	Rating float64 `json:"rating,omitempty"`
}

// Key identifies a company by name and location, case-insensitively.
func (c Company) Key() string {
	return foldKey(c.Name) + "|" + foldKey(c.Location)
}

func foldKey(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}
