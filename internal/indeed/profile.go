// Package indeed holds everything jobscan knows about Indeed pages: where the
// links and fields live, how job URLs are canonicalized, and how raw field
// text becomes a model.Record.
package indeed

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/jobscan/internal/extract"
	"github.com/nao1215/jobscan/internal/pagination"
)

// Field names produced by the default detail tree.
const (
	FieldTitle           = "job.title"
	FieldLocation        = "job.location"
	FieldSalary          = "job.salary"
	FieldPosted          = "job.posted"
	FieldCompanyName     = "company.name"
	FieldCompanyLocation = "company.location"
	FieldCompanyHomepage = "company.homepage"
	FieldCompanyRating   = "company.rating"
)

// ErrNoLinkSelector is returned by Validate for a profile that cannot find job links.
var ErrNoLinkSelector = errors.New("listing link selector is empty")

// Profile is the set of selectors used on listing and detail pages.
type Profile struct {
	ListingLinkSelector string       `yaml:"listing_link_selector" json:"listing_link_selector"`
	LinkAttr            string       `yaml:"link_attr" json:"link_attr"`
	PaginationSelector  string       `yaml:"pagination_selector" json:"pagination_selector"`
	Detail              extract.Node `yaml:"detail" json:"detail"`
}

// DefaultProfile returns the selectors for Indeed's classic result layout.
func DefaultProfile() Profile {
	return Profile{
		ListingLinkSelector: "a.jobtitle",
		LinkAttr:            "href",
		PaginationSelector:  pagination.DefaultSelector,
		Detail: extract.Group("",
			extract.Group("job",
				extract.Rule("title", ".jobtitle"),
				extract.Rule("location", ".location"),
				extract.Rule("salary", ".salaryText"),
				extract.Rule("posted", ".date"),
			),
			extract.Group("company",
				extract.Rule("name", ".company"),
				extract.Rule("location", ".companyLocation"),
				extract.AttrRule("homepage", "a.companyLink", "href"),
				extract.Rule("rating", ".ratingsDisplay"),
			),
		),
	}
}

// Validate checks the selectors.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.ListingLinkSelector) == "" {
		return ErrNoLinkSelector
	}
	if err := p.Detail.Validate(); err != nil {
		return fmt.Errorf("invalid detail selectors: %w", err)
	}
	return nil
}

// Merge returns p with every non-empty field of override applied.
func (p Profile) Merge(override Profile) Profile {
	if override.ListingLinkSelector != "" {
		p.ListingLinkSelector = override.ListingLinkSelector
	}
	if override.LinkAttr != "" {
		p.LinkAttr = override.LinkAttr
	}
	if override.PaginationSelector != "" {
		p.PaginationSelector = override.PaginationSelector
	}
	if override.Detail.IsGroup() || override.Detail.Selector != "" {
		p.Detail = override.Detail
	}
	return p
}

// PaginationReader returns the token reader for the profile's counter element.
func (p Profile) PaginationReader() pagination.Reader {
	return pagination.TokenReader{Selector: p.PaginationSelector}
}
