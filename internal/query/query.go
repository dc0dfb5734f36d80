package query

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// Query is a validated, immutable search.
// Build one with Options.Finalize.
type Query struct {
	opts Options
}

// Options returns a copy of the options the query was built from.
func (q Query) Options() Options { return q.opts.clone() }

// City returns the location filter.
func (q Query) City() string { return q.opts.City }

// Level returns the experience level.
func (q Query) Level() Level { return q.opts.Level }

// Limit returns the page size.
func (q Query) Limit() uint { return q.opts.Limit }

// Start returns the result offset.
func (q Query) Start() uint { return q.opts.Start }

// TitleWords returns a copy of the title keywords.
func (q Query) TitleWords() []string { return cloneWords(q.opts.TitleWords) }

// AnyWords returns a copy of the "any of these words" keywords.
func (q Query) AnyWords() []string { return cloneWords(q.opts.AnyWords) }

// ExcludeWords returns a copy of the excluded keywords.
func (q Query) ExcludeWords() []string { return cloneWords(q.opts.ExcludeWords) }

// AllWords returns a copy of the "all of these words" keywords.
func (q Query) AllWords() []string { return cloneWords(q.opts.AllWords) }

// Page returns the 1-based listing page number the query points at.
func (q Query) Page() uint {
	if q.opts.Limit == 0 {
		return 1
	}
	return q.opts.Start/q.opts.Limit + 1
}

// Advance returns the query for the next listing page.
// The receiver is not modified.
func (q Query) Advance() Query {
	next := q.opts.clone()
	next.Start += next.Limit
	return Query{opts: next}
}

// AtPage returns the query for the given 1-based listing page.
// Page 0 is treated as page 1.
func (q Query) AtPage(page uint) Query {
	if page == 0 {
		page = 1
	}
	next := q.opts.clone()
	next.Start = (page - 1) * next.Limit
	return Query{opts: next}
}

// Encode renders the query as a search URL.
// Parameters are written in a fixed order; start is only written after the
// first page.
func (q Query) Encode() (*url.URL, error) {
	base, err := url.Parse(q.opts.BaseURL)
	if err != nil {
		return nil, &EncodeError{BaseURL: q.opts.BaseURL, Err: err}
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, &EncodeError{BaseURL: q.opts.BaseURL, Err: errors.New("scheme must be http or https")}
	}
	if base.Host == "" {
		return nil, &EncodeError{BaseURL: q.opts.BaseURL, Err: errors.New("missing host")}
	}

	u := *base
	u.RawQuery = q.rawQuery()
	u.Fragment = ""
	return &u, nil
}

// URL returns the encoded search URL, or an empty string when the base URL
// is malformed.
func (q Query) URL() string {
	u, err := q.Encode()
	if err != nil {
		return ""
	}
	return u.String()
}

// String implements fmt.Stringer.
func (q Query) String() string {
	return q.URL()
}

func (q Query) rawQuery() string {
	o := q.opts
	directHire := ""
	if o.ExcludeStaffingAgencies {
		directHire = "directhire"
	}

	params := [][2]string{
		{"as_and", strings.Join(o.AllWords, " ")},
		{"as_phr", o.ExactPhrase},
		{"as_any", strings.Join(o.AnyWords, " ")},
		{"as_not", strings.Join(o.ExcludeWords, " ")},
		{"as_ttl", strings.Join(o.TitleWords, " ")},
		{"as_cmp", o.Company},
		{"jt", o.JobType.String()},
		{"st", o.ShowJobsFrom.String()},
		{"sr", directHire},
		{"salary", strconv.FormatUint(uint64(o.MinSalary), 10)},
		{"radius", strconv.FormatUint(uint64(o.Radius), 10)},
		{"l", o.City},
		{"fromage", strconv.FormatUint(uint64(o.MaxAgeDays), 10)},
		{"limit", strconv.FormatUint(uint64(o.Limit), 10)},
		{"sort", o.Sort.String()},
		{"psf", "advsrch"},
		{"from", "advancedsearch"},
	}
	if o.Start > 0 {
		params = append(params, [2]string{"start", strconv.FormatUint(uint64(o.Start), 10)})
	}

	var sb strings.Builder
	for i, p := range params {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(p[0])
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p[1]))
	}
	return sb.String()
}
