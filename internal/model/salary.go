package model

import (
	"regexp"
	"strconv"
	"strings"
)

// HoursPerYear converts hourly pay into annual pay: 40 hours over 52 weeks.
const HoursPerYear = 2080

// SalaryKind tells which shape of salary a posting carries.
type SalaryKind int

const (
	// SalaryUnspecified means the posting shows no usable salary.
	SalaryUnspecified SalaryKind = iota
	// SalaryAnnualFixed is a single yearly amount.
	SalaryAnnualFixed
	// SalaryAnnualRange is a yearly minimum and maximum.
	SalaryAnnualRange
	// SalaryHourlyFixed is a single hourly rate.
	SalaryHourlyFixed
	// SalaryHourlyRange is an hourly minimum and maximum.
	SalaryHourlyRange
)

// String returns the name stored in reports and the database.
func (k SalaryKind) String() string {
	switch k {
	case SalaryAnnualFixed:
		return "annual_fixed"
	case SalaryAnnualRange:
		return "annual_range"
	case SalaryHourlyFixed:
		return "hourly_fixed"
	case SalaryHourlyRange:
		return "hourly_range"
	default:
		return "unspecified"
	}
}

// ParseSalaryKind is the inverse of SalaryKind.String.
// Unknown names map to SalaryUnspecified.
func ParseSalaryKind(s string) SalaryKind {
	switch s {
	case "annual_fixed":
		return SalaryAnnualFixed
	case "annual_range":
		return SalaryAnnualRange
	case "hourly_fixed":
		return SalaryHourlyFixed
	case "hourly_range":
		return SalaryHourlyRange
	default:
		return SalaryUnspecified
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k SalaryKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *SalaryKind) UnmarshalText(text []byte) error {
	*k = ParseSalaryKind(string(text))
	return nil
}

// Salary is the pay of a job. Min and Max are equal for fixed kinds and zero
// for SalaryUnspecified.
type Salary struct {
	Kind SalaryKind `json:"kind"`
	Min  float64    `json:"min,omitempty"`
	Max  float64    `json:"max,omitempty"`
}

// Specified reports whether the salary carries an amount.
func (s Salary) Specified() bool {
	return s.Kind != SalaryUnspecified
}

// Annualized returns the yearly equivalent of the salary. Ranges use their
// midpoint and hourly rates are multiplied by HoursPerYear.
func (s Salary) Annualized() (float64, bool) {
	switch s.Kind {
	case SalaryAnnualFixed:
		return s.Min, true
	case SalaryAnnualRange:
		return (s.Min + s.Max) / 2, true
	case SalaryHourlyFixed:
		return s.Min * HoursPerYear, true
	case SalaryHourlyRange:
		return (s.Min + s.Max) / 2 * HoursPerYear, true
	default:
		return 0, false
	}
}

// AnnualPtr returns Annualized as a pointer, nil when unspecified.
func (s Salary) AnnualPtr() *float64 {
	v, ok := s.Annualized()
	if !ok {
		return nil
	}
	return &v
}

// salaryPattern matches an amount, or a range of two amounts, directly
// followed by its pay period, as in "$20 - $25.50 an hour".
var salaryPattern = regexp.MustCompile(
	`(?i)(\$?\s*[\d,]+(?:\.\d+)?)\s*(k)?` +
		`(?:\s*(?:-|\x{2013}|to)\s*(\$?\s*[\d,]+(?:\.\d+)?)\s*(k)?)?` +
		`\s+(?:an?|per)\s+(year|yr|hour|hr|month|week|day)\b`)

// periodFactor converts a non-hourly period into a yearly multiplier.
var periodFactor = map[string]float64{
	"year":  1,
	"yr":    1,
	"month": 12,
	"week":  52,
	"day":   260,
}

// ParseSalary reads salary text such as "$85,000 - $100,000 a year" or
// "$25 an hour". Only amounts next to the pay period count, and a dollar
// amount wins over a bare number elsewhere in the text. Monthly, weekly and
// daily amounts are converted to yearly amounts. Text it cannot read yields
// an unspecified salary.
func ParseSalary(text string) Salary {
	text = strings.TrimSpace(text)
	if text == "" {
		return Salary{}
	}

	matches := salaryPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return Salary{}
	}
	m := matches[0]
	for _, candidate := range matches {
		if strings.Contains(candidate[0], "$") {
			m = candidate
			break
		}
	}

	lo, ok := parseAmount(m[1], m[2])
	if !ok {
		return Salary{}
	}
	hi := lo
	if m[3] != "" {
		if v, ok := parseAmount(m[3], m[4]); ok {
			hi = v
		}
	}
	if hi < lo {
		lo, hi = hi, lo
	}

	unit := strings.ToLower(m[5])
	if unit == "hour" || unit == "hr" {
		if lo == hi {
			return Salary{Kind: SalaryHourlyFixed, Min: lo, Max: lo}
		}
		return Salary{Kind: SalaryHourlyRange, Min: lo, Max: hi}
	}

	f := periodFactor[unit]
	lo, hi = lo*f, hi*f
	if lo == hi {
		return Salary{Kind: SalaryAnnualFixed, Min: lo, Max: lo}
	}
	return Salary{Kind: SalaryAnnualRange, Min: lo, Max: hi}
}

// parseAmount reads "$85,000" or "90" with an optional thousands suffix.
func parseAmount(raw, thousands string) (float64, bool) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "$"))
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil || v == 0 {
		return 0, false
	}
	if thousands != "" {
		v *= 1000
	}
	return v, true
}
