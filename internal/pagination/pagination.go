// Package pagination reads "page N of M" information from listing pages.
package pagination

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nao1215/jobscan/internal/extract"
)

// DefaultSelector is where Indeed renders the page counter.
const DefaultSelector = "#searchCountPages"

var (
	// ErrElementMissing is returned when the counter element is not in the page.
	ErrElementMissing = errors.New("pagination element not found")

	// ErrPatternMismatch is returned when the counter text has an unexpected shape.
	ErrPatternMismatch = errors.New("pagination text does not match the expected layout")
)

// PageInfo is the current page and the total page count, both 1-based.
type PageInfo struct {
	Current uint
	Total   uint
}

// Reader extracts PageInfo from a listing document.
type Reader interface {
	ReadPageInfo(doc *extract.Document) (PageInfo, error)
}

// ParseError reports why the counter could not be read.
type ParseError struct {
	Selector string
	Text     string
	Reason   string
	Err      error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("pagination %s: %s", e.Selector, e.Reason)
	}
	return fmt.Sprintf("pagination %s: %s (text %q)", e.Selector, e.Reason, e.Text)
}

// Unwrap returns the sentinel error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// TokenReader splits the counter text on spaces and reads the current page
// from the fourth token from the end and the total from the second token from
// the end, as in "Page 2 of 12 jobs".
type TokenReader struct {
	Selector string
}

// NewTokenReader returns a TokenReader on DefaultSelector.
func NewTokenReader() TokenReader {
	return TokenReader{Selector: DefaultSelector}
}

// ReadPageInfo implements Reader.
func (r TokenReader) ReadPageInfo(doc *extract.Document) (PageInfo, error) {
	selector := r.Selector
	if selector == "" {
		selector = DefaultSelector
	}
	text, ok := doc.Text(selector)
	if !ok {
		return PageInfo{}, &ParseError{Selector: selector, Reason: "element missing", Err: ErrElementMissing}
	}

	tokens := strings.Split(text, " ")
	if len(tokens) < 4 {
		return PageInfo{}, mismatch(selector, text, "too few tokens")
	}
	current, err := parseCount(tokens[len(tokens)-4])
	if err != nil {
		return PageInfo{}, mismatch(selector, text, "current page is not a number")
	}
	total, err := parseCount(tokens[len(tokens)-2])
	if err != nil {
		return PageInfo{}, mismatch(selector, text, "total is not a number")
	}
	return checked(selector, text, current, total)
}

// PatternReader matches the counter text against a regular expression with
// two capture groups: current page, then total.
type PatternReader struct {
	Selector string
	Pattern  *regexp.Regexp
}

// defaultPattern accepts "Page 2 of 12", "Page 2 of 1,234 jobs" and similar.
var defaultPattern = regexp.MustCompile(`(?i)page\s+([\d,]+)\s+of\s+([\d,]+)`)

// NewPatternReader returns a PatternReader on DefaultSelector.
func NewPatternReader() PatternReader {
	return PatternReader{Selector: DefaultSelector, Pattern: defaultPattern}
}

// ReadPageInfo implements Reader.
func (r PatternReader) ReadPageInfo(doc *extract.Document) (PageInfo, error) {
	selector := r.Selector
	if selector == "" {
		selector = DefaultSelector
	}
	pattern := r.Pattern
	if pattern == nil {
		pattern = defaultPattern
	}

	text, ok := doc.Text(selector)
	if !ok {
		return PageInfo{}, &ParseError{Selector: selector, Reason: "element missing", Err: ErrElementMissing}
	}
	m := pattern.FindStringSubmatch(text)
	if len(m) < 3 {
		return PageInfo{}, mismatch(selector, text, "pattern did not match")
	}
	current, err := parseCount(m[1])
	if err != nil {
		return PageInfo{}, mismatch(selector, text, "current page is not a number")
	}
	total, err := parseCount(m[2])
	if err != nil {
		return PageInfo{}, mismatch(selector, text, "total is not a number")
	}
	return checked(selector, text, current, total)
}

func checked(selector, text string, current, total uint) (PageInfo, error) {
	if total == 0 || current == 0 {
		return PageInfo{}, mismatch(selector, text, "page numbers must be positive")
	}
	if current > total {
		return PageInfo{}, mismatch(selector, text, "current page exceeds total")
	}
	return PageInfo{Current: current, Total: total}, nil
}

func mismatch(selector, text, reason string) *ParseError {
	return &ParseError{Selector: selector, Text: text, Reason: reason, Err: ErrPatternMismatch}
}

func parseCount(s string) (uint, error) {
	n, err := strconv.ParseUint(strings.ReplaceAll(s, ",", ""), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(n), nil
}
