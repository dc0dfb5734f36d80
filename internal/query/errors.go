package query

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCity is returned when a search has no city.
	ErrNoCity = errors.New("city is required")

	// ErrInvalidLevel is returned for an unknown or missing experience level.
	ErrInvalidLevel = errors.New("invalid experience level")

	// ErrInvalidSort is returned for an unknown sort order.
	ErrInvalidSort = errors.New("invalid sort order")

	// ErrInvalidJobType is returned for an unknown job type.
	ErrInvalidJobType = errors.New("invalid job type")

	// ErrInvalidShowJobsFrom is returned for an unknown source filter.
	ErrInvalidShowJobsFrom = errors.New("invalid show-jobs-from filter")

	// ErrInvalidLimit is returned when the page size is zero.
	ErrInvalidLimit = errors.New("limit must be greater than 0")

	// ErrMisalignedStart is returned when start is not a multiple of limit.
	ErrMisalignedStart = errors.New("start must be a multiple of limit")
)

// EncodeError is returned when a query cannot be rendered as a URL.
// It only happens when the base URL is malformed.
type EncodeError struct {
	BaseURL string
	Err     error
}

// Error implements the error interface.
func (e *EncodeError) Error() string {
	return fmt.Sprintf("failed to encode query for base URL %q: %v", e.BaseURL, e.Err)
}

// Unwrap returns the underlying error.
func (e *EncodeError) Unwrap() error {
	return e.Err
}
