package config

import "errors"

// Validation errors returned by Config.Validate.
var (
	// ErrNoSearch is returned when neither a named search nor ad-hoc flags
	// describe something to search for.
	ErrNoSearch = errors.New("no search specified: name a search from the search file or pass --city and --level")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when detail fan-out is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidRate is returned when the per-host request rate is not positive.
	ErrInvalidRate = errors.New("invalid rate: requests per second must be positive")

	// ErrInvalidRetries is returned when the attempt count is below one.
	ErrInvalidRetries = errors.New("invalid retries: at least one attempt is required")

	// ErrInvalidMaxPages is returned when the page cap is negative.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrSearchNotFound is returned when a named search is not in the search file.
	ErrSearchNotFound = errors.New("search not found in search file")
)
