package fetcher

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidProxyAddress is returned when a proxy address is not host:port.
var ErrInvalidProxyAddress = errors.New("invalid proxy address: expected host:port")

// ErrEmptyURL is returned when Fetch is called without a URL.
var ErrEmptyURL = errors.New("url is empty")

// Kind classifies a fetch failure.
type Kind int

const (
	// KindNetwork is a transport-level failure: DNS, connect, TLS, timeout.
	KindNetwork Kind = iota
	// KindHTTPStatus is a non-2xx response.
	KindHTTPStatus
	// KindTerminal is a retryable failure that outlasted the retry budget.
	KindTerminal
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTPStatus:
		return "http_status"
	case KindTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// FetchError describes a failed fetch.
type FetchError struct {
	Kind       Kind
	URL        string
	StatusCode int
	Attempts   int
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("fetch %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	case KindTerminal:
		return fmt.Sprintf("fetch %s: giving up after %d attempts: %v", e.URL, e.Attempts, e.Err)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt could succeed.
func (e *FetchError) Retryable() bool {
	switch e.Kind {
	case KindNetwork:
		return true
	case KindHTTPStatus:
		return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
	default:
		return false
	}
}

// IsTerminal reports whether err is a FetchError that exhausted its retries.
func IsTerminal(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == KindTerminal
}
