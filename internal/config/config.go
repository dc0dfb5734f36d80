package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/jobscan/internal/query"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "jobscan"

	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxConcurrency is the number of detail pages fetched at once.
	DefaultMaxConcurrency = 5

	// DefaultRequestsPerSecond is the per-host request budget. Indeed starts
	// answering 429 well before ten requests a second.
	DefaultRequestsPerSecond = 3

	// DefaultMaxPages caps the listing pages crawled per search.
	DefaultMaxPages = 100

	// DefaultRetryAttempts is the number of attempts per URL, first included.
	DefaultRetryAttempts = 3

	// DefaultRetryDelay is the backoff before the second attempt.
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultBatchSize is the number of named searches run at once.
	DefaultBatchSize = 2

	// DefaultMaxBodySize limits the response body read per page.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultUserAgent identifies jobscan in HTTP requests.
	DefaultUserAgent = "jobscan/1.0 (+https://github.com/nao1215/jobscan)"
)

// Search is one search to run.
type Search struct {
	// Name is the search file key, or "adhoc" for flag-built searches.
	Name string

	Options query.Options
}

// Config holds every option of a jobscan run.
type Config struct {
	// Searches are the searches to run, in order.
	Searches []Search

	// SearchFile is the loaded search file, nil when none was found.
	SearchFile *File

	// SearchFilePath is the explicit search file path from --config.
	SearchFilePath string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// MaxConcurrency bounds concurrent detail page fetches per search.
	MaxConcurrency int

	// RequestsPerSecond is the per-host request budget shared by all searches.
	RequestsPerSecond int

	// MaxPages caps listing pages per search. 0 means no cap.
	MaxPages int

	// RetryAttempts is the number of attempts per URL.
	RetryAttempts int

	// RetryDelay is the initial backoff between attempts.
	RetryDelay time.Duration

	// BatchSize is the number of searches run concurrently.
	BatchSize int

	// MaxBodySize is the response body limit in bytes. 0 uses the default.
	MaxBodySize int64

	// UserAgent is sent with every request.
	UserAgent string

	// ProxyAddress is an optional SOCKS5 proxy in host:port form.
	ProxyAddress string

	// SinglePageFallback treats a missing page counter as a one-page result
	// instead of failing the search.
	SinglePageFallback bool

	// Verbose enables debug logging.
	Verbose bool

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output.
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// DBDir is the directory holding the SQLite database.
	DBDir string

	// SaveToDB stores runs and jobs in the database.
	SaveToDB bool
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:           DefaultTimeout,
		MaxConcurrency:    DefaultMaxConcurrency,
		RequestsPerSecond: DefaultRequestsPerSecond,
		MaxPages:          DefaultMaxPages,
		RetryAttempts:     DefaultRetryAttempts,
		RetryDelay:        DefaultRetryDelay,
		BatchSize:         DefaultBatchSize,
		MaxBodySize:       DefaultMaxBodySize,
		UserAgent:         DefaultUserAgent,
		DBDir:             XDGDataDir(),
		SaveToDB:          true,
	}
}

// XDGDataDir returns the XDG data directory for jobscan.
// On Linux: ~/.local/share/jobscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for jobscan.
// On Linux: ~/.config/jobscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate returns the first problem found in the configuration.
func (c *Config) Validate() error {
	if len(c.Searches) == 0 {
		return ErrNoSearch
	}
	for _, s := range c.Searches {
		if err := s.Options.Validate(); err != nil {
			return fmt.Errorf("search %q: %w", s.Name, err)
		}
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxConcurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.RequestsPerSecond <= 0 {
		return ErrInvalidRate
	}
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	if c.RetryAttempts < 1 {
		return ErrInvalidRetries
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}
