package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/jobscan/internal/indeed"
	"github.com/nao1215/jobscan/internal/query"
)

func validOptions() query.Options {
	opts := query.DefaultOptions()
	opts.City = "Austin, TX"
	opts.Level = query.LevelSenior
	return opts
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.Timeout != DefaultTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultTimeout, cfg.Timeout)
	}
	if cfg.MaxConcurrency != DefaultMaxConcurrency {
		t.Errorf("expected concurrency %d, got %d", DefaultMaxConcurrency, cfg.MaxConcurrency)
	}
	if cfg.RequestsPerSecond != DefaultRequestsPerSecond {
		t.Errorf("expected rate %d, got %d", DefaultRequestsPerSecond, cfg.RequestsPerSecond)
	}
	if cfg.MaxPages != DefaultMaxPages {
		t.Errorf("expected max pages %d, got %d", DefaultMaxPages, cfg.MaxPages)
	}
	if cfg.RetryAttempts != DefaultRetryAttempts {
		t.Errorf("expected retries %d, got %d", DefaultRetryAttempts, cfg.RetryAttempts)
	}
	if cfg.RetryDelay != DefaultRetryDelay {
		t.Errorf("expected retry delay %v, got %v", DefaultRetryDelay, cfg.RetryDelay)
	}
	if cfg.BatchSize != DefaultBatchSize {
		t.Errorf("expected batch size %d, got %d", DefaultBatchSize, cfg.BatchSize)
	}
	if cfg.MaxBodySize != DefaultMaxBodySize {
		t.Errorf("expected max body size %d, got %d", DefaultMaxBodySize, cfg.MaxBodySize)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("expected user agent %q, got %q", DefaultUserAgent, cfg.UserAgent)
	}
	if cfg.DBDir != XDGDataDir() {
		t.Errorf("expected db dir %q, got %q", XDGDataDir(), cfg.DBDir)
	}
	if !cfg.SaveToDB {
		t.Error("expected SaveToDB to be enabled by default")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"no search", func(c *Config) { c.Searches = nil }, ErrNoSearch},
		{"invalid search", func(c *Config) { c.Searches[0].Options.City = "" }, query.ErrNoCity},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"zero concurrency", func(c *Config) { c.MaxConcurrency = 0 }, ErrInvalidConcurrency},
		{"zero rate", func(c *Config) { c.RequestsPerSecond = 0 }, ErrInvalidRate},
		{"negative max pages", func(c *Config) { c.MaxPages = -1 }, ErrInvalidMaxPages},
		{"no attempts", func(c *Config) { c.RetryAttempts = 0 }, ErrInvalidRetries},
		{"zero batch", func(c *Config) { c.BatchSize = 0 }, ErrInvalidBatchSize},
		{"both formats", func(c *Config) { c.JSONReport = true; c.MarkdownReport = true }, ErrConflictingReportFormats},
		{"negative body size", func(c *Config) { c.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
		{"zero max pages", func(c *Config) { c.MaxPages = 0 }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			cfg.Searches = []Search{{Name: "test", Options: validOptions()}}
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestSearchSpecApply(t *testing.T) {
	t.Parallel()

	t.Run("unset fields keep base values", func(t *testing.T) {
		t.Parallel()

		base := validOptions()
		got := SearchSpec{}.Apply(base)
		if got.City != base.City || got.Limit != base.Limit || got.MaxAgeDays != base.MaxAgeDays {
			t.Errorf("expected base options, got %+v", got)
		}
		if !got.ExcludeStaffingAgencies {
			t.Error("expected default staffing agency filter to stay on")
		}
	})

	t.Run("set fields override", func(t *testing.T) {
		t.Parallel()

		spec := SearchSpec{
			City:                    ptr("Denver, CO"),
			Level:                   ptr(query.LevelEntry),
			Radius:                  ptr(uint(0)),
			Sort:                    ptr(query.SortDate),
			TitleWords:              []string{"go"},
			ExcludeStaffingAgencies: ptr(false),
		}
		got := spec.Apply(validOptions())

		if got.City != "Denver, CO" {
			t.Errorf("expected city Denver, CO, got %q", got.City)
		}
		if got.Level != query.LevelEntry {
			t.Errorf("expected entry level, got %s", got.Level)
		}
		if got.Radius != 0 {
			t.Errorf("expected radius 0, got %d", got.Radius)
		}
		if got.Sort != query.SortDate {
			t.Errorf("expected date sort, got %s", got.Sort)
		}
		if got.ExcludeStaffingAgencies {
			t.Error("expected staffing agency filter to be turned off")
		}
		if len(got.TitleWords) != 1 || got.TitleWords[0] != "go" {
			t.Errorf("expected title words [go], got %v", got.TitleWords)
		}
	})

	t.Run("word lists are copied", func(t *testing.T) {
		t.Parallel()

		spec := SearchSpec{AnyWords: []string{"go", "rust"}}
		got := spec.Apply(validOptions())
		got.AnyWords[0] = "changed"
		if spec.AnyWords[0] != "go" {
			t.Error("expected spec word list to be unaffected")
		}
	})
}

func TestFileGetSearch(t *testing.T) {
	t.Parallel()

	f := &File{
		Defaults: SearchSpec{
			City:  ptr("Austin, TX"),
			Level: ptr(query.LevelMid),
			Limit: ptr(uint(20)),
		},
		Searches: map[string]SearchSpec{
			"austin-go": {TitleWords: []string{"golang"}},
			"denver":    {City: ptr("Denver, CO"), Level: ptr(query.LevelSenior)},
		},
	}

	t.Run("applies defaults", func(t *testing.T) {
		t.Parallel()

		opts, err := f.GetSearch("austin-go")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if opts.City != "Austin, TX" || opts.Level != query.LevelMid || opts.Limit != 20 {
			t.Errorf("expected defaults applied, got %+v", opts)
		}
		if opts.MaxAgeDays != query.DefaultMaxAgeDays {
			t.Errorf("expected built-in max age %d, got %d", query.DefaultMaxAgeDays, opts.MaxAgeDays)
		}
		if _, err := opts.Finalize(); err != nil {
			t.Errorf("expected options to finalize, got %v", err)
		}
	})

	t.Run("search overrides defaults", func(t *testing.T) {
		t.Parallel()

		opts, err := f.GetSearch("denver")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if opts.City != "Denver, CO" || opts.Level != query.LevelSenior {
			t.Errorf("expected overrides, got %+v", opts)
		}
		if opts.Limit != 20 {
			t.Errorf("expected default limit 20, got %d", opts.Limit)
		}
	})

	t.Run("unknown search", func(t *testing.T) {
		t.Parallel()

		if _, err := f.GetSearch("nope"); !errors.Is(err, ErrSearchNotFound) {
			t.Errorf("expected ErrSearchNotFound, got %v", err)
		}
	})

	t.Run("names are sorted", func(t *testing.T) {
		t.Parallel()

		names := f.SearchNames()
		if len(names) != 2 || names[0] != "austin-go" || names[1] != "denver" {
			t.Errorf("expected [austin-go denver], got %v", names)
		}
	})
}

func TestFileProfile(t *testing.T) {
	t.Parallel()

	t.Run("nil file uses default profile", func(t *testing.T) {
		t.Parallel()

		var f *File
		if got := f.Profile(); got.ListingLinkSelector != indeed.DefaultProfile().ListingLinkSelector {
			t.Errorf("expected default link selector, got %q", got.ListingLinkSelector)
		}
	})

	t.Run("selectors override", func(t *testing.T) {
		t.Parallel()

		f := &File{Selectors: &indeed.Profile{ListingLinkSelector: "a.job-link"}}
		got := f.Profile()
		if got.ListingLinkSelector != "a.job-link" {
			t.Errorf("expected overridden link selector, got %q", got.ListingLinkSelector)
		}
		if got.PaginationSelector != indeed.DefaultProfile().PaginationSelector {
			t.Errorf("expected default pagination selector, got %q", got.PaginationSelector)
		}
	})
}

func TestLoadSearchFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadSearchFile("/nonexistent/path/.jobscan")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil file when not found")
		}
	})

	t.Run("loads valid YAML", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultSearchFile)
		content := `defaults:
  city: "Austin, TX"
  level: senior
  job_type: contract
  exclude_staffing_agencies: false
searches:
  go-remote:
    title_words: [golang]
    any_words: [remote, hybrid]
    sort: date
    radius: 0
    show_jobs_from: employer
cookie: "CTK=abc"
headers:
  Accept-Language: en-US
selectors:
  listing_link_selector: "a.tapItem"
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}

		f, err := LoadSearchFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Cookie != "CTK=abc" {
			t.Errorf("expected cookie, got %q", f.Cookie)
		}
		if f.Headers["Accept-Language"] != "en-US" {
			t.Errorf("expected Accept-Language header, got %v", f.Headers)
		}
		if f.Profile().ListingLinkSelector != "a.tapItem" {
			t.Errorf("expected selector override, got %q", f.Profile().ListingLinkSelector)
		}

		opts, err := f.GetSearch("go-remote")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if opts.Level != query.LevelSenior {
			t.Errorf("expected senior level, got %s", opts.Level)
		}
		if opts.JobType != query.JobTypeContract {
			t.Errorf("expected contract, got %s", opts.JobType)
		}
		if opts.Sort != query.SortDate {
			t.Errorf("expected date sort, got %s", opts.Sort)
		}
		if opts.ShowJobsFrom != query.ShowEmployers {
			t.Errorf("expected employer listings, got %s", opts.ShowJobsFrom)
		}
		if opts.ExcludeStaffingAgencies {
			t.Error("expected staffing agency filter off")
		}
		if len(opts.AnyWords) != 2 {
			t.Errorf("expected 2 any words, got %v", opts.AnyWords)
		}
	})

	t.Run("rejects unknown enum values", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultSearchFile)
		content := `searches:
  bad:
    level: wizard
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}
		if _, err := LoadSearchFile(path); err == nil {
			t.Error("expected error for unknown level")
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultSearchFile)
		if err := os.WriteFile(path, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}
		if _, err := LoadSearchFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("rejects invalid selectors", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultSearchFile)
		content := `selectors:
  detail:
    name: job
    children:
      - name: title
        selector: "[["
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}
		if _, err := LoadSearchFile(path); err == nil {
			t.Error("expected error for invalid selector")
		}
	})

	t.Run("initializes nil Searches map", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultSearchFile)
		if err := os.WriteFile(path, []byte("cookie: x=1\n"), 0600); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}
		f, err := LoadSearchFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Searches == nil {
			t.Error("expected Searches map to be initialized")
		}
	})
}

func TestFindSearchFile(t *testing.T) {
	t.Run("returns explicit path if exists", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("searches: {}"), 0600); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}
		if got := FindSearchFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		if got := FindSearchFile("/nonexistent/path/config.yaml"); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})

	t.Run("finds file in current directory", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, DefaultSearchFile), []byte("searches: {}"), 0600); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}
		t.Chdir(dir)

		got := FindSearchFile("")
		if filepath.Base(got) != DefaultSearchFile {
			t.Errorf("expected %s in current directory, got %q", DefaultSearchFile, got)
		}
	})
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if XDGDataDir() == "" {
		t.Error("expected non-empty XDG data dir")
	}
	if filepath.Base(XDGConfigDir()) != AppName {
		t.Errorf("expected config dir to end in %s, got %q", AppName, XDGConfigDir())
	}
}

func TestDefaultTimeout(t *testing.T) {
	t.Parallel()

	if DefaultTimeout != 30*time.Second {
		t.Errorf("expected 30s default timeout, got %v", DefaultTimeout)
	}
}
