package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/jobscan/internal/config"
	"github.com/nao1215/jobscan/internal/query"
)

const testSearchFile = `defaults:
  level: senior_level
  max_age_days: 7
searches:
  austin-go:
    city: "Austin, TX"
    title_words: [golang]
  remote-rust:
    city: "Remote"
    level: mid
    any_words: [rust, tokio]
`

func writeSearchFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".jobscan")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func executeURL(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"url"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestURLCmd(t *testing.T) {
	t.Parallel()

	path := writeSearchFile(t, testSearchFile)

	t.Run("named search", func(t *testing.T) {
		t.Parallel()
		out, err := executeURL(t, "-c", path, "austin-go")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		line := strings.TrimSpace(out)
		if !strings.HasPrefix(line, query.DefaultBaseURL+"?") {
			t.Errorf("expected a search URL, got %q", line)
		}
		for _, want := range []string{"as_ttl=golang", "l=Austin%2C+TX", "fromage=7"} {
			if !strings.Contains(line, want) {
				t.Errorf("expected URL to contain %q, got %q", want, line)
			}
		}
	})

	t.Run("every search is prefixed with its name", func(t *testing.T) {
		t.Parallel()
		out, err := executeURL(t, "-c", path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(out), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected 2 lines, got %d: %q", len(lines), out)
		}
		if !strings.HasPrefix(lines[0], "austin-go\t") || !strings.HasPrefix(lines[1], "remote-rust\t") {
			t.Errorf("expected sorted name prefixes, got %q", lines)
		}
		if !strings.Contains(lines[1], "as_any=rust+tokio") {
			t.Errorf("expected any words in %q", lines[1])
		}
	})

	t.Run("ad-hoc search applies file defaults", func(t *testing.T) {
		t.Parallel()
		out, err := executeURL(t, "-c", path, "--city", "Denver, CO", "--all", "go,grpc", "--sort", "date", "--include-staffing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"as_and=go+grpc", "l=Denver%2C+CO", "sort=date", "sr=&", "fromage=7"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected URL to contain %q, got %q", want, out)
			}
		}
	})

	t.Run("ad-hoc search without level fails", func(t *testing.T) {
		t.Parallel()
		_, err := executeURL(t, "-c", writeSearchFile(t, "searches: {}\n"), "--city", "Austin")
		if !errors.Is(err, query.ErrInvalidLevel) {
			t.Errorf("expected ErrInvalidLevel, got %v", err)
		}
	})

	t.Run("names cannot be combined with --city", func(t *testing.T) {
		t.Parallel()
		if _, err := executeURL(t, "-c", path, "--city", "Austin", "austin-go"); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("unknown search", func(t *testing.T) {
		t.Parallel()
		_, err := executeURL(t, "-c", path, "missing")
		if !errors.Is(err, config.ErrSearchNotFound) {
			t.Errorf("expected ErrSearchNotFound, got %v", err)
		}
	})

	t.Run("explicit missing search file", func(t *testing.T) {
		t.Parallel()
		_, err := executeURL(t, "-c", filepath.Join(t.TempDir(), "absent.yaml"), "austin-go")
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid level flag", func(t *testing.T) {
		t.Parallel()
		_, err := executeURL(t, "-c", path, "--city", "Austin", "--level", "guru")
		if !errors.Is(err, query.ErrInvalidLevel) {
			t.Errorf("expected ErrInvalidLevel, got %v", err)
		}
	})
}
