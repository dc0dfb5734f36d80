package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultSearchFile is the search file name looked up in the current and
// home directories.
const DefaultSearchFile = ".jobscan"

// ErrConfigNotFound is returned when the search file does not exist.
var ErrConfigNotFound = errors.New("search file not found")

// LoadSearchFile loads a search file. A missing file yields ErrConfigNotFound.
func LoadSearchFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if f.Searches == nil {
		f.Searches = make(map[string]SearchSpec)
	}
	if f.Selectors != nil {
		if err := f.Profile().Validate(); err != nil {
			return nil, fmt.Errorf("failed to load selectors from %s: %w", path, err)
		}
	}
	return &f, nil
}

// FindSearchFile returns the search file to use:
//  1. configPath, if given and present
//  2. .jobscan in the current directory
//  3. .jobscan in the home directory
//
// It returns "" when none exists.
func FindSearchFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultSearchFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, DefaultSearchFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
