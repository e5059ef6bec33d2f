package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Discover loads every scenario file under dir, recursively. Files
// matching **/*.yaml and **/*.yml are parsed and validated; the result
// is ordered by file path so runs are deterministic.
func Discover(dir string) ([]Scenario, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("accessing scenario dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scenario path must be a directory: %s", dir)
	}

	pattern := filepath.Join(dir, "**", "*.{yaml,yml}")
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("globbing scenarios: %w", err)
	}
	sort.Strings(matches)

	scenarios := make([]Scenario, 0, len(matches))
	for _, path := range matches {
		s, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, *s)
	}

	return scenarios, nil
}

// ParseFile loads and validates a single scenario file.
func ParseFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates scenario YAML.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
