package fs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// defaultIgnorePatterns are always applied. They cover the temp files
// WriteFileAtomic leaves behind if a restore is interrupted.
var defaultIgnorePatterns = []string{tempFilePrefix + "*"}

// ignorePattern is a parsed ignore pattern with its matching strategy.
type ignorePattern struct {
	pattern  string
	segments int  // number of path components the pattern spans
	anchored bool // pattern starts with '/' and must match the whole path
}

// IgnoreMatcher checks absolute file paths against a set of ignore patterns.
//
// Patterns without '/' match any single component of the path, so "*.log"
// ignores every log file and ".git" ignores everything below a .git directory.
// Patterns with '/' match the trailing components of the path ("build/*.o"
// ignores /src/app/build/main.o). A leading '/' anchors the pattern to the
// whole path.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher creates an IgnoreMatcher from raw pattern strings plus the defaults.
// Blank lines and lines starting with '#' are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	var patterns []ignorePattern
	all := append(slices.Clone(defaultIgnorePatterns), rawPatterns...)
	for _, raw := range all {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		raw = filepath.ToSlash(raw)
		anchored := strings.HasPrefix(raw, "/")
		trimmed := strings.Trim(raw, "/")
		if trimmed == "" {
			continue
		}
		patterns = append(patterns, ignorePattern{
			pattern:  raw,
			segments: strings.Count(trimmed, "/") + 1,
			anchored: anchored,
		})
	}
	return &IgnoreMatcher{patterns: patterns}
}

// Match reports whether the given path should be ignored.
func (m *IgnoreMatcher) Match(path string) bool {
	if path == "" || len(m.patterns) == 0 {
		return false
	}

	normalized := filepath.ToSlash(filepath.Clean(path))
	components := strings.Split(strings.Trim(normalized, "/"), "/")

	for _, p := range m.patterns {
		if p.matches(normalized, components) {
			return true
		}
	}
	return false
}

func (p ignorePattern) matches(normalized string, components []string) bool {
	if p.anchored {
		ok, err := filepath.Match(p.pattern, normalized)
		return err == nil && ok
	}

	if p.segments == 1 {
		for _, c := range components {
			if ok, err := filepath.Match(p.pattern, c); err == nil && ok {
				return true
			}
		}
		return false
	}

	if len(components) < p.segments {
		return false
	}
	tail := strings.Join(components[len(components)-p.segments:], "/")
	ok, err := filepath.Match(p.pattern, tail)
	return err == nil && ok
}

// ParseIgnoreFile reads an ignore file and returns the raw pattern strings.
// Returns nil and no error if the file does not exist.
func ParseIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return patterns, nil
}
