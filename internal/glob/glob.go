// Package glob is the pattern-matching layer used by globfind.
//
// Patterns use doublestar syntax: * matches within a segment, ** matches any
// number of segments (including zero), ? matches one character, and
// [...] / {a,b} work as in a shell. Hidden entries are never special-cased,
// so *, ** and ? all match dot-prefixed names.
package glob

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrBadPattern is returned for malformed patterns.
var ErrBadPattern = doublestar.ErrBadPattern

// PatternError reports a malformed pattern.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// Normalize converts a candidate path to the form patterns are tested
// against: the platform separator becomes "/", and trailing separators are
// dropped. On systems where "/" is the separator, a backslash is an ordinary
// filename character and is left alone.
func Normalize(path string) string {
	return strings.TrimRight(filepath.ToSlash(path), "/")
}

// Match reports whether path matches pattern.
// A trailing separator on path does not change the outcome.
func Match(pattern, path string) (bool, error) {
	path = Normalize(path)
	if path == "" {
		return false, nil
	}

	matched, err := doublestar.Match(pattern, path)
	if err != nil {
		return false, &PatternError{Pattern: pattern, Err: err}
	}
	return matched, nil
}

// MatchAny reports whether path matches any of the given patterns.
func MatchAny(path string, patterns []string) (bool, error) {
	for _, p := range patterns {
		matched, err := Match(p, path)
		if err != nil {
			return false, err
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

// Validate checks every pattern up front. doublestar only notices some
// syntax errors once matching reaches them, so callers that want a
// malformed pattern reported before any I/O should call this first.
func Validate(patterns ...string) error {
	for _, p := range patterns {
		if p == "" {
			return &PatternError{Pattern: p, Err: errors.New("empty pattern")}
		}
		if !doublestar.ValidatePattern(p) {
			return &PatternError{Pattern: p, Err: ErrBadPattern}
		}
	}
	return nil
}
