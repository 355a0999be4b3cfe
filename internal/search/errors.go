package search

import (
	"errors"
	"fmt"
)

var (
	// ErrRootUnreadable matches any error caused by a search root that does
	// not exist, is not a directory, or cannot be listed.
	ErrRootUnreadable = errors.New("search root unreadable")

	// ErrInvalidPattern matches any error caused by a malformed include or
	// exclude pattern.
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrNotDir is the cause recorded when the root is not a directory.
	ErrNotDir = errors.New("not a directory")
)

// RootError is returned when the search root itself cannot be read.
// It unwraps to the underlying cause, so errors.Is(err, fs.ErrNotExist)
// and errors.Is(err, fs.ErrPermission) work as expected.
type RootError struct {
	Root string
	Err  error
}

func (e *RootError) Error() string {
	return fmt.Sprintf("read root %s: %v", e.Root, e.Err)
}

func (e *RootError) Unwrap() error { return e.Err }

func (e *RootError) Is(target error) bool { return target == ErrRootUnreadable }

// PatternError is returned for a malformed pattern, before any traversal.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

func (e *PatternError) Is(target error) bool { return target == ErrInvalidPattern }

// Skip records a descendant that could not be read. The search carries on
// with the entry's siblings.
type Skip struct {
	Path string // absolute path of the entry
	Rel  string // path relative to the root
	Err  error
}

func (s Skip) String() string {
	return fmt.Sprintf("%s: %v", s.Path, s.Err)
}
