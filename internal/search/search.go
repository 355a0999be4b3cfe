// Package search walks a directory tree and collects the entries whose
// root-relative paths match a glob, pruning any entry that matches an
// exclusion glob.
//
// The walk is depth-first and pre-order: a directory is tested before its
// children are listed. For every entry the searcher checks, in order:
//
//  1. exclude: a match prunes the entry, so it is neither reported nor descended
//  2. include: a match appends the entry's path to the results
//  3. descend: directories that were not excluded are listed next
//
// Failing to read the root is fatal. Failing to read anything below it is
// recorded as a Skip and the walk continues.
package search

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/afero"

	"github.com/justrnr500/globfind/internal/glob"
)

// Query describes one search.
type Query struct {
	Root     string
	Pattern  string
	Excludes []string

	// Gitignore prunes .git and anything ignored by a .gitignore in the
	// root or in any directory walked through.
	Gitignore bool
}

// Stats counts what a search touched.
type Stats struct {
	Visited    int // entries tested against the patterns
	Excluded   int // entries pruned by an exclude or gitignore rule
	DirsListed int // directories successfully listed, root included
	Duration   time.Duration
}

// Result is the outcome of a search.
type Result struct {
	Root    string   // absolute, cleaned root
	Matches []string // root-joined paths in discovery order
	Skipped []Skip
	Stats   Stats
}

// Searcher runs searches against a filesystem. A Searcher holds no per-search
// state and may be shared between goroutines.
type Searcher struct {
	fs     afero.Fs
	logger log.Logger
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithFs sets the filesystem searched. Defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(s *Searcher) { s.fs = fs }
}

// WithLogger sets the logger used for skipped entries and progress.
func WithLogger(l log.Logger) Option {
	return func(s *Searcher) { s.logger = l }
}

// New creates a Searcher.
func New(opts ...Option) *Searcher {
	s := &Searcher{
		fs:     afero.NewOsFs(),
		logger: log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search runs a search on the OS filesystem and returns the matched paths.
func Search(root, pattern string, excludes ...string) ([]string, error) {
	res, err := New().Run(context.Background(), Query{
		Root:     root,
		Pattern:  pattern,
		Excludes: excludes,
	})
	if err != nil {
		return nil, err
	}
	return res.Matches, nil
}

// Run executes q. On cancellation it returns the partial result together
// with ctx.Err().
func (s *Searcher) Run(ctx context.Context, q Query) (*Result, error) {
	start := time.Now()

	if err := validate(q); err != nil {
		return nil, err
	}

	root, err := filepath.Abs(q.Root)
	if err != nil {
		return nil, &RootError{Root: q.Root, Err: err}
	}

	info, err := s.fs.Stat(root)
	if err != nil {
		return nil, &RootError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &RootError{Root: root, Err: ErrNotDir}
	}

	w := &walker{
		fs:       s.fs,
		logger:   log.With(s.logger, "root", root),
		root:     root,
		pattern:  q.Pattern,
		excludes: q.Excludes,
	}
	w.gitignore = q.Gitignore

	res := &Result{Root: root, Matches: []string{}}
	err = w.walk(ctx, root, res)
	res.Stats.Duration = time.Since(start)
	if err != nil {
		var rootErr *RootError
		if errors.As(err, &rootErr) {
			return nil, err
		}
		return res, err
	}

	level.Debug(w.logger).Log(
		"msg", "search complete",
		"pattern", q.Pattern,
		"matches", len(res.Matches),
		"skipped", len(res.Skipped),
		"visited", res.Stats.Visited,
		"duration", res.Stats.Duration,
	)
	return res, nil
}

func validate(q Query) error {
	patterns := append([]string{q.Pattern}, q.Excludes...)
	if err := glob.Validate(patterns...); err != nil {
		var pe *glob.PatternError
		if errors.As(err, &pe) {
			return &PatternError{Pattern: pe.Pattern, Err: pe.Err}
		}
		return fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return nil
}

// walker carries the fixed parameters of one search through the recursion.
// Results accumulate in the *Result passed to walk.
type walker struct {
	fs        afero.Fs
	logger    log.Logger
	root      string
	pattern   string
	excludes  []string
	gitignore bool

	// scopes is the stack of .gitignore files of the directories currently
	// being walked, outermost first.
	scopes []ignoreScope
}

func (w *walker) walk(ctx context.Context, dir string, res *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := afero.ReadDir(w.fs, dir)
	if err != nil {
		if dir == w.root {
			return &RootError{Root: dir, Err: err}
		}
		rel, _ := filepath.Rel(w.root, dir)
		res.Skipped = append(res.Skipped, Skip{Path: dir, Rel: filepath.ToSlash(rel), Err: err})
		level.Warn(w.logger).Log("msg", "skipping unreadable directory", "path", dir, "err", err)
		return nil
	}
	res.Stats.DirsListed++

	if w.gitignore && hasIgnoreFile(entries) {
		rel, _ := filepath.Rel(w.root, dir)
		if rel == "." {
			rel = ""
		}
		n := w.pushIgnore(dir, filepath.ToSlash(rel))
		defer w.popIgnore(n)
	}

	for _, entry := range entries {
		if err := w.visit(ctx, dir, entry, res); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) visit(ctx context.Context, dir string, entry os.FileInfo, res *Result) error {
	full := filepath.Join(dir, entry.Name())
	rel, err := filepath.Rel(w.root, full)
	if err != nil {
		res.Skipped = append(res.Skipped, Skip{Path: full, Err: err})
		level.Warn(w.logger).Log("msg", "skipping entry outside root", "path", full, "err", err)
		return nil
	}
	rel = filepath.ToSlash(rel)
	res.Stats.Visited++

	excluded, err := w.excluded(rel, entry.IsDir())
	if err != nil {
		return err
	}
	if excluded {
		res.Stats.Excluded++
		level.Debug(w.logger).Log("msg", "pruned", "rel", rel)
		return nil
	}

	matched, err := glob.Match(w.pattern, rel)
	if err != nil {
		return patternError(err)
	}
	if matched {
		res.Matches = append(res.Matches, full)
	}

	if entry.IsDir() {
		return w.walk(ctx, full, res)
	}
	return nil
}

func (w *walker) excluded(rel string, isDir bool) (bool, error) {
	hit, err := glob.MatchAny(rel, w.excludes)
	if err != nil {
		return false, patternError(err)
	}
	if hit || !w.gitignore {
		return hit, nil
	}
	return ignoredByGit(w.scopes, rel, isDir), nil
}

func hasIgnoreFile(entries []os.FileInfo) bool {
	for _, e := range entries {
		if e.Name() == ignoreFile && !e.IsDir() {
			return true
		}
	}
	return false
}

func patternError(err error) error {
	var pe *glob.PatternError
	if errors.As(err, &pe) {
		return &PatternError{Pattern: pe.Pattern, Err: pe.Err}
	}
	return err
}
