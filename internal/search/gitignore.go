package search

import (
	"errors"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-kit/log/level"
	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/afero"
)

// GitDir is always pruned when gitignore rules are in effect.
const GitDir = ".git"

// ignoreFile is the name of the per-directory rules file.
const ignoreFile = ".gitignore"

// ignoreScope is one compiled .gitignore, applying to paths under prefix.
// The root's rules have an empty prefix.
type ignoreScope struct {
	prefix string
	rules  *gitignore.GitIgnore
}

// loadGitignore compiles dir/.gitignore. A missing file yields nil rules;
// a file that exists but cannot be read is logged and treated the same way.
func (w *walker) loadGitignore(dir string) *gitignore.GitIgnore {
	file := filepath.Join(dir, ignoreFile)
	data, err := afero.ReadFile(w.fs, file)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			level.Warn(w.logger).Log("msg", "could not read .gitignore", "path", file, "err", err)
		}
		return nil
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	return gitignore.CompileIgnoreLines(lines...)
}

// pushIgnore loads the .gitignore of dir (relative path rel) and returns the
// number of scopes added, for popIgnore.
func (w *walker) pushIgnore(dir, rel string) int {
	rules := w.loadGitignore(dir)
	if rules == nil {
		return 0
	}
	w.scopes = append(w.scopes, ignoreScope{prefix: rel, rules: rules})
	return 1
}

func (w *walker) popIgnore(n int) {
	w.scopes = w.scopes[:len(w.scopes)-n]
}

// ignoredByGit reports whether rel is a .git directory at any depth or is
// ignored by any .gitignore scoped to one of its ancestors. Each file's rules
// are tested against the path relative to that file's directory.
// Directories get a trailing slash so directory-only rules ("build/") apply.
func ignoredByGit(scopes []ignoreScope, rel string, isDir bool) bool {
	if path.Base(rel) == GitDir {
		return true
	}
	for _, sc := range scopes {
		sub := rel
		if sc.prefix != "" {
			if !strings.HasPrefix(rel, sc.prefix+"/") {
				continue
			}
			sub = rel[len(sc.prefix)+1:]
		}
		if isDir {
			sub += "/"
		}
		if sc.rules.MatchesPath(sub) {
			return true
		}
	}
	return false
}
