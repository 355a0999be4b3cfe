package glob

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		pattern string
		want    bool
	}{
		{
			name:    "bare name does not match nested file",
			path:    "src/filesystem/test.ts",
			pattern: "test.ts",
			want:    false,
		},
		{
			name:    "stem does not match nested file",
			path:    "src/filesystem/test.ts",
			pattern: "test",
			want:    false,
		},
		{
			name:    "single star stays within a segment",
			path:    "src/filesystem/__init__.py",
			pattern: "*__init__.py",
			want:    false,
		},
		{
			name:    "doublestar glued to a name acts like a single star",
			path:    "src/filesystem/__init__.py",
			pattern: "**__init__.py",
			want:    false,
		},
		{
			name:    "single wildcard segment is too shallow",
			path:    "src/filesystem/__init__.py",
			pattern: "*/__init__.py",
			want:    false,
		},
		{
			name:    "doublestar segment matches any depth",
			path:    "src/filesystem/__init__.py",
			pattern: "**/__init__.py",
			want:    true,
		},
		{
			name:    "doublestar segment matches depth zero",
			path:    "__init__.py",
			pattern: "**/__init__.py",
			want:    true,
		},
		{
			name:    "extension pattern rejects nested file",
			path:    "src/filesystem/file.py",
			pattern: "*.py",
			want:    false,
		},
		{
			name:    "extension pattern matches root level file",
			path:    "file.py",
			pattern: "*.py",
			want:    true,
		},
		{
			name:    "doublestar extension matches nested file",
			path:    "src/filesystem/file.py",
			pattern: "**/*.py",
			want:    true,
		},
		{
			name:    "doublestar extension matches root level file",
			path:    "file.py",
			pattern: "**/*.py",
			want:    true,
		},
		{
			name:    "pattern is anchored at the root",
			path:    "src/filesystem/test.ts",
			pattern: "filesystem/**",
			want:    false,
		},
		{
			name:    "doublestar in the middle",
			path:    "src/filesystem/test.ts",
			pattern: "src/**/test.ts",
			want:    true,
		},
		{
			name:    "hidden dir with trailing slash under doublestar",
			path:    ".venv/",
			pattern: "**/.venv",
			want:    true,
		},
		{
			name:    "hidden dir with trailing slash exact",
			path:    ".venv/",
			pattern: ".venv",
			want:    true,
		},
		{
			name:    "nested hidden dir",
			path:    "sub/.venv",
			pattern: "**/.venv",
			want:    true,
		},
		{
			name:    "star matches dot-prefixed names",
			path:    ".git",
			pattern: "*",
			want:    true,
		},
		{
			name:    "doublestar walks into hidden dirs",
			path:    ".git/objects/a",
			pattern: "**/*",
			want:    true,
		},
		{
			name:    "platform separators are normalized",
			path:    filepath.Join("src", "filesystem", "file.py"),
			pattern: "src/**/*.py",
			want:    true,
		},
		{
			name:    "question mark matches one character",
			path:    "a.go",
			pattern: "?.go",
			want:    true,
		},
		{
			name:    "character class",
			path:    "log2.txt",
			pattern: "log[0-9].txt",
			want:    true,
		},
		{
			name:    "empty path never matches",
			path:    "",
			pattern: "**",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Match(tt.pattern, tt.path)
			if err != nil {
				t.Fatalf("Match(%q, %q) error: %v", tt.pattern, tt.path, err)
			}
			if got != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
			}
		})
	}
}

func TestMatchTrailingSlashIsIrrelevant(t *testing.T) {
	patterns := []string{"**/.venv", ".venv", "*", "**", ".v*"}
	for _, p := range patterns {
		bare, err := Match(p, ".venv")
		if err != nil {
			t.Fatalf("Match(%q): %v", p, err)
		}
		slashed, err := Match(p, ".venv/")
		if err != nil {
			t.Fatalf("Match(%q): %v", p, err)
		}
		if bare != slashed {
			t.Errorf("pattern %q: bare=%v slashed=%v", p, bare, slashed)
		}
	}
}

func TestMatchBackslashInName(t *testing.T) {
	if filepath.Separator != '/' {
		t.Skip("backslash is a separator on this platform")
	}

	name := `a\b.py`
	tests := []struct {
		pattern string
		want    bool
	}{
		{"*.py", true},
		{"a/b.py", false},
		{"*/b.py", false},
		{`a\\b.py`, true},
	}

	for _, tt := range tests {
		got, err := Match(tt.pattern, name)
		if err != nil {
			t.Fatalf("Match(%q, %q): %v", tt.pattern, name, err)
		}
		if got != tt.want {
			t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, name, got, tt.want)
		}
	}

	if got := Normalize(name + "/"); got != name {
		t.Errorf("Normalize(%q) = %q, want %q", name+"/", got, name)
	}
}

func TestMatchAny(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		patterns []string
		want     bool
	}{
		{"any match is true", "node_modules", []string{".git", "**/node_modules"}, true},
		{"no match", "src/main.go", []string{".git", "**/node_modules"}, false},
		{"nil patterns", "src/main.go", nil, false},
		{"empty patterns", "src/main.go", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MatchAny(tt.path, tt.patterns)
			if err != nil {
				t.Fatalf("MatchAny: %v", err)
			}
			if got != tt.want {
				t.Errorf("MatchAny(%q, %v) = %v, want %v", tt.path, tt.patterns, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := Validate("**/*.go", ".git", "{a,b}/*"); err != nil {
		t.Fatalf("valid patterns rejected: %v", err)
	}

	for _, bad := range []string{"[abc", ""} {
		err := Validate("**/*", bad)
		if err == nil {
			t.Fatalf("Validate(%q) = nil, want error", bad)
		}
		var pe *PatternError
		if !errors.As(err, &pe) {
			t.Fatalf("error %T is not *PatternError", err)
		}
		if pe.Pattern != bad {
			t.Errorf("Pattern = %q, want %q", pe.Pattern, bad)
		}
	}

	if err := Validate("[abc"); !errors.Is(err, ErrBadPattern) {
		t.Errorf("errors.Is(err, ErrBadPattern) = false for %v", err)
	}
}
