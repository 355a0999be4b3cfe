// Package config handles globfind configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DirName is the name of the globfind directory.
	DirName = ".globfind"
	// ConfigFile is the name of the config file.
	ConfigFile = "config.yaml"
	// DBFile is the name of the SQLite history database.
	DBFile = "history.db"
	// JSONLFile is the name of the JSONL history log.
	JSONLFile = "history.jsonl"
	// GitIgnoreFile is the name of the gitignore file.
	GitIgnoreFile = ".gitignore"
	// EnvFile is loaded from the project root before environment overrides apply.
	EnvFile = ".env"
)

// Environment overrides.
const (
	EnvExcludes  = "GLOBFIND_EXCLUDES"
	EnvGitignore = "GLOBFIND_GITIGNORE"
	EnvLogLevel  = "GLOBFIND_LOG_LEVEL"
)

// Config represents the globfind configuration.
type Config struct {
	Search   SearchConfig       `yaml:"search"`
	History  HistoryConfig      `yaml:"history"`
	Log      LogConfig          `yaml:"log,omitempty"`
	Profiles map[string]Profile `yaml:"profiles,omitempty"`
}

// SearchConfig holds settings applied to every search.
type SearchConfig struct {
	Excludes  []string `yaml:"excludes"`
	Gitignore bool     `yaml:"gitignore"`
}

// HistoryConfig controls recording of search runs.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LogConfig holds logging defaults.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Profile is a named, reusable search.
type Profile struct {
	Pattern  string   `yaml:"pattern"`
	Excludes []string `yaml:"excludes,omitempty"`
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		Search: SearchConfig{
			Excludes: []string{".git", "**/node_modules"},
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Profiles: map[string]Profile{},
	}
}

// Load reads the configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

// Save writes the configuration to a file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Profile looks up a named profile.
func (c *Config) Profile(name string) (Profile, error) {
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q", name)
	}
	return p, nil
}

// LoadEnv loads <root>/.env into the process environment. Variables already
// set are left alone. A missing file is not an error.
func LoadEnv(root string) error {
	path := filepath.Join(root, EnvFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays GLOBFIND_* environment variables onto the config.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvExcludes); v != "" {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				c.Search.Excludes = append(c.Search.Excludes, p)
			}
		}
	}

	if v := os.Getenv(EnvGitignore); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvGitignore, err)
		}
		c.Search.Gitignore = b
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}

	return nil
}

// Paths holds the resolved paths for a globfind project.
type Paths struct {
	Root   string // .globfind directory
	Config string // config.yaml
	DB     string // history.db
	JSONL  string // history.jsonl
}

// ResolvePaths returns the paths for a globfind project rooted at the given directory.
func ResolvePaths(root string) *Paths {
	dir := filepath.Join(root, DirName)
	return &Paths{
		Root:   dir,
		Config: filepath.Join(dir, ConfigFile),
		DB:     filepath.Join(dir, DBFile),
		JSONL:  filepath.Join(dir, JSONLFile),
	}
}

// FindRoot searches for a .globfind directory starting from the given path
// and walking up the directory tree.
func FindRoot(startPath string) (string, error) {
	absPath, err := filepath.Abs(startPath)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}

	current := absPath
	for {
		if Exists(current) {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			// Reached root
			return "", fmt.Errorf("not a globfind project (or any parent): %s", startPath)
		}
		current = parent
	}
}

// Exists checks if a globfind project exists at the given path.
func Exists(path string) bool {
	info, err := os.Stat(filepath.Join(path, DirName))
	return err == nil && info.IsDir()
}
