// Package history records search runs.
//
// Runs are kept in two places, like any other globfind state: an append-only
// JSONL log that can be committed, and a SQLite cache used for listing. The
// cache can always be rebuilt from the log.
package history

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Run is one recorded search.
type Run struct {
	ID        string        `json:"id"`
	Root      string        `json:"root"`
	Pattern   string        `json:"pattern"`
	Excludes  []string      `json:"excludes,omitempty"`
	Gitignore bool          `json:"gitignore,omitempty"`
	Matches   int           `json:"matches"`
	Skipped   int           `json:"skipped"`
	Duration  time.Duration `json:"duration"`
	StartedAt time.Time     `json:"started_at"`
}

// NewID derives a short, stable identifier for a run.
func NewID(root, pattern string, startedAt time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%s\x00%d", root, pattern, startedAt.UnixNano())))
	return "run-" + hex.EncodeToString(sum[:])[:12]
}
