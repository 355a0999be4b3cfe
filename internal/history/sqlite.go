package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	root TEXT NOT NULL,
	pattern TEXT NOT NULL,
	excludes TEXT NOT NULL DEFAULT '[]',
	gitignore INTEGER NOT NULL DEFAULT 0,
	matches INTEGER NOT NULL DEFAULT 0,
	skipped INTEGER NOT NULL DEFAULT 0,
	duration_ns INTEGER NOT NULL DEFAULT 0,
	started_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// timeLayout is fixed width so started_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DB wraps the SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &DB{db: db, path: path}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.path
}

// Insert adds a run to the database.
func (d *DB) Insert(r *Run) error {
	excludes, err := json.Marshal(r.Excludes)
	if err != nil {
		return fmt.Errorf("marshal excludes: %w", err)
	}

	_, err = d.db.Exec(`
		INSERT INTO runs (id, root, pattern, excludes, gitignore, matches, skipped, duration_ns, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID, r.Root, r.Pattern, string(excludes), r.Gitignore,
		r.Matches, r.Skipped, int64(r.Duration),
		r.StartedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	return nil
}

// List returns up to limit runs, newest first. A limit of zero means no limit.
func (d *DB) List(limit int) ([]*Run, error) {
	query := `SELECT id, root, pattern, excludes, gitignore, matches, skipped, duration_ns, started_at
		FROM runs ORDER BY started_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// Count returns the number of recorded runs.
func (d *DB) Count() (int, error) {
	var n int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&n); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}

// ReplaceAll clears the table and inserts runs in a single transaction.
func (d *DB) ReplaceAll(runs []*Run) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM runs"); err != nil {
		return fmt.Errorf("clear runs: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO runs (id, root, pattern, excludes, gitignore, matches, skipped, duration_ns, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range runs {
		excludes, err := json.Marshal(r.Excludes)
		if err != nil {
			return fmt.Errorf("marshal excludes: %w", err)
		}
		if _, err := stmt.Exec(
			r.ID, r.Root, r.Pattern, string(excludes), r.Gitignore,
			r.Matches, r.Skipped, int64(r.Duration),
			r.StartedAt.UTC().Format(timeLayout),
		); err != nil {
			return fmt.Errorf("insert run %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func scanRun(rows *sql.Rows) (*Run, error) {
	var (
		r          Run
		excludes   string
		durationNS int64
		startedAt  string
	)
	if err := rows.Scan(&r.ID, &r.Root, &r.Pattern, &excludes, &r.Gitignore,
		&r.Matches, &r.Skipped, &durationNS, &startedAt); err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	if err := json.Unmarshal([]byte(excludes), &r.Excludes); err != nil {
		return nil, fmt.Errorf("unmarshal excludes: %w", err)
	}
	r.Duration = time.Duration(durationNS)

	t, err := time.Parse(timeLayout, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	r.StartedAt = t

	return &r, nil
}
