package history

import (
	"fmt"
)

// Store keeps SQLite (fast listing) and JSONL (source of truth) in step.
type Store struct {
	db    *DB
	jsonl *JSONL
}

// NewStore opens a store with the given paths.
func NewStore(dbPath, jsonlPath string) (*Store, error) {
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return &Store{
		db:    db,
		jsonl: NewJSONL(jsonlPath),
	}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database.
func (s *Store) DB() *DB {
	return s.db
}

// JSONL returns the JSONL handler.
func (s *Store) JSONL() *JSONL {
	return s.jsonl
}

// Record persists a run. The ID is derived if unset.
func (s *Store) Record(r *Run) error {
	if r.ID == "" {
		r.ID = NewID(r.Root, r.Pattern, r.StartedAt)
	}

	if err := s.db.Insert(r); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if err := s.jsonl.Append(r); err != nil {
		// DB insert succeeded; the next rebuild drops the orphan row
		return fmt.Errorf("append to jsonl: %w", err)
	}

	return nil
}

// List returns up to limit runs, newest first.
func (s *Store) List(limit int) ([]*Run, error) {
	return s.db.List(limit)
}

// Rebuild replaces the SQLite cache with the contents of the JSONL log and
// returns the number of runs imported.
func (s *Store) Rebuild() (int, error) {
	runs, err := s.jsonl.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("read jsonl: %w", err)
	}

	if err := s.db.ReplaceAll(runs); err != nil {
		return 0, fmt.Errorf("replace runs: %w", err)
	}

	return len(runs), nil
}
