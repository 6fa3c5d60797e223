// Package stubserver is a small self-hostable record store for development.
// It persists the per-bike JSON resources the tracer saves, using a single
// sqlite document table with last-write-wins semantics.
package stubserver

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	bike_id    TEXT NOT NULL,
	resource   TEXT NOT NULL,
	body       TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (bike_id, resource)
);`

// Store persists raw JSON documents keyed by bike id and resource name.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the sqlite database at the given path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the stored document body, or ok=false when the bike has no
// document for that resource yet.
func (s *Store) Get(bikeID, resource string) (body string, ok bool, err error) {
	row := s.db.QueryRow(
		`SELECT body FROM documents WHERE bike_id = ? AND resource = ?`,
		bikeID, resource)
	switch err := row.Scan(&body); err {
	case nil:
		return body, true, nil
	case sql.ErrNoRows:
		return "", false, nil
	default:
		return "", false, fmt.Errorf("failed to read %s/%s: %w", bikeID, resource, err)
	}
}

// Put stores or replaces a document.
func (s *Store) Put(bikeID, resource, body string) error {
	_, err := s.db.Exec(
		`INSERT INTO documents (bike_id, resource, body, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (bike_id, resource) DO UPDATE SET
		   body = excluded.body, updated_at = excluded.updated_at`,
		bikeID, resource, body, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", bikeID, resource, err)
	}
	return nil
}
