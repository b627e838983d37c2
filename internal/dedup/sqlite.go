// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteFile is the database file name inside the cache directory.
const SQLiteFile = "processed.db"

// SQLiteStore keeps the snapshot in a SQLite database, one row per file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS processed (
			path TEXT PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Load reads every processed path and the last-updated stamp.
func (s *SQLiteStore) Load() (Snapshot, error) {
	rows, err := s.db.Query(`SELECT path FROM processed ORDER BY path`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("querying processed files: %w", err)
	}
	defer rows.Close()

	var snap Snapshot
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return Snapshot{}, fmt.Errorf("scanning processed file: %w", err)
		}
		snap.ProcessedFiles = append(snap.ProcessedFiles, p)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("iterating processed files: %w", err)
	}

	var stamp string
	err = s.db.QueryRow(`SELECT value FROM meta WHERE key = 'last_updated'`).Scan(&stamp)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return Snapshot{}, fmt.Errorf("reading last_updated: %w", err)
	default:
		if t, perr := time.Parse(time.RFC3339Nano, stamp); perr == nil {
			snap.LastUpdated = t
		}
	}
	return snap, nil
}

// Save inserts any paths not yet stored and updates the stamp in one
// transaction. Stored paths are never removed.
func (s *SQLiteStore) Save(snap Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO processed (path) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range snap.ProcessedFiles {
		if _, err := stmt.Exec(p); err != nil {
			return fmt.Errorf("inserting %s: %w", p, err)
		}
	}
	if _, err := tx.Exec(
		`INSERT OR REPLACE INTO meta (key, value) VALUES ('last_updated', ?)`,
		snap.LastUpdated.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("updating last_updated: %w", err)
	}
	return tx.Commit()
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
