// Package sqlitestore persists the session entries in a SQLite database.
package sqlitestore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jrsteele09/go-billing-console/sessions"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

var _ sessions.Store = (*Store)(nil)

const schema = `CREATE TABLE IF NOT EXISTS session_entries (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// Store keeps one row per session entry.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database at path and ensures the schema.
func New(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("session database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set pragma: %w", err)
	}

	s := NewWithDB(db)
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an already opened database whose schema exists.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

func (s *Store) Save(session sessions.Session) error {
	entries, err := sessions.Entries(session)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin session save: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	if _, err := tx.Exec("DELETE FROM session_entries"); err != nil {
		return fmt.Errorf("delete session entries: %w", err)
	}
	for _, key := range []string{sessions.KeyAccessToken, sessions.KeyRefreshToken, sessions.KeyUser} {
		value, ok := entries[key]
		if !ok {
			continue
		}
		if _, err := tx.Exec("INSERT INTO session_entries (key, value) VALUES (?, ?)", key, value); err != nil {
			return fmt.Errorf("insert session entry %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session save: %w", err)
	}
	return nil
}

func (s *Store) Load() (sessions.Session, error) {
	rows, err := s.db.Query("SELECT key, value FROM session_entries")
	if err != nil {
		return sessions.Session{}, fmt.Errorf("query session entries: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]string, 3)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return sessions.Session{}, fmt.Errorf("scan session entry: %w", err)
		}
		entries[key] = value
	}
	if err := rows.Err(); err != nil {
		return sessions.Session{}, fmt.Errorf("read session entries: %w", err)
	}
	return sessions.FromEntries(entries)
}

func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM session_entries"); err != nil {
		return fmt.Errorf("clear session entries: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
