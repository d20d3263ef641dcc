// Package database stores manifest history in SQLite.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

var pragmas = []string{
	"journal_mode = WAL",
	"busy_timeout = 5000",
	"synchronous = NORMAL",
	"foreign_keys = ON",
}

// Manager owns the history database.
type Manager struct {
	db   *sql.DB
	path string
}

// NewManager opens the database at path, creating its directory, and
// brings the schema up to date.
func NewManager(ctx context.Context, path string) (*Manager, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// :memory: databases exist per connection
	db.SetMaxOpenConns(1)

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, "PRAGMA "+pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	m := &Manager{db: db, path: path}
	if err := m.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return m, nil
}

// Path returns the path the database was opened with.
func (m *Manager) Path() string {
	return m.path
}

func (m *Manager) DB() *sql.DB {
	return m.db
}

func (m *Manager) Close() error {
	if err := m.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
