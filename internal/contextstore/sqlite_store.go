package contextstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"crawshaw.io/sqlite"
	"github.com/localrivet/leaveoff/internal/errortypes"
)

// SQLiteContextStore is an implementation of ContextStore that uses SQLite.
type SQLiteContextStore struct {
	mu     sync.Mutex
	conn   *sqlite.Conn
	dbPath string
}

// NewSQLiteContextStore creates a new SQLiteContextStore instance.
func NewSQLiteContextStore() *SQLiteContextStore {
	return &SQLiteContextStore{}
}

// Initialize initializes the store with the given database path.
func (s *SQLiteContextStore) Initialize(dbPath string) error {
	if dbPath == "" {
		return errortypes.ConfigError(errors.New("empty database path"), "sqlite path is required")
	}
	s.dbPath = dbPath

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return errortypes.ConfigError(err, "failed to create database directory").WithField("path", dbPath)
	}

	conn, err := sqlite.OpenConn(dbPath, sqlite.SQLITE_OPEN_CREATE|sqlite.SQLITE_OPEN_READWRITE)
	if err != nil {
		return errortypes.IOError(err, "failed to open SQLite database").WithField("path", dbPath)
	}
	s.conn = conn

	if err := s.createTable(); err != nil {
		s.conn.Close()
		s.conn = nil
		return errortypes.IOError(err, "failed to create table").WithField("path", dbPath)
	}

	return nil
}

// createTable creates the context_items table if it doesn't exist.
func (s *SQLiteContextStore) createTable() error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS context_items (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);`

	stmt, err := s.conn.Prepare(createTableSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare create table statement: %w", err)
	}
	defer stmt.Reset()

	if _, err := stmt.Step(); err != nil {
		return fmt.Errorf("failed to execute create table statement: %w", err)
	}
	return nil
}

// Close closes the store and releases any resources.
func (s *SQLiteContextStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

func (s *SQLiteContextStore) ready() error {
	if s.conn == nil {
		return errortypes.InternalError(errors.New("store not initialized"), "sqlite store is not ready")
	}
	return nil
}

// Write inserts a new item. Items are never updated in place.
func (s *SQLiteContextStore) Write(id string, content string) error {
	if err := ValidateID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}

	stmt, err := s.conn.Prepare(`INSERT INTO context_items (id, content, created_at) VALUES (?, ?, ?);`)
	if err != nil {
		return errortypes.IOError(err, "failed to prepare insert statement")
	}
	defer stmt.Reset()

	// Bind parameters - indices in sqlite are 1-based
	stmt.BindText(1, id)
	stmt.BindText(2, content)
	stmt.BindInt64(3, time.Now().UnixMilli())

	if _, err := stmt.Step(); err != nil {
		return errortypes.IOError(err, "failed to insert context item").WithField("context_id", id)
	}
	return nil
}

// Read returns the content stored under id.
func (s *SQLiteContextStore) Read(id string) (string, error) {
	if err := ValidateID(id); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return "", err
	}

	stmt, err := s.conn.Prepare(`SELECT content FROM context_items WHERE id = ?;`)
	if err != nil {
		return "", errortypes.IOError(err, "failed to prepare select statement")
	}
	defer stmt.Reset()

	stmt.BindText(1, id)
	hasRow, err := stmt.Step()
	if err != nil {
		return "", errortypes.IOError(err, "failed to read context item").WithField("context_id", id)
	}
	if !hasRow {
		return "", errortypes.NotFoundError(nil, fmt.Sprintf("context item %s not found", id)).
			WithField("context_id", id)
	}

	// Column indices are 0-based
	return stmt.ColumnText(0), nil
}

// Delete removes the row stored under id.
func (s *SQLiteContextStore) Delete(id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}

	stmt, err := s.conn.Prepare(`DELETE FROM context_items WHERE id = ?;`)
	if err != nil {
		return errortypes.IOError(err, "failed to prepare delete statement")
	}
	defer stmt.Reset()

	stmt.BindText(1, id)
	if _, err := stmt.Step(); err != nil {
		return errortypes.IOError(err, "failed to delete context item").WithField("context_id", id)
	}
	if s.conn.Changes() == 0 {
		return errortypes.NotFoundError(nil, fmt.Sprintf("context item %s not found", id)).
			WithField("context_id", id)
	}
	return nil
}

// List returns all stored ids ordered by id.
func (s *SQLiteContextStore) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return nil, err
	}

	stmt, err := s.conn.Prepare(`SELECT id FROM context_items ORDER BY id;`)
	if err != nil {
		return nil, errortypes.IOError(err, "failed to prepare list statement")
	}
	defer stmt.Reset()

	ids := []string{}
	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return nil, errortypes.IOError(err, "failed to list context items")
		}
		if !hasRow {
			break
		}
		ids = append(ids, stmt.ColumnText(0))
	}
	return ids, nil
}
