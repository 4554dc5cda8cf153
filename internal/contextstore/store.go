// Package contextstore provides storage interfaces and implementations for
// the context items saved by leaveoff.
package contextstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/localrivet/leaveoff/internal/errortypes"
)

// Supported storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// ContextStore defines the interface for storing and retrieving context items.
type ContextStore interface {
	// Initialize opens the store at location. For the file backend location
	// is the base directory; for SQLite it is the database path.
	Initialize(location string) error

	// Close closes the store and releases any resources.
	Close() error

	// Write stores content under id.
	Write(id string, content string) error

	// Read returns the content stored under id.
	Read(id string) (string, error)

	// Delete removes the item stored under id.
	Delete(id string) error

	// List returns the ids of all stored items.
	List() ([]string, error)
}

// NewContextStore returns an uninitialized store for the named backend.
func NewContextStore(backend string) (ContextStore, error) {
	switch backend {
	case BackendFile, "":
		return NewFileContextStore(), nil
	case BackendSQLite:
		return NewSQLiteContextStore(), nil
	default:
		return nil, errortypes.ConfigError(fmt.Errorf("unknown backend %q", backend), "invalid store backend")
	}
}

// ValidateID rejects ids that are empty, hidden, or could escape the base
// directory once used as a filename.
func ValidateID(id string) error {
	var reason string
	switch {
	case strings.TrimSpace(id) == "":
		reason = "id is empty"
	case id == "." || id == "..":
		reason = "id is a relative path element"
	case strings.HasPrefix(id, "."):
		reason = "id must not start with '.'"
	case strings.ContainsAny(id, `/\`):
		reason = "id must not contain a path separator"
	case strings.ContainsRune(id, 0):
		reason = "id must not contain NUL"
	default:
		return nil
	}
	return errortypes.ValidationError(errors.New(reason), "invalid context id").WithField("context_id", id)
}
