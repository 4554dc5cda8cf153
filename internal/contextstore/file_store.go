package contextstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/localrivet/leaveoff/internal/errortypes"
)

// FileContextStore is an implementation of ContextStore that keeps one file
// per item in a single directory. The filename is the id and the file body is
// the raw content, with no extension or header.
type FileContextStore struct {
	dir string
}

// NewFileContextStore creates a new FileContextStore instance.
func NewFileContextStore() *FileContextStore {
	return &FileContextStore{}
}

// Initialize sets the base directory, creating it if needed.
func (s *FileContextStore) Initialize(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errortypes.ConfigError(errors.New("no folder provided"), "store directory is required")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return errortypes.ConfigError(err, "failed to resolve store directory").WithField("dir", dir)
	}

	if err := os.MkdirAll(abs, 0755); err != nil {
		return errortypes.IOError(err, "failed to create store directory").WithField("dir", abs)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return errortypes.IOError(err, "failed to stat store directory").WithField("dir", abs)
	}
	if !info.IsDir() {
		return errortypes.ConfigError(fmt.Errorf("%s is not a directory", abs), "invalid store directory")
	}

	s.dir = abs
	return nil
}

// Dir returns the absolute base directory.
func (s *FileContextStore) Dir() string {
	return s.dir
}

// Close is a no-op for the file store.
func (s *FileContextStore) Close() error {
	return nil
}

// resolve maps id to a path that is guaranteed to be a direct child of the
// base directory.
func (s *FileContextStore) resolve(id string) (string, error) {
	if s.dir == "" {
		return "", errortypes.InternalError(errors.New("store not initialized"), "file store is not ready")
	}
	if err := ValidateID(id); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, id)
	rel, err := filepath.Rel(s.dir, path)
	if err != nil || rel != id {
		return "", errortypes.ValidationError(errors.New("id resolves outside the store directory"), "invalid context id").
			WithField("context_id", id)
	}
	return path, nil
}

// Write stores content under id.
func (s *FileContextStore) Write(id string, content string) error {
	path, err := s.resolve(id)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return errortypes.IOError(err, "failed to write context item").WithField("context_id", id)
	}
	return nil
}

// Read returns the content stored under id.
func (s *FileContextStore) Read(id string) (string, error) {
	path, err := s.resolve(id)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", errortypes.NotFoundError(err, fmt.Sprintf("context item %s not found", id)).
				WithField("context_id", id)
		}
		return "", errortypes.IOError(err, "failed to read context item").WithField("context_id", id)
	}
	return string(data), nil
}

// Delete removes the file stored under id.
func (s *FileContextStore) Delete(id string) error {
	path, err := s.resolve(id)
	if err != nil {
		return err
	}

	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errortypes.NotFoundError(err, fmt.Sprintf("context item %s not found", id)).
				WithField("context_id", id)
		}
		return errortypes.IOError(err, "failed to stat context item").WithField("context_id", id)
	}
	if info.IsDir() {
		return errortypes.NotFoundError(nil, fmt.Sprintf("context item %s not found", id)).
			WithField("context_id", id)
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errortypes.NotFoundError(err, fmt.Sprintf("context item %s not found", id)).
				WithField("context_id", id)
		}
		return errortypes.IOError(err, "failed to delete context item").WithField("context_id", id)
	}
	return nil
}

// List returns the names of all regular, non-hidden entries in the directory.
func (s *FileContextStore) List() ([]string, error) {
	if s.dir == "" {
		return nil, errortypes.InternalError(errors.New("store not initialized"), "file store is not ready")
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errortypes.IOError(err, "failed to list context items").WithField("dir", s.dir)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || entry.IsDir() {
			continue
		}
		ids = append(ids, name)
	}
	return ids, nil
}
