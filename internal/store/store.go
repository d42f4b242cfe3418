// Package store writes finished audio artifacts to disk for file mode.
//
// When the caller does not name an output file, artifacts are saved under
// an incrementing default pattern ("<base>_<index>.mp3") that never
// silently overwrites an earlier file from the same run.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore saves audio bytes under a base directory.
type FileStore struct {
	dir  string
	base string
}

// NewFileStore creates a FileStore writing to dir with the given default
// base name.
func NewFileStore(dir, base string) *FileStore {
	if dir == "" {
		dir = "."
	}
	if base == "" {
		base = "podcast"
	}
	return &FileStore{dir: dir, base: base}
}

// Save writes data to path. An empty path picks the next free default name.
// Returns the path written.
func (s *FileStore) Save(data []byte, path string) (string, error) {
	if path == "" {
		return s.saveNextFree(data)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating output directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	return path, nil
}

// saveNextFree writes data to the first free "<dir>/<base>_<index>.mp3".
// O_EXCL makes the claim atomic, so two concurrent writers racing for the
// same index never overwrite each other.
func (s *FileStore) saveNextFree(data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	for i := 0; ; i++ {
		path := filepath.Join(s.dir, fmt.Sprintf("%s_%d.mp3", s.base, i))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("creating artifact: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", fmt.Errorf("writing artifact: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("writing artifact: %w", err)
		}
		return path, nil
	}
}
