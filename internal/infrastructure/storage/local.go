// Package storage provides manifest persistence backends: a local directory
// for development and single-operator use, and any S3-compatible object
// store for shared deployments.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptyName is returned when a storage key is blank.
var ErrEmptyName = errors.New("storage: file name is required")

// LocalStorage writes files under a base directory. It implements
// pipeline.ManifestStore.
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates a LocalStorage rooted at dir, creating it if
// needed.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if dir == "" {
		dir = "output"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

// Save writes data to name under the base directory and returns the full
// path. Nested names create subdirectories; path escapes are rejected.
func (s *LocalStorage) Save(_ context.Context, name string, data []byte) (string, error) {
	if name == "" {
		return "", ErrEmptyName
	}
	clean := filepath.Clean(name)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("storage: invalid file name %q", name)
	}

	path := filepath.Join(s.dir, clean)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating directory for %s: %w", name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}
