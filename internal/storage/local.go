package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// localStore implements Store on the local filesystem. Namespace
// directories are created lazily with MkdirAll, which is idempotent and
// therefore safe under concurrent uploads into the same case namespace.
type localStore struct {
	basePath string
}

// NewLocal creates a filesystem-backed blob store rooted at basePath.
// The root directory is created if it does not exist.
func NewLocal(basePath string) (Store, error) {
	if basePath == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &localStore{basePath: basePath}, nil
}

// Save writes the content under basePath/key, creating the namespace
// directory if absent. A failed write attempts to remove the partial file
// so the caller never observes a half-written blob at the key.
func (s *localStore) Save(ctx context.Context, key string, content []byte) error {
	full := filepath.Join(s.basePath, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create namespace directory: %w", err)
	}

	if err := os.WriteFile(full, content, 0o644); err != nil {
		_ = os.Remove(full)
		return fmt.Errorf("write blob: %w", err)
	}
	return nil
}

// Open returns a reader over the blob stored under key.
func (s *localStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	full := filepath.Join(s.basePath, filepath.FromSlash(key))
	f, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return f, nil
}

// Delete unlinks the blob. A missing file is treated as already deleted.
func (s *localStore) Delete(ctx context.Context, key string) error {
	full := filepath.Join(s.basePath, filepath.FromSlash(key))
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}
