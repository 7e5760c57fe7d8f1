package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned when a path does not lie under the storage root.
var ErrOutsideRoot = errors.New("storage: path is outside the storage root")

// LocalStorage implements Storage on the local filesystem. Every working
// directory lives under one root, so a cleanup can never reach outside it.
type LocalStorage struct {
	root string
}

// NewLocalStorage creates a LocalStorage rooted at root. An empty root
// defaults to a "getoutvideo" directory under the OS temp dir. The root is
// created if it does not exist.
func NewLocalStorage(root string) (*LocalStorage, error) {
	if root == "" {
		root = filepath.Join(os.TempDir(), "getoutvideo")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0750); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	return &LocalStorage{root: abs}, nil
}

// Root returns the storage root directory.
func (s *LocalStorage) Root() string {
	return s.root
}

// WorkDir returns the working directory for the named video, creating it if
// needed. Names that would resolve outside the root are refused.
func (s *LocalStorage) WorkDir(name string) (string, error) {
	dir := filepath.Join(s.root, name)
	if dir == s.root || !s.contains(dir) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, name)
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("create work directory: %w", err)
	}

	return dir, nil
}

// Cleanup removes a working directory and everything in it. The root itself
// and paths outside it are refused; a missing directory is not an error.
func (s *LocalStorage) Cleanup(ctx context.Context, dir string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("cleanup cancelled: %w", ctx.Err())
	default:
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve cleanup target: %w", err)
	}
	if abs == s.root || !s.contains(abs) {
		return fmt.Errorf("%w: %q", ErrOutsideRoot, dir)
	}

	if err := os.RemoveAll(abs); err != nil {
		return fmt.Errorf("remove work directory: %w", err)
	}
	return nil
}

// contains reports whether path lies under the storage root.
func (s *LocalStorage) contains(path string) bool {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Compile-time check that LocalStorage implements Storage.
var _ Storage = (*LocalStorage)(nil)
