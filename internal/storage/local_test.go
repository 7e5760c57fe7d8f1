package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// randomSuffix returns a short random string for unique test directories.
func randomSuffix() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func TestNewLocalStorage(t *testing.T) {
	t.Run("creates root directory", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "artifacts")

		storage, err := NewLocalStorage(root)
		if err != nil {
			t.Fatalf("NewLocalStorage() error = %v", err)
		}

		if storage.Root() != root {
			t.Errorf("Root() = %v, want %v", storage.Root(), root)
		}
		if _, err := os.Stat(root); err != nil {
			t.Errorf("root directory was not created: %v", err)
		}
	})

	t.Run("empty root uses OS temp dir", func(t *testing.T) {
		storage, err := NewLocalStorage("")
		if err != nil {
			t.Fatalf("NewLocalStorage() error = %v", err)
		}

		expected := filepath.Join(os.TempDir(), "getoutvideo")
		if storage.Root() != expected {
			t.Errorf("Root() = %v, want %v", storage.Root(), expected)
		}
	})
}

func TestLocalStorage_WorkDir(t *testing.T) {
	t.Run("creates directory under root", func(t *testing.T) {
		storage, err := NewLocalStorage(t.TempDir())
		if err != nil {
			t.Fatalf("NewLocalStorage() error = %v", err)
		}

		dir, err := storage.WorkDir("My Video")
		if err != nil {
			t.Fatalf("WorkDir() error = %v", err)
		}

		if filepath.Dir(dir) != storage.Root() {
			t.Errorf("work dir %v is not directly under root %v", dir, storage.Root())
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("work directory was not created: %v", err)
		}
	})

	t.Run("existing directory is reused", func(t *testing.T) {
		storage, err := NewLocalStorage(t.TempDir())
		if err != nil {
			t.Fatalf("NewLocalStorage() error = %v", err)
		}

		first, err := storage.WorkDir("video")
		if err != nil {
			t.Fatalf("WorkDir() error = %v", err)
		}
		marker := filepath.Join(first, "audio.m4a")
		if err := os.WriteFile(marker, []byte("audio"), 0600); err != nil {
			t.Fatalf("write marker: %v", err)
		}

		second, err := storage.WorkDir("video")
		if err != nil {
			t.Fatalf("WorkDir() error = %v", err)
		}
		if second != first {
			t.Errorf("WorkDir() = %v, want %v", second, first)
		}
		if _, err := os.Stat(marker); err != nil {
			t.Errorf("existing contents were lost: %v", err)
		}
	})

	t.Run("refuses names escaping the root", func(t *testing.T) {
		storage, err := NewLocalStorage(t.TempDir())
		if err != nil {
			t.Fatalf("NewLocalStorage() error = %v", err)
		}

		for _, name := range []string{"", ".", "..", "../evil"} {
			if _, err := storage.WorkDir(name); !errors.Is(err, ErrOutsideRoot) {
				t.Errorf("WorkDir(%q) error = %v, want ErrOutsideRoot", name, err)
			}
		}
	})
}

func TestLocalStorage_Cleanup(t *testing.T) {
	t.Run("removes directory and contents", func(t *testing.T) {
		storage, err := NewLocalStorage(t.TempDir())
		if err != nil {
			t.Fatalf("NewLocalStorage() error = %v", err)
		}

		dir, err := storage.WorkDir("video")
		if err != nil {
			t.Fatalf("WorkDir() error = %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "audio.m4a"), []byte("audio"), 0600); err != nil {
			t.Fatalf("write file: %v", err)
		}

		if err := storage.Cleanup(context.Background(), dir); err != nil {
			t.Fatalf("Cleanup() error = %v", err)
		}

		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Errorf("directory still exists after cleanup")
		}
	})

	t.Run("missing directory is not an error", func(t *testing.T) {
		storage, err := NewLocalStorage(t.TempDir())
		if err != nil {
			t.Fatalf("NewLocalStorage() error = %v", err)
		}

		if err := storage.Cleanup(context.Background(), filepath.Join(storage.Root(), "gone")); err != nil {
			t.Errorf("Cleanup() error = %v, want nil", err)
		}
	})

	t.Run("refuses paths outside the root", func(t *testing.T) {
		storage, err := NewLocalStorage(t.TempDir())
		if err != nil {
			t.Fatalf("NewLocalStorage() error = %v", err)
		}

		outside := t.TempDir()
		if err := storage.Cleanup(context.Background(), outside); !errors.Is(err, ErrOutsideRoot) {
			t.Errorf("Cleanup(%q) error = %v, want ErrOutsideRoot", outside, err)
		}
	})

	t.Run("refuses the root itself", func(t *testing.T) {
		storage, err := NewLocalStorage(t.TempDir())
		if err != nil {
			t.Fatalf("NewLocalStorage() error = %v", err)
		}

		if err := storage.Cleanup(context.Background(), storage.Root()); !errors.Is(err, ErrOutsideRoot) {
			t.Errorf("Cleanup(root) error = %v, want ErrOutsideRoot", err)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		storage, err := NewLocalStorage(t.TempDir())
		if err != nil {
			t.Fatalf("NewLocalStorage() error = %v", err)
		}

		dir, err := storage.WorkDir("video")
		if err != nil {
			t.Fatalf("WorkDir() error = %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := storage.Cleanup(ctx, dir); !errors.Is(err, context.Canceled) {
			t.Errorf("Cleanup() error = %v, want context.Canceled", err)
		}
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("directory should survive a cancelled cleanup: %v", err)
		}
	})
}
