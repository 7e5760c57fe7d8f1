// Package storage manages the working files of the transcript pipeline:
// per-video directories for downloaded audio and exported chunks, plus
// optional S3 delivery of finished documents.
package storage

import "context"

// Storage hands out per-video working directories for intermediate audio
// artifacts. Implementations own a single root directory; callers address
// artifacts only through paths obtained from WorkDir, and cleanup is
// refused for anything outside the root.
type Storage interface {
	// WorkDir returns the working directory for the named video, creating
	// it if needed. The name must already be filesystem-safe.
	WorkDir(name string) (string, error)

	// Cleanup removes a working directory previously returned by WorkDir,
	// together with everything in it. A missing directory is not an error.
	Cleanup(ctx context.Context, dir string) error
}
