package job

import (
	"context"
	"errors"
)

// ErrJobNotFound is returned when no processing job exists for an ID.
var ErrJobNotFound = errors.New("job: job not found")

// Repository persists processing jobs and their per-style results. The
// service saves jobs on every state change, so Save must upsert.
type Repository interface {
	// Save inserts the job or, when the ID already exists, replaces the
	// stored state with the given one.
	Save(ctx context.Context, job *Job) error

	// FindByID returns the job with the given ID, or ErrJobNotFound.
	FindByID(ctx context.Context, id string) (*Job, error)

	// List returns all jobs ordered by creation time.
	List(ctx context.Context) ([]*Job, error)

	// Delete removes the job with the given ID, or returns ErrJobNotFound.
	Delete(ctx context.Context, id string) error
}
