// Package job provides the Job aggregate for transcript processing runs,
// its state machine, and repository ports for persistence.
package job

import (
	"errors"
	"sync"
	"time"

	"github.com/getoutvideo/getoutvideo-api/internal/job/id"
)

// Status represents the current state of a Job.
type Status string

const (
	// StatusPending indicates the job is waiting to start.
	StatusPending Status = "PENDING"
	// StatusInProgress indicates the job is being processed.
	StatusInProgress Status = "IN_PROGRESS"
	// StatusCompleted indicates the job finished successfully.
	StatusCompleted Status = "COMPLETED"
	// StatusFailed indicates the job encountered an error during execution.
	StatusFailed Status = "FAILED"
	// StatusCancelled indicates the job was cancelled by the caller.
	StatusCancelled Status = "CANCELLED"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// validTransitions defines which state transitions are allowed.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusFailed, StatusCancelled},
	StatusCompleted:  {},
	StatusFailed:     {},
	StatusCancelled:  {},
}

// canTransition checks if a transition from one status to another is valid.
func canTransition(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// StyleResult records one completed (video, style) output within a job.
type StyleResult struct {
	// VideoTitle is the title of the source video.
	VideoTitle string
	// VideoURL is the source video URL.
	VideoURL string
	// Style is the refinement style name.
	Style string
	// OutputFilePath is the written Markdown file.
	OutputFilePath string
	// OutputURL is the S3 URL of the output, when upload is enabled.
	OutputURL string
	// InputTokens and OutputTokens are the accumulated token counts.
	InputTokens  int
	OutputTokens int
	// Cost is the estimated generation cost in USD.
	Cost float64
}

// Job represents one transcript processing run: a video or playlist URL
// refined into one output file per (video, style) pair.
type Job struct {
	mu sync.RWMutex

	// ID is the unique identifier for this job.
	ID string
	// URL is the video or playlist URL being processed.
	URL string
	// Styles are the requested refinement styles (empty means all).
	Styles []string
	// OutputLanguage is the language styled outputs are written in.
	OutputLanguage string
	// Status is the current job state.
	Status Status
	// Progress is the percentage of completion (0-100).
	Progress int
	// StatusMessage is the most recent human-readable status line.
	StatusMessage string
	// Error contains any error message if the job failed.
	Error string
	// Results holds one entry per completed (video, style) output.
	Results []StyleResult
	// CreatedAt is when the job was created.
	CreatedAt time.Time
	// UpdatedAt is when the job was last updated.
	UpdatedAt time.Time
	// StartedAt is when processing started.
	StartedAt time.Time
	// CompletedAt is when processing finished.
	CompletedAt time.Time
}

// New creates a new Job with a generated ID and initial PENDING status.
func New(url string, styles []string, outputLanguage string) *Job {
	now := time.Now()
	return &Job{
		ID:             id.Generate(),
		URL:            url,
		Styles:         styles,
		OutputLanguage: outputLanguage,
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// TransitionTo attempts to change the job status to the given state.
// Returns ErrInvalidTransition if the transition is not allowed.
func (j *Job) TransitionTo(status Status) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !canTransition(j.Status, status) {
		return ErrInvalidTransition
	}

	j.Status = status
	j.UpdatedAt = time.Now()

	// Set timestamps based on state
	switch status {
	case StatusInProgress:
		j.StartedAt = j.UpdatedAt
	case StatusCompleted, StatusFailed, StatusCancelled:
		j.CompletedAt = j.UpdatedAt
	}

	return nil
}

// Start transitions the job from PENDING to IN_PROGRESS.
func (j *Job) Start() error {
	return j.TransitionTo(StatusInProgress)
}

// Complete transitions the job to COMPLETED state.
func (j *Job) Complete() error {
	return j.TransitionTo(StatusCompleted)
}

// Fail transitions the job to FAILED state with an error message.
func (j *Job) Fail(errMsg string) error {
	j.mu.Lock()
	j.Error = errMsg
	j.mu.Unlock()
	return j.TransitionTo(StatusFailed)
}

// Cancel transitions the job to CANCELLED state.
func (j *Job) Cancel() error {
	return j.TransitionTo(StatusCancelled)
}

// GetStatus returns the current job status (thread-safe).
func (j *Job) GetStatus() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// UpdateProgress sets the progress percentage (0-100).
func (j *Job) UpdateProgress(progress int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	j.Progress = progress
	j.UpdatedAt = time.Now()
}

// UpdateStatusMessage records the most recent status line.
func (j *Job) UpdateStatusMessage(message string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.StatusMessage = message
	j.UpdatedAt = time.Now()
}

// AddResult appends a completed (video, style) output to the job.
func (j *Job) AddResult(result StyleResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Results = append(j.Results, result)
	j.UpdatedAt = time.Now()
}

// IsTerminal returns true if the job is in a terminal state.
func (j *Job) IsTerminal() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status == StatusCompleted ||
		j.Status == StatusFailed ||
		j.Status == StatusCancelled
}

// Clone creates a deep copy of the job for safe reads.
func (j *Job) Clone() *Job {
	j.mu.RLock()
	defer j.mu.RUnlock()

	styles := make([]string, len(j.Styles))
	copy(styles, j.Styles)
	results := make([]StyleResult, len(j.Results))
	copy(results, j.Results)

	return &Job{
		ID:             j.ID,
		URL:            j.URL,
		Styles:         styles,
		OutputLanguage: j.OutputLanguage,
		Status:         j.Status,
		Progress:       j.Progress,
		StatusMessage:  j.StatusMessage,
		Error:          j.Error,
		Results:        results,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
		StartedAt:      j.StartedAt,
		CompletedAt:    j.CompletedAt,
	}
}
