package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/getoutvideo/getoutvideo-api/internal/ai"
	"github.com/getoutvideo/getoutvideo-api/internal/extract"
)

// Static errors for the processing service.
var (
	// ErrEmptyURL is returned when no URL is provided.
	ErrEmptyURL = errors.New("job: URL is required")
	// ErrInvalidIndexRange is returned when the playlist index range is invalid.
	ErrInvalidIndexRange = errors.New("job: invalid playlist index range")
	// ErrNoVideos is returned when index selection leaves no videos to process.
	ErrNoVideos = errors.New("job: no videos selected for processing")
)

// TranscriptExtractor produces the raw transcript for one video URL.
type TranscriptExtractor interface {
	Extract(ctx context.Context, url string) (extract.VideoTranscript, error)
}

// PlaylistExpander expands a playlist URL into its ordered video URLs.
// A plain video URL yields a single-element list.
type PlaylistExpander interface {
	FetchPlaylist(ctx context.Context, url string) ([]string, error)
}

// Refiner turns raw transcripts into styled output files.
type Refiner interface {
	ProcessTranscripts(ctx context.Context, transcripts []extract.VideoTranscript, styles []string, obs ai.Observer) ([]ai.Result, error)
}

// RefinerProvider builds a Refiner for the given per-job overrides. Empty
// or zero values keep the service-wide defaults.
type RefinerProvider func(outputLanguage, modelName string, chunkSize int) Refiner

// Uploader pushes a finished output file to remote storage and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// ProcessURLInput contains the input parameters for a processing run.
type ProcessURLInput struct {
	// URL is the video or playlist URL.
	URL string
	// Styles are the requested refinement styles (empty means all).
	Styles []string
	// OutputLanguage overrides the configured output language when non-empty.
	OutputLanguage string
	// ModelName overrides the configured generation model when non-empty.
	ModelName string
	// ChunkSize overrides the configured chunk word budget when positive.
	ChunkSize int
	// StartIndex selects the first playlist entry to process (1-based,
	// 0 means from the beginning).
	StartIndex int
	// EndIndex selects the last playlist entry to process (inclusive,
	// 0 means to the end).
	EndIndex int
}

// Validate checks the input before any work is started.
func (in ProcessURLInput) Validate() error {
	if in.URL == "" {
		return ErrEmptyURL
	}
	if in.StartIndex < 0 || in.EndIndex < 0 {
		return ErrInvalidIndexRange
	}
	if in.EndIndex > 0 && in.StartIndex > in.EndIndex {
		return ErrInvalidIndexRange
	}
	return nil
}

// ProcessURLService orchestrates the full pipeline for one URL: playlist
// expansion, transcript extraction, and style refinement, with job state
// persisted through the repository.
type ProcessURLService struct {
	repo     Repository
	expander PlaylistExpander
	ext      TranscriptExtractor
	refiners RefinerProvider
	uploader Uploader
	logger   *slog.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewProcessURLService creates a new ProcessURLService. The uploader may be
// nil when remote upload is disabled.
func NewProcessURLService(repo Repository, expander PlaylistExpander, ext TranscriptExtractor, refiners RefinerProvider, uploader Uploader, logger *slog.Logger) *ProcessURLService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessURLService{
		repo:     repo,
		expander: expander,
		ext:      ext,
		refiners: refiners,
		uploader: uploader,
		logger:   logger,
		cancels:  make(map[string]context.CancelFunc),
	}
}

// Submit creates a job for the input and starts processing it in the
// background. The returned job is a snapshot in PENDING state; poll GetJob
// for progress. The background run is detached from the caller's context
// and stopped only by Cancel.
func (s *ProcessURLService) Submit(ctx context.Context, input ProcessURLInput) (*Job, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	j := New(input.URL, input.Styles, input.OutputLanguage)
	if err := s.repo.Save(ctx, j); err != nil {
		return nil, fmt.Errorf("save job: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancels[j.ID] = cancel
	s.mu.Unlock()

	s.logger.Info("job submitted",
		slog.String("job_id", j.ID),
		slog.String("url", input.URL),
	)

	go func() {
		defer s.clearCancel(j.ID)
		s.run(runCtx, j, input)
	}()

	return j.Clone(), nil
}

// Process runs the pipeline synchronously with the caller's context. Used
// by the CLI, where there is no background polling.
func (s *ProcessURLService) Process(ctx context.Context, input ProcessURLInput) (*Job, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	j := New(input.URL, input.Styles, input.OutputLanguage)
	if err := s.repo.Save(ctx, j); err != nil {
		return nil, fmt.Errorf("save job: %w", err)
	}

	s.run(ctx, j, input)
	return s.repo.FindByID(context.WithoutCancel(ctx), j.ID)
}

// GetJob retrieves a job by ID.
func (s *ProcessURLService) GetJob(ctx context.Context, id string) (*Job, error) {
	return s.repo.FindByID(ctx, id)
}

// ListJobs returns all jobs.
func (s *ProcessURLService) ListJobs(ctx context.Context) ([]*Job, error) {
	return s.repo.List(ctx)
}

// Cancel requests cooperative cancellation of a running job. A job that is
// already terminal is left untouched.
func (s *ProcessURLService) Cancel(ctx context.Context, id string) (*Job, error) {
	j, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.IsTerminal() {
		return j, nil
	}

	s.mu.Lock()
	cancel, ok := s.cancels[id]
	s.mu.Unlock()
	if ok {
		cancel()
		s.logger.Info("job cancellation requested", slog.String("job_id", id))
		return j, nil
	}

	// Not running in this process (e.g. still pending, or a restart lost the
	// goroutine): mark the job cancelled directly.
	if err := j.Cancel(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, j); err != nil {
		return nil, fmt.Errorf("save cancelled job: %w", err)
	}
	return j, nil
}

func (s *ProcessURLService) clearCancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[id]; ok {
		cancel()
		delete(s.cancels, id)
	}
}

// run executes the pipeline for one job and persists every state change.
func (s *ProcessURLService) run(ctx context.Context, j *Job, input ProcessURLInput) {
	if err := j.Start(); err != nil {
		s.logger.Error("job could not start",
			slog.String("job_id", j.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	s.save(j)

	urls, err := s.selectVideos(ctx, input)
	if err != nil {
		s.finish(ctx, j, err)
		return
	}

	transcripts := make([]extract.VideoTranscript, 0, len(urls))
	for i, url := range urls {
		if ctx.Err() != nil {
			s.finish(ctx, j, ctx.Err())
			return
		}

		j.UpdateStatusMessage(fmt.Sprintf("Extracting transcript %d/%d", i+1, len(urls)))
		s.save(j)

		vt, err := s.ext.Extract(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				s.finish(ctx, j, ctx.Err())
				return
			}
			// One failed video does not abort the rest of a playlist.
			s.logger.Warn("transcript extraction failed, skipping video",
				slog.String("job_id", j.ID),
				slog.String("url", url),
				slog.String("error", err.Error()),
			)
			continue
		}
		transcripts = append(transcripts, vt)
	}

	if len(transcripts) == 0 {
		s.finish(ctx, j, fmt.Errorf("%w: no transcripts could be extracted", ErrNoVideos))
		return
	}

	refiner := s.refiners(input.OutputLanguage, input.ModelName, input.ChunkSize)
	results, err := refiner.ProcessTranscripts(ctx, transcripts, input.Styles, &jobObserver{svc: s, job: j})
	for _, r := range results {
		sr := StyleResult{
			VideoTitle:     r.Transcript.Title,
			VideoURL:       r.Transcript.URL,
			Style:          r.StyleName,
			OutputFilePath: r.OutputFilePath,
			InputTokens:    r.InputTokens,
			OutputTokens:   r.OutputTokens,
			Cost:           r.Cost,
		}
		if s.uploader != nil {
			sr.OutputURL = s.upload(ctx, j.ID, r.OutputFilePath)
		}
		j.AddResult(sr)
	}
	s.finish(ctx, j, err)
}

// selectVideos expands the URL and applies the 1-based start/end selection.
func (s *ProcessURLService) selectVideos(ctx context.Context, input ProcessURLInput) ([]string, error) {
	urls, err := s.expander.FetchPlaylist(ctx, input.URL)
	if err != nil {
		return nil, fmt.Errorf("expand playlist: %w", err)
	}

	start := input.StartIndex
	if start < 1 {
		start = 1
	}
	end := input.EndIndex
	if end == 0 || end > len(urls) {
		end = len(urls)
	}
	if start > len(urls) {
		return nil, fmt.Errorf("%w: start index %d exceeds playlist length %d", ErrNoVideos, start, len(urls))
	}

	return urls[start-1 : end], nil
}

// upload pushes one output file to remote storage, best effort.
func (s *ProcessURLService) upload(ctx context.Context, jobID, path string) string {
	url, err := s.uploader.Upload(context.WithoutCancel(ctx), path)
	if err != nil {
		s.logger.Warn("output upload failed",
			slog.String("job_id", jobID),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return ""
	}
	return url
}

// finish moves the job to its terminal state based on the run error.
func (s *ProcessURLService) finish(ctx context.Context, j *Job, err error) {
	switch {
	case err == nil:
		if terr := j.Complete(); terr != nil {
			s.logger.Error("job completion transition failed",
				slog.String("job_id", j.ID),
				slog.String("error", terr.Error()),
			)
		}
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		if terr := j.Cancel(); terr != nil {
			s.logger.Error("job cancel transition failed",
				slog.String("job_id", j.ID),
				slog.String("error", terr.Error()),
			)
		}
	default:
		if terr := j.Fail(err.Error()); terr != nil {
			s.logger.Error("job fail transition failed",
				slog.String("job_id", j.ID),
				slog.String("error", terr.Error()),
			)
		}
	}

	s.save(j)
	s.logger.Info("job finished",
		slog.String("job_id", j.ID),
		slog.String("status", string(j.GetStatus())),
	)
}

// save persists the job outside the run's cancellable context so terminal
// states survive cancellation.
func (s *ProcessURLService) save(j *Job) {
	if err := s.repo.Save(context.Background(), j); err != nil {
		s.logger.Error("job save failed",
			slog.String("job_id", j.ID),
			slog.String("error", err.Error()),
		)
	}
}

// jobObserver bridges pipeline progress notifications into job state.
type jobObserver struct {
	svc *ProcessURLService
	job *Job
}

func (o *jobObserver) OnProgress(percent int) {
	o.job.UpdateProgress(percent)
	o.svc.save(o.job)
}

func (o *jobObserver) OnStatus(message string) {
	o.job.UpdateStatusMessage(message)
	o.svc.save(o.job)
}

// Verify interface implementation at compile time.
var _ ai.Observer = (*jobObserver)(nil)
