package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"

	"github.com/getoutvideo/getoutvideo-api/internal/audio"
	"github.com/getoutvideo/getoutvideo-api/internal/storage"
	"github.com/getoutvideo/getoutvideo-api/internal/transcribe"
	"github.com/getoutvideo/getoutvideo-api/internal/youtube"
)

// unsafePathChars matches characters that are unsafe in directory names.
var unsafePathChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// Static errors for transcript extraction.
var (
	// ErrExtraction is returned when neither captions nor speech-to-text
	// could produce a transcript.
	ErrExtraction = errors.New("extract: transcript extraction failed")
	// ErrNoTranscriber is returned when speech-to-text fallback is needed
	// but no transcriber is configured.
	ErrNoTranscriber = errors.New("extract: no transcriber configured for fallback")
)

// ExtractorParams configures an Extractor.
type ExtractorParams struct {
	// CaptionLang is the preferred caption language code (default "en").
	CaptionLang string
	// UseAIFallback enables speech-to-text when captions are unavailable.
	UseAIFallback bool
	// CleanupTempFiles removes audio artifacts after a successful run.
	CleanupTempFiles bool
}

// Extractor produces raw transcripts, preferring published captions and
// falling back to speech-to-text over silence-segmented audio.
type Extractor struct {
	fetcher     youtube.Fetcher
	splitter    audio.Splitter
	transcriber transcribe.Transcriber
	store       storage.Storage
	params      ExtractorParams
	logger      *slog.Logger
}

// NewExtractor creates an Extractor. The store holds downloaded audio and
// chunk artifacts during the speech-to-text fallback. The transcriber may be
// nil when that fallback is disabled.
func NewExtractor(fetcher youtube.Fetcher, splitter audio.Splitter, transcriber transcribe.Transcriber, store storage.Storage, params ExtractorParams, logger *slog.Logger) *Extractor {
	if params.CaptionLang == "" {
		params.CaptionLang = "en"
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Extractor{
		fetcher:     fetcher,
		splitter:    splitter,
		transcriber: transcriber,
		store:       store,
		params:      params,
		logger:      logger,
	}
}

// Extract produces the raw transcript for one video URL.
func (e *Extractor) Extract(ctx context.Context, url string) (VideoTranscript, error) {
	meta, err := e.fetcher.FetchMetadata(ctx, url)
	if err != nil {
		return VideoTranscript{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	text, err := e.fetcher.FetchCaptions(ctx, url, e.params.CaptionLang)
	if err == nil {
		e.logger.Info("transcript extracted from captions",
			slog.String("title", meta.Title),
			slog.String("url", url),
		)
		return NewVideoTranscript(meta.Title, url, text, SourceCaptions, meta.DurationSec), nil
	}

	if !errors.Is(err, youtube.ErrNoCaptions) {
		e.logger.Warn("caption fetch failed, trying speech-to-text fallback",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
	}

	if !e.params.UseAIFallback {
		return VideoTranscript{}, fmt.Errorf("%w: no captions for %s and speech-to-text fallback is disabled", ErrExtraction, url)
	}
	if e.transcriber == nil {
		return VideoTranscript{}, ErrNoTranscriber
	}

	text, err = e.transcribeAudio(ctx, url, meta)
	if err != nil {
		return VideoTranscript{}, err
	}

	return NewVideoTranscript(meta.Title, url, text, SourceAISTT, meta.DurationSec), nil
}

// transcribeAudio runs the speech-to-text fallback: download audio, split it
// on silence, transcribe each chunk, and assemble the transcript.
func (e *Extractor) transcribeAudio(ctx context.Context, url string, meta youtube.Metadata) (string, error) {
	workDir, err := e.store.WorkDir(unsafePathChars.ReplaceAllString(meta.Title, "_"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	audioPath := filepath.Join(workDir, "audio.m4a")
	if err := e.fetcher.FetchAudio(ctx, url, audioPath); err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	chunkDir := filepath.Join(workDir, "chunks")
	chunkPaths, err := e.splitter.Split(ctx, audioPath, chunkDir, audio.DefaultSplitOpts())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if len(chunkPaths) == 0 {
		return "", fmt.Errorf("%w: audio segmentation produced no chunks for %s", ErrExtraction, url)
	}

	results := transcribe.TranscribeChunks(ctx, e.transcriber, chunkPaths, e.logger)
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	text := transcribe.Assemble(results)

	if e.params.CleanupTempFiles {
		// Best effort only; a leftover work directory is not a failure. The
		// detached context lets cleanup run even after a cancelled job.
		if err := e.store.Cleanup(context.WithoutCancel(ctx), workDir); err != nil {
			e.logger.Warn("work directory cleanup failed",
				slog.String("dir", workDir),
				slog.String("error", err.Error()),
			)
		}
	}

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	e.logger.Info("transcript extracted via speech-to-text",
		slog.String("title", meta.Title),
		slog.Int("chunks", len(results)),
		slog.Int("failed_chunks", failed),
	)

	return text, nil
}
