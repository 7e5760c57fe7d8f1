// Package transcribe provides the speech-to-text boundary of the pipeline:
// a Transcriber port, per-chunk results, and assembly of the full transcript.
package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// Transcriber converts one audio file into text.
type Transcriber interface {
	// Transcribe sends the audio file to a transcription service and
	// returns the transcribed text.
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// ChunkResult is the outcome of transcribing one audio chunk. A failed chunk
// carries its error here instead of aborting the run: per-chunk transcription
// failure is an expected operating condition, not an exceptional one.
type ChunkResult struct {
	// Index is the zero-based ordinal of the chunk.
	Index int
	// Path is the audio chunk file that was transcribed.
	Path string
	// Text is the transcribed text (empty on failure).
	Text string
	// Err is the transcription failure, if any.
	Err error
}

// Failed returns true if the chunk could not be transcribed.
func (r ChunkResult) Failed() bool {
	return r.Err != nil
}

// TranscribeChunks transcribes each chunk sequentially, in order. Failures
// are recorded in the corresponding result and never propagated, so the
// result list always has one entry per input chunk.
func TranscribeChunks(ctx context.Context, tr Transcriber, chunkPaths []string, logger *slog.Logger) []ChunkResult {
	if logger == nil {
		logger = slog.Default()
	}

	results := make([]ChunkResult, 0, len(chunkPaths))
	for i, path := range chunkPaths {
		logger.Info("transcribing chunk",
			slog.Int("index", i+1),
			slog.Int("total", len(chunkPaths)),
			slog.String("path", path),
		)

		text, err := tr.Transcribe(ctx, path)
		if err != nil {
			logger.Warn("chunk transcription failed",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}

		results = append(results, ChunkResult{
			Index: i,
			Path:  path,
			Text:  text,
			Err:   err,
		})
	}

	return results
}

// Assemble concatenates per-chunk transcripts in ordinal order, separated by
// newlines, into one transcript string. A failed chunk contributes a bracketed
// placeholder naming the chunk file, so chunk count and order are preserved
// even under partial failure.
func Assemble(results []ChunkResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		if r.Failed() {
			parts = append(parts, Placeholder(r.Path))
			continue
		}
		parts = append(parts, r.Text)
	}
	return strings.Join(parts, "\n")
}

// Placeholder returns the marker text substituted for a failed chunk.
func Placeholder(chunkPath string) string {
	return fmt.Sprintf("[Transcription failed for %s]", filepath.Base(chunkPath))
}
