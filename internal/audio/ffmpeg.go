package audio

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// FFmpegSplitter implements Splitter using the ffmpeg CLI.
type FFmpegSplitter struct {
	ffmpegPath string
	logger     *slog.Logger
}

// NewFFmpegSplitter creates a new FFmpegSplitter.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found in PATH).
func NewFFmpegSplitter(ffmpegPath string, logger *slog.Logger) *FFmpegSplitter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FFmpegSplitter{ffmpegPath: ffmpegPath, logger: logger}
}

// Split implements Splitter.Split using ffmpeg silencedetect and segment extraction.
func (s *FFmpegSplitter) Split(ctx context.Context, inputPath, outputDir string, opts SplitOpts) ([]string, error) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("input file does not exist: %s", inputPath)
	}

	duration, err := s.ProbeDuration(ctx, inputPath)
	if err != nil {
		return nil, fmt.Errorf("get audio duration: %w", err)
	}

	// A failed or unparseable silence pass yields an empty interval list,
	// which makes the whole stream a single span.
	silences := s.DetectSilences(ctx, inputPath, opts)

	spans := BuildSpans(duration, silences, opts)
	if len(spans) == 0 {
		return nil, nil
	}

	return s.ExportSpans(ctx, inputPath, outputDir, spans)
}

// ProbeDuration returns the duration of an audio file in seconds.
func (s *FFmpegSplitter) ProbeDuration(ctx context.Context, inputPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, s.ffmpegPath,
		"-i", inputPath,
		"-hide_banner",
		"-f", "null", "-",
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	// ffmpeg exits non-zero with a null output sink; the duration line is
	// still written to stderr.
	_ = cmd.Run()

	return parseDurationOutput(stderr.String())
}

// parseDurationOutput extracts "Duration: HH:MM:SS.cc" from ffmpeg stderr.
func parseDurationOutput(output string) (float64, error) {
	re := regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+)\.(\d+)`)
	matches := re.FindStringSubmatch(output)
	if len(matches) < 5 {
		return 0, fmt.Errorf("could not parse duration from ffmpeg output: %s", output)
	}

	hours, _ := strconv.ParseFloat(matches[1], 64)
	minutes, _ := strconv.ParseFloat(matches[2], 64)
	seconds, _ := strconv.ParseFloat(matches[3], 64)
	frac, _ := strconv.ParseFloat(matches[4], 64)

	divisor := 1.0
	for range len(matches[4]) {
		divisor *= 10
	}

	return hours*3600 + minutes*60 + seconds + frac/divisor, nil
}

// DetectSilences runs ffmpeg silencedetect over the audio and returns the
// detected silence intervals in order. On any invocation or parse failure it
// returns an empty list so the caller treats the whole stream as one span.
func (s *FFmpegSplitter) DetectSilences(ctx context.Context, inputPath string, opts SplitOpts) []Interval {
	noise := opts.NoiseThreshDB
	if noise == 0 {
		noise = DefaultSplitOpts().NoiseThreshDB
	}
	minSilence := opts.MinSilenceSec
	if minSilence <= 0 {
		minSilence = DefaultSplitOpts().MinSilenceSec
	}

	filter := silenceFilter(noise, minSilence)

	cmd := exec.CommandContext(ctx, s.ffmpegPath,
		"-i", inputPath,
		"-af", filter,
		"-f", "null",
		"-hide_banner",
		"-",
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil && stderr.Len() == 0 {
		s.logger.Warn("silence detection failed, treating stream as one span",
			slog.String("input", inputPath),
			slog.String("error", err.Error()),
		)
		return nil
	}

	return ParseSilenceOutput(stderr.String())
}

// silenceFilter formats the silencedetect filter expression. Fractional
// thresholds are passed through unchanged.
func silenceFilter(noiseDB, minSilenceSec float64) string {
	return fmt.Sprintf("silencedetect=noise=%gdB:d=%g", noiseDB, minSilenceSec)
}

// ParseSilenceOutput parses ffmpeg silencedetect event lines into intervals.
// Each silence_start is paired with the next silence_end. An unmatched
// trailing silence_start (the stream ends during silence) is discarded, not
// closed at end of stream.
func ParseSilenceOutput(output string) []Interval {
	startRe := regexp.MustCompile(`silence_start:\s*([\d.]+)`)
	endRe := regexp.MustCompile(`silence_end:\s*([\d.]+)`)

	var intervals []Interval
	var currentStart float64
	hasStart := false

	for line := range strings.SplitSeq(output, "\n") {
		if m := startRe.FindStringSubmatch(line); len(m) > 1 {
			val, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			currentStart = val
			hasStart = true
		}

		if m := endRe.FindStringSubmatch(line); len(m) > 1 && hasStart {
			val, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			intervals = append(intervals, Interval{Start: currentStart, End: val})
			hasStart = false
		}
	}

	return intervals
}

// ExportSpans extracts each span from the source audio into an independent
// M4A chunk file in outputDir. A failed export is logged and skipped; the
// returned paths preserve span order and may be fewer than the input spans.
func (s *FFmpegSplitter) ExportSpans(ctx context.Context, inputPath, outputDir string, spans []Span) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))

	var chunks []string
	for i, span := range spans {
		outputPath := filepath.Join(outputDir, ChunkFileName(base, i+1))

		if err := s.extractSpan(ctx, inputPath, outputPath, span); err != nil {
			s.logger.Warn("chunk export failed, skipping span",
				slog.Int("index", i+1),
				slog.Float64("start", span.Start),
				slog.Float64("end", span.End),
				slog.String("error", err.Error()),
			)
			continue
		}

		chunks = append(chunks, outputPath)
	}

	return chunks, nil
}

// ChunkFileName returns the file name for the n-th exported chunk (1-based).
func ChunkFileName(base string, n int) string {
	return fmt.Sprintf("%s_chunk_%02d.m4a", base, n)
}

// extractSpan extracts a time-sliced region of audio to a new file.
func (s *FFmpegSplitter) extractSpan(ctx context.Context, inputPath, outputPath string, span Span) error {
	args := []string{
		"-y", // Overwrite output
		"-ss", fmt.Sprintf("%.3f", span.Start),
		"-t", fmt.Sprintf("%.3f", span.Duration()),
		"-i", inputPath,
		"-c", "copy", // AAC stream copy, no re-encoding
		outputPath,
	}

	cmd := exec.CommandContext(ctx, s.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg error: %w, stderr: %s", err, stderr.String())
	}

	return nil
}

// Verify interface implementation at compile time.
var _ Splitter = (*FFmpegSplitter)(nil)
