package youtube

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// YTDLPFetcher implements Fetcher using the yt-dlp CLI.
type YTDLPFetcher struct {
	ytdlpPath string
	logger    *slog.Logger
}

// NewYTDLPFetcher creates a new YTDLPFetcher.
// If ytdlpPath is empty, it defaults to "yt-dlp" (found in PATH).
func NewYTDLPFetcher(ytdlpPath string, logger *slog.Logger) *YTDLPFetcher {
	if ytdlpPath == "" {
		ytdlpPath = "yt-dlp"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &YTDLPFetcher{ytdlpPath: ytdlpPath, logger: logger}
}

// FetchMetadata returns the title and duration for a video URL.
func (f *YTDLPFetcher) FetchMetadata(ctx context.Context, url string) (Metadata, error) {
	out, err := f.run(ctx,
		"--no-playlist",
		"--skip-download",
		"--print", "%(title)s",
		"--print", "%(duration)s",
		url,
	)
	if err != nil {
		return Metadata{}, fmt.Errorf("fetch metadata: %w", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 1 || lines[0] == "" {
		return Metadata{}, fmt.Errorf("fetch metadata: empty yt-dlp output for %s", url)
	}

	meta := Metadata{Title: strings.TrimSpace(lines[0])}
	if len(lines) > 1 {
		// Duration is "NA" for live streams; keep zero in that case.
		if d, err := strconv.ParseFloat(strings.TrimSpace(lines[1]), 64); err == nil {
			meta.DurationSec = d
		}
	}

	return meta, nil
}

// FetchPlaylist expands a playlist URL into the ordered list of video URLs.
func (f *YTDLPFetcher) FetchPlaylist(ctx context.Context, url string) ([]string, error) {
	out, err := f.run(ctx,
		"--flat-playlist",
		"--skip-download",
		"--print", "%(webpage_url)s",
		url,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch playlist: %w", err)
	}

	var urls []string
	for line := range strings.SplitSeq(out, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("fetch playlist: no entries for %s", url)
	}

	return urls, nil
}

// FetchCaptions downloads the caption track as SRT and converts it to plain text.
// Manual subtitles are preferred; automatic captions are accepted as fallback.
func (f *YTDLPFetcher) FetchCaptions(ctx context.Context, url, lang string) (string, error) {
	if lang == "" {
		lang = "en"
	}

	tmpDir, err := os.MkdirTemp("", "getoutvideo-subs-*")
	if err != nil {
		return "", fmt.Errorf("create captions temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	_, err = f.run(ctx,
		"--no-playlist",
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", lang+".*,"+lang,
		"--convert-subs", "srt",
		"-o", filepath.Join(tmpDir, "captions"),
		url,
	)
	if err != nil {
		return "", fmt.Errorf("fetch captions: %w", err)
	}

	matches, err := filepath.Glob(filepath.Join(tmpDir, "captions*.srt"))
	if err != nil || len(matches) == 0 {
		return "", ErrNoCaptions
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		return "", fmt.Errorf("read captions file: %w", err)
	}

	text := ParseSRT(string(data))
	if text == "" {
		return "", ErrNoCaptions
	}

	return text, nil
}

// FetchAudio downloads the audio track of a video as an AAC-in-M4A file.
func (f *YTDLPFetcher) FetchAudio(ctx context.Context, url, destPath string) error {
	if _, err := os.Stat(destPath); err == nil {
		f.logger.Info("audio file already exists, skipping download",
			slog.String("path", destPath),
		)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0750); err != nil {
		return fmt.Errorf("create audio directory: %w", err)
	}

	// yt-dlp appends the final extension itself, so the output template is
	// the destination path without ".m4a".
	template := strings.TrimSuffix(destPath, filepath.Ext(destPath)) + ".%(ext)s"

	_, err := f.run(ctx,
		"--no-playlist",
		"-f", "bestaudio/best",
		"--extract-audio",
		"--audio-format", "m4a",
		"--audio-quality", "128K",
		"-o", template,
		url,
	)
	if err != nil {
		return fmt.Errorf("download audio: %w", err)
	}

	if _, err := os.Stat(destPath); err != nil {
		return fmt.Errorf("download audio: expected output file not found: %s", destPath)
	}

	return nil
}

// run executes yt-dlp with the given arguments and returns stdout.
func (f *YTDLPFetcher) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, f.ytdlpPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("yt-dlp error: %w, stderr: %s", err, stderr.String())
	}

	return stdout.String(), nil
}

// Verify interface implementation at compile time.
var _ Fetcher = (*YTDLPFetcher)(nil)
