// Package youtube provides retrieval of video metadata, captions and audio
// tracks. Implementations shell out to yt-dlp; the rest of the pipeline only
// sees the Fetcher port.
package youtube

import (
	"context"
	"errors"
)

// ErrNoCaptions is returned when a video has no usable caption track.
var ErrNoCaptions = errors.New("youtube: no captions available")

// Metadata describes a single video.
type Metadata struct {
	// Title is the video title as reported by the platform.
	Title string
	// DurationSec is the video duration in seconds (0 when unknown).
	DurationSec float64
}

// Fetcher defines the interface for retrieving video content.
type Fetcher interface {
	// FetchMetadata returns the title and duration for a video URL.
	FetchMetadata(ctx context.Context, url string) (Metadata, error)

	// FetchPlaylist expands a playlist URL into the ordered list of video
	// URLs it contains. A plain video URL yields a single-element list.
	FetchPlaylist(ctx context.Context, url string) ([]string, error)

	// FetchCaptions returns the caption track of a video as plain text.
	// Returns ErrNoCaptions when no manual or automatic captions exist.
	FetchCaptions(ctx context.Context, url, lang string) (string, error)

	// FetchAudio downloads the audio track of a video as an AAC-in-M4A file
	// at destPath. A pre-existing file at destPath is treated as already
	// downloaded and short-circuits the fetch.
	FetchAudio(ctx context.Context, url, destPath string) error
}
