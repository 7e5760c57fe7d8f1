// Package extract turns a YouTube video into a raw transcript, preferring
// published captions and falling back to speech-to-text over segmented audio.
package extract

import "strings"

// TranscriptSource identifies how a transcript was obtained.
type TranscriptSource string

const (
	// SourceCaptions means the transcript came from published caption tracks.
	SourceCaptions TranscriptSource = "captions"
	// SourceAISTT means the transcript came from speech-to-text over audio.
	SourceAISTT TranscriptSource = "ai_stt"
)

// VideoTranscript is the raw transcript of one video together with its
// provenance. It is immutable after creation.
type VideoTranscript struct {
	// Title is the video title as reported by the platform.
	Title string
	// URL is the canonical video URL.
	URL string
	// TranscriptText is the full transcript text.
	TranscriptText string
	// Source records whether captions or speech-to-text produced the text.
	Source TranscriptSource
	// DurationSec is the video duration in seconds, when known.
	DurationSec float64
	// WordCount is the number of words in TranscriptText.
	WordCount int
}

// NewVideoTranscript builds a VideoTranscript, deriving the word count from
// the transcript text.
func NewVideoTranscript(title, url, text string, source TranscriptSource, durationSec float64) VideoTranscript {
	return VideoTranscript{
		Title:          title,
		URL:            url,
		TranscriptText: text,
		Source:         source,
		DurationSec:    durationSec,
		WordCount:      len(strings.Fields(text)),
	}
}
