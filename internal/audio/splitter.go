// Package audio provides silence-aware audio segmentation for transcription.
package audio

import "context"

// Interval is a detected silence interval in the source audio, in seconds.
type Interval struct {
	// Start is the silence start offset.
	Start float64
	// End is the silence end offset. End >= Start.
	End float64
}

// Span is a contiguous voiced region of audio selected for independent
// transcription, in seconds from the start of the stream.
type Span struct {
	Start float64
	End   float64
}

// Duration returns the length of the span in seconds.
func (s Span) Duration() float64 {
	return s.End - s.Start
}

// SplitOpts configures silence detection and segmentation.
type SplitOpts struct {
	// NoiseThreshDB is the volume threshold in dB below which audio is
	// considered silence.
	// Default: -30 dB.
	NoiseThreshDB float64

	// MinSilenceSec is the minimum silence duration in seconds to consider
	// for a segment boundary.
	// Default: 0.5 seconds.
	MinSilenceSec float64

	// MinSpanSec is the minimum voiced span length. Shorter spans are
	// dropped, except for sub-spans produced by maximum-length slicing.
	// Default: 5 seconds.
	MinSpanSec float64

	// MaxSpanSec is the maximum span length. Longer spans are sliced into
	// consecutive fixed-length windows; the final remainder window is kept
	// regardless of its length.
	// Default: 600 seconds.
	MaxSpanSec float64
}

// DefaultSplitOpts returns the default options for audio splitting.
func DefaultSplitOpts() SplitOpts {
	return SplitOpts{
		NoiseThreshDB: -30,
		MinSilenceSec: 0.5,
		MinSpanSec:    5,
		MaxSpanSec:    600,
	}
}

// Splitter divides an audio file into chunk files suitable for transcription.
type Splitter interface {
	// Split segments inputPath at silence boundaries and exports each span
	// as an independent audio file in outputDir.
	//
	// Returns paths to the successfully created chunk files in chronological
	// order. The list may be shorter than the computed span list: a failed
	// export is logged and skipped, it does not abort the remaining exports.
	// The caller owns the returned files and is responsible for cleanup.
	Split(ctx context.Context, inputPath, outputDir string, opts SplitOpts) ([]string, error)
}
