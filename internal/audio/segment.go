package audio

// BuildSpans converts silence intervals into an ordered list of voiced spans.
// It is pure and deterministic: identical inputs always yield identical spans.
//
// First pass: walk silences in order keeping the end of the previous silence.
// A voiced gap of at least MinSpanSec becomes a span; the silence is consumed
// either way, so a too-short voiced fragment is dropped together with the
// silence that follows it. A trailing voiced region of at least MinSpanSec
// becomes the final span.
//
// Second pass: spans longer than MaxSpanSec are sliced into consecutive
// MaxSpanSec windows. The remainder window is kept even when it is shorter
// than MinSpanSec.
//
// The result covers a subset of [0, duration]: silence gaps and sub-minimum
// voiced fragments are dropped. The segmentation is lossy by design; its goal
// is usable transcription chunks, not full-stream coverage.
func BuildSpans(duration float64, silences []Interval, opts SplitOpts) []Span {
	minSpan := opts.MinSpanSec
	if minSpan <= 0 {
		minSpan = DefaultSplitOpts().MinSpanSec
	}
	maxSpan := opts.MaxSpanSec
	if maxSpan <= 0 {
		maxSpan = DefaultSplitOpts().MaxSpanSec
	}

	var spans []Span
	lastEnd := 0.0
	for _, silence := range silences {
		if silence.Start-lastEnd >= minSpan {
			spans = append(spans, Span{Start: lastEnd, End: silence.Start})
		}
		lastEnd = silence.End
	}
	if duration-lastEnd >= minSpan {
		spans = append(spans, Span{Start: lastEnd, End: duration})
	}

	var sliced []Span
	for _, span := range spans {
		start := span.Start
		for span.End-start > maxSpan {
			sliced = append(sliced, Span{Start: start, End: start + maxSpan})
			start += maxSpan
		}
		if span.End > start {
			sliced = append(sliced, Span{Start: start, End: span.End})
		}
	}

	return sliced
}
