package youtube

import (
	"regexp"
	"strings"
)

var (
	srtTimestampRe = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}[,.]\d{3}\s*-->`)
	srtCounterRe   = regexp.MustCompile(`^\d+$`)
	srtTagRe       = regexp.MustCompile(`<[^>]+>`)
)

// ParseSRT converts SRT subtitle content into plain transcript text.
// Cue counters and timestamp lines are dropped, inline markup is stripped,
// and consecutive duplicate lines (common in automatic captions, where cues
// overlap) are collapsed.
func ParseSRT(content string) string {
	var lines []string
	prev := ""

	for line := range strings.SplitSeq(content, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(line, "\uFEFF"))
		if line == "" || srtCounterRe.MatchString(line) || srtTimestampRe.MatchString(line) {
			continue
		}

		line = strings.TrimSpace(srtTagRe.ReplaceAllString(line, ""))
		if line == "" || line == prev {
			continue
		}

		lines = append(lines, line)
		prev = line
	}

	return strings.Join(lines, "\n")
}
