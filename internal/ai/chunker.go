package ai

import "strings"

// DefaultChunkSize is the word budget per text chunk.
const DefaultChunkSize = 70000

// SplitIntoChunks splits text into consecutive word-bounded chunks of at most
// chunkSize words each. Words are never split; the last chunk may be smaller
// than the budget; chunks never overlap. Joining the chunks with single spaces
// reproduces the original word sequence.
func SplitIntoChunks(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(words)+chunkSize-1)/chunkSize)
	for start := 0; start < len(words); start += chunkSize {
		end := start + chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}

	return chunks
}
