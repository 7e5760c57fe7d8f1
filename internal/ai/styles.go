// Package ai refines raw transcripts into styled Markdown documents using a
// generation service: chunking, prompt construction, cost estimation, and
// per-style output writing.
package ai

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownStyle is returned when a requested style name is not registered.
var ErrUnknownStyle = errors.New("ai: unknown style")

// Style names accepted by the refinement pipeline.
const (
	StyleBalanced    = "Balanced and Detailed"
	StyleSummary     = "Summary"
	StyleEducational = "Educational"
	StyleNarrative   = "Narrative Rewriting"
	StyleQA          = "Q&A Generation"
)

// stylePrompts maps each style name to its prompt template. The [Language]
// placeholder is substituted with the configured output language before the
// chunk text is appended.
var stylePrompts = map[string]string{
	StyleBalanced: `Turn the following unorganized text into a well-structured, readable format while retaining EVERY detail, fact, and point of the original text. Write the output in [Language]. Use clear headings, paragraphs, and formatting to improve readability, but do not summarize, shorten, or omit anything.`,

	StyleSummary: `Summarize the following transcript into a concise overview that captures the main topics, key arguments, and conclusions. Write the summary in [Language]. Keep it brief but complete: a reader should understand what the video covered without watching it.`,

	StyleEducational: `Transform the following transcript into structured educational notes in [Language]. Organize the content into sections with headings, define key terms, list important facts as bullet points, and add a short recap at the end of each section.`,

	StyleNarrative: `Rewrite the following transcript as a flowing narrative article in [Language]. Preserve all the information and the speaker's reasoning, but convert spoken language into polished prose with smooth transitions between topics.`,

	StyleQA: `Convert the following transcript into a question-and-answer document in [Language]. Derive the questions from the topics the speaker addresses and answer each one using only information from the transcript. Format each pair as a bolded question followed by its answer.`,
}

// AvailableStyles returns all registered style names in stable order.
func AvailableStyles() []string {
	names := make([]string, 0, len(stylePrompts))
	for name := range stylePrompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PromptForStyle returns the prompt template for a registered style.
func PromptForStyle(name string) (string, error) {
	prompt, ok := stylePrompts[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStyle, name)
	}
	return prompt, nil
}

// ResolveStyles validates the requested style names against the registry.
// An empty request means all registered styles. Any unknown name fails the
// whole resolution before processing starts.
func ResolveStyles(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return AvailableStyles(), nil
	}

	for _, name := range requested {
		if _, ok := stylePrompts[name]; !ok {
			return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownStyle, name, AvailableStyles())
		}
	}

	return requested, nil
}
