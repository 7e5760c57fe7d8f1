// Package gemini provides a client for the Google Gemini generative
// language API, used to refine raw transcripts into styled documents.
package gemini

import "context"

// Usage reports token consumption for one generation call.
type Usage struct {
	// PromptTokens is the number of tokens in the request prompt.
	PromptTokens int
	// CompletionTokens is the number of tokens in the generated response.
	CompletionTokens int
}

// Generation is the outcome of one text generation call. Usage is nil when
// the API response carried no usage metadata.
type Generation struct {
	Text  string
	Usage *Usage
}

// Client generates text from a prompt.
type Client interface {
	// Generate sends the prompt to the model and returns the generated text
	// together with token usage, when available.
	Generate(ctx context.Context, prompt string) (Generation, error)
}
