package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Static errors for OpenAI client operations.
var (
	// ErrAPIKeyRequired is returned when no API key is provided.
	ErrAPIKeyRequired = errors.New("openai: API key is required")
	// ErrServerError is returned when the server returns a 5xx status code.
	ErrServerError = errors.New("openai: server error")
	// ErrRateLimited is returned when the server returns a 429 status code.
	ErrRateLimited = errors.New("openai: rate limited")
	// ErrRequestFailed is returned when the request fails with a non-2xx status code.
	ErrRequestFailed = errors.New("openai: request failed")
)

// DefaultModel is the transcription model used when none is configured.
const DefaultModel = "gpt-4o-transcribe"

// OpenAIClient is the HTTP implementation of the Transcriber interface,
// backed by the OpenAI audio transcription endpoint.
type OpenAIClient struct {
	apiKey      string
	model       string
	baseURL     string
	httpClient  *http.Client
	maxRetries  int
	baseBackoff time.Duration
}

// OpenAIOption is a function that configures an OpenAIClient.
type OpenAIOption func(*OpenAIClient)

// WithModel sets the transcription model identifier.
func WithModel(model string) OpenAIOption {
	return func(c *OpenAIClient) {
		c.model = model
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) OpenAIOption {
	return func(c *OpenAIClient) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL for the OpenAI API.
func WithBaseURL(url string) OpenAIOption {
	return func(c *OpenAIClient) {
		c.baseURL = url
	}
}

// WithMaxRetries sets the maximum number of retries for transient failures.
func WithMaxRetries(n int) OpenAIOption {
	return func(c *OpenAIClient) {
		c.maxRetries = n
	}
}

// WithBaseBackoff sets the initial backoff duration for retries.
func WithBaseBackoff(d time.Duration) OpenAIOption {
	return func(c *OpenAIClient) {
		c.baseBackoff = d
	}
}

// NewOpenAIClient creates a new OpenAI transcription client.
// The API key must be provided; an empty key returns ErrAPIKeyRequired.
func NewOpenAIClient(apiKey string, opts ...OpenAIOption) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}

	c := &OpenAIClient{
		apiKey:      apiKey,
		model:       DefaultModel,
		baseURL:     "https://api.openai.com/v1",
		httpClient:  &http.Client{Timeout: 300 * time.Second},
		maxRetries:  3,
		baseBackoff: 1 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// transcriptionResponse is the response body of the transcription endpoint.
type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads one audio file and returns the transcribed text.
func (c *OpenAIClient) Transcribe(ctx context.Context, audioPath string) (string, error) {
	var lastErr error
	backoff := c.baseBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("openai: context cancelled: %w", ctx.Err())
			case <-time.After(backoff):
				backoff *= 2 // Exponential backoff
			}
		}

		text, err := c.transcribeOnce(ctx, audioPath)
		if err == nil {
			return text, nil
		}

		if !isRetryable(err) {
			return "", err
		}

		lastErr = err
	}

	return "", fmt.Errorf("openai: max retries exceeded: %w", lastErr)
}

// transcribeOnce performs a single multipart upload request.
func (c *OpenAIClient) transcribeOnce(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath) // #nosec G304 - path is produced by the pipeline
	if err != nil {
		return "", fmt.Errorf("openai: open audio file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", fmt.Errorf("openai: create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("openai: copy audio data: %w", err)
	}
	if err := mw.WriteField("model", c.model); err != nil {
		return "", fmt.Errorf("openai: write model field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("openai: close multipart writer: %w", err)
	}

	url := c.baseURL + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &retryableError{err: fmt.Errorf("openai: request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &retryableError{err: fmt.Errorf("openai: read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode >= 500 {
			return "", &retryableError{err: fmt.Errorf("%w %d: %s", ErrServerError, resp.StatusCode, string(respBody))}
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return "", &retryableError{err: fmt.Errorf("%w: %s", ErrRateLimited, string(respBody))}
		}
		return "", fmt.Errorf("%w with status %d: %s", ErrRequestFailed, resp.StatusCode, string(respBody))
	}

	var parsed transcriptionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("openai: unmarshal response: %w", err)
	}

	return parsed.Text, nil
}

// retryableError wraps errors that should be retried.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// isRetryable returns true if the error should be retried.
func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// Verify interface implementation at compile time.
var _ Transcriber = (*OpenAIClient)(nil)
