// Package server provides the HTTP server for the GetOutVideo API.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

// CreateJobRequest is the HTTP request body for creating a new processing job.
type CreateJobRequest struct {
	// URL is the YouTube video or playlist URL to process.
	URL string `json:"url" validate:"required,url"`
	// Styles is the list of refinement styles to apply (empty means all).
	Styles []string `json:"styles"`
	// OutputLanguage overrides the configured output language.
	OutputLanguage string `json:"output_language"`
	// ModelName overrides the configured generation model.
	ModelName string `json:"model_name"`
	// ChunkSize overrides the configured chunk word budget.
	ChunkSize int `json:"chunk_size" validate:"omitempty,min=1"`
	// StartIndex selects the first playlist entry to process (1-based).
	StartIndex int `json:"start_index" validate:"omitempty,min=1"`
	// EndIndex selects the last playlist entry to process (inclusive).
	EndIndex int `json:"end_index" validate:"omitempty,min=0"`
}

// CreateJobResponse is the HTTP response after creating a job.
type CreateJobResponse struct {
	// ID is the unique identifier for the created job.
	ID string `json:"id"`
	// Status is the initial job status.
	Status string `json:"status"`
}

// StyleResultResponse is one completed (video, style) output within a job.
type StyleResultResponse struct {
	// VideoTitle is the title of the source video.
	VideoTitle string `json:"video_title"`
	// VideoURL is the source video URL.
	VideoURL string `json:"video_url"`
	// Style is the refinement style name.
	Style string `json:"style"`
	// OutputFilePath is the written Markdown file on the server.
	OutputFilePath string `json:"output_file_path"`
	// OutputURL is the S3 URL of the output, when upload is enabled.
	OutputURL string `json:"output_url,omitempty"`
	// InputTokens and OutputTokens are the accumulated token counts.
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	// Cost is the estimated generation cost in USD.
	Cost float64 `json:"cost"`
}

// JobResponse is the HTTP response for getting job details.
type JobResponse struct {
	// ID is the unique identifier for the job.
	ID string `json:"id"`
	// URL is the video or playlist URL being processed.
	URL string `json:"url"`
	// Status is the current job status.
	Status string `json:"status"`
	// Progress is the percentage of completion (0-100).
	Progress int `json:"progress"`
	// StatusMessage is the most recent status line.
	StatusMessage string `json:"status_message,omitempty"`
	// Error contains any error message if the job failed.
	Error string `json:"error,omitempty"`
	// Results holds one entry per completed (video, style) output.
	Results []StyleResultResponse `json:"results,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
