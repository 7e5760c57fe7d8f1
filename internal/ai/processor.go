package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/getoutvideo/getoutvideo-api/internal/extract"
	"github.com/getoutvideo/getoutvideo-api/internal/gemini"
)

// Static errors for refinement processing.
var (
	// ErrGeneration is returned when the generation service fails for a chunk.
	ErrGeneration = errors.New("ai: generation failed")
	// ErrFileOperation is returned when the output file cannot be written.
	ErrFileOperation = errors.New("ai: file operation failed")
)

// filenameSanitizeRe matches characters that are unsafe in file names.
var filenameSanitizeRe = regexp.MustCompile(`[\\/*?:"<>|]`)

// Result records one completed (video, style) refinement.
type Result struct {
	Transcript     extract.VideoTranscript
	StyleName      string
	OutputFilePath string
	ProcessingTime time.Duration
	ChunkCount     int
	InputTokens    int
	OutputTokens   int
	Cost           float64
	CreatedAt      time.Time
}

// ProcessorParams configures a Processor.
type ProcessorParams struct {
	// OutputDir is where styled Markdown files are written.
	OutputDir string
	// OutputLanguage substitutes the [Language] placeholder in prompts.
	OutputLanguage string
	// ChunkSize is the word budget per generation request.
	ChunkSize int
	// ModelName is used for cost lookup. It should match the model the
	// generation client is configured with.
	ModelName string
	// Pricing overrides DefaultPricing when non-nil.
	Pricing PricingTable
}

// Processor refines transcripts into styled documents. Videos, styles, and
// chunks are processed sequentially; a generation failure aborts only the
// (video, style) pair it occurred in.
type Processor struct {
	client    gemini.Client
	outputDir string
	language  string
	chunkSize int
	modelName string
	pricing   PricingTable
	logger    *slog.Logger
}

// NewProcessor creates a Processor backed by the given generation client.
func NewProcessor(client gemini.Client, params ProcessorParams, logger *slog.Logger) *Processor {
	if params.ChunkSize <= 0 {
		params.ChunkSize = DefaultChunkSize
	}
	if params.OutputLanguage == "" {
		params.OutputLanguage = "English"
	}
	if params.Pricing == nil {
		params.Pricing = DefaultPricing
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Processor{
		client:    client,
		outputDir: params.OutputDir,
		language:  params.OutputLanguage,
		chunkSize: params.ChunkSize,
		modelName: params.ModelName,
		pricing:   params.Pricing,
		logger:    logger,
	}
}

// ProcessTranscripts refines each transcript with each requested style and
// writes one Markdown file per completed (video, style) pair. An empty style
// list means all registered styles; unknown style names fail before any
// processing starts. Transcripts with no text are skipped entirely rather
// than producing header-only files. On cancellation the slice holds only results completed
// before cancellation was observed, and the context error is returned.
func (p *Processor) ProcessTranscripts(ctx context.Context, transcripts []extract.VideoTranscript, styles []string, obs Observer) ([]Result, error) {
	resolved, err := ResolveStyles(styles)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(p.outputDir, 0750); err != nil {
		return nil, fmt.Errorf("%w: create output directory: %v", ErrFileOperation, err)
	}

	total := len(transcripts) * len(resolved)
	completed := 0

	var results []Result
	for vi, transcript := range transcripts {
		if err := ctx.Err(); err != nil {
			safeStatus(obs, "Processing cancelled")
			return results, fmt.Errorf("ai: processing cancelled: %w", err)
		}

		safeStatus(obs, fmt.Sprintf("Processing video %d/%d: %s", vi+1, len(transcripts), transcript.Title))

		if strings.TrimSpace(transcript.TranscriptText) == "" {
			p.logger.Warn("skipping video with empty transcript",
				slog.String("video", transcript.Title),
			)
			safeStatus(obs, fmt.Sprintf("Skipping %s: transcript is empty", transcript.Title))
			completed += len(resolved)
			safeProgress(obs, completed*100/total)
			continue
		}

		for _, style := range resolved {
			if err := ctx.Err(); err != nil {
				safeStatus(obs, "Processing cancelled")
				return results, fmt.Errorf("ai: processing cancelled: %w", err)
			}

			result, err := p.processStyle(ctx, transcript, style, vi+1, len(transcripts), obs)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					safeStatus(obs, "Processing cancelled")
					return results, fmt.Errorf("ai: processing cancelled: %w", err)
				}

				// A failed style does not abort sibling styles or videos.
				p.logger.Error("style processing failed",
					slog.String("video", transcript.Title),
					slog.String("style", style),
					slog.String("error", err.Error()),
				)
				safeStatus(obs, fmt.Sprintf("Style %q failed for %s: %v", style, transcript.Title, err))
				completed++
				continue
			}

			results = append(results, result)
			completed++
			safeProgress(obs, completed*100/total)
			safeStatus(obs, fmt.Sprintf("Completed style %q for %s", style, transcript.Title))
		}

		safeStatus(obs, fmt.Sprintf("Completed video %d/%d: %s", vi+1, len(transcripts), transcript.Title))
	}

	return results, nil
}

// processStyle refines one transcript with one style and writes the output
// file. Cancellation observed before a chunk discards the partial buffer.
func (p *Processor) processStyle(ctx context.Context, transcript extract.VideoTranscript, style string, videoIndex, totalVideos int, obs Observer) (Result, error) {
	template, err := PromptForStyle(style)
	if err != nil {
		return Result{}, err
	}

	started := time.Now()
	chunks := SplitIntoChunks(transcript.TranscriptText, p.chunkSize)

	var buffer strings.Builder
	inputTokens := 0
	outputTokens := 0

	prompt := strings.ReplaceAll(template, "[Language]", p.language)

	for ci, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("style %q cancelled: %w", style, err)
		}

		safeStatus(obs, fmt.Sprintf("Generating style %q for video %d/%d, chunk %d/%d",
			style, videoIndex, totalVideos, ci+1, len(chunks)))

		gen, err := p.client.Generate(ctx, prompt+"\n\n"+chunk)
		if err != nil {
			return Result{}, fmt.Errorf("%w: style %q chunk %d: %v", ErrGeneration, style, ci+1, err)
		}

		buffer.WriteString(gen.Text)
		buffer.WriteString("\n\n")
		if gen.Usage != nil {
			inputTokens += gen.Usage.PromptTokens
			outputTokens += gen.Usage.CompletionTokens
		}
	}

	outputPath, err := p.writeOutput(transcript, style, strings.TrimSpace(buffer.String()))
	if err != nil {
		return Result{}, err
	}

	return Result{
		Transcript:     transcript,
		StyleName:      style,
		OutputFilePath: outputPath,
		ProcessingTime: time.Since(started),
		ChunkCount:     len(chunks),
		InputTokens:    inputTokens,
		OutputTokens:   outputTokens,
		Cost:           p.pricing.Cost(inputTokens, outputTokens, p.modelName),
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// writeOutput writes the styled document as a Markdown file and returns its path.
func (p *Processor) writeOutput(transcript extract.VideoTranscript, style, body string) (string, error) {
	filename := fmt.Sprintf("%s [%s].md", SanitizeFilename(transcript.Title), style)
	outputPath := filepath.Join(p.outputDir, filename)

	content := fmt.Sprintf("# %s\n\n**Original Video URL:** %s\n\n%s",
		transcript.Title, transcript.URL, body)

	if err := os.WriteFile(outputPath, []byte(content), 0600); err != nil {
		return "", fmt.Errorf("%w: write %s: %v", ErrFileOperation, outputPath, err)
	}

	p.logger.Info("wrote styled output",
		slog.String("path", outputPath),
		slog.String("style", style),
	)

	return outputPath, nil
}

// SanitizeFilename replaces characters that are unsafe in file names.
func SanitizeFilename(name string) string {
	return filenameSanitizeRe.ReplaceAllString(name, "_")
}
