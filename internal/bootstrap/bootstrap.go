// Package bootstrap provides dependency initialization for the GetOutVideo API.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/getoutvideo/getoutvideo-api/internal/ai"
	"github.com/getoutvideo/getoutvideo-api/internal/audio"
	"github.com/getoutvideo/getoutvideo-api/internal/config"
	"github.com/getoutvideo/getoutvideo-api/internal/extract"
	"github.com/getoutvideo/getoutvideo-api/internal/gemini"
	"github.com/getoutvideo/getoutvideo-api/internal/job"
	"github.com/getoutvideo/getoutvideo-api/internal/storage"
	"github.com/getoutvideo/getoutvideo-api/internal/transcribe"
	"github.com/getoutvideo/getoutvideo-api/internal/youtube"
)

// Dependencies holds all initialized dependencies for the application.
type Dependencies struct {
	URLService *job.ProcessURLService
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	fetcher := youtube.NewYTDLPFetcher(cfg.YTDLPPath, logger)
	splitter := audio.NewFFmpegSplitter(cfg.FFmpegPath, logger)

	transcriber, err := initTranscriber(cfg, logger)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewLocalStorage(cfg.TempDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	extractor := extract.NewExtractor(fetcher, splitter, transcriber, store, extract.ExtractorParams{
		UseAIFallback:    cfg.UseAIFallback,
		CleanupTempFiles: cfg.CleanupTempFile,
	}, logger)

	refiners, err := refinerProvider(cfg, logger)
	if err != nil {
		return nil, err
	}

	uploader, err := initUploader(cfg, logger)
	if err != nil {
		return nil, err
	}

	repo, err := initRepository(cfg, logger)
	if err != nil {
		return nil, err
	}

	svc := job.NewProcessURLService(repo, fetcher, extractor, refiners, uploader, logger)

	return &Dependencies{
		URLService: svc,
	}, nil
}

// initTranscriber creates the speech-to-text client when fallback is enabled.
func initTranscriber(cfg *config.Config, logger *slog.Logger) (transcribe.Transcriber, error) {
	if !cfg.UseAIFallback {
		return nil, nil
	}

	client, err := transcribe.NewOpenAIClient(cfg.OpenAIAPIKey)
	if err != nil {
		return nil, fmt.Errorf("create transcription client: %w", err)
	}
	logger.Info("speech-to-text fallback enabled",
		slog.String("model", transcribe.DefaultModel),
	)
	return client, nil
}

// refinerProvider builds refiners on demand. Per-job overrides for the output
// language, model, and chunk size take a fresh generation client so the
// configured defaults stay untouched.
func refinerProvider(cfg *config.Config, logger *slog.Logger) (job.RefinerProvider, error) {
	// Validate the default client configuration up front so a bad API key
	// fails at startup, not on the first job.
	defaultClient, err := gemini.NewHTTPClient(cfg.GeminiAPIKey, gemini.WithModel(cfg.ModelName))
	if err != nil {
		return nil, fmt.Errorf("create generation client: %w", err)
	}

	defaultRefiner := ai.NewProcessor(defaultClient, ai.ProcessorParams{
		OutputDir:      cfg.OutputDir,
		OutputLanguage: cfg.OutputLanguage,
		ChunkSize:      cfg.ChunkSize,
		ModelName:      defaultClient.Model(),
	}, logger)

	return func(outputLanguage, modelName string, chunkSize int) job.Refiner {
		if outputLanguage == "" && modelName == "" && chunkSize <= 0 {
			return defaultRefiner
		}

		if outputLanguage == "" {
			outputLanguage = cfg.OutputLanguage
		}
		if modelName == "" {
			modelName = cfg.ModelName
		}
		if chunkSize <= 0 {
			chunkSize = cfg.ChunkSize
		}

		client, err := gemini.NewHTTPClient(cfg.GeminiAPIKey, gemini.WithModel(modelName))
		if err != nil {
			// The API key was already validated; fall back to the defaults.
			logger.Error("override generation client failed, using defaults",
				slog.String("error", err.Error()),
			)
			return defaultRefiner
		}

		return ai.NewProcessor(client, ai.ProcessorParams{
			OutputDir:      cfg.OutputDir,
			OutputLanguage: outputLanguage,
			ChunkSize:      chunkSize,
			ModelName:      client.Model(),
		}, logger)
	}, nil
}

// initUploader creates the S3 uploader when S3 is configured. A nil uploader
// means finished outputs stay on local disk only.
func initUploader(cfg *config.Config, logger *slog.Logger) (job.Uploader, error) {
	if !cfg.S3Enabled() {
		logger.Info("local output only, S3 upload disabled")
		return nil, nil
	}

	s3Store, err := storage.NewS3Storage(cfg.TempDir, storage.S3Config{
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create S3 storage: %w", err)
	}
	logger.Info("S3 upload configured",
		slog.String("bucket", cfg.S3Bucket),
		slog.String("region", cfg.S3Region),
	)
	return s3Store, nil
}

// initRepository creates the job repository: SQLite when DB_PATH is set,
// in-memory otherwise.
func initRepository(cfg *config.Config, logger *slog.Logger) (job.Repository, error) {
	if cfg.DBPath == "" {
		logger.Info("in-memory job repository configured")
		return job.NewMemoryRepository(), nil
	}

	repo, err := job.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open job database: %w", err)
	}
	logger.Info("SQLite job repository configured",
		slog.String("path", cfg.DBPath),
	)
	return repo, nil
}
