// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrGeminiAPIKeyRequired is returned when GEMINI_API_KEY is not set.
	ErrGeminiAPIKeyRequired = errors.New("config: GEMINI_API_KEY is required")
	// ErrOpenAIAPIKeyRequired is returned when USE_AI_FALLBACK is enabled
	// without OPENAI_API_KEY.
	ErrOpenAIAPIKeyRequired = errors.New("config: OPENAI_API_KEY is required when USE_AI_FALLBACK is enabled")
	// ErrInvalidChunkSize is returned when CHUNK_SIZE is not positive.
	ErrInvalidChunkSize = errors.New("config: CHUNK_SIZE must be > 0")
	// ErrEmptyOutputLanguage is returned when OUTPUT_LANGUAGE is empty.
	ErrEmptyOutputLanguage = errors.New("config: OUTPUT_LANGUAGE must not be empty")
	// ErrInvalidStartIndex is returned when START_INDEX is below 1.
	ErrInvalidStartIndex = errors.New("config: START_INDEX must be >= 1")
	// ErrInvalidEndIndex is returned when END_INDEX is negative or below START_INDEX.
	ErrInvalidEndIndex = errors.New("config: END_INDEX must be 0 or >= START_INDEX")
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port int `env:"PORT, default=8080" json:"port"`

	// API keys
	GeminiAPIKey string `env:"GEMINI_API_KEY" json:"-"` // Masked in JSON
	OpenAIAPIKey string `env:"OPENAI_API_KEY" json:"-"` // Masked in JSON

	// Directory settings
	OutputDir string `env:"OUTPUT_DIR, default=./output" json:"output_dir"`
	TempDir   string `env:"TEMP_DIR" json:"temp_dir"`

	// Processing settings
	ChunkSize       int    `env:"CHUNK_SIZE, default=70000" json:"chunk_size"`
	ModelName       string `env:"MODEL_NAME, default=gemini-2.5-flash" json:"model_name"`
	OutputLanguage  string `env:"OUTPUT_LANGUAGE, default=English" json:"output_language"`
	Styles          string `env:"STYLES, default=all" json:"styles"`
	StartIndex      int    `env:"START_INDEX, default=1" json:"start_index"`
	EndIndex        int    `env:"END_INDEX, default=0" json:"end_index"`
	UseAIFallback   bool   `env:"USE_AI_FALLBACK, default=false" json:"use_ai_fallback"`
	CleanupTempFile bool   `env:"CLEANUP_TEMP_FILES, default=true" json:"cleanup_temp_files"`

	// External tool overrides (found in PATH when empty)
	FFmpegPath string `env:"FFMPEG_PATH" json:"ffmpeg_path,omitempty"`
	YTDLPPath  string `env:"YTDLP_PATH" json:"ytdlp_path,omitempty"`

	// Optional job persistence (in-memory repository when empty)
	DBPath string `env:"DB_PATH" json:"db_path,omitempty"`

	// Optional S3 settings for uploading finished outputs
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// StyleList returns the configured styles as a slice.
// An empty or "all" value returns nil, meaning every registered style.
func (c *Config) StyleList() []string {
	s := strings.TrimSpace(c.Styles)
	if s == "" || strings.EqualFold(s, "all") {
		return nil
	}
	parts := strings.Split(s, ",")
	styles := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			styles = append(styles, trimmed)
		}
	}
	return styles
}

// Load reads configuration from environment variables using go-envconfig.
// The result is validated; invalid configuration fails before any work starts.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if cfg.TempDir == "" {
		cfg.TempDir = filepath.Join(os.TempDir(), "getoutvideo")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and consistent.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return ErrGeminiAPIKeyRequired
	}
	if c.UseAIFallback && c.OpenAIAPIKey == "" {
		return ErrOpenAIAPIKeyRequired
	}
	if c.ChunkSize <= 0 {
		return ErrInvalidChunkSize
	}
	if strings.TrimSpace(c.OutputLanguage) == "" {
		return ErrEmptyOutputLanguage
	}
	if c.StartIndex < 1 {
		return ErrInvalidStartIndex
	}
	if c.EndIndex < 0 || (c.EndIndex > 0 && c.EndIndex < c.StartIndex) {
		return ErrInvalidEndIndex
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, OutputDir: %s, TempDir: %s, ChunkSize: %d, ModelName: %s, OutputLanguage: %s, Styles: %s, StartIndex: %d, EndIndex: %d, UseAIFallback: %t, CleanupTempFiles: %t, S3Bucket: %s, S3Region: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.OutputDir,
		c.TempDir,
		c.ChunkSize,
		c.ModelName,
		c.OutputLanguage,
		c.Styles,
		c.StartIndex,
		c.EndIndex,
		c.UseAIFallback,
		c.CleanupTempFile,
		c.S3Bucket,
		c.S3Region,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
