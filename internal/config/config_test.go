package config

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiredVariables(t *testing.T) {
	// Clear all environment variables
	clearEnv := func() {
		os.Unsetenv("PORT")
		os.Unsetenv("GEMINI_API_KEY")
		os.Unsetenv("OPENAI_API_KEY")
		os.Unsetenv("OUTPUT_DIR")
		os.Unsetenv("TEMP_DIR")
		os.Unsetenv("CHUNK_SIZE")
		os.Unsetenv("MODEL_NAME")
		os.Unsetenv("OUTPUT_LANGUAGE")
		os.Unsetenv("STYLES")
		os.Unsetenv("START_INDEX")
		os.Unsetenv("END_INDEX")
		os.Unsetenv("USE_AI_FALLBACK")
		os.Unsetenv("CLEANUP_TEMP_FILES")
		os.Unsetenv("S3_BUCKET")
		os.Unsetenv("S3_REGION")
		os.Unsetenv("AWS_ACCESS_KEY_ID")
		os.Unsetenv("AWS_SECRET_ACCESS_KEY")
		os.Unsetenv("LOG_FORMAT")
		os.Unsetenv("LOG_LEVEL")
	}

	t.Run("missing GEMINI_API_KEY returns error", func(t *testing.T) {
		clearEnv()

		_, err := Load()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrGeminiAPIKeyRequired)
	})

	t.Run("AI fallback without OPENAI_API_KEY returns error", func(t *testing.T) {
		clearEnv()
		t.Setenv("GEMINI_API_KEY", "test-gemini-key")
		t.Setenv("USE_AI_FALLBACK", "true")

		_, err := Load()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrOpenAIAPIKeyRequired)
	})

	t.Run("all required variables present succeeds", func(t *testing.T) {
		clearEnv()
		t.Setenv("GEMINI_API_KEY", "test-gemini-key")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "test-gemini-key", cfg.GeminiAPIKey)
	})
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-gemini-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "./output", cfg.OutputDir)
	assert.NotEmpty(t, cfg.TempDir)
	assert.Equal(t, 70000, cfg.ChunkSize)
	assert.Equal(t, "gemini-2.5-flash", cfg.ModelName)
	assert.Equal(t, "English", cfg.OutputLanguage)
	assert.Equal(t, "all", cfg.Styles)
	assert.Equal(t, 1, cfg.StartIndex)
	assert.Equal(t, 0, cfg.EndIndex)
	assert.False(t, cfg.UseAIFallback)
	assert.True(t, cfg.CleanupTempFile)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "custom-gemini-key")
	t.Setenv("OPENAI_API_KEY", "custom-openai-key")
	t.Setenv("PORT", "3000")
	t.Setenv("OUTPUT_DIR", "/custom/output")
	t.Setenv("TEMP_DIR", "/custom/temp")
	t.Setenv("CHUNK_SIZE", "50000")
	t.Setenv("MODEL_NAME", "gemini-1.5-pro")
	t.Setenv("OUTPUT_LANGUAGE", "Spanish")
	t.Setenv("STYLES", "Summary,Educational")
	t.Setenv("USE_AI_FALLBACK", "true")
	t.Setenv("CLEANUP_TEMP_FILES", "false")
	t.Setenv("S3_BUCKET", "my-bucket")
	t.Setenv("S3_REGION", "us-east-1")
	t.Setenv("AWS_ACCESS_KEY_ID", "access-key")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret-key")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "/custom/output", cfg.OutputDir)
	assert.Equal(t, "/custom/temp", cfg.TempDir)
	assert.Equal(t, 50000, cfg.ChunkSize)
	assert.Equal(t, "gemini-1.5-pro", cfg.ModelName)
	assert.Equal(t, "Spanish", cfg.OutputLanguage)
	assert.Equal(t, []string{"Summary", "Educational"}, cfg.StyleList())
	assert.True(t, cfg.UseAIFallback)
	assert.False(t, cfg.CleanupTempFile)
	assert.Equal(t, "my-bucket", cfg.S3Bucket)
	assert.Equal(t, "us-east-1", cfg.S3Region)
	assert.Equal(t, "access-key", cfg.AWSAccessKeyID)
	assert.Equal(t, "secret-key", cfg.AWSSecretAccessKey)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidIntegerDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-gemini-key")
	t.Setenv("PORT", "not-a-number")
	t.Setenv("CHUNK_SIZE", "invalid")

	// go-envconfig returns an error when parsing fails
	_, err := Load()
	require.Error(t, err)
}

func TestConfig_S3Enabled(t *testing.T) {
	tests := []struct {
		name     string
		bucket   string
		region   string
		expected bool
	}{
		{"both set", "bucket", "region", true},
		{"only bucket", "bucket", "", false},
		{"only region", "", "region", false},
		{"neither set", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				S3Bucket: tt.bucket,
				S3Region: tt.region,
			}
			assert.Equal(t, tt.expected, cfg.S3Enabled())
		})
	}
}

func TestConfig_StyleList(t *testing.T) {
	tests := []struct {
		name     string
		styles   string
		expected []string
	}{
		{"all keyword", "all", nil},
		{"all uppercase", "ALL", nil},
		{"empty", "", nil},
		{"single style", "Summary", []string{"Summary"}},
		{"multiple styles", "Summary,Educational", []string{"Summary", "Educational"}},
		{"whitespace trimmed", " Summary , Q&A Generation ", []string{"Summary", "Q&A Generation"}},
		{"empty entries dropped", "Summary,,Educational,", []string{"Summary", "Educational"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Styles: tt.styles}
			assert.Equal(t, tt.expected, cfg.StyleList())
		})
	}
}

func TestConfig_String(t *testing.T) {
	cfg := &Config{
		Port:           8080,
		GeminiAPIKey:   "secret-gemini-key",
		OpenAIAPIKey:   "secret-openai-key",
		OutputDir:      "./output",
		TempDir:        "/tmp/test",
		ChunkSize:      70000,
		ModelName:      "gemini-2.5-flash",
		OutputLanguage: "English",
		S3Bucket:       "bucket",
		S3Region:       "region",
		LogFormat:      "json",
		LogLevel:       "info",
	}

	str := cfg.String()

	// Should contain non-sensitive values
	assert.Contains(t, str, "8080")
	assert.Contains(t, str, "gemini-2.5-flash")
	assert.Contains(t, str, "/tmp/test")

	// Should NOT contain sensitive values
	assert.NotContains(t, str, "secret-gemini-key")
	assert.NotContains(t, str, "secret-openai-key")
}

func TestConfig_NewLogger_JSON(t *testing.T) {
	cfg := &Config{
		LogFormat: "json",
		LogLevel:  "info",
	}

	logger := cfg.NewLogger()
	require.NotNil(t, logger)

	// Capture output to verify it's JSON
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, nil)
	testLogger := slog.New(handler)
	testLogger.Info("test message")

	// Should have JSON structure
	assert.Contains(t, buf.String(), `"msg"`)
	assert.Contains(t, buf.String(), "test message")
}

func TestConfig_NewLogger_Text(t *testing.T) {
	cfg := &Config{
		LogFormat: "text",
		LogLevel:  "debug",
	}

	logger := cfg.NewLogger()
	require.NotNil(t, logger)
	// Just verify it returns a valid logger
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo}, // defaults to info
		{"", slog.LevelInfo},        // defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.input))
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			GeminiAPIKey:   "key",
			ChunkSize:      70000,
			OutputLanguage: "English",
			StartIndex:     1,
		}
	}

	t.Run("valid config", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("missing Gemini key", func(t *testing.T) {
		cfg := valid()
		cfg.GeminiAPIKey = ""
		assert.ErrorIs(t, cfg.Validate(), ErrGeminiAPIKeyRequired)
	})

	t.Run("fallback without OpenAI key", func(t *testing.T) {
		cfg := valid()
		cfg.UseAIFallback = true
		assert.ErrorIs(t, cfg.Validate(), ErrOpenAIAPIKeyRequired)
	})

	t.Run("fallback with OpenAI key", func(t *testing.T) {
		cfg := valid()
		cfg.UseAIFallback = true
		cfg.OpenAIAPIKey = "openai-key"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("zero chunk size", func(t *testing.T) {
		cfg := valid()
		cfg.ChunkSize = 0
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidChunkSize)
	})

	t.Run("empty output language", func(t *testing.T) {
		cfg := valid()
		cfg.OutputLanguage = "  "
		assert.ErrorIs(t, cfg.Validate(), ErrEmptyOutputLanguage)
	})

	t.Run("start index below 1", func(t *testing.T) {
		cfg := valid()
		cfg.StartIndex = 0
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidStartIndex)
	})

	t.Run("end index below start index", func(t *testing.T) {
		cfg := valid()
		cfg.StartIndex = 5
		cfg.EndIndex = 3
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidEndIndex)
	})

	t.Run("end index zero means all", func(t *testing.T) {
		cfg := valid()
		cfg.StartIndex = 5
		cfg.EndIndex = 0
		assert.NoError(t, cfg.Validate())
	})
}
