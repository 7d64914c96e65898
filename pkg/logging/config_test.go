package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborwatch/ballast/pkg/logging"
)

func TestConfigFunctions(t *testing.T) {
	// Save and restore the original logger and level
	originalLogger := *logging.Default()
	originalLevel := zerolog.GlobalLevel()
	defer func() {
		logging.SetDefault(originalLogger)
		zerolog.SetGlobalLevel(originalLevel)
	}()

	t.Run("DefaultConfig returns sensible defaults", func(t *testing.T) {
		cfg := logging.DefaultConfig()
		assert.NotNil(t, cfg)
		assert.Equal(t, "info", cfg.Level)
		assert.Equal(t, "auto", cfg.Format)
		assert.False(t, cfg.AddCaller)
		assert.Equal(t, "stderr", cfg.Output)
	})

	t.Run("NewLoggerFromConfig writes to file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "run.log")

		cfg := &logging.Config{
			Level:  "debug",
			Format: "json",
			Output: path,
		}

		logger := logging.NewLoggerFromConfig(cfg)
		logger.Info().Str("source", "emissions-2018").Msg("source complete")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "source complete")
		assert.Contains(t, string(content), "emissions-2018")
	})

	t.Run("Configure sets global logger from config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ballast.log")

		logging.Configure(&logging.Config{
			Level:  "warn",
			Format: "json",
			Output: path,
		})

		// These should not appear (below warn level)
		logging.Debug().Msg("debug message")
		logging.Info().Msg("info message")

		// These should appear
		logging.Warn().Msg("warn message")
		logging.Error().Msg("error message")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		output := string(content)
		assert.NotContains(t, output, "debug message")
		assert.NotContains(t, output, "info message")
		assert.Contains(t, output, "warn message")
		assert.Contains(t, output, "error message")
	})

	t.Run("ConfigureFromEnv respects LOG_LEVEL", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "warn")
		t.Setenv("LOG_FORMAT", "json")

		logging.ConfigureFromEnv()

		assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	})

	t.Run("console format configuration", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "console.log")

		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:   "info",
			Format:  "console",
			Output:  path,
			NoColor: true,
		})
		logger.Info().Str("key", "value").Msg("console test")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		output := string(content)
		assert.Contains(t, output, "console test")
		// Console format uses short level names
		assert.Contains(t, output, "INF")
	})

	t.Run("default fields attached", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fields.log")

		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:  "info",
			Format: "json",
			Output: path,
			Fields: map[string]any{"component": "pipeline"},
		})
		logger.Info().Msg("with fields")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), `"component":"pipeline"`)
	})
}

func TestLevelParsing(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
	}

	originalLevel := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(originalLevel)

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			logger := logging.NewLoggerFromConfig(&logging.Config{Level: tt.in, Format: "json", Output: "discard"})
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}
