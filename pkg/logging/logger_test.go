package logging_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/harborwatch/ballast/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := zerolog.New(buf).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	logging.SetDefault(logger)

	logging.Debug().Msg("debug message")
	logging.Info().Msg("info message")
	logging.Warn().Msg("warning message")
	logging.Error().Msg("error message")

	output := buf.String()
	if !strings.Contains(output, "info message") {
		t.Errorf("Expected info message in output, got: %s", output)
	}
}

func TestContextLogger(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithSource(ctx, "emissions-2020")
	ctx = logging.WithRun(ctx, "8cbd6a52")

	logger := logging.FromContext(ctx)
	logger.Info().Msg("reading source")

	testLogger.AssertContains(t, "emissions-2020")
	testLogger.AssertContains(t, "8cbd6a52")
	testLogger.AssertContains(t, "reading source")
}

func TestFromContextFallback(t *testing.T) {
	if logging.FromContext(context.Background()) == nil {
		t.Fatal("FromContext should fall back to the default logger")
	}
	if logging.FromContext(nil) == nil { //nolint:staticcheck // nil context fallback is part of the contract
		t.Fatal("FromContext(nil) should fall back to the default logger")
	}
}

func TestConfiguration(t *testing.T) {
	configs := []struct {
		name   string
		config *logging.Config
		check  func(t *testing.T, output string)
	}{
		{
			name: "debug level",
			config: &logging.Config{
				Level:  "debug",
				Format: "json",
			},
			check: func(t *testing.T, output string) {
				if !strings.Contains(output, `"level":"debug"`) {
					t.Errorf("Expected debug level in output")
				}
			},
		},
		{
			name: "error level only",
			config: &logging.Config{
				Level:  "error",
				Format: "json",
			},
			check: func(t *testing.T, output string) {
				if strings.Contains(output, `"level":"info"`) {
					t.Errorf("Should not contain info level when set to error")
				}
			},
		},
		{
			name: "default fields attached",
			config: &logging.Config{
				Level:  "info",
				Format: "json",
				Fields: map[string]any{"component": "pipeline"},
			},
			check: func(t *testing.T, output string) {
				if !strings.Contains(output, `"component":"pipeline"`) {
					t.Errorf("Expected component field in output, got: %s", output)
				}
			},
		},
	}

	for _, tc := range configs {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := logging.NewLoggerFromConfig(tc.config)
			logger = logger.Output(buf)

			logger.Debug().Msg("debug")
			logger.Info().Msg("info")
			logger.Error().Msg("error")

			tc.check(t, buf.String())
		})
	}
}

func TestWithFields(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithFields(ctx, map[string]any{
		"rows":    1204,
		"skipped": 3,
	})

	logging.FromContext(ctx).Info().Msg("source complete")

	testLogger.AssertContains(t, `"rows":1204`)
	testLogger.AssertContains(t, `"skipped":3`)
}
