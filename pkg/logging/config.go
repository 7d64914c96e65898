package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// logFilePermissions is the mode for log files opened by Output paths.
const logFilePermissions = 0o644

// Config holds logger configuration options.
type Config struct {
	// Level is the minimum level to emit (trace, debug, info, warn, error).
	Level string

	// Format selects the output encoding: json, console, or auto, which
	// picks console only when logs go to a terminal.
	Format string

	// Output is the destination: stderr, stdout, discard, or a file path.
	Output string

	// TimeFormat names the timestamp layout for console output
	// (kitchen, rfc3339, unix, or a literal Go layout).
	TimeFormat string

	// NoColor disables color in console output.
	NoColor bool

	// AddCaller includes file:line in log output.
	AddCaller bool

	// Fields are attached to every event the logger emits.
	Fields map[string]any
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "auto",
		Output:     "stderr",
		TimeFormat: "kitchen",
		NoColor:    os.Getenv("NO_COLOR") != "",
		AddCaller:  false,
		Fields:     make(map[string]any),
	}
}

// envConfig builds a configuration from the LOG_* environment variables.
func envConfig() *Config {
	return &Config{
		Level:      getEnvOrDefault("LOG_LEVEL", "info"),
		Format:     getEnvOrDefault("LOG_FORMAT", "auto"),
		Output:     getEnvOrDefault("LOG_OUTPUT", "stderr"),
		TimeFormat: getEnvOrDefault("LOG_TIME_FORMAT", "kitchen"),
		NoColor:    os.Getenv("NO_COLOR") != "",
		AddCaller:  os.Getenv("LOG_CALLER") == "true",
	}
}

// NewLoggerFromConfig creates a new logger from configuration.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(writerFor(cfg)).
		Level(level).
		With().
		Timestamp().
		Logger()

	if cfg.AddCaller || level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}

	if len(cfg.Fields) > 0 {
		lc := logger.With()
		for k, v := range cfg.Fields {
			lc = applyField(lc, k, v)
		}
		logger = lc.Logger()
	}

	return logger
}

// Configure replaces the default logger with one built from cfg.
func Configure(cfg *Config) {
	SetDefault(NewLoggerFromConfig(cfg))
}

// ConfigureFromEnv replaces the default logger with one built from the
// LOG_* environment variables.
func ConfigureFromEnv() {
	Configure(envConfig())
}

// writerFor resolves the configured destination and wraps it in a console
// writer when the format calls for one.
func writerFor(cfg *Config) io.Writer {
	out := openOutput(cfg.Output)
	if !useConsole(cfg.Format, out) {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: timeFormat(cfg.TimeFormat),
		NoColor:    cfg.NoColor,
	}
}

// openOutput maps an Output name to a writer. Unrecognized names are
// opened as file paths, falling back to stderr on failure.
func openOutput(name string) io.Writer {
	switch strings.ToLower(name) {
	case "", "stderr":
		return os.Stderr
	case "stdout":
		return os.Stdout
	case "discard", "none":
		return io.Discard
	}

	file, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, logFilePermissions)
	if err != nil {
		return os.Stderr
	}
	return file
}

// useConsole reports whether out should be wrapped in a console writer.
func useConsole(format string, out io.Writer) bool {
	switch strings.ToLower(format) {
	case "console", "pretty":
		return true
	case "auto":
		f, ok := out.(*os.File)
		return ok && f == os.Stderr && isatty()
	default:
		return false
	}
}

// isatty checks if stderr is a terminal.
func isatty() bool {
	info, err := os.Stderr.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// parseLevel parses a log level string, defaulting to info.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "disabled", "none", "off":
		return zerolog.Disabled
	default:
		if l, err := zerolog.ParseLevel(level); err == nil {
			return l
		}
		return zerolog.InfoLevel
	}
}

// timeFormat maps a TimeFormat name to a layout string. Strings that look
// like a Go layout pass through unchanged.
func timeFormat(name string) string {
	switch strings.ToLower(name) {
	case "kitchen":
		return time.Kitchen
	case "rfc3339":
		return time.RFC3339
	case "rfc3339nano":
		return time.RFC3339Nano
	case "unix":
		return "" // zerolog renders an empty layout as a Unix timestamp
	case "stamp":
		return time.Stamp
	default:
		if strings.Contains(name, "2006") || strings.Contains(name, "15:04") {
			return name
		}
		return time.Kitchen
	}
}

// getEnvOrDefault returns an environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
