// Package logging provides structured logging for the ballast pipeline using zerolog.
// Interactive runs get human-readable console output when stderr is a terminal;
// scheduled runs driven by deploy scripts get JSON. Logs always stay off stdout,
// which carries the run summary and CSV exports.
//
// Example usage:
//
//	// Log through the default logger
//	logging.Info().Str("source", "emissions-2020").Msg("reading source")
//
//	// Or carry a logger through a context
//	ctx := logging.WithLogger(context.Background(), logging.Default())
//	logging.Ctx(ctx).Debug().Msg("using logger from context")
package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// defaultLogger is the process-wide logger. It starts out configured from
// the LOG_* environment and is replaced by Configure or SetDefault.
var defaultLogger zerolog.Logger

func init() {
	defaultLogger = NewLoggerFromConfig(envConfig())
}

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault sets the default global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger // keep zerolog's own global in step
}

// Debug starts a new debug level log event on the default logger.
func Debug() *zerolog.Event {
	return defaultLogger.Debug()
}

// Info starts a new info level log event on the default logger.
func Info() *zerolog.Event {
	return defaultLogger.Info()
}

// Warn starts a new warning level log event on the default logger.
func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}

// Error starts a new error level log event on the default logger.
func Error() *zerolog.Event {
	return defaultLogger.Error()
}

// Fatal starts a new fatal level log event (exits after logging).
func Fatal() *zerolog.Event {
	return defaultLogger.Fatal()
}
