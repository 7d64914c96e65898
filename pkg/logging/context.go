package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ctxKey is an unexported context key type so only this package can
// store the logger.
type ctxKey struct{}

// WithLogger returns a context carrying the given logger. A nil logger
// stores the default logger instead.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger carried by ctx, or the default logger
// when the context carries none.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(ctxKey{}).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// Ctx is a shorter alias for FromContext.
func Ctx(ctx context.Context) *zerolog.Logger {
	return FromContext(ctx)
}

// WithField returns a context whose logger carries an additional field.
func WithField(ctx context.Context, key string, value any) context.Context {
	logger := applyField(FromContext(ctx).With(), key, value).Logger()
	return WithLogger(ctx, &logger)
}

// WithFields returns a context whose logger carries the given fields.
func WithFields(ctx context.Context, fields map[string]any) context.Context {
	lc := FromContext(ctx).With()
	for key, value := range fields {
		lc = applyField(lc, key, value)
	}
	logger := lc.Logger()
	return WithLogger(ctx, &logger)
}

// WithSource tags the context logger with a source tag.
func WithSource(ctx context.Context, tag string) context.Context {
	return WithField(ctx, "source", tag)
}

// WithRun tags the context logger with the pipeline run id.
func WithRun(ctx context.Context, runID string) context.Context {
	return WithField(ctx, "run_id", runID)
}

// WithOperation tags the context logger with the running operation.
func WithOperation(ctx context.Context, operation string) context.Context {
	return WithField(ctx, "operation", operation)
}

// applyField adds a field to a logger context with its native zerolog type.
func applyField(lc zerolog.Context, key string, value any) zerolog.Context {
	switch v := value.(type) {
	case string:
		return lc.Str(key, v)
	case int:
		return lc.Int(key, v)
	case int64:
		return lc.Int64(key, v)
	case float64:
		return lc.Float64(key, v)
	case bool:
		return lc.Bool(key, v)
	case error:
		if key == "error" || key == "err" {
			return lc.Err(v)
		}
		return lc.Str(key, v.Error())
	default:
		return lc.Interface(key, v)
	}
}
