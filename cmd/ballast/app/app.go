// Package app provides the application shell for the ballast CLI:
// configuration loading, logger setup, lifecycle management, and lazy
// construction of the ballast pipeline instance commands operate on.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/harborwatch/ballast"
)

// App represents the ballast CLI application with its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Pipeline instance (lazy-initialized, singleton)
	mu       sync.RWMutex
	instance ballast.Ballast
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	return app, nil
}

// Version returns the version string.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Format returns the requested output format (table or json).
func (a *App) Format() string {
	return a.config.Format
}

// Ballast returns the pipeline instance, creating it lazily from the
// application configuration. Thread-safe; only one instance is created.
func (a *App) Ballast() (ballast.Ballast, error) {
	a.mu.RLock()
	if a.instance != nil {
		b := a.instance
		a.mu.RUnlock()
		return b, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.instance != nil {
		return a.instance, nil
	}

	b, err := ballast.New(a.buildOptions()...)
	if err != nil {
		return nil, err
	}
	a.instance = b
	return b, nil
}

// BallastWithOptions returns a fresh pipeline instance configured from
// the application plus the given extra options. Useful for commands
// whose flags map to options, such as run --dry-run. The caller owns
// the instance and must close it.
func (a *App) BallastWithOptions(opts ...ballast.Option) (ballast.Ballast, error) {
	return ballast.New(append(a.buildOptions(), opts...)...)
}

// Shutdown releases the shared pipeline instance.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.instance == nil {
		return nil
	}
	err := a.instance.Close()
	a.instance = nil
	return err
}

// buildOptions constructs ballast options from the app configuration.
func (a *App) buildOptions() []ballast.Option {
	opts := []ballast.Option{
		ballast.WithManifestPath(a.config.Manifest),
		ballast.WithLogger(a.logger),
	}
	if a.config.DatabaseURL != "" {
		opts = append(opts, ballast.WithDatabaseURL(a.config.DatabaseURL))
	}
	if a.config.Table != "" {
		opts = append(opts, ballast.WithTable(a.config.Table))
	}
	if a.config.LockFile != "" {
		opts = append(opts, ballast.WithLockFile(a.config.LockFile))
	}
	return opts
}
