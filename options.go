package ballast

import (
	"github.com/rs/zerolog"

	"github.com/harborwatch/ballast/pkg/errors"
)

// DefaultManifestPath is where New looks for the run manifest when no
// other location is configured.
const DefaultManifestPath = "ballast.yaml"

// config holds the assembled New options.
type config struct {
	manifestPath string
	manifest     *Manifest
	databaseURL  string
	table        string
	lockFile     string
	dryRun       bool
	logger       *zerolog.Logger
}

func defaultConfig() *config {
	return &config{manifestPath: DefaultManifestPath}
}

// Option is a function that configures a Ballast instance.
type Option func(*config) error

// WithManifestPath sets the manifest file New loads.
func WithManifestPath(path string) Option {
	return func(c *config) error {
		if path == "" {
			return errors.NewConfigError("options", "manifest path is empty", nil)
		}
		c.manifestPath = path
		return nil
	}
}

// WithManifest supplies an already validated manifest, bypassing the
// manifest file entirely.
func WithManifest(m *Manifest) Option {
	return func(c *config) error {
		if m == nil {
			return errors.NewConfigError("options", "manifest is nil", nil)
		}
		c.manifest = m
		return nil
	}
}

// WithDatabaseURL overrides the database URL from the manifest. Deploy
// environments use this to keep credentials out of the manifest file.
func WithDatabaseURL(url string) Option {
	return func(c *config) error {
		c.databaseURL = url
		return nil
	}
}

// WithTable overrides the destination table from the manifest.
func WithTable(table string) Option {
	return func(c *config) error {
		c.table = table
		return nil
	}
}

// WithLockFile overrides the run lock path from the manifest.
func WithLockFile(path string) Option {
	return func(c *config) error {
		c.lockFile = path
		return nil
	}
}

// WithDryRun makes Run stage and diff without committing.
func WithDryRun(dry bool) Option {
	return func(c *config) error {
		c.dryRun = dry
		return nil
	}
}

// WithLogger routes pipeline logging through the given logger instead of
// the process-wide default.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}
