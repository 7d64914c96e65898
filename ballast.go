// Package ballast ingests ship emission registry workbooks into a single
// relational table. Each configured source file is streamed and
// normalized, records are reconciled across sources by precedence, and
// the reconciled set is applied to the table as an insert/update/delete
// difference inside one transaction.
package ballast

import (
	"context"
	"sync"

	"github.com/harborwatch/ballast/internal/loader"
	"github.com/harborwatch/ballast/internal/manifest"
	"github.com/harborwatch/ballast/internal/pipeline"
	"github.com/harborwatch/ballast/pkg/logging"
)

// Aliases for the types that cross the Ballast interface, so callers
// outside this module can name them.
type (
	// Manifest is the validated run configuration.
	Manifest = manifest.Manifest
	// Database holds the persistence settings of a Manifest.
	Database = manifest.Database
	// Source is one configured source file.
	Source = manifest.Source
	// Report describes one ingestion run.
	Report = pipeline.Report
	// SourceReport is the per-source outcome within a Report.
	SourceReport = pipeline.SourceReport
	// Stats are the row-level load statistics.
	Stats = loader.Stats
	// ExportRow is one destination-table row read back by Export.
	ExportRow = loader.Row
)

// Ballast runs and inspects emission ingestion pipelines.
type Ballast interface {
	// Run executes one ingestion run and reports the outcome per source.
	// Failed sources are recorded on the report; the error is reserved
	// for aborts (lock contention, cancellation, reconcile, load).
	Run(ctx context.Context) (*Report, error)

	// Check verifies the run preconditions without loading anything:
	// every source must open and match its declared format, and the
	// database must honor the schema contract.
	Check(ctx context.Context) (*CheckReport, error)

	// Export reads the destination table back in key order.
	Export(ctx context.Context) ([]ExportRow, error)

	// Columns returns the column order Export rows follow.
	Columns() []string

	// Manifest returns the run configuration.
	Manifest() *Manifest

	// Close releases the database handle.
	Close() error
}

// ballast is the internal implementation of the Ballast interface.
type ballast struct {
	config   *config
	manifest *manifest.Manifest

	mu    sync.Mutex
	store *loader.Store
}

// New creates a Ballast instance from the given options. The manifest is
// loaded and validated here; the database handle opens lazily on first
// use.
func New(opts ...Option) (Ballast, error) {
	b := &ballast{config: defaultConfig()}
	for _, opt := range opts {
		if err := opt(b.config); err != nil {
			return nil, err
		}
	}

	m := b.config.manifest
	if m == nil {
		loaded, err := manifest.Load(b.config.manifestPath)
		if err != nil {
			return nil, err
		}
		m = loaded
	}

	// Overrides apply to a copy so a caller-supplied manifest stays
	// untouched.
	resolved := *m
	if b.config.databaseURL != "" {
		resolved.Database.URL = b.config.databaseURL
	}
	if b.config.table != "" {
		resolved.Database.Table = b.config.table
	}
	if b.config.lockFile != "" {
		resolved.LockFile = b.config.lockFile
	}
	b.manifest = &resolved
	return b, nil
}

func (b *ballast) Run(ctx context.Context) (*Report, error) {
	ctx = b.logContext(ctx)
	store, err := b.storeHandle(ctx)
	if err != nil {
		return nil, err
	}
	driver := pipeline.New(b.manifest, store, pipeline.WithDryRun(b.config.dryRun))
	return driver.Run(ctx)
}

func (b *ballast) Export(ctx context.Context) ([]ExportRow, error) {
	ctx = b.logContext(ctx)
	store, err := b.storeHandle(ctx)
	if err != nil {
		return nil, err
	}
	return store.Export(ctx)
}

func (b *ballast) Columns() []string {
	return loader.Columns(b.manifest.ActiveMeasures())
}

func (b *ballast) Manifest() *Manifest {
	return b.manifest
}

func (b *ballast) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.store == nil {
		return nil
	}
	err := b.store.Close()
	b.store = nil
	return err
}

// storeHandle returns the shared database handle, opening it on first
// use with the caller's context.
func (b *ballast) storeHandle(ctx context.Context) (*loader.Store, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.store != nil {
		return b.store, nil
	}
	store, err := loader.Open(ctx, b.manifest.Database.URL, b.manifest.Database.Table, b.manifest.ActiveMeasures())
	if err != nil {
		return nil, err
	}
	b.store = store
	return store, nil
}

func (b *ballast) logContext(ctx context.Context) context.Context {
	if b.config.logger != nil {
		return logging.WithLogger(ctx, b.config.logger)
	}
	return ctx
}
