// Package pipeline drives full ingestion runs: every source named in the
// manifest is read and normalized in manifest order, the surviving records
// are reconciled across sources, and the outcome is loaded into the target
// table in a single transaction.
//
// Source failures are contained. An unreadable or structurally wrong file
// marks that source as failed in the run report and contributes nothing,
// while the remaining sources still reconcile and load. Lock contention,
// cancellation, reconcile errors, and load errors abort the whole run.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harborwatch/ballast/internal/loader"
	"github.com/harborwatch/ballast/internal/manifest"
	"github.com/harborwatch/ballast/internal/sources"
	"github.com/harborwatch/ballast/pkg/emissions"
	"github.com/harborwatch/ballast/pkg/errors"
	"github.com/harborwatch/ballast/pkg/logging"
	"github.com/harborwatch/ballast/pkg/reconcile"
)

// Driver executes ingestion runs for one manifest against one store.
type Driver struct {
	manifest *manifest.Manifest
	store    *loader.Store
	dryRun   bool
}

// Option configures a Driver.
type Option func(*Driver)

// WithDryRun makes Run stage and diff inside a transaction that is rolled
// back instead of committed. The report still carries the statistics the
// real load would have produced.
func WithDryRun(dry bool) Option {
	return func(d *Driver) { d.dryRun = dry }
}

// New creates a Driver. The manifest must already be validated.
func New(m *manifest.Manifest, store *loader.Store, opts ...Option) *Driver {
	d := &Driver{manifest: m, store: store}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run executes one ingestion run and returns its report. A non-nil error
// means the run itself aborted (lock contention, cancellation, reconcile,
// or load); individual source failures do not produce an error here, they
// are recorded on the report and surfaced through Report.Failed.
func (d *Driver) Run(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	ctx = logging.WithRun(ctx, runID)
	log := logging.Ctx(ctx)

	lock, err := acquireLock(d.manifest.LockFile)
	if err != nil {
		return nil, err
	}
	defer releaseLock(lock)

	start := time.Now()
	report := &Report{
		RunID:     runID,
		Table:     d.manifest.Database.Table,
		DryRun:    d.dryRun,
		StartedAt: start,
	}

	log.Info().
		Int("sources", len(d.manifest.Sources)).
		Str("table", report.Table).
		Bool("dry_run", d.dryRun).
		Msg("starting ingestion run")

	var records []*emissions.Record
	for _, src := range d.manifest.Sources {
		sr := d.ingestSource(ctx, src)
		report.Sources = append(report.Sources, sr)
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapCanceled(err)
		}
		if sr.Err != nil {
			log.Error().Err(sr.Err).
				Str("source", src.Tag).
				Msg("source failed, continuing with remaining sources")
			continue
		}
		records = append(records, sr.records...)
		log.Info().
			Str("source", src.Tag).
			Int("rows", sr.Rows).
			Int("records", sr.Records).
			Int("skipped", sr.Skipped).
			Int("downgraded", sr.Downgraded).
			Msg("source ingested")
	}
	report.Inputs = len(records)

	strategy := reconcile.NewSourcePrecedence(d.manifest.PrecedenceTags())
	result, err := reconcile.NewMerger(strategy).Merge(records)
	if err != nil {
		return nil, err
	}
	report.Reconciled = result.Keys
	report.Duplicates = result.SameSourceDuplicates

	stats, err := d.loadRecords(ctx, result.Records)
	if err != nil {
		return nil, err
	}
	report.Load = stats
	report.Duration = time.Since(start)

	log.Info().
		Int("reconciled", report.Reconciled).
		Int("inserted", stats.Inserted).
		Int("updated", stats.Updated).
		Int("deleted", stats.Deleted).
		Int("unchanged", stats.Unchanged).
		Bool("partial", report.Failed()).
		Dur("duration", report.Duration).
		Msg("ingestion run finished")
	return report, nil
}

// ingestSource reads and normalizes one source file. Failures are recorded
// on the returned report rather than returned as errors; a failed source
// contributes no records, even when part of the file was readable.
func (d *Driver) ingestSource(ctx context.Context, src manifest.Source) *SourceReport {
	tag := emissions.SourceTag(src.Tag)
	ctx = logging.WithSource(ctx, src.Tag)
	log := logging.Ctx(ctx)

	sr := &SourceReport{Tag: tag, Path: src.Path, Format: src.Format}

	format, ok := sources.Lookup(src.Format)
	if !ok {
		// Manifest validation catches this; guard for callers that
		// assemble a Manifest in code.
		sr.fail(errors.NewConfigError("pipeline", fmt.Sprintf("unknown format %q", src.Format), nil))
		return sr
	}

	reader, err := sources.NewReader(tag, src.Path, format)
	if err != nil {
		sr.fail(err)
		return sr
	}
	defer func() {
		if err := reader.Close(); err != nil {
			log.Warn().Err(err).Msg("closing source reader")
		}
	}()

	norm := sources.NewNormalizer(format)
	for reader.Next() {
		if ctx.Err() != nil {
			return sr
		}
		sr.Rows++
		rec, err := norm.Normalize(reader.Row())
		if err != nil {
			if errors.IsRowSkip(err) {
				sr.Skipped++
				continue
			}
			sr.fail(err)
			return sr
		}
		sr.records = append(sr.records, rec)
		sr.Records++
	}
	if err := reader.Err(); err != nil {
		sr.fail(err)
		return sr
	}
	sr.Downgraded = norm.Downgrades()
	return sr
}

func (d *Driver) loadRecords(ctx context.Context, records []*emissions.Reconciled) (*loader.Stats, error) {
	if d.dryRun {
		return d.store.DryRun(ctx, records)
	}
	return d.store.Load(ctx, records)
}
