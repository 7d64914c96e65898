package ballast

import (
	"context"
	"fmt"

	"github.com/harborwatch/ballast/internal/sources"
	"github.com/harborwatch/ballast/pkg/emissions"
	"github.com/harborwatch/ballast/pkg/errors"
)

// SourceCheck is the probe outcome for one configured source.
type SourceCheck struct {
	Tag    emissions.SourceTag `json:"tag"`
	Path   string              `json:"path"`
	Format string              `json:"format"`
	Error  string              `json:"error,omitempty"`
	Err    error               `json:"-"`
}

// DatabaseCheck is the probe outcome for the destination database.
type DatabaseCheck struct {
	Table string `json:"table"`
	Error string `json:"error,omitempty"`
	Err   error  `json:"-"`
}

// CheckReport collects every precondition probe of a Check call.
type CheckReport struct {
	Sources  []SourceCheck `json:"sources"`
	Database DatabaseCheck `json:"database"`
}

// OK reports whether every probe passed.
func (r *CheckReport) OK() bool {
	for _, s := range r.Sources {
		if s.Err != nil {
			return false
		}
	}
	return r.Database.Err == nil
}

// Check probes every configured source and the destination database
// without modifying anything. Probe failures land in the report, the
// returned error stays nil.
func (b *ballast) Check(ctx context.Context) (*CheckReport, error) {
	ctx = b.logContext(ctx)
	report := &CheckReport{
		Database: DatabaseCheck{Table: b.manifest.Database.Table},
	}

	for _, src := range b.manifest.Sources {
		check := SourceCheck{
			Tag:    emissions.SourceTag(src.Tag),
			Path:   src.Path,
			Format: src.Format,
		}
		if format, ok := sources.Lookup(src.Format); ok {
			if err := sources.Probe(check.Tag, src.Path, format); err != nil {
				check.Err = err
				check.Error = err.Error()
			}
		} else {
			check.Err = errors.NewConfigError("check", fmt.Sprintf("unknown format %q", src.Format), nil)
			check.Error = check.Err.Error()
		}
		report.Sources = append(report.Sources, check)
	}

	store, err := b.storeHandle(ctx)
	if err != nil {
		report.Database.Err = err
		report.Database.Error = err.Error()
		return report, nil
	}
	if err := store.Check(ctx); err != nil {
		report.Database.Err = err
		report.Database.Error = err.Error()
	}
	return report, nil
}
