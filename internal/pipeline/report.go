package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/harborwatch/ballast/internal/loader"
	"github.com/harborwatch/ballast/pkg/emissions"
)

// SourceReport is the per-source outcome of a run.
type SourceReport struct {
	Tag    emissions.SourceTag `json:"tag"`
	Path   string              `json:"path"`
	Format string              `json:"format"`

	// Rows counts the data rows read from the file, blank rows excluded.
	Rows int `json:"rows"`
	// Records counts the rows that normalized into records.
	Records int `json:"records"`
	// Skipped counts rows dropped for a missing or unparsable key field.
	Skipped int `json:"skipped"`
	// Downgraded counts measure cells that failed to parse and were
	// recorded as not reported.
	Downgraded int `json:"downgraded"`

	Error string `json:"error,omitempty"`

	// Err is the failure that disqualified this source, nil when the
	// source contributed cleanly.
	Err error `json:"-"`

	records []*emissions.Record
}

func (r *SourceReport) fail(err error) {
	r.Err = err
	r.Error = err.Error()
	r.records = nil
}

// Failed reports whether this source was disqualified from the run.
func (r *SourceReport) Failed() bool {
	return r.Err != nil
}

// Report describes one ingestion run end to end.
type Report struct {
	RunID      string          `json:"run_id"`
	Table      string          `json:"table"`
	DryRun     bool            `json:"dry_run,omitempty"`
	Sources    []*SourceReport `json:"sources"`
	Inputs     int             `json:"inputs"`
	Reconciled int             `json:"reconciled"`
	Duplicates int             `json:"same_source_duplicates,omitempty"`
	Load       *loader.Stats   `json:"load,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	Duration   time.Duration   `json:"duration_ns"`
}

// Failed reports whether any source was disqualified. A run with failed
// sources still loads the remaining ones; callers use this to distinguish
// full from partial success.
func (r *Report) Failed() bool {
	for _, sr := range r.Sources {
		if sr.Failed() {
			return true
		}
	}
	return false
}

// FailedSources lists the tags of disqualified sources in manifest order.
func (r *Report) FailedSources() []emissions.SourceTag {
	var tags []emissions.SourceTag
	for _, sr := range r.Sources {
		if sr.Failed() {
			tags = append(tags, sr.Tag)
		}
	}
	return tags
}

// Summary renders a human-readable account of the run: one table row per
// source and closing lines with the reconcile and load outcome.
func (r *Report) Summary() string {
	p := message.NewPrinter(language.English)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"SOURCE", "FORMAT", "ROWS", "RECORDS", "SKIPPED", "DOWNGRADED", "STATUS"})
	for _, sr := range r.Sources {
		status := "ok"
		if sr.Failed() {
			status = "failed: " + sr.Error
		}
		tw.AppendRow(table.Row{
			string(sr.Tag),
			sr.Format,
			p.Sprintf("%d", sr.Rows),
			p.Sprintf("%d", sr.Records),
			p.Sprintf("%d", sr.Skipped),
			p.Sprintf("%d", sr.Downgraded),
			status,
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	var b strings.Builder
	b.WriteString(tw.Render())
	b.WriteByte('\n')

	p.Fprintf(&b, "%d records reconciled into %d keys", r.Inputs, r.Reconciled)
	if r.Duplicates > 0 {
		p.Fprintf(&b, " (%d same-source duplicates)", r.Duplicates)
	}
	b.WriteByte('\n')

	if r.Load != nil {
		verb := "loaded"
		if r.DryRun {
			verb = "would load"
		}
		p.Fprintf(&b, "%s %s: %d inserted, %d updated, %d deleted, %d unchanged\n",
			verb, r.Table, r.Load.Inserted, r.Load.Updated, r.Load.Deleted, r.Load.Unchanged)
	}
	if failed := r.FailedSources(); len(failed) > 0 {
		fmt.Fprintf(&b, "partial run: %d of %d sources failed\n", len(failed), len(r.Sources))
	}
	fmt.Fprintf(&b, "run %s finished in %s\n", r.RunID, r.Duration.Round(time.Millisecond))
	return b.String()
}
