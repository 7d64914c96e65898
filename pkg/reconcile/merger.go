package reconcile

import (
	"sort"

	"github.com/harborwatch/ballast/pkg/emissions"
	"github.com/harborwatch/ballast/pkg/errors"
	"github.com/harborwatch/ballast/pkg/logging"
)

// Merger groups normalized records by key and merges each group into one
// reconciled record using the configured strategy.
type Merger struct {
	strategy Strategy
}

// NewMerger creates a new Merger with the given strategy.
func NewMerger(strategy Strategy) *Merger {
	return &Merger{strategy: strategy}
}

// Merge consumes the full set of normalized records from all sources and
// produces one reconciled record per distinct key, sorted by key. A record
// whose source the strategy cannot rank is a fatal ReconcileError.
func (m *Merger) Merge(records []*emissions.Record) (*Result, error) {
	groups := make(map[emissions.Key][]*emissions.Record)
	keys := make([]emissions.Key, 0)

	for _, rec := range records {
		if rec == nil {
			continue
		}
		if !m.strategy.KnownSource(rec.Source) {
			return nil, errors.NewReconcileError(rec.Source.String(), rec.Key().String(),
				"source tag is not in the precedence order")
		}
		key := rec.Key()
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], rec)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) < 0 })

	result := &Result{
		Records: make([]*emissions.Reconciled, 0, len(keys)),
		Inputs:  len(records),
		Keys:    len(keys),
	}

	for _, key := range keys {
		bySource, dups := coalesceBySource(groups[key])
		if dups > 0 {
			result.SameSourceDuplicates += dups
			logging.Debug().
				Str("key", key.String()).
				Int("duplicates", dups).
				Msg("duplicate key within one source, coalesced by row order")
		}
		result.Records = append(result.Records, m.mergeGroup(key, bySource))
	}

	return result, nil
}

// coalesceBySource folds records sharing a source tag into one record per
// tag. Later rows override earlier ones field by field, mirroring the
// cross-source rule: only reported values override.
func coalesceBySource(group []*emissions.Record) (map[emissions.SourceTag]*emissions.Record, int) {
	bySource := make(map[emissions.SourceTag]*emissions.Record, len(group))
	dups := 0

	for _, rec := range group {
		existing, ok := bySource[rec.Source]
		if !ok {
			bySource[rec.Source] = rec.Clone()
			continue
		}
		dups++
		for measure, v := range rec.Measures {
			existing.SetValue(measure, v)
		}
		for attr, v := range rec.Attrs {
			existing.SetAttr(attr, v)
		}
	}

	return bySource, dups
}

// mergeGroup resolves every field of one key group. Fields are walked in
// registry order so provenance and logging stay deterministic.
func (m *Merger) mergeGroup(key emissions.Key, bySource map[emissions.SourceTag]*emissions.Record) *emissions.Reconciled {
	merged := emissions.NewReconciled(key)

	for _, measure := range emissions.Measures() {
		values := make(map[emissions.SourceTag]any, len(bySource))
		for tag, rec := range bySource {
			if v, ok := rec.Value(measure); ok {
				values[tag] = v
			}
		}
		if len(values) == 0 {
			continue
		}
		value, tag, _ := m.strategy.ResolveConflict(measure.String(), values)
		if v, ok := value.(float64); ok {
			merged.SetValue(measure, v)
			merged.Origin[measure.String()] = tag
		}
	}

	for _, attr := range emissions.Attrs() {
		values := make(map[emissions.SourceTag]any, len(bySource))
		for tag, rec := range bySource {
			if v, ok := rec.AttrValue(attr); ok {
				values[tag] = v
			}
		}
		if len(values) == 0 {
			continue
		}
		value, tag, _ := m.strategy.ResolveConflict(attr.String(), values)
		if v, ok := value.(string); ok {
			merged.SetAttr(attr, v)
			merged.Origin[attr.String()] = tag
		}
	}

	return merged
}
