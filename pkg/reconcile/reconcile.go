// Package reconcile merges normalized emission records from multiple
// sources into one record per logical key, resolving field-level conflicts
// through a configurable strategy. Merging is deterministic and independent
// of input iteration order: only source identity decides precedence.
package reconcile

import (
	"github.com/harborwatch/ballast/pkg/emissions"
)

// Strategy defines how field-level conflicts between sources are resolved
type Strategy interface {
	// Name returns the strategy name
	Name() string

	// Description returns a human-readable description
	Description() string

	// KnownSource reports whether the strategy can rank the given source
	KnownSource(tag emissions.SourceTag) bool

	// ResolveConflict determines the winning value for one field. The
	// values map holds each reporting source's candidate; sources that
	// did not report the field are absent. It returns the winning value,
	// the source it came from, and a human-readable reason.
	ResolveConflict(field string, values map[emissions.SourceTag]any) (any, emissions.SourceTag, string)
}

// Result holds the outcome of one merge pass.
type Result struct {
	// Records are the reconciled records, sorted by key.
	Records []*emissions.Reconciled

	// Inputs is the number of normalized records consumed.
	Inputs int

	// Keys is the number of distinct keys seen.
	Keys int

	// SameSourceDuplicates counts input records whose key repeated within
	// one source file; such rows coalesce in row order before the
	// cross-source merge.
	SameSourceDuplicates int
}
