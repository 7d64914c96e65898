// Package emissions defines the canonical data model for the ballast
// pipeline: source tags, record keys, the measure and attribute registries,
// and the normalized emission records that flow from the source readers
// through reconciliation into the loader.
package emissions

import (
	"fmt"
	"strings"
)

// SourceTag identifies one configured source file. Tags are declared in the
// run manifest; the precedence list orders them for conflict resolution.
type SourceTag string

// String returns the string representation of a SourceTag.
func (t SourceTag) String() string {
	return string(t)
}

// Key uniquely identifies one logical emission record: the reporting
// organization, the vessel, and the calendar year the filing covers.
type Key struct {
	Entity string `json:"entity_id"`
	Vessel string `json:"vessel_id"`
	Period int    `json:"reporting_period"`
}

// String renders the key as entity/vessel/period for error messages and logs.
func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%d", k.Entity, k.Vessel, k.Period)
}

// Compare orders keys by entity, vessel, then period. It returns a negative
// number when k sorts before o, zero when equal, positive otherwise.
func (k Key) Compare(o Key) int {
	if c := strings.Compare(k.Entity, o.Entity); c != 0 {
		return c
	}
	if c := strings.Compare(k.Vessel, o.Vessel); c != 0 {
		return c
	}
	return k.Period - o.Period
}
