package emissions

import (
	"maps"

	"github.com/harborwatch/ballast/pkg/errors"
)

// Record is one normalized emission record as produced by the row
// normalizer for a single source. Measures and attributes are sparse:
// an absent map key means "not reported" and is never treated as zero.
type Record struct {
	Entity   string              `json:"entity_id"`
	Vessel   string              `json:"vessel_id"`
	Period   int                 `json:"reporting_period"`
	Source   SourceTag           `json:"source_tag"`
	Line     int                 `json:"-"` // spreadsheet row, for diagnostics
	Measures map[Measure]float64 `json:"measures,omitempty"`
	Attrs    map[Attr]string     `json:"attrs,omitempty"`
}

// NewRecord creates an empty record for the given key fields.
func NewRecord(source SourceTag, entity, vessel string, period int) *Record {
	return &Record{
		Entity:   entity,
		Vessel:   vessel,
		Period:   period,
		Source:   source,
		Measures: make(map[Measure]float64),
		Attrs:    make(map[Attr]string),
	}
}

// Key returns the record's logical identity.
func (r *Record) Key() Key {
	return Key{Entity: r.Entity, Vessel: r.Vessel, Period: r.Period}
}

// SetValue records a reported measure value.
func (r *Record) SetValue(m Measure, v float64) {
	if r.Measures == nil {
		r.Measures = make(map[Measure]float64)
	}
	r.Measures[m] = v
}

// Value returns a measure value and whether it was reported.
func (r *Record) Value(m Measure) (float64, bool) {
	v, ok := r.Measures[m]
	return v, ok
}

// SetAttr records a supplemental attribute value.
func (r *Record) SetAttr(a Attr, v string) {
	if r.Attrs == nil {
		r.Attrs = make(map[Attr]string)
	}
	r.Attrs[a] = v
}

// AttrValue returns an attribute value and whether it was reported.
func (r *Record) AttrValue(a Attr) (string, bool) {
	v, ok := r.Attrs[a]
	return v, ok
}

// Validate checks the required key fields.
func (r *Record) Validate() error {
	if r.Entity == "" {
		return errors.NewValidationError("entity", r.Entity, "cannot be empty")
	}
	if r.Vessel == "" {
		return errors.NewValidationError("vessel", r.Vessel, "cannot be empty")
	}
	if r.Period < 2000 || r.Period > 2100 {
		return errors.NewValidationError("period", r.Period, "not a plausible reporting year")
	}
	return nil
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	out := *r
	out.Measures = maps.Clone(r.Measures)
	out.Attrs = maps.Clone(r.Attrs)
	return &out
}

// Reconciled is one merged record per unique key, plus per-field
// provenance: which source's value won each measure and attribute.
type Reconciled struct {
	Record
	Origin map[string]SourceTag `json:"origin,omitempty"`
}

// NewReconciled creates an empty reconciled record for a key.
func NewReconciled(key Key) *Reconciled {
	return &Reconciled{
		Record: Record{
			Entity:   key.Entity,
			Vessel:   key.Vessel,
			Period:   key.Period,
			Measures: make(map[Measure]float64),
			Attrs:    make(map[Attr]string),
		},
		Origin: make(map[string]SourceTag),
	}
}

// OriginOf returns the source whose value won the given field id
// (a measure or attribute id).
func (r *Reconciled) OriginOf(field string) (SourceTag, bool) {
	tag, ok := r.Origin[field]
	return tag, ok
}
