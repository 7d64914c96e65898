package emissions

// Measure identifies one numeric emission measure. Measure ids are stable:
// they appear in the run manifest, in per-field provenance, and (through
// their column mapping) in the persistence target.
type Measure string

// Known measures reported by the monitoring registry.
const (
	MeasureFuelTotal           Measure = "fuel_total"           // Total fuel consumption
	MeasureCO2Total            Measure = "co2_total"            // Total CO₂ emissions
	MeasureDistance            Measure = "distance"             // Annual distance traveled
	MeasureTimeAtSea           Measure = "time_at_sea"          // Annual time spent at sea
	MeasureCO2PerDistance      Measure = "co2_per_distance"     // Average CO₂ emitted per distance
	MeasureFuelPerDistance     Measure = "fuel_per_distance"    // Average fuel consumed per distance
	MeasureTechnicalEfficiency Measure = "technical_efficiency" // Design efficiency value (EIV/EEDI)
)

// String returns the string representation of a Measure.
func (m Measure) String() string {
	return string(m)
}

// MeasureInfo describes one entry of the measure registry.
type MeasureInfo struct {
	ID     Measure
	Column string // destination column in the persistence target
	Unit   string
	Label  string
}

// measureRegistry holds the registry in declaration order.
var measureRegistry = []MeasureInfo{
	{MeasureFuelTotal, "fuel_total_mt", "m tonnes", "Total fuel consumption"},
	{MeasureCO2Total, "co2_total_mt", "m tonnes", "Total CO₂ emissions"},
	{MeasureDistance, "distance_nmi", "n miles", "Annual distance traveled"},
	{MeasureTimeAtSea, "time_at_sea_h", "hours", "Annual time at sea"},
	{MeasureCO2PerDistance, "co2_per_distance_kg_nmi", "kg CO₂ / n mile", "Average CO₂ per distance"},
	{MeasureFuelPerDistance, "fuel_per_distance_kg_nmi", "kg / n mile", "Average fuel per distance"},
	{MeasureTechnicalEfficiency, "technical_efficiency", "gCO₂/t·nm", "Technical efficiency"},
}

var measureIndex = func() map[Measure]MeasureInfo {
	idx := make(map[Measure]MeasureInfo, len(measureRegistry))
	for _, info := range measureRegistry {
		idx[info.ID] = info
	}
	return idx
}()

// Measures returns all known measures in registry order.
func Measures() []Measure {
	out := make([]Measure, len(measureRegistry))
	for i, info := range measureRegistry {
		out[i] = info.ID
	}
	return out
}

// Valid reports whether the measure is in the registry.
func (m Measure) Valid() bool {
	_, ok := measureIndex[m]
	return ok
}

// Info returns the registry entry for the measure.
func (m Measure) Info() (MeasureInfo, bool) {
	info, ok := measureIndex[m]
	return info, ok
}

// Column returns the persistence-target column for the measure,
// or the measure id itself when the measure is unknown.
func (m Measure) Column() string {
	if info, ok := measureIndex[m]; ok {
		return info.Column
	}
	return string(m)
}

// Attr identifies one supplemental non-numeric field carried alongside the
// measures: vessel identity details and document-of-compliance dates.
// Attr ids double as persistence-target column names.
type Attr string

// Known attributes.
const (
	AttrVesselName    Attr = "vessel_name"
	AttrVesselType    Attr = "vessel_type"
	AttrDoCIssueDate  Attr = "doc_issue_date"  // ISO date string
	AttrDoCExpiryDate Attr = "doc_expiry_date" // ISO date string
)

// String returns the string representation of an Attr.
func (a Attr) String() string {
	return string(a)
}

// attrRegistry holds all known attributes in declaration order.
var attrRegistry = []Attr{
	AttrVesselName,
	AttrVesselType,
	AttrDoCIssueDate,
	AttrDoCExpiryDate,
}

// Attrs returns all known attributes in registry order.
func Attrs() []Attr {
	out := make([]Attr, len(attrRegistry))
	copy(out, attrRegistry)
	return out
}

// Valid reports whether the attribute is known.
func (a Attr) Valid() bool {
	for _, known := range attrRegistry {
		if a == known {
			return true
		}
	}
	return false
}

// Column returns the persistence-target column for the attribute.
func (a Attr) Column() string {
	return string(a)
}
