package sources

import (
	"sort"
	"strings"

	"github.com/harborwatch/ballast/pkg/emissions"
)

// ParseKind selects the cell parser applied to a column.
type ParseKind int

// Cell parser kinds.
const (
	// ParseText keeps the trimmed cell string.
	ParseText ParseKind = iota
	// ParseNumber parses locale-formatted numerics (thousands separators,
	// comma or point decimal marks).
	ParseNumber
	// ParseYear parses a four-digit reporting year.
	ParseYear
	// ParseDate parses dd/mm/yyyy dates and renders them as ISO strings.
	ParseDate
	// ParseEfficiency extracts the numeric value out of technical
	// efficiency cells like "EIV (35.2 gCO₂/t·nm)".
	ParseEfficiency
)

// Field names for the key columns. Measure and attribute columns use
// their registry ids as field names.
const (
	FieldEntity = "entity"
	FieldVessel = "vessel"
	FieldPeriod = "period"
)

// Column binds one spreadsheet column to a record field. Aliases are the
// accepted header spellings for the column; the first alias is the
// canonical name used in error messages.
type Column struct {
	Field   string
	Kind    ParseKind
	Aliases []string
}

// Name returns the canonical header spelling.
func (c Column) Name() string {
	return c.Aliases[0]
}

// Matches reports whether the given header cell resolves to this column.
// Comparison ignores case and surplus whitespace.
func (c Column) Matches(header string) bool {
	h := normalizeHeader(header)
	for _, alias := range c.Aliases {
		if strings.EqualFold(h, normalizeHeader(alias)) {
			return true
		}
	}
	return false
}

// Format describes one edition of the registry export: the 1-based
// spreadsheet row carrying the headers, and the full set of mapped
// columns. Every mapped column must be present in the file; a missing
// column is a format error for that source.
type Format struct {
	Name      string
	HeaderRow int
	Columns   []Column
}

// Resolve maps each format column to its position in the given header
// line. The second return value lists the canonical names of columns
// that did not resolve.
func (f *Format) Resolve(headers []string) ([]int, []string) {
	positions := make([]int, len(f.Columns))
	var missing []string
	for i, col := range f.Columns {
		positions[i] = -1
		for j, h := range headers {
			if col.Matches(h) {
				positions[i] = j
				break
			}
		}
		if positions[i] < 0 {
			missing = append(missing, col.Name())
		}
	}
	return positions, missing
}

// normalizeHeader collapses runs of whitespace so header drift in
// spacing does not defeat the alias match.
func normalizeHeader(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func col(field string, kind ParseKind, aliases ...string) Column {
	return Column{Field: field, Kind: kind, Aliases: aliases}
}

// Shared column definitions. Editions that renamed a header keep the
// older spellings as aliases, so a re-export of an older file still
// resolves.
var (
	colCompany = col(FieldEntity, ParseText, "Company", "DoC Company")

	// The 2021 edition renamed the company column.
	colReportingCompany = col(FieldEntity, ParseText, "Reporting company", "Company")

	colIMO    = col(FieldVessel, ParseText, "IMO Number", "IMO number")
	colPeriod = col(FieldPeriod, ParseYear, "Reporting Period")

	colName = col(string(emissions.AttrVesselName), ParseText, "Name")

	// The 2021 edition renamed the vessel name column.
	colShipName = col(string(emissions.AttrVesselName), ParseText, "Ship name", "Name")

	colShipType   = col(string(emissions.AttrVesselType), ParseText, "Ship type")
	colDoCIssue   = col(string(emissions.AttrDoCIssueDate), ParseDate, "DoC issue date")
	colDoCExpiry  = col(string(emissions.AttrDoCExpiryDate), ParseDate, "DoC expiry date")
	colEfficiency = col(string(emissions.MeasureTechnicalEfficiency), ParseEfficiency, "Technical efficiency")

	colFuelTotal = col(string(emissions.MeasureFuelTotal), ParseNumber,
		"Total fuel consumption [m tonnes]")
	colCO2Total = col(string(emissions.MeasureCO2Total), ParseNumber,
		"Total CO₂ emissions [m tonnes]")

	// Renamed between the 2018 and 2019 editions.
	colTimeAtSeaV1 = col(string(emissions.MeasureTimeAtSea), ParseNumber,
		"Total time spent at sea [hours]")
	colTimeAtSea = col(string(emissions.MeasureTimeAtSea), ParseNumber,
		"Annual Total time spent at sea [hours]", "Total time spent at sea [hours]")

	colCO2PerDistance = col(string(emissions.MeasureCO2PerDistance), ParseNumber,
		"Annual average CO₂ emissions per distance [kg CO₂ / n mile]")
	colFuelPerDistance = col(string(emissions.MeasureFuelPerDistance), ParseNumber,
		"Annual average Fuel consumption per distance [kg / n mile]")

	// Distance appears from the 2020 edition on.
	colDistance = col(string(emissions.MeasureDistance), ParseNumber,
		"Distance travelled [n miles]")
)

// The four registry editions. All put their headers on the third
// spreadsheet row, below two banner rows.
var formats = map[string]*Format{
	"registry-v1": {
		Name:      "registry-v1",
		HeaderRow: 3,
		Columns: []Column{
			colIMO, colCompany, colPeriod, colName, colShipType,
			colEfficiency, colDoCIssue, colDoCExpiry,
			colFuelTotal, colCO2Total, colTimeAtSeaV1,
			colCO2PerDistance, colFuelPerDistance,
		},
	},
	"registry-v2": {
		Name:      "registry-v2",
		HeaderRow: 3,
		Columns: []Column{
			colIMO, colCompany, colPeriod, colName, colShipType,
			colEfficiency, colDoCIssue, colDoCExpiry,
			colFuelTotal, colCO2Total, colTimeAtSea,
			colCO2PerDistance, colFuelPerDistance,
		},
	},
	"registry-v3": {
		Name:      "registry-v3",
		HeaderRow: 3,
		Columns: []Column{
			colIMO, colCompany, colPeriod, colName, colShipType,
			colEfficiency, colDoCIssue, colDoCExpiry,
			colFuelTotal, colCO2Total, colTimeAtSea,
			colCO2PerDistance, colFuelPerDistance, colDistance,
		},
	},
	"registry-v4": {
		Name:      "registry-v4",
		HeaderRow: 3,
		Columns: []Column{
			colIMO, colReportingCompany, colPeriod, colShipName, colShipType,
			colEfficiency, colDoCIssue, colDoCExpiry,
			colFuelTotal, colCO2Total, colTimeAtSea,
			colCO2PerDistance, colFuelPerDistance, colDistance,
		},
	},
}

// Lookup returns the named format.
func Lookup(name string) (*Format, bool) {
	f, ok := formats[name]
	return f, ok
}

// Names returns the known format names, sorted.
func Names() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
