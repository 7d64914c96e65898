package sources

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/harborwatch/ballast/pkg/emissions"
	"github.com/harborwatch/ballast/pkg/errors"
	"github.com/harborwatch/ballast/pkg/logging"
)

// Placeholder strings the registry writes for unreported measures.
// Matched case-insensitively after trimming.
var sentinels = map[string]struct{}{
	"division by zero!": {},
	"n/a":               {},
	"-":                 {},
}

// Technical efficiency cells carry the figure inside a label, e.g.
// "EIV (35.2 gCO₂/t·nm)".
var efficiencyValue = regexp.MustCompile(`(\d+\.\d+)`)

var yearPattern = regexp.MustCompile(`^(\d{4})(?:\.0+)?$`)

// Normalizer maps the raw rows of one source onto emission records using
// the source's format mapping. It keeps a running count of measure
// downgrades for the run report.
type Normalizer struct {
	format     *Format
	downgrades int
}

// NewNormalizer returns a normalizer for one source format.
func NewNormalizer(format *Format) *Normalizer {
	return &Normalizer{format: format}
}

// Downgrades returns how many measure cells were downgraded to absent
// because they carried a sentinel or failed to parse.
func (n *Normalizer) Downgrades() int {
	return n.downgrades
}

// Normalize maps one raw row to an emission record. A row lacking a key
// field (entity, vessel or period) returns a SkipError for the caller to
// count and drop. Unparsable optional measures downgrade that single
// field to absent; they never fail the row.
func (n *Normalizer) Normalize(row *RawRow) (*emissions.Record, error) {
	var entity, vessel string
	var period int

	for i, col := range n.format.Columns {
		cell := row.Cell(i)
		switch col.Field {
		case FieldEntity:
			entity = cell
		case FieldVessel:
			vessel = cell
		case FieldPeriod:
			if y, ok := parseYear(cell); ok {
				period = y
			}
		}
	}

	switch {
	case entity == "":
		return nil, errors.NewSkipError(string(row.Source), row.Line, FieldEntity)
	case vessel == "":
		return nil, errors.NewSkipError(string(row.Source), row.Line, FieldVessel)
	case period == 0:
		return nil, errors.NewSkipError(string(row.Source), row.Line, FieldPeriod)
	}

	rec := emissions.NewRecord(row.Source, entity, vessel, period)
	rec.Line = row.Line

	for i, col := range n.format.Columns {
		switch col.Field {
		case FieldEntity, FieldVessel, FieldPeriod:
			continue
		}
		cell := row.Cell(i)
		if cell == "" {
			continue
		}
		n.apply(rec, col, cell, row)
	}

	return rec, nil
}

// apply parses one cell per its column kind and sets the field on the
// record.
func (n *Normalizer) apply(rec *emissions.Record, col Column, cell string, row *RawRow) {
	switch col.Kind {
	case ParseNumber, ParseEfficiency:
		value, ok := parseMeasure(col.Kind, cell)
		if !ok {
			n.downgrades++
			logging.Debug().
				Str("source", string(row.Source)).
				Int("line", row.Line).
				Str("measure", col.Field).
				Str("cell", cell).
				Msg("measure downgraded to not reported")
			return
		}
		rec.SetValue(emissions.Measure(col.Field), value)
	case ParseDate:
		iso, ok := parseDate(cell)
		if !ok {
			logging.Debug().
				Str("source", string(row.Source)).
				Int("line", row.Line).
				Str("attr", col.Field).
				Str("cell", cell).
				Msg("unparsable date dropped")
			return
		}
		rec.SetAttr(emissions.Attr(col.Field), iso)
	case ParseText:
		rec.SetAttr(emissions.Attr(col.Field), cell)
	}
}

func parseMeasure(kind ParseKind, cell string) (float64, bool) {
	if isSentinel(cell) {
		return 0, false
	}
	if kind == ParseEfficiency {
		return parseEfficiency(cell)
	}
	return parseNumber(cell)
}

func isSentinel(s string) bool {
	_, ok := sentinels[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// parseNumber parses a numeric cell tolerating locale formatting:
// "1,234.5", "1.234,5", "1 234,5" and plain "1234.5" all parse. When
// both separators appear, the rightmost one is the decimal mark. A lone
// separator is the decimal mark; repeated separators are grouping.
func parseNumber(s string) (float64, bool) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', ' ', ' ': // grouping spaces, incl. NBSP
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}

	lastComma := strings.LastIndexByte(s, ',')
	lastPoint := strings.LastIndexByte(s, '.')
	switch {
	case lastComma >= 0 && lastPoint >= 0:
		if lastComma > lastPoint {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastPoint >= 0:
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseEfficiency pulls the figure out of technical efficiency cells
// such as "EIV (35.2 gCO₂/t·nm)". A plain numeric cell is also accepted.
// The registry records vessels with no reported figure as 0, which maps
// to absent here.
func parseEfficiency(s string) (float64, bool) {
	if m := efficiencyValue.FindString(s); m != "" {
		f, err := strconv.ParseFloat(m, 64)
		if err != nil || f == 0 {
			return 0, false
		}
		return f, true
	}
	f, ok := parseNumber(s)
	if !ok || f == 0 {
		return 0, false
	}
	return f, true
}

// parseYear accepts a plain reporting year ("2021", "2021.0") or a date
// inside the year ("31/12/2021") and returns the four-digit year.
func parseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if m := yearPattern.FindStringSubmatch(s); m != nil {
		y, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		return y, true
	}
	if iso, ok := parseDate(s); ok {
		y, err := strconv.Atoi(iso[:4])
		if err != nil {
			return 0, false
		}
		return y, true
	}
	return 0, false
}

// parseDate parses the registry's dd/mm/yyyy dates, with or without
// leading zeros, and returns the ISO yyyy-mm-dd rendering. ISO input
// passes through unchanged.
func parseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2/1/2006", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}
