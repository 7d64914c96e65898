// Package sources reads the annual emission registry spreadsheets and
// normalizes their rows into emission records. Each registry edition is
// described by a Format: where the header line sits, which header
// spellings are accepted, and how each cell is parsed. The Reader streams
// data rows lazily; the Normalizer maps each row onto the canonical
// record shape, skipping rows that lack a key field and downgrading
// unparsable optional measures to "not reported".
package sources

import (
	"github.com/harborwatch/ballast/pkg/emissions"
)

// RawRow is one data line lifted out of a spreadsheet. Cells are the
// trimmed rendered cell strings, aligned with the format's column order,
// so Cells[i] belongs to Format.Columns[i]. The line number is the
// 1-based spreadsheet row, kept for error reporting.
type RawRow struct {
	Source emissions.SourceTag
	Line   int
	Cells  []string
}

// Cell returns the raw cell for the given format column index.
// Out-of-range indexes read as blank.
func (r *RawRow) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i]
}

// Blank reports whether every cell of the row is empty.
func (r *RawRow) Blank() bool {
	for _, c := range r.Cells {
		if c != "" {
			return false
		}
	}
	return true
}
