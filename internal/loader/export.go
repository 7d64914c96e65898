package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/harborwatch/ballast/pkg/emissions"
	"github.com/harborwatch/ballast/pkg/errors"
)

// Row is one destination-table row read back for export. Absent map
// entries are NULL columns.
type Row struct {
	Key      emissions.Key
	Attrs    map[emissions.Attr]string
	Measures map[emissions.Measure]float64
}

// Columns returns the destination-table columns for the given active
// measure set, in the order Export emits them: the key triple, the
// attributes, then the measures.
func Columns(measures []emissions.Measure) []string {
	cols := make([]string, 0, 3+len(emissions.Attrs())+len(measures))
	cols = append(cols, colEntity, colVessel, colPeriod)
	for _, a := range emissions.Attrs() {
		cols = append(cols, a.Column())
	}
	for _, m := range measures {
		cols = append(cols, m.Column())
	}
	return cols
}

// Columns returns the table columns this store reads and writes, in the
// order Export emits them.
func (s *Store) Columns() []string {
	return s.columns()
}

// Export reads the destination table back in key order.
func (s *Store) Export(ctx context.Context) ([]Row, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s, %s, %s",
		strings.Join(s.columns(), ", "), s.table, colEntity, colVessel, colPeriod)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewLoadError("export", "", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		key, vals, err := s.scanRow(rows)
		if err != nil {
			return nil, errors.NewLoadError("export", key.String(), err)
		}

		row := Row{
			Key:      key,
			Attrs:    make(map[emissions.Attr]string),
			Measures: make(map[emissions.Measure]float64),
		}
		for i, a := range emissions.Attrs() {
			if vals.attrs[i].Valid {
				row.Attrs[a] = vals.attrs[i].String
			}
		}
		for i, m := range s.measures {
			if vals.measures[i].Valid {
				row.Measures[m] = vals.measures[i].Float64
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewLoadError("export", "", err)
	}
	return out, nil
}
