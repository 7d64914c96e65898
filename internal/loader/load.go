package loader

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/harborwatch/ballast/pkg/emissions"
	"github.com/harborwatch/ballast/pkg/errors"
	"github.com/harborwatch/ballast/pkg/logging"
)

// Stats summarizes the row changes of one load.
type Stats struct {
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Deleted   int `json:"deleted"`
	Unchanged int `json:"unchanged"`
}

// Changes returns how many rows the load touched.
func (s Stats) Changes() int {
	return s.Inserted + s.Updated + s.Deleted
}

// rowValues holds one row's non-key values in column order: attributes
// first, then the active measures. Null means "not reported".
type rowValues struct {
	attrs    []sql.NullString
	measures []sql.NullFloat64
}

func (s *Store) newRowValues() rowValues {
	return rowValues{
		attrs:    make([]sql.NullString, len(emissions.Attrs())),
		measures: make([]sql.NullFloat64, len(s.measures)),
	}
}

func (v rowValues) equal(o rowValues) bool {
	for i := range v.attrs {
		if v.attrs[i] != o.attrs[i] {
			return false
		}
	}
	for i := range v.measures {
		if v.measures[i] != o.measures[i] {
			return false
		}
	}
	return true
}

// args appends the row's values as statement arguments.
func (v rowValues) args(dst []any) []any {
	for _, a := range v.attrs {
		dst = append(dst, a)
	}
	for _, m := range v.measures {
		dst = append(dst, m)
	}
	return dst
}

// candidateValues projects a reconciled record onto the active columns.
func (s *Store) candidateValues(rec *emissions.Reconciled) rowValues {
	vals := s.newRowValues()
	for i, a := range emissions.Attrs() {
		if val, ok := rec.AttrValue(a); ok {
			vals.attrs[i] = sql.NullString{String: val, Valid: true}
		}
	}
	for i, m := range s.measures {
		if val, ok := rec.Value(m); ok {
			vals.measures[i] = sql.NullFloat64{Float64: val, Valid: true}
		}
	}
	return vals
}

// Load applies the run's complete record set inside one transaction:
// new keys are inserted, changed rows updated, and rows whose key is
// absent from this run deleted, all in sorted key order. Any statement
// failure rolls the whole transaction back, leaving the previous state
// intact. Loading the same set twice is a no-op the second time.
func (s *Store) Load(ctx context.Context, records []*emissions.Reconciled) (*Stats, error) {
	return s.load(ctx, records, false)
}

// DryRun computes the changes a load would make, then rolls the
// transaction back instead of committing.
func (s *Store) DryRun(ctx context.Context, records []*emissions.Reconciled) (*Stats, error) {
	return s.load(ctx, records, true)
}

func (s *Store) load(ctx context.Context, records []*emissions.Reconciled, dry bool) (*Stats, error) {
	candidates := make(map[emissions.Key]rowValues, len(records))
	keys := make([]emissions.Key, 0, len(records))
	for _, rec := range records {
		key := rec.Key()
		if _, dup := candidates[key]; dup {
			return nil, errors.NewLoadError("stage", key.String(), errors.New("duplicate reconciled key"))
		}
		candidates[key] = s.candidateValues(rec)
		keys = append(keys, key)
	}
	sortKeys(keys)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewLoadError("begin", "", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := s.readExisting(ctx, tx)
	if err != nil {
		return nil, err
	}

	logging.Debug().
		Int("candidates", len(candidates)).
		Int("existing", len(existing)).
		Bool("dry_run", dry).
		Str("table", s.table).
		Msg("staging load diff")

	stats := &Stats{}
	insertSQL := s.insertSQL()
	updateSQL := s.updateSQL()

	for _, key := range keys {
		vals := candidates[key]
		old, found := existing[key]
		switch {
		case !found:
			args := vals.args([]any{key.Entity, key.Vessel, key.Period})
			if _, err := tx.ExecContext(ctx, insertSQL, args...); err != nil {
				return nil, errors.NewLoadError("insert", key.String(), err)
			}
			stats.Inserted++
		case !old.equal(vals):
			args := vals.args(nil)
			args = append(args, key.Entity, key.Vessel, key.Period)
			if _, err := tx.ExecContext(ctx, updateSQL, args...); err != nil {
				return nil, errors.NewLoadError("update", key.String(), err)
			}
			stats.Updated++
		default:
			stats.Unchanged++
		}
	}

	var stale []emissions.Key
	for key := range existing {
		if _, found := candidates[key]; !found {
			stale = append(stale, key)
		}
	}
	sortKeys(stale)

	deleteSQL := s.deleteSQL()
	for _, key := range stale {
		if _, err := tx.ExecContext(ctx, deleteSQL, key.Entity, key.Vessel, key.Period); err != nil {
			return nil, errors.NewLoadError("delete", key.String(), err)
		}
		stats.Deleted++
	}

	if dry {
		// The deferred rollback discards the staged changes.
		return stats, nil
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewLoadError("commit", "", err)
	}
	return stats, nil
}

// readExisting loads the destination table's current rows, keyed for
// the diff.
func (s *Store) readExisting(ctx context.Context, tx *sql.Tx) (map[emissions.Key]rowValues, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(s.columns(), ", "), s.table)

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewLoadError("stage", "", err)
	}
	defer rows.Close()

	existing := make(map[emissions.Key]rowValues)
	for rows.Next() {
		key, vals, err := s.scanRow(rows)
		if err != nil {
			return nil, errors.NewLoadError("stage", key.String(), err)
		}
		existing[key] = vals
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewLoadError("stage", "", err)
	}
	return existing, nil
}

func (s *Store) scanRow(rows *sql.Rows) (emissions.Key, rowValues, error) {
	var key emissions.Key
	vals := s.newRowValues()

	dest := make([]any, 0, 3+len(vals.attrs)+len(vals.measures))
	dest = append(dest, &key.Entity, &key.Vessel, &key.Period)
	for i := range vals.attrs {
		dest = append(dest, &vals.attrs[i])
	}
	for i := range vals.measures {
		dest = append(dest, &vals.measures[i])
	}

	err := rows.Scan(dest...)
	return key, vals, err
}

func (s *Store) insertSQL() string {
	cols := s.columns()
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.table, strings.Join(cols, ", "), s.placeholders(1, len(cols)))
}

func (s *Store) updateSQL() string {
	valueCols := s.valueColumns()
	sets := make([]string, len(valueCols))
	for i, col := range valueCols {
		sets[i] = fmt.Sprintf("%s = %s", col, s.placeholder(i+1))
	}
	n := len(valueCols)
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s AND %s = %s AND %s = %s",
		s.table, strings.Join(sets, ", "),
		colEntity, s.placeholder(n+1), colVessel, s.placeholder(n+2), colPeriod, s.placeholder(n+3))
}

func (s *Store) deleteSQL() string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s = %s AND %s = %s AND %s = %s",
		s.table, colEntity, s.placeholder(1), colVessel, s.placeholder(2), colPeriod, s.placeholder(3))
}

func sortKeys(keys []emissions.Key) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Compare(keys[j]) < 0
	})
}
