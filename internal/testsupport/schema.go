package testsupport

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/harborwatch/ballast/pkg/emissions"
)

// CreateSchema creates the destination table at the sqlite path dsn with
// every known attribute and measure column.
func CreateSchema(t testing.TB, dsn, table string) {
	t.Helper()

	db := OpenDB(t, dsn)
	cols := []string{
		"entity_id TEXT NOT NULL",
		"vessel_id TEXT NOT NULL",
		"reporting_period INTEGER NOT NULL",
	}
	for _, a := range emissions.Attrs() {
		cols = append(cols, a.Column()+" TEXT")
	}
	for _, m := range emissions.Measures() {
		cols = append(cols, m.Column()+" REAL")
	}
	cols = append(cols, "PRIMARY KEY (entity_id, vessel_id, reporting_period)")

	if _, err := db.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(cols, ", "))); err != nil {
		t.Fatalf("create table %s: %v", table, err)
	}
}

// OpenDB opens the sqlite database for direct assertions and registers
// cleanup.
func OpenDB(t testing.TB, dsn string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open %s: %v", dsn, err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close %s: %v", dsn, err)
		}
	})
	return db
}

// CountRows returns the number of rows in table.
func CountRows(t testing.TB, dsn, table string) int {
	t.Helper()

	db := OpenDB(t, dsn)
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

// QueryMeasure returns one measure column for the given key. An invalid
// result means the measure is not reported for that row.
func QueryMeasure(t testing.TB, dsn, table, column, entity, vessel string, period int) sql.NullFloat64 {
	t.Helper()

	db := OpenDB(t, dsn)
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE entity_id = ? AND vessel_id = ? AND reporting_period = ?",
		column, table)
	var v sql.NullFloat64
	if err := db.QueryRow(query, entity, vessel, period).Scan(&v); err != nil {
		t.Fatalf("query %s for %s/%s/%d: %v", column, entity, vessel, period, err)
	}
	return v
}
