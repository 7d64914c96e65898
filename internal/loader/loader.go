// Package loader persists reconciled emission records into the
// destination table. The schema is owned by external migrations; the
// loader verifies the column contract at run time and applies each run
// as a single transaction: insert new keys, update changed rows, delete
// keys absent from the run, or roll everything back.
package loader

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	_ "modernc.org/sqlite"             // cgo-free sqlite driver

	"github.com/harborwatch/ballast/pkg/emissions"
	"github.com/harborwatch/ballast/pkg/errors"
)

// Key column names of the destination table.
const (
	colEntity = "entity_id"
	colVessel = "vessel_id"
	colPeriod = "reporting_period"
)

// Store is the persistence target: one relational table written by the
// pipeline inside a single transaction per run.
type Store struct {
	db       *sql.DB
	driver   string
	table    string
	measures []emissions.Measure
}

// Open connects to the persistence target. postgres:// and
// postgresql:// URLs use the pgx driver; any other URL is a SQLite path
// (a file path or :memory:). The measures select which measure columns
// this run reads and writes.
func Open(ctx context.Context, url, table string, measures []emissions.Measure) (*Store, error) {
	if url == "" {
		return nil, errors.NewConfigError("database", "no database URL configured", nil)
	}
	if table == "" {
		return nil, errors.NewConfigError("database", "no table configured", nil)
	}

	driver := "sqlite"
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		driver = "pgx"
	}

	db, err := sql.Open(driver, url)
	if err != nil {
		return nil, errors.NewConfigError("database", fmt.Sprintf("opening %s database", driver), err)
	}

	switch driver {
	case "sqlite":
		// A pooled in-memory database would give every connection its
		// own empty copy.
		if strings.Contains(url, ":memory:") {
			db.SetMaxOpenConns(1)
		}
		pragmas := []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA foreign_keys = ON",
			"PRAGMA busy_timeout = 5000",
		}
		for _, pragma := range pragmas {
			if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
				_ = db.Close()
				return nil, errors.NewLoadError("open", "", fmt.Errorf("apply pragma %q: %w", pragma, execErr))
			}
		}
	case "pgx":
		db.SetMaxIdleConns(2)
		db.SetMaxOpenConns(4)
	}

	return &Store{db: db, driver: driver, table: table, measures: measures}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Check verifies connectivity and the schema contract: every column this
// run will read or write must exist in the destination table.
func (s *Store) Check(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return errors.NewLoadError("ping", "", err)
	}

	query := fmt.Sprintf("SELECT %s FROM %s LIMIT 0", strings.Join(s.columns(), ", "), s.table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return errors.NewConfigError("database",
			fmt.Sprintf("schema contract probe failed for table %s", s.table), err)
	}
	return rows.Close()
}

// columns returns the table's columns in stable order: the key triple,
// the attributes, then the active measures.
func (s *Store) columns() []string {
	return Columns(s.measures)
}

// valueColumns returns the non-key columns in the same stable order.
func (s *Store) valueColumns() []string {
	return s.columns()[3:]
}

// placeholder renders the i-th (1-based) statement parameter for the
// active driver.
func (s *Store) placeholder(i int) string {
	if s.driver == "pgx" {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}

func (s *Store) placeholders(from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = s.placeholder(from + i)
	}
	return strings.Join(parts, ", ")
}
