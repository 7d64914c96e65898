package ballast

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborwatch/ballast/internal/manifest"
	"github.com/harborwatch/ballast/internal/testsupport"
	"github.com/harborwatch/ballast/pkg/emissions"
)

const manifestYAML = `
database:
  table: vessel_emissions
lock_file: ballast.lock
sources:
  - tag: emissions-2020
    format: registry-v1
    path: emissions-2020.xlsx
precedence:
  - emissions-2020
`

// workspace writes a manifest file, its workbook, and an empty schema
// into one directory and returns the manifest and database paths.
func workspace(t *testing.T) (manifestPath, dbPath string) {
	t.Helper()

	dir := t.TempDir()
	manifestPath = filepath.Join(dir, "ballast.yaml")
	require.NoError(t, os.WriteFile(manifestPath, []byte(manifestYAML), 0o644))

	testsupport.WriteRegistryAt(t, filepath.Join(dir, "emissions-2020.xlsx"), "registry-v1",
		map[string]any{
			"entity": "ACME Marine", "vessel": "9000001", "period": 2020,
			"vessel_name": "MV Alpha", "fuel_total": "120.5", "co2_total": "370",
		})

	dbPath = filepath.Join(dir, "ballast.db")
	testsupport.CreateSchema(t, dbPath, "vessel_emissions")
	return manifestPath, dbPath
}

func TestNewLoadsManifestFromPath(t *testing.T) {
	manifestPath, dbPath := workspace(t)

	b, err := New(WithManifestPath(manifestPath), WithDatabaseURL(dbPath))
	require.NoError(t, err)
	defer func() { require.NoError(t, b.Close()) }()

	m := b.Manifest()
	require.Len(t, m.Sources, 1)
	assert.Equal(t, dbPath, m.Database.URL)
	assert.Equal(t, "vessel_emissions", m.Database.Table)
	assert.True(t, filepath.IsAbs(m.Sources[0].Path), "source paths resolve against the manifest dir")

	cols := b.Columns()
	require.NotEmpty(t, cols)
	assert.Equal(t, []string{"entity_id", "vessel_id", "reporting_period"}, cols[:3])
}

func TestNewFailsOnMissingManifest(t *testing.T) {
	_, err := New(WithManifestPath(filepath.Join(t.TempDir(), "nope.yaml")))
	require.Error(t, err)
}

func TestNewKeepsCallerManifestUntouched(t *testing.T) {
	_, dbPath := workspace(t)

	m := &Manifest{
		Database:   Database{Table: "vessel_emissions"},
		LockFile:   filepath.Join(t.TempDir(), "run.lock"),
		Sources:    []Source{{Tag: "a", Format: "registry-v1", Path: "a.xlsx"}},
		Precedence: []string{"a"},
	}
	b, err := New(WithManifest(m), WithDatabaseURL(dbPath), WithTable("other_table"))
	require.NoError(t, err)
	defer func() { require.NoError(t, b.Close()) }()

	assert.Empty(t, m.Database.URL, "caller manifest must not absorb overrides")
	assert.Equal(t, "vessel_emissions", m.Database.Table)
	assert.Equal(t, dbPath, b.Manifest().Database.URL)
	assert.Equal(t, "other_table", b.Manifest().Database.Table)
}

func TestRunAndExport(t *testing.T) {
	manifestPath, dbPath := workspace(t)

	b, err := New(WithManifestPath(manifestPath), WithDatabaseURL(dbPath))
	require.NoError(t, err)
	defer func() { require.NoError(t, b.Close()) }()

	report, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Failed())
	require.NotNil(t, report.Load)
	assert.Equal(t, 1, report.Load.Inserted)

	rows, err := b.Export(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, emissions.Key{Entity: "ACME Marine", Vessel: "9000001", Period: 2020}, row.Key)
	assert.Equal(t, "MV Alpha", row.Attrs[emissions.AttrVesselName])
	assert.InDelta(t, 120.5, row.Measures[emissions.MeasureFuelTotal], 1e-9)
	assert.InDelta(t, 370, row.Measures[emissions.MeasureCO2Total], 1e-9)
}

func TestCheckProbesSourcesAndDatabase(t *testing.T) {
	manifestPath, dbPath := workspace(t)

	b, err := New(WithManifestPath(manifestPath), WithDatabaseURL(dbPath))
	require.NoError(t, err)
	defer func() { require.NoError(t, b.Close()) }()

	report, err := b.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Sources, 1)
	assert.NoError(t, report.Sources[0].Err)
	assert.NoError(t, report.Database.Err)
	assert.True(t, report.OK())
}

func TestCheckReportsFailures(t *testing.T) {
	dir := t.TempDir()

	m := &manifest.Manifest{
		Database: manifest.Database{
			URL:   filepath.Join(dir, "no-schema.db"),
			Table: "vessel_emissions",
		},
		LockFile: filepath.Join(dir, "run.lock"),
		Sources: []manifest.Source{
			{Tag: "gone", Format: "registry-v1", Path: filepath.Join(dir, "gone.xlsx")},
		},
		Precedence: []string{"gone"},
	}
	require.NoError(t, m.Validate())

	b, err := New(WithManifest(m))
	require.NoError(t, err)
	defer func() { require.NoError(t, b.Close()) }()

	report, err := b.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, report.OK())
	require.Len(t, report.Sources, 1)
	assert.Error(t, report.Sources[0].Err)
	assert.NotEmpty(t, report.Sources[0].Error)
	assert.Error(t, report.Database.Err, "missing table must fail the schema probe")
}
