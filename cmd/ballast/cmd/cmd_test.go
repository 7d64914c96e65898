package cmd_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborwatch/ballast"
	"github.com/harborwatch/ballast/cmd/ballast/cmd"
	"github.com/harborwatch/ballast/internal/manifest"
	"github.com/harborwatch/ballast/internal/testsupport"
	"github.com/harborwatch/ballast/pkg/errors"
)

// testApp implements application.Application over a fixed manifest.
type testApp struct {
	manifest *ballast.Manifest
	format   string
	logger   zerolog.Logger
	shared   ballast.Ballast
}

func newTestApp(t *testing.T, m *ballast.Manifest) *testApp {
	a := &testApp{manifest: m, format: "table", logger: zerolog.Nop()}
	t.Cleanup(func() {
		if a.shared != nil {
			require.NoError(t, a.shared.Close())
		}
	})
	return a
}

func (a *testApp) Version() string { return "test" }
func (a *testApp) Commit() string  { return "none" }
func (a *testApp) Date() string    { return "today" }
func (a *testApp) BuiltBy() string { return "go test" }

func (a *testApp) Logger() *zerolog.Logger { return &a.logger }
func (a *testApp) Format() string          { return a.format }

func (a *testApp) Ballast() (ballast.Ballast, error) {
	if a.shared == nil {
		b, err := ballast.New(ballast.WithManifest(a.manifest))
		if err != nil {
			return nil, err
		}
		a.shared = b
	}
	return a.shared, nil
}

func (a *testApp) BallastWithOptions(opts ...ballast.Option) (ballast.Ballast, error) {
	return ballast.New(append([]ballast.Option{ballast.WithManifest(a.manifest)}, opts...)...)
}

func execute(t *testing.T, c *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&out)
	c.SetArgs(args)
	err := c.ExecuteContext(context.Background())
	return out.String(), err
}

// fixture builds a manifest with one loadable source and its schema.
func fixture(t *testing.T) *ballast.Manifest {
	t.Helper()

	path := testsupport.WriteRegistry(t, "registry-v1",
		map[string]any{
			"entity": "ACME Marine", "vessel": "9000001", "period": 2020,
			"vessel_name": "MV Alpha", "fuel_total": "120.5", "co2_total": "370",
		})
	m := testsupport.NewManifest(t, manifest.Source{Tag: "emissions-2020", Format: "registry-v1", Path: path})
	testsupport.CreateSchema(t, m.Database.URL, m.Database.Table)
	return m
}

func TestRunCommand(t *testing.T) {
	m := fixture(t)
	app := newTestApp(t, m)

	out, err := execute(t, cmd.NewRunCommand(app))
	require.NoError(t, err)

	assert.Contains(t, out, "emissions-2020")
	assert.Contains(t, out, "1 inserted")
	assert.Equal(t, 1, testsupport.CountRows(t, m.Database.URL, m.Database.Table))
}

func TestRunCommandPartialExit(t *testing.T) {
	good := testsupport.WriteRegistry(t, "registry-v1",
		map[string]any{"entity": "ACME Marine", "vessel": "9000001", "period": 2020, "fuel_total": "5"})
	m := testsupport.NewManifest(t,
		manifest.Source{Tag: "gone", Format: "registry-v1", Path: filepath.Join(t.TempDir(), "gone.xlsx")},
		manifest.Source{Tag: "good", Format: "registry-v1", Path: good},
	)
	testsupport.CreateSchema(t, m.Database.URL, m.Database.Table)
	app := newTestApp(t, m)

	out, err := execute(t, cmd.NewRunCommand(app))
	require.Error(t, err)
	assert.True(t, errors.Is(err, cmd.ErrPartialRun))

	// The failed source must not stop the good one from loading.
	assert.Contains(t, out, "partial run")
	assert.Equal(t, 1, testsupport.CountRows(t, m.Database.URL, m.Database.Table))
}

func TestRunCommandDryRun(t *testing.T) {
	m := fixture(t)
	app := newTestApp(t, m)

	out, err := execute(t, cmd.NewRunCommand(app), "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, out, "would load")
	assert.Equal(t, 0, testsupport.CountRows(t, m.Database.URL, m.Database.Table))
}

func TestRunCommandJSON(t *testing.T) {
	m := fixture(t)
	app := newTestApp(t, m)
	app.format = "json"

	out, err := execute(t, cmd.NewRunCommand(app))
	require.NoError(t, err)

	var report struct {
		RunID   string `json:"run_id"`
		Sources []struct {
			Tag     string `json:"tag"`
			Records int    `json:"records"`
		} `json:"sources"`
		Load struct {
			Inserted int `json:"inserted"`
		} `json:"load"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Sources, 1)
	assert.Equal(t, "emissions-2020", report.Sources[0].Tag)
	assert.Equal(t, 1, report.Load.Inserted)
}

func TestCheckCommand(t *testing.T) {
	m := fixture(t)
	app := newTestApp(t, m)

	out, err := execute(t, cmd.NewCheckCommand(app))
	require.NoError(t, err)
	assert.Contains(t, out, "emissions-2020")
	assert.Contains(t, out, "ok")
}

func TestCheckCommandFails(t *testing.T) {
	m := testsupport.NewManifest(t,
		manifest.Source{Tag: "gone", Format: "registry-v1", Path: filepath.Join(t.TempDir(), "gone.xlsx")},
	)
	testsupport.CreateSchema(t, m.Database.URL, m.Database.Table)
	app := newTestApp(t, m)

	out, err := execute(t, cmd.NewCheckCommand(app))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preflight checks failed")
	assert.Contains(t, out, "FAIL")
}

func TestExportCommandCSV(t *testing.T) {
	m := fixture(t)
	app := newTestApp(t, m)

	_, err := execute(t, cmd.NewRunCommand(app))
	require.NoError(t, err)

	out, err := execute(t, cmd.NewExportCommand(app))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "entity_id,vessel_id,reporting_period,"))
	assert.Contains(t, lines[0], "fuel_total_mt")
	assert.True(t, strings.HasPrefix(lines[1], "ACME Marine,9000001,2020,"))
	assert.Contains(t, lines[1], "120.5")
	assert.Contains(t, lines[1], "MV Alpha")
}

func TestExportCommandToFile(t *testing.T) {
	m := fixture(t)
	app := newTestApp(t, m)

	_, err := execute(t, cmd.NewRunCommand(app))
	require.NoError(t, err)

	outPath := filepath.Join(t.TempDir(), "export.csv")
	_, err = execute(t, cmd.NewExportCommand(app), "--out", outPath)
	require.NoError(t, err)

	data, readErr := os.ReadFile(outPath)
	require.NoError(t, readErr)
	assert.Contains(t, string(data), "9000001")
}

func TestVersionCommand(t *testing.T) {
	app := newTestApp(t, nil)

	out, err := execute(t, cmd.NewVersionCommand(app))
	require.NoError(t, err)
	assert.Contains(t, out, "ballast version test")
	assert.Contains(t, out, "go version:")
}
