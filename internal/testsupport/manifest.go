package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/harborwatch/ballast/internal/manifest"
)

// NewManifest builds a validated manifest whose database and lock file
// live in a fresh temp dir. Precedence follows source order, so later
// sources outrank earlier ones.
func NewManifest(t testing.TB, srcs ...manifest.Source) *manifest.Manifest {
	t.Helper()

	dir := t.TempDir()
	tags := make([]string, len(srcs))
	for i, s := range srcs {
		tags[i] = s.Tag
	}
	m := &manifest.Manifest{
		Database: manifest.Database{
			URL:   filepath.Join(dir, "ballast.db"),
			Table: manifest.DefaultTable,
		},
		LockFile:   filepath.Join(dir, "ballast.lock"),
		Sources:    srcs,
		Precedence: tags,
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("manifest: %v", err)
	}
	return m
}
