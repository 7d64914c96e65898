// Package manifest loads the external run configuration: which registry
// files to ingest, the precedence between them, the active measure set,
// and the database and lock settings.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/harborwatch/ballast/internal/sources"
	"github.com/harborwatch/ballast/pkg/emissions"
	"github.com/harborwatch/ballast/pkg/errors"
)

// DefaultTable is the destination table when the manifest does not name
// one. The schema itself is owned by external migrations.
const DefaultTable = "vessel_emissions"

// Manifest is the decoded run configuration.
type Manifest struct {
	Database   Database `yaml:"database"`
	LockFile   string   `yaml:"lock_file"`
	Sources    []Source `yaml:"sources"`
	Precedence []string `yaml:"precedence"`
	Measures   []string `yaml:"measures"`
}

// Database holds the persistence settings. URL may stay empty in the
// manifest and be supplied by environment or flag.
type Database struct {
	URL   string `yaml:"url"`
	Table string `yaml:"table"`
}

// Source declares one registry file: its tag (referenced by the
// precedence list), its format name, and its file path.
type Source struct {
	Tag    string `yaml:"tag"`
	Format string `yaml:"format"`
	Path   string `yaml:"path"`
}

// Load reads and validates a manifest file. Relative source and lock
// paths resolve against the manifest's directory.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("manifest", fmt.Sprintf("reading %s", path), err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, err
	}
	m.resolvePaths(filepath.Dir(path))
	return m, nil
}

// Parse decodes and validates manifest YAML.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.NewConfigError("manifest", "invalid YAML", err)
	}
	m.applyDefaults()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) applyDefaults() {
	if m.Database.Table == "" {
		m.Database.Table = DefaultTable
	}
	if m.LockFile == "" {
		m.LockFile = filepath.Join(os.TempDir(), "ballast.lock")
	}
}

func (m *Manifest) resolvePaths(dir string) {
	for i := range m.Sources {
		if p := m.Sources[i].Path; p != "" && !filepath.IsAbs(p) {
			m.Sources[i].Path = filepath.Join(dir, p)
		}
	}
	if !filepath.IsAbs(m.LockFile) {
		m.LockFile = filepath.Join(dir, m.LockFile)
	}
}

// Validate checks the manifest's structure: at least one source, unique
// tags, known formats, a precedence list covering every source tag
// exactly once, and known measure ids. An empty measure list means all
// known measures.
func (m *Manifest) Validate() error {
	if len(m.Sources) == 0 {
		return errors.NewConfigError("manifest", "no sources declared", nil)
	}

	tags := make(map[string]bool, len(m.Sources))
	for i, s := range m.Sources {
		switch {
		case s.Tag == "":
			return errors.NewConfigError("manifest", fmt.Sprintf("source #%d has no tag", i+1), nil)
		case s.Path == "":
			return errors.NewConfigError("manifest", fmt.Sprintf("source %q has no path", s.Tag), nil)
		}
		if _, ok := sources.Lookup(s.Format); !ok {
			return errors.NewConfigError("manifest",
				fmt.Sprintf("source %q: unknown format %q (known: %v)", s.Tag, s.Format, sources.Names()), nil)
		}
		if tags[s.Tag] {
			return errors.NewConfigError("manifest", fmt.Sprintf("duplicate source tag %q", s.Tag), nil)
		}
		tags[s.Tag] = true
	}

	if len(m.Precedence) == 0 {
		return errors.NewConfigError("manifest", "no precedence order declared", nil)
	}
	seen := make(map[string]bool, len(m.Precedence))
	for _, tag := range m.Precedence {
		if !tags[tag] {
			return errors.NewConfigError("manifest", fmt.Sprintf("precedence names unknown source %q", tag), nil)
		}
		if seen[tag] {
			return errors.NewConfigError("manifest", fmt.Sprintf("precedence lists %q twice", tag), nil)
		}
		seen[tag] = true
	}
	for tag := range tags {
		if !seen[tag] {
			return errors.NewConfigError("manifest", fmt.Sprintf("precedence does not cover source %q", tag), nil)
		}
	}

	for _, id := range m.Measures {
		if !emissions.Measure(id).Valid() {
			return errors.NewConfigError("manifest", fmt.Sprintf("unknown measure %q", id), nil)
		}
	}

	return nil
}

// ActiveMeasures returns the measures this run persists, in registry
// order. An empty manifest list activates every known measure.
func (m *Manifest) ActiveMeasures() []emissions.Measure {
	if len(m.Measures) == 0 {
		return emissions.Measures()
	}
	active := make(map[string]bool, len(m.Measures))
	for _, id := range m.Measures {
		active[id] = true
	}
	var out []emissions.Measure
	for _, measure := range emissions.Measures() {
		if active[string(measure)] {
			out = append(out, measure)
		}
	}
	return out
}

// PrecedenceTags returns the precedence list as source tags, lowest
// first.
func (m *Manifest) PrecedenceTags() []emissions.SourceTag {
	tags := make([]emissions.SourceTag, len(m.Precedence))
	for i, tag := range m.Precedence {
		tags[i] = emissions.SourceTag(tag)
	}
	return tags
}
