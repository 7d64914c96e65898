package sources_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborwatch/ballast/internal/sources"
	"github.com/harborwatch/ballast/pkg/emissions"
)

// The format tables are the contract with the registry exports. Every
// mapped field must resolve to a key, a known measure, or a known
// attribute, and no format may map the same field twice.
func TestRegistryFormatIntegrity(t *testing.T) {
	keys := map[string]bool{
		sources.FieldEntity: true,
		sources.FieldVessel: true,
		sources.FieldPeriod: true,
	}

	for _, name := range sources.Names() {
		t.Run(name, func(t *testing.T) {
			format, ok := sources.Lookup(name)
			require.True(t, ok)
			assert.Equal(t, name, format.Name)
			assert.Equal(t, 3, format.HeaderRow)

			seen := map[string]bool{}
			for _, col := range format.Columns {
				require.NotEmpty(t, col.Aliases, "column %s has no header spellings", col.Field)
				assert.False(t, seen[col.Field], "field %s mapped twice", col.Field)
				seen[col.Field] = true

				if keys[col.Field] {
					continue
				}
				valid := emissions.Measure(col.Field).Valid() || emissions.Attr(col.Field).Valid()
				assert.True(t, valid, "field %s is neither a measure nor an attribute", col.Field)
			}

			for key := range keys {
				assert.True(t, seen[key], "format %s lacks key column %s", name, key)
			}
		})
	}
}

func TestFormatResolveReportsEveryMissingColumn(t *testing.T) {
	format, ok := sources.Lookup("registry-v3")
	require.True(t, ok)

	positions, missing := format.Resolve([]string{"IMO Number", "Reporting Period"})
	assert.Len(t, positions, len(format.Columns))
	assert.Len(t, missing, len(format.Columns)-2)
	assert.Contains(t, missing, "Company")
	assert.Contains(t, missing, "Distance travelled [n miles]")
}
