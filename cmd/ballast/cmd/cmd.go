// Package cmd implements the ballast CLI subcommands.
package cmd

import (
	"encoding/json"
	"io"

	"github.com/harborwatch/ballast/pkg/errors"
)

// ErrPartialRun marks a run that loaded with at least one failed source.
// The CLI maps it to a dedicated exit code so deploy scripts can retry
// once the failed source is fixed.
var ErrPartialRun = errors.New("partial run: some sources failed")

// writeJSON renders v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
