package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harborwatch/ballast"
	"github.com/harborwatch/ballast/cmd/application"
	"github.com/harborwatch/ballast/pkg/errors"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify sources and database without loading",
		Long: `Check probes every run precondition and changes nothing: the manifest
must parse and validate, every source workbook must open and carry the
columns its declared format requires, and the database must be reachable
with all destination columns present.`,
		Example: `  ballast check
  ballast check -m deploy/ballast.yaml -o json`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			b, err := app.Ballast()
			if err != nil {
				return err
			}

			report, err := b.Check(c.Context())
			if err != nil {
				return err
			}

			out := c.OutOrStdout()
			if app.Format() == "json" {
				if err := writeJSON(out, report); err != nil {
					return err
				}
			} else {
				renderCheck(out, report)
			}

			if !report.OK() {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}
}

func renderCheck(w io.Writer, report *ballast.CheckReport) {
	for _, s := range report.Sources {
		if s.Err != nil {
			fmt.Fprintf(w, "source   %-28s FAIL  %s\n", s.Tag, s.Error)
		} else {
			fmt.Fprintf(w, "source   %-28s ok\n", s.Tag)
		}
	}
	if report.Database.Err != nil {
		fmt.Fprintf(w, "database %-28s FAIL  %s\n", report.Database.Table, report.Database.Error)
	} else {
		fmt.Fprintf(w, "database %-28s ok\n", report.Database.Table)
	}
}
