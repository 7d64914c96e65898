package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harborwatch/ballast"
	"github.com/harborwatch/ballast/cmd/application"
)

// NewRunCommand creates the run command.
func NewRunCommand(app application.Application) *cobra.Command {
	var dryRun bool

	c := &cobra.Command{
		Use:   "run",
		Short: "Ingest all configured sources into the database",
		Long: `Run executes one full ingestion pass:

  1. Stream every workbook named in the manifest
  2. Normalize rows, dropping those without a usable key
  3. Reconcile overlapping records by source precedence
  4. Apply the table difference in a single transaction

A source that cannot be opened or does not match its declared format is
reported and skipped; the remaining sources still load. The command
exits 0 only when every source contributed and 3 after a partial load.`,
		Example: `  ballast run
  ballast run -m deploy/ballast.yaml
  ballast run --dry-run -o json`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			b, err := app.BallastWithOptions(ballast.WithDryRun(dryRun))
			if err != nil {
				return err
			}
			defer func() { _ = b.Close() }()

			report, err := b.Run(c.Context())
			if err != nil {
				return err
			}

			out := c.OutOrStdout()
			if app.Format() == "json" {
				if err := writeJSON(out, report); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(out, report.Summary())
			}

			if report.Failed() {
				return ErrPartialRun
			}
			return nil
		},
	}

	c.Flags().BoolVar(&dryRun, "dry-run", false, "stage and diff without committing")
	return c
}
