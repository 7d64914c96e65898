package cmd

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/harborwatch/ballast"
	"github.com/harborwatch/ballast/cmd/application"
	"github.com/harborwatch/ballast/pkg/emissions"
	"github.com/harborwatch/ballast/pkg/errors"
)

// NewExportCommand creates the export command.
func NewExportCommand(app application.Application) *cobra.Command {
	var outPath string

	c := &cobra.Command{
		Use:   "export",
		Short: "Export the destination table",
		Long: `Export reads the destination table back in key order and writes it as
CSV, or as JSON with -o json. The column order matches the load order:
key columns, attributes, then the active measures.`,
		Example: `  ballast export > emissions.csv
  ballast export --out emissions.csv
  ballast export -o json | jq '.[0]'`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			b, err := app.Ballast()
			if err != nil {
				return err
			}

			rows, err := b.Export(c.Context())
			if err != nil {
				return err
			}

			write := func(w io.Writer) error {
				if app.Format() == "json" {
					return writeJSON(w, rows)
				}
				return writeCSV(w, b.Columns(), b.Manifest().ActiveMeasures(), rows)
			}

			if outPath == "" {
				return write(c.OutOrStdout())
			}
			f, err := os.Create(outPath)
			if err != nil {
				return errors.WrapIO("create", outPath, err)
			}
			if err := write(f); err != nil {
				_ = f.Close()
				return err
			}
			return errors.WrapIO("close", outPath, f.Close())
		},
	}

	c.Flags().StringVar(&outPath, "out", "", "write to a file instead of stdout")
	return c
}

// writeCSV writes rows in export column order. Absent values stay empty.
func writeCSV(w io.Writer, columns []string, measures []emissions.Measure, rows []ballast.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		record[0] = row.Key.Entity
		record[1] = row.Key.Vessel
		record[2] = strconv.Itoa(row.Key.Period)
		i := 3
		for _, a := range emissions.Attrs() {
			record[i] = row.Attrs[a]
			i++
		}
		for _, m := range measures {
			if v, ok := row.Measures[m]; ok {
				record[i] = strconv.FormatFloat(v, 'f', -1, 64)
			} else {
				record[i] = ""
			}
			i++
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
