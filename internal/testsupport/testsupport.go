// Package testsupport provides shared fixtures for package tests:
// registry workbooks, destination schemas, and run manifests.
package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/harborwatch/ballast/internal/sources"
)

// WriteRegistryAt writes a registry workbook for the named format at
// path: banner row, header row at line 3, one data row per map. Map
// keys are field ids; fields missing from a map stay blank.
func WriteRegistryAt(t testing.TB, path, formatName string, rows ...map[string]any) {
	t.Helper()

	format, ok := sources.Lookup(formatName)
	if !ok {
		t.Fatalf("unknown format %q", formatName)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			t.Fatalf("close workbook: %v", err)
		}
	}()
	sheet := f.GetSheetName(0)

	if err := f.SetCellValue(sheet, "A1", "CO2 emission report for all vessels"); err != nil {
		t.Fatalf("write banner: %v", err)
	}
	headers := make([]any, len(format.Columns))
	for i, c := range format.Columns {
		headers[i] = c.Name()
	}
	if err := f.SetSheetRow(sheet, "A3", &headers); err != nil {
		t.Fatalf("write headers: %v", err)
	}

	for i, row := range rows {
		cells := make([]any, len(format.Columns))
		for j, c := range format.Columns {
			if v, ok := row[c.Field]; ok {
				cells[j] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, 4+i)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			t.Fatalf("write row %d: %v", i, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
}

// WriteRegistry writes a registry workbook into a fresh temp dir and
// returns its path.
func WriteRegistry(t testing.TB, formatName string, rows ...map[string]any) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), formatName+".xlsx")
	WriteRegistryAt(t, path, formatName, rows...)
	return path
}
