package sources

import (
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/harborwatch/ballast/pkg/emissions"
	"github.com/harborwatch/ballast/pkg/errors"
)

// Reader streams the data rows of one registry spreadsheet. It is lazy
// and non-restartable: rows are decoded on demand and the worksheet
// iterator only moves forward. The usual loop is
//
//	r, err := sources.NewReader(tag, path, format)
//	if err != nil { ... }
//	defer r.Close()
//	for r.Next() {
//		row := r.Row()
//		...
//	}
//	if err := r.Err(); err != nil { ... }
type Reader struct {
	source    emissions.SourceTag
	path      string
	format    *Format
	file      *excelize.File
	rows      *excelize.Rows
	positions []int
	line      int
	row       *RawRow
	err       error
}

// NewReader opens the spreadsheet at path and validates its header line
// against the format. It returns an IOError when the file cannot be
// opened and a FormatError naming the missing columns when the header
// line does not carry every mapped column.
func NewReader(source emissions.SourceTag, path string, format *Format) (*Reader, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewIOError("open", path, err)
	}

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		_ = file.Close()
		return nil, errors.NewIOError("open", path, errors.New("workbook has no worksheets"))
	}

	rows, err := file.Rows(sheets[0])
	if err != nil {
		_ = file.Close()
		return nil, errors.WrapIO("read", path, err)
	}

	r := &Reader{source: source, path: path, format: format, file: file, rows: rows}

	headers, err := r.seekHeader()
	if err != nil {
		_ = r.Close()
		return nil, err
	}

	positions, missing := format.Resolve(headers)
	if len(missing) > 0 {
		_ = r.Close()
		return nil, errors.NewFormatError(string(source), path, missing)
	}
	r.positions = positions

	return r, nil
}

// seekHeader advances the worksheet iterator to the format's header row
// and returns its cells. A sheet that ends before the header row is a
// format error with every mapped column missing.
func (r *Reader) seekHeader() ([]string, error) {
	for r.line < r.format.HeaderRow {
		if !r.rows.Next() {
			return nil, errors.NewFormatError(string(r.source), r.path, columnNames(r.format))
		}
		r.line++
	}
	headers, err := r.rows.Columns()
	if err != nil {
		return nil, errors.WrapIO("read", r.path, err)
	}
	return headers, nil
}

// Next advances to the next data row, skipping blank padding rows. It
// returns false when the sheet is exhausted or a read error occurred;
// check Err after the loop.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}
	for r.rows.Next() {
		r.line++
		cells, err := r.rows.Columns()
		if err != nil {
			r.err = errors.WrapIO("read", r.path, err)
			return false
		}
		row := &RawRow{Source: r.source, Line: r.line, Cells: r.project(cells)}
		if row.Blank() {
			continue
		}
		r.row = row
		return true
	}
	return false
}

// project plucks the mapped columns out of a sheet row in format column
// order. Excelize trims trailing empty cells from each row, so positions
// beyond the row's width read as blank.
func (r *Reader) project(cells []string) []string {
	out := make([]string, len(r.positions))
	for i, pos := range r.positions {
		if pos < len(cells) {
			out[i] = strings.TrimSpace(cells[pos])
		}
	}
	return out
}

// Row returns the current row. It is valid until the next call to Next.
func (r *Reader) Row() *RawRow {
	return r.row
}

// Err returns the first read error encountered by Next, if any.
func (r *Reader) Err() error {
	return r.err
}

// Line returns the 1-based spreadsheet row number of the current row.
func (r *Reader) Line() int {
	return r.line
}

// Close releases the worksheet iterator and the underlying file.
func (r *Reader) Close() error {
	rerr := r.rows.Close()
	ferr := r.file.Close()
	if rerr != nil {
		return errors.WrapIO("close", r.path, rerr)
	}
	if ferr != nil {
		return errors.WrapIO("close", r.path, ferr)
	}
	return nil
}

// Probe opens the file and validates its header line without reading any
// data rows. The check command uses it to vet a manifest's sources.
func Probe(source emissions.SourceTag, path string, format *Format) error {
	r, err := NewReader(source, path, format)
	if err != nil {
		return err
	}
	return r.Close()
}

func columnNames(f *Format) []string {
	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = c.Name()
	}
	return names
}
