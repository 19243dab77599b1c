// Package export writes the values of a device run as a table with one
// row per (sample, component) and one column per lane.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/samcharles93/prngcl/internal/device"
	"github.com/samcharles93/prngcl/internal/session"
)

// Table is the tabular view of a run.
type Table struct {
	Headers []string
	Rows    [][]float64
}

// FromResult lays res out lane by lane.
func FromResult(res *session.Result) *Table {
	t := &Table{Headers: []string{"sample", "component"}}
	if res == nil {
		return t
	}
	lanes := make([][]float64, res.Instances)
	for lane := range lanes {
		t.Headers = append(t.Headers, "lane_"+strconv.Itoa(lane))
		lanes[lane] = res.Lane(lane)
	}
	for i := range res.Samples * device.VectorWidth {
		row := []float64{float64(i / device.VectorWidth), float64(i % device.VectorWidth)}
		for _, vals := range lanes {
			row = append(row, vals[i])
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// WriteCSV writes t with full float64 precision.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return err
	}
	rec := make([]string, len(t.Headers))
	for _, row := range t.Rows {
		for i, v := range row {
			if i < 2 {
				rec[i] = strconv.Itoa(int(v))
			} else {
				rec[i] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		}
		if err := cw.Write(rec[:len(row)]); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX saves t to a workbook at path with a single sheet named
// sheet.
func WriteXLSX(path, sheet string, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return err
		}
	}

	for i, h := range t.Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		vals := make([]any, len(row))
		for i, v := range row {
			if i < 2 {
				vals[i] = int(v)
			} else {
				vals[i] = v
			}
		}
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

// WriteFile picks the format from the extension of path: .xlsx or .csv.
func WriteFile(path, sheet string, t *Table) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return WriteXLSX(path, sheet, t)
	case ".csv":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := WriteCSV(f, t); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	default:
		return fmt.Errorf("export: unsupported extension %q (expected .csv or .xlsx)", filepath.Ext(path))
	}
}
