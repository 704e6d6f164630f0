// Package csvio reads employee tables from CSV and writes the retention
// priority export.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/attriwatch/attriwatch/internal/domain/employee"
	"github.com/attriwatch/attriwatch/internal/domain/features"
	"github.com/attriwatch/attriwatch/internal/domain/types"
)

// ExportFilename is the download name of the priority export.
const ExportFilename = "retention_priority.csv"

// ExportHeader is the priority export column order.
var ExportHeader = []string{
	features.Age,
	features.JobRole,
	features.Department,
	features.MonthlyIncome,
	"AttritionProb",
	"PerformanceProb",
}

// Error kinds.
var (
	ErrEmptyInput = errors.New("csv input has no header")
	ErrMalformed  = errors.New("malformed csv")
)

// ReadTable parses a header row followed by data rows. Empty cells and the
// missing trailing cells of a short row are left out of the row's record so
// they read as absent fields. A row with more cells than the header is kept
// empty and rejected on the table; other rows are unaffected.
func ReadTable(r io.Reader) (employee.Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return employee.Table{}, ErrEmptyInput
	}
	if err != nil {
		return employee.Table{}, fmt.Errorf("%w: header: %w", ErrMalformed, err)
	}
	cols := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			return employee.Table{}, fmt.Errorf("%w: empty column name at position %d", ErrMalformed, i+1)
		}
		if _, dup := seen[h]; dup {
			return employee.Table{}, fmt.Errorf("%w: duplicate column %q", ErrMalformed, h)
		}
		seen[h] = struct{}{}
		cols[i] = h
	}

	table := employee.Table{Columns: cols}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return employee.Table{}, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		row := make(employee.Record, len(cols))
		if len(rec) > len(cols) {
			table.Reject(len(table.Rows), &features.MalformedRowError{Cells: len(rec), Columns: len(cols)})
			table.Rows = append(table.Rows, row)
			continue
		}
		for i, cell := range rec {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			row[cols[i]] = employee.Parse(cell)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// WritePriority writes the export header and one line per priority row.
// Non-priority rows are skipped. Text columns keep their raw values.
func WritePriority(w io.Writer, rows []types.RowResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	line := make([]string, len(ExportHeader))
	for _, r := range rows {
		if !r.IsPriority {
			continue
		}
		for i, col := range ExportHeader[:4] {
			line[i] = ""
			if v, ok := r.Record.Get(col); ok {
				line[i] = v.String()
			}
		}
		line[4] = strconv.FormatFloat(r.AttritionProbability, 'f', -1, 64)
		line[5] = strconv.FormatFloat(r.PerformanceProbability, 'f', -1, 64)
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write row %d: %w", r.Row, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTable writes t with its header. Absent fields become empty cells,
// which ReadTable reads back as absent.
func WriteTable(w io.Writer, t employee.Table) error {
	if len(t.Columns) == 0 {
		return ErrEmptyInput
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	line := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		for j, col := range t.Columns {
			line[j] = ""
			if v, ok := row.Get(col); ok {
				line[j] = v.String()
			}
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
