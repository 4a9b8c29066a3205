package statement

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/etnz/wealth"
	"github.com/etnz/wealth/date"
	"github.com/xuri/excelize/v2"
)

// headerScanRows is how deep header detection looks into a sheet.
const headerScanRows = 30

// table is a sheet of cells, as read from XLSX or CSV. Row i is line i+1 of the file.
type table struct {
	path string
	rows [][]string
}

// readTable reads a CSV or XLSX statement. For XLSX, the first existing
// sheet of sheets is read, else the first sheet of the workbook.
func readTable(path string, sheets ...string) (*table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx", ".xlsm":
		return readXLSX(path, sheets...)
	default:
		return nil, parseError(path, "unsupported file format %q", filepath.Ext(path))
	}
}

func readXLSX(path string, sheets ...string) (*table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &wealth.IOError{Op: "read", Path: path, Err: err}
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, parseError(path, "not a readable workbook: %v", err)
	}
	defer f.Close()

	list := f.GetSheetList()
	if len(list) == 0 {
		return nil, parseError(path, "workbook has no sheet")
	}
	sheet := list[0]
	for _, want := range sheets {
		if idx, err := f.GetSheetIndex(want); err == nil && idx >= 0 {
			sheet = want
			break
		}
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, parseError(path, "cannot read sheet %q: %v", sheet, err)
	}
	return &table{path: path, rows: rows}, nil
}

func readCSV(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &wealth.IOError{Op: "read", Path: path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, parseError(path, "invalid CSV: %v", err)
		}
		rows = append(rows, row)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return &table{path: path, rows: rows}, nil
}

// columns maps lowercase header labels to column indexes.
type columns map[string]int

func newColumns(header []string) columns {
	cols := make(columns, len(header))
	for i, h := range header {
		label := normalizeLabel(h)
		if _, exists := cols[label]; label != "" && !exists {
			cols[label] = i
		}
	}
	return cols
}

// find returns the column of the first candidate label present, or -1.
func (c columns) find(candidates ...string) int {
	for _, label := range candidates {
		if i, ok := c[label]; ok {
			return i
		}
	}
	return -1
}

// labels returns the header labels, for error messages.
func (c columns) labels() []string {
	labels := make([]string, 0, len(c))
	for l := range c {
		labels = append(labels, l)
	}
	return labels
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// findHeader returns the index of the first row, among the first rows of the
// table, accepted by isHeader.
func (t *table) findHeader(isHeader func(row []string) bool) (int, bool) {
	for i, row := range t.rows {
		if i >= headerScanRows {
			break
		}
		if isHeader(row) {
			return i, true
		}
	}
	return -1, false
}

// anyCellIs returns a header test accepting rows with one of the labels.
func anyCellIs(labels ...string) func([]string) bool {
	return func(row []string) bool {
		for _, c := range row {
			c = normalizeLabel(c)
			for _, l := range labels {
				if c == l {
					return true
				}
			}
		}
		return false
	}
}

// cellContains returns a header test accepting rows whose cell at col contains label.
func cellContains(col int, label string) func([]string) bool {
	return func(row []string) bool {
		return strings.Contains(normalizeLabel(cell(row, col)), label)
	}
}

// findDate looks for a statement date in the rows before the header.
func (t *table) findDate(header int) date.Date {
	for _, row := range t.rows[:header] {
		for _, c := range row {
			if d, ok := date.Find(c); ok {
				return d
			}
		}
	}
	return date.Date{}
}

// cell returns the trimmed cell i of row, "" when absent.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// isFooter reports whether the row is a total line.
func isFooter(row []string) bool {
	for _, c := range row {
		c = normalizeLabel(c)
		if c == "" {
			continue
		}
		return strings.HasPrefix(c, "total") || strings.HasPrefix(c, "grand total") || strings.HasPrefix(c, "net ")
	}
	return false
}


// cellDate reads a date cell, as text or as a raw spreadsheet serial.
func cellDate(s string) (date.Date, bool) {
	if s == "" {
		return date.Date{}, false
	}
	if d, err := date.ParseStatement(s); err == nil {
		return d, true
	}
	if d, ok := date.Find(s); ok {
		return d, true
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return date.Of(t), true
		}
	}
	return date.Date{}, false
}
