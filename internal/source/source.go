// Package source parses tabular input files into records the import
// pipeline consumes. CSV and XLSX inputs are supported; both produce the
// same Table shape: an ordered header plus one Record per data row.
package source

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Record is one source row, keyed by column name. Cells absent from the
// row are absent from the map; the pipeline treats absent and empty alike.
type Record map[string]string

// Table is a fully materialized tabular input: the ordered column names
// from the header row and every non-empty data row beneath it.
type Table struct {
	Columns []string
	Records []Record
}

// ParseFile dispatches on the file extension. sheet is only meaningful for
// XLSX input; an empty sheet selects the workbook's first sheet.
func ParseFile(name string, data []byte, sheet string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return ParseCSV(data)
	case ".xlsx", ".xlsm":
		return ParseXLSX(data, sheet)
	default:
		return nil, fmt.Errorf("unsupported file type %q (expected .csv or .xlsx)", filepath.Ext(name))
	}
}

// makeTable assembles a Table from a header row and raw data rows,
// dropping rows that are entirely empty.
func makeTable(header []string, rows [][]string) (*Table, error) {
	columns := make([]string, 0, len(header))
	for _, h := range header {
		columns = append(columns, CleanCell(h))
	}

	t := &Table{Columns: columns}
	for _, row := range rows {
		if isEmptyRow(row) {
			continue
		}
		rec := make(Record, len(columns))
		for i, col := range columns {
			if col == "" || i >= len(row) {
				continue
			}
			rec[col] = row[i]
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// surrounding whitespace, a UTF-8 BOM, Excel formula wrappers (="..."),
// and stray surrounding quotes.
func CleanCell(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}
