package reference

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Entry is a caller-supplied "table.field" exact-match key, typically uploaded
// as a spreadsheet of known sensitive database fields. Owned by a single
// project; consumed only by the exact-match strategy.
type Entry struct {
	Table string `json:"table_name"`
	Field string `json:"field_name"`
}

// Key returns the case-normalized "table.field" lookup key.
func (e Entry) Key() string {
	return strings.ToLower(e.Table + "." + e.Field)
}

// ParseFile reads reference entries from an xlsx or csv file, dispatching on
// the file extension.
func ParseFile(path string) ([]Entry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ParseExcel(path)
	case ".csv":
		return ParseCSV(path)
	default:
		return nil, fmt.Errorf("unsupported reference file type %q (expected .xlsx or .csv)", filepath.Ext(path))
	}
}

// ParseExcel extracts table/field pairs from the first sheet of an xlsx
// workbook. The header row must contain table and field columns; exact
// "table_name"/"field_name" headers are preferred, any header containing
// "table" or "field" is accepted as a fallback.
func ParseExcel(path string) ([]Entry, error) {
	workbook, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference workbook %q: %w", path, err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("reference workbook %q has no sheets", path)
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	return entriesFromRows(rows)
}

// ParseCSV extracts table/field pairs from a csv file with the same header
// contract as ParseExcel.
func ParseCSV(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference file %q: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv %q: %w", path, err)
	}

	return entriesFromRows(rows)
}

// entriesFromRows locates the table and field columns in the header row and
// collects the data rows. An empty data section is valid and yields an empty
// entry set; a missing header column is an error.
func entriesFromRows(rows [][]string) ([]Entry, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("reference data has no header row")
	}

	tableCol, fieldCol, err := locateColumns(rows[0])
	if err != nil {
		return nil, err
	}

	entries := []Entry{}
	for _, row := range rows[1:] {
		if len(row) <= tableCol || len(row) <= fieldCol {
			continue
		}
		table := strings.TrimSpace(row[tableCol])
		field := strings.TrimSpace(row[fieldCol])
		if table == "" || field == "" {
			continue
		}
		entries = append(entries, Entry{Table: table, Field: field})
	}

	return entries, nil
}

func locateColumns(header []string) (int, int, error) {
	tableCol, fieldCol := -1, -1

	// exact header names first
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "table_name":
			tableCol = i
		case "field_name":
			fieldCol = i
		}
	}

	// contains-fallback, matching the loosest spreadsheets seen in the wild
	if tableCol == -1 || fieldCol == -1 {
		for i, h := range header {
			lower := strings.ToLower(strings.TrimSpace(h))
			if tableCol == -1 && strings.Contains(lower, "table") {
				tableCol = i
			}
			if fieldCol == -1 && strings.Contains(lower, "field") {
				fieldCol = i
			}
		}
	}

	if tableCol == -1 || fieldCol == -1 {
		return 0, 0, fmt.Errorf("reference data must have columns containing 'table' and 'field' in their names")
	}
	return tableCol, fieldCol, nil
}
