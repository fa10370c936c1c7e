package sheetssql

import (
	"fmt"
	"strings"
)

// Row is one data row with its 1-based sheet row number
type Row struct {
	Number int
	Cells  []string
}

// Table is a header row plus data rows as read from a sheet range
type Table struct {
	Headers []string
	Rows    []Row

	columnIndexes map[string]int
}

// NewTable converts raw sheet values into a Table. Row 1 is the header;
// data rows keep their sheet row number (first data row is 2).
func NewTable(values [][]interface{}) *Table {
	table := &Table{columnIndexes: make(map[string]int)}
	if len(values) == 0 {
		return table
	}

	table.Headers = cellsToStrings(values[0])
	for i, header := range table.Headers {
		if header == "" {
			continue
		}
		// First occurrence wins for duplicated headers
		if _, ok := table.columnIndexes[header]; !ok {
			table.columnIndexes[header] = i
		}
	}

	table.Rows = make([]Row, 0, len(values)-1)
	for i, raw := range values[1:] {
		table.Rows = append(table.Rows, Row{
			Number: i + 2,
			Cells:  cellsToStrings(raw),
		})
	}

	return table
}

// IsEmpty reports whether the range had no header row
func (t *Table) IsEmpty() bool {
	return len(t.Headers) == 0
}

// ColumnIndex returns the 0-based index of a header, or -1 if absent
func (t *Table) ColumnIndex(header string) int {
	if idx, ok := t.columnIndexes[header]; ok {
		return idx
	}
	return -1
}

// HasColumn reports whether the header row names the column
func (t *Table) HasColumn(header string) bool {
	return t.ColumnIndex(header) >= 0
}

// Record maps every non-blank header to the row's cell; missing cells are ""
func (t *Table) Record(row Row) map[string]string {
	record := make(map[string]string, len(t.columnIndexes))
	for header, idx := range t.columnIndexes {
		record[header] = row.Cell(idx)
	}
	return record
}

// Value returns the row's cell under a header, or "" when absent
func (t *Table) Value(row Row, header string) string {
	return row.Cell(t.ColumnIndex(header))
}

// CellUpdates builds A1 single-cell writes for the headers present in values,
// in header order.
func (t *Table) CellUpdates(sheetName string, rowNumber int, values map[string]string) []CellUpdate {
	var updates []CellUpdate
	for i, header := range t.Headers {
		if t.ColumnIndex(header) != i {
			continue
		}
		value, ok := values[header]
		if !ok {
			continue
		}
		updates = append(updates, CellUpdate{
			Range: CellAddress(sheetName, i, rowNumber),
			Value: value,
		})
	}
	return updates
}

// Cell returns the cell at a 0-based column index, or "" when out of range
func (r Row) Cell(idx int) string {
	if idx < 0 || idx >= len(r.Cells) {
		return ""
	}
	return r.Cells[idx]
}

// ColumnLetter converts a 0-based column index to its bijective base-26
// letters: 0 → A, 25 → Z, 26 → AA, 701 → ZZ, 702 → AAA.
func ColumnLetter(index int) string {
	var letters []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		letters = append([]byte{byte('A' + (n-1)%26)}, letters...)
	}
	return string(letters)
}

// CellAddress returns the A1 address of one cell, e.g. Sheet1!C7
func CellAddress(sheetName string, columnIndex, rowNumber int) string {
	return fmt.Sprintf("%s!%s%d", QuoteSheetName(sheetName), ColumnLetter(columnIndex), rowNumber)
}

// QuoteSheetName quotes sheet names that are not plain identifiers
func QuoteSheetName(name string) string {
	plain := name != ""
	for _, r := range name {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			plain = false
			break
		}
	}
	if plain {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// cellsToStrings renders raw API cells; nil cells become ""
func cellsToStrings(raw []interface{}) []string {
	cells := make([]string, len(raw))
	for i, cell := range raw {
		switch v := cell.(type) {
		case nil:
			cells[i] = ""
		case string:
			cells[i] = v
		default:
			cells[i] = fmt.Sprint(v)
		}
	}
	return cells
}
