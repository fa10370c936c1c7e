package sheetssql

import (
	"context"
	"fmt"
)

// SheetsClient defines the interface for sheets operations
type SheetsClient interface {
	GetValues(ctx context.Context, spreadsheetID, sheetRange string) ([][]interface{}, error)
	BatchUpdateValues(ctx context.Context, spreadsheetID string, updates []CellUpdate) error
}

// CellUpdate is a single-cell write addressed in A1 notation
type CellUpdate struct {
	Range string
	Value string
}

// DB represents one header-keyed table inside a spreadsheet
type DB struct {
	client        SheetsClient
	spreadsheetID string
	sheetName     string
	columns       string
}

// NewDB creates a table handle reading sheetName!columns (e.g. Sheet1!A:Z)
func NewDB(client SheetsClient, spreadsheetID, sheetName, columns string) *DB {
	return &DB{
		client:        client,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		columns:       columns,
	}
}

// SpreadsheetID returns the backing spreadsheet ID
func (db *DB) SpreadsheetID() string {
	return db.spreadsheetID
}

// Range returns the A1 range read by ReadTable
func (db *DB) Range() string {
	return fmt.Sprintf("%s!%s", QuoteSheetName(db.sheetName), db.columns)
}

// ReadTable reads the full range and splits it into header and data rows
func (db *DB) ReadTable(ctx context.Context) (*Table, error) {
	values, err := db.client.GetValues(ctx, db.spreadsheetID, db.Range())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", db.Range(), err)
	}

	return NewTable(values), nil
}

// WriteCells sets the given header → value pairs on one row in a single batch.
// Keys that do not name a header are skipped; the number of cells written is returned.
func (db *DB) WriteCells(ctx context.Context, table *Table, rowNumber int, values map[string]string) (int, error) {
	updates := table.CellUpdates(db.sheetName, rowNumber, values)
	if len(updates) == 0 {
		return 0, nil
	}

	if err := db.client.BatchUpdateValues(ctx, db.spreadsheetID, updates); err != nil {
		return 0, fmt.Errorf("failed to update row %d: %w", rowNumber, err)
	}

	return len(updates), nil
}
