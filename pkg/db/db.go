package db

import (
	"context"
	"strconv"

	"github.com/jakechorley/gift-registry/pkg/core/model"
	"github.com/jakechorley/gift-registry/pkg/errors"
	"github.com/jakechorley/gift-registry/pkg/sheetssql"
)

// DB provides registry operations over a SheetsSQL table
type DB struct {
	ssql *sheetssql.DB
}

// NewDB creates a new database instance
func NewDB(ssql *sheetssql.DB) *DB {
	return &DB{
		ssql: ssql,
	}
}

// ListGifts returns one gift per data row. Rows without an id value get
// their sheet row number, which is only stable while rows are not moved.
func (db *DB) ListGifts(ctx context.Context) ([]model.Gift, error) {
	table, err := db.ssql.ReadTable(ctx)
	if err != nil {
		return nil, errors.StoreUnavailable(err, "failed to list gifts")
	}

	gifts := make([]model.Gift, 0, len(table.Rows))
	for _, row := range table.Rows {
		record := table.Record(row)
		record[model.ColumnID] = effectiveID(table, row)
		gifts = append(gifts, model.GiftFromRecord(record))
	}

	return gifts, nil
}

// UpdateGift re-reads the sheet, locates the row by id and writes the
// matching columns in one batch.
func (db *DB) UpdateGift(ctx context.Context, id string, fields map[string]string) error {
	if id == "" {
		return errors.Validation("gift id is required")
	}

	table, err := db.ssql.ReadTable(ctx)
	if err != nil {
		return errors.StoreUnavailable(err, "failed to read registry")
	}

	if table.IsEmpty() {
		return errors.NotFound("sheet is empty")
	}

	row, ok := findRow(table, id)
	if !ok {
		return errors.NotFoundf("gift %s not found", id)
	}

	written, err := db.ssql.WriteCells(ctx, table, row.Number, fields)
	if err != nil {
		return errors.StoreUnavailable(err, "failed to update gift")
	}
	if written == 0 {
		return errors.NoValidColumns("no valid columns to update")
	}

	return nil
}

// effectiveID is the row's id cell, or its sheet row number when blank
func effectiveID(table *sheetssql.Table, row sheetssql.Row) string {
	if id := table.Value(row, model.ColumnID); id != "" {
		return id
	}
	return strconv.Itoa(row.Number)
}

func findRow(table *sheetssql.Table, id string) (sheetssql.Row, bool) {
	for _, row := range table.Rows {
		if effectiveID(table, row) == id {
			return row, true
		}
	}
	return sheetssql.Row{}, false
}
