package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/gift-registry/pkg/core/model"
	"github.com/jakechorley/gift-registry/pkg/errors"
)

const (
	giftTable      = "gift"
	positionColumn = "position"
)

// Columns returns the gift table's columns in ordinal order, acting as the
// registry header row.
func (d *DB) Columns(ctx context.Context) ([]string, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
		ORDER BY ordinal_position
	`, giftTable)
	if err != nil {
		return nil, fmt.Errorf("failed to query gift columns: %w", err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column name: %w", err)
		}
		if name == positionColumn {
			continue
		}
		columns = append(columns, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %w", err)
	}

	return columns, nil
}

// ListGifts retrieves every gift in insertion order
func (d *DB) ListGifts(ctx context.Context) ([]model.Gift, error) {
	columns, err := d.Columns(ctx)
	if err != nil {
		return nil, errors.StoreUnavailable(err, "failed to list gifts")
	}
	if len(columns) == 0 {
		return []model.Gift{}, nil
	}

	rows, err := d.pool.Query(ctx, buildSelect(columns))
	if err != nil {
		return nil, errors.StoreUnavailable(err, "failed to list gifts")
	}
	defer rows.Close()

	gifts := []model.Gift{}
	for rows.Next() {
		values := make([]string, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, errors.StoreUnavailable(err, "failed to scan gift")
		}

		record := make(map[string]string, len(columns))
		for i, col := range columns {
			record[col] = values[i]
		}
		gifts = append(gifts, model.GiftFromRecord(record))
	}

	if err := rows.Err(); err != nil {
		return nil, errors.StoreUnavailable(err, "error iterating gifts")
	}

	return gifts, nil
}

// UpdateGift sets the known columns on the gift with the given id
func (d *DB) UpdateGift(ctx context.Context, id string, fields map[string]string) error {
	if id == "" {
		return errors.Validation("gift id is required")
	}

	columns, err := d.Columns(ctx)
	if err != nil {
		return errors.StoreUnavailable(err, "failed to read registry")
	}

	known, args := matchColumns(columns, fields)
	if len(known) == 0 {
		var exists bool
		err := d.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM gift WHERE id = $1)`, id).Scan(&exists)
		if err != nil {
			return errors.StoreUnavailable(err, "failed to read registry")
		}
		if !exists {
			return errors.NotFoundf("gift %s not found", id)
		}
		return errors.NoValidColumns("no valid columns to update")
	}

	tag, err := d.pool.Exec(ctx, buildUpdate(known), append([]any{id}, args...)...)
	if err != nil {
		return errors.StoreUnavailable(err, "failed to update gift")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFoundf("gift %s not found", id)
	}

	return nil
}

// InsertGift appends a gift row, filling only the columns the table has.
// A gift whose id already exists is left untouched and reports false.
func (d *DB) InsertGift(ctx context.Context, gift model.Gift) (bool, error) {
	if gift.ID == "" {
		return false, errors.Validation("gift id is required")
	}

	columns, err := d.Columns(ctx)
	if err != nil {
		return false, errors.StoreUnavailable(err, "failed to read registry")
	}

	known, args := matchColumns(columns, gift.Record())
	if len(known) == 0 {
		return false, errors.NoValidColumns("no valid columns to insert")
	}

	tag, err := d.pool.Exec(ctx, buildInsert(known), args...)
	if err != nil {
		return false, errors.StoreUnavailable(err, "failed to insert gift")
	}
	return tag.RowsAffected() > 0, nil
}

// matchColumns keeps the fields naming a column, in column order
func matchColumns(columns []string, fields map[string]string) ([]string, []any) {
	var known []string
	var args []any
	for _, col := range columns {
		value, ok := fields[col]
		if !ok {
			continue
		}
		known = append(known, col)
		args = append(args, value)
	}
	return known, args
}

func buildSelect(columns []string) string {
	exprs := make([]string, len(columns))
	for i, col := range columns {
		exprs[i] = fmt.Sprintf("COALESCE(%s::text, '')", pgx.Identifier{col}.Sanitize())
	}
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(exprs, ", "), giftTable, positionColumn)
}

// buildUpdate binds the id to $1 and the columns to $2.. in order
func buildUpdate(columns []string) string {
	sets := make([]string, len(columns))
	for i, col := range columns {
		sets[i] = fmt.Sprintf("%s = $%d", pgx.Identifier{col}.Sanitize(), i+2)
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = $1", giftTable, strings.Join(sets, ", "))
}

func buildInsert(columns []string) string {
	names := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, col := range columns {
		names[i] = pgx.Identifier{col}.Sanitize()
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (id) DO NOTHING",
		giftTable, strings.Join(names, ", "), strings.Join(params, ", "))
}
