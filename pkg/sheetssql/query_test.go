package sheetssql

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSheetsClient records calls and returns canned values
type mockSheetsClient struct {
	values    [][]interface{}
	getErr    error
	updateErr error

	gotRange string
	updates  [][]CellUpdate
}

func (m *mockSheetsClient) GetValues(ctx context.Context, spreadsheetID, sheetRange string) ([][]interface{}, error) {
	m.gotRange = sheetRange
	return m.values, m.getErr
}

func (m *mockSheetsClient) BatchUpdateValues(ctx context.Context, spreadsheetID string, updates []CellUpdate) error {
	m.updates = append(m.updates, updates)
	return m.updateErr
}

func TestColumnLetter(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "A"},
		{1, "B"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
		{701, "ZZ"},
		{702, "AAA"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ColumnLetter(tt.index))
		})
	}
}

func TestQuoteSheetName(t *testing.T) {
	assert.Equal(t, "Sheet1", QuoteSheetName("Sheet1"))
	assert.Equal(t, "'Gift List'", QuoteSheetName("Gift List"))
	assert.Equal(t, "'Santa''s'", QuoteSheetName("Santa's"))
	assert.Equal(t, "Sheet1!C7", CellAddress("Sheet1", 2, 7))
	assert.Equal(t, "'Gift List'!AA2", CellAddress("Gift List", 26, 2))
}

func TestNewTable(t *testing.T) {
	table := NewTable([][]interface{}{
		{"id", "item", "", "claimedBy"},
		{"1", "Bike"},
		{"2", "Lego", "ignored", "Sam"},
		{},
	})

	assert.False(t, table.IsEmpty())
	assert.Equal(t, 0, table.ColumnIndex("id"))
	assert.Equal(t, 3, table.ColumnIndex("claimedBy"))
	assert.Equal(t, -1, table.ColumnIndex(""))
	assert.Equal(t, -1, table.ColumnIndex("ClaimedBy"))

	require.Len(t, table.Rows, 3)
	assert.Equal(t, 2, table.Rows[0].Number)
	assert.Equal(t, 4, table.Rows[2].Number)

	assert.Equal(t, map[string]string{"id": "1", "item": "Bike", "claimedBy": ""}, table.Record(table.Rows[0]))
	assert.Equal(t, map[string]string{"id": "2", "item": "Lego", "claimedBy": "Sam"}, table.Record(table.Rows[1]))
	assert.Equal(t, map[string]string{"id": "", "item": "", "claimedBy": ""}, table.Record(table.Rows[2]))
}

func TestNewTable_NonStringCells(t *testing.T) {
	table := NewTable([][]interface{}{
		{"id", "item", "shouldWrap"},
		{float64(3), "Bike", true},
		{nil, "Lego"},
	})

	assert.Equal(t, map[string]string{"id": "3", "item": "Bike", "shouldWrap": "true"}, table.Record(table.Rows[0]))
	assert.Equal(t, "", table.Value(table.Rows[1], "id"))
}

func TestNewTable_Empty(t *testing.T) {
	table := NewTable(nil)
	assert.True(t, table.IsEmpty())
	assert.Empty(t, table.Rows)
}

func TestCellUpdates_HeaderOrderAndUnknownSkipped(t *testing.T) {
	table := NewTable([][]interface{}{{"id", "item", "claimedBy", "claimedDate"}})

	updates := table.CellUpdates("Sheet1", 8, map[string]string{
		"claimedDate": "2025-12-01T10:00:00.000Z",
		"nickname":    "ignored",
		"claimedBy":   "Pat",
	})

	assert.Equal(t, []CellUpdate{
		{Range: "Sheet1!C8", Value: "Pat"},
		{Range: "Sheet1!D8", Value: "2025-12-01T10:00:00.000Z"},
	}, updates)
}

func TestDB_ReadTable(t *testing.T) {
	client := &mockSheetsClient{values: [][]interface{}{{"item"}, {"Bike"}}}
	db := NewDB(client, "sheet123", "Sheet1", "A:Z")

	table, err := db.ReadTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Sheet1!A:Z", client.gotRange)
	assert.Len(t, table.Rows, 1)
}

func TestDB_ReadTable_Error(t *testing.T) {
	client := &mockSheetsClient{getErr: fmt.Errorf("quota exceeded")}
	db := NewDB(client, "sheet123", "Sheet1", "A:Z")

	_, err := db.ReadTable(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestDB_WriteCells(t *testing.T) {
	client := &mockSheetsClient{}
	db := NewDB(client, "sheet123", "Sheet1", "A:Z")
	table := NewTable([][]interface{}{{"id", "claimedBy"}})

	t.Run("no known columns performs no write", func(t *testing.T) {
		n, err := db.WriteCells(context.Background(), table, 2, map[string]string{"bogus": "x"})
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.Empty(t, client.updates)
	})

	t.Run("single batch", func(t *testing.T) {
		n, err := db.WriteCells(context.Background(), table, 2, map[string]string{"claimedBy": "Pat", "id": "7"})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		require.Len(t, client.updates, 1)
		assert.Len(t, client.updates[0], 2)
	})

	t.Run("client error", func(t *testing.T) {
		client.updateErr = fmt.Errorf("backend down")
		_, err := db.WriteCells(context.Background(), table, 2, map[string]string{"claimedBy": "Pat"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to update row 2")
	})
}
