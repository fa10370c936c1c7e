package sheetsclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/jakechorley/gift-registry/pkg/sheetssql"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	service, err := sheets.NewService(context.Background(),
		option.WithEndpoint(server.URL),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)

	return &Client{service: service}
}

func TestToValueRanges(t *testing.T) {
	data := toValueRanges([]sheetssql.CellUpdate{
		{Range: "Sheet1!C3", Value: "Pat"},
		{Range: "Sheet1!D3", Value: "2025-12-01T10:00:00.000Z"},
	})

	require.Len(t, data, 2)
	assert.Equal(t, "Sheet1!C3", data[0].Range)
	assert.Equal(t, [][]interface{}{{"Pat"}}, data[0].Values)
	assert.Equal(t, "Sheet1!D3", data[1].Range)
}

func TestGetValues(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Contains(t, r.URL.Path, "/v4/spreadsheets/sheet123/values/")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"range":"Sheet1!A1:B2","values":[["id","item"],["7","Bike"]]}`)
	})

	values, err := client.GetValues(context.Background(), "sheet123", "Sheet1!A:Z")
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, "Bike", values[1][1])
}

func TestBatchUpdateValues(t *testing.T) {
	var got sheets.BatchUpdateValuesRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v4/spreadsheets/sheet123/values:batchUpdate"), r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"spreadsheetId":"sheet123","totalUpdatedCells":1}`)
	})

	err := client.BatchUpdateValues(context.Background(), "sheet123", []sheetssql.CellUpdate{{Range: "Sheet1!C3", Value: "Pat"}})
	require.NoError(t, err)
	assert.Equal(t, "USER_ENTERED", got.ValueInputOption)
	require.Len(t, got.Data, 1)
	assert.Equal(t, "Sheet1!C3", got.Data[0].Range)
}

func TestBatchUpdateValues_Error(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"error":{"code":503,"message":"backend error"}}`)
	})

	err := client.BatchUpdateValues(context.Background(), "sheet123", []sheetssql.CellUpdate{{Range: "Sheet1!C3", Value: "Pat"}})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to batch update values")
}
