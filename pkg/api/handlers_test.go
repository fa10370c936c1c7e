package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/gift-registry/pkg/core/model"
	"github.com/jakechorley/gift-registry/pkg/errors"
)

// mockGiftStore is a mock implementation of db.GiftStore
type mockGiftStore struct {
	ListGiftsFunc  func(ctx context.Context) ([]model.Gift, error)
	UpdateGiftFunc func(ctx context.Context, id string, fields map[string]string) error
}

func (m *mockGiftStore) ListGifts(ctx context.Context) ([]model.Gift, error) {
	if m.ListGiftsFunc != nil {
		return m.ListGiftsFunc(ctx)
	}
	return nil, nil
}

func (m *mockGiftStore) UpdateGift(ctx context.Context, id string, fields map[string]string) error {
	if m.UpdateGiftFunc != nil {
		return m.UpdateGiftFunc(ctx, id, fields)
	}
	return nil
}

func newTestHandler(store *mockGiftStore, opts Options) http.Handler {
	return NewServer(store, opts, zap.NewNop()).Handler()
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestListGifts(t *testing.T) {
	store := &mockGiftStore{
		ListGiftsFunc: func(ctx context.Context) ([]model.Gift, error) {
			return []model.Gift{
				{ID: "7", Item: "Bike"},
				{ID: "8", Item: "Lego", ClaimedBy: "Sam"},
			}, nil
		},
	}
	handler := newTestHandler(store, Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/sheets", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var gifts []map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gifts))
	require.Len(t, gifts, 2)
	assert.Equal(t, "7", gifts[0]["id"])
	assert.Equal(t, "Sam", gifts[1]["claimedBy"])
}

func TestListGifts_StoreUnavailable(t *testing.T) {
	store := &mockGiftStore{
		ListGiftsFunc: func(ctx context.Context) ([]model.Gift, error) {
			return nil, errors.StoreUnavailable(fmt.Errorf("dial tcp: timeout"), "failed to list gifts")
		},
	}
	handler := newTestHandler(store, Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/sheets", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "failed to list gifts", body.Error)
	assert.Equal(t, "STORE_UNAVAILABLE", body.Code)
}

func TestUpdateGift(t *testing.T) {
	var gotID string
	var gotFields map[string]string
	store := &mockGiftStore{
		UpdateGiftFunc: func(ctx context.Context, id string, fields map[string]string) error {
			gotID = id
			gotFields = fields
			return nil
		},
	}
	handler := newTestHandler(store, Options{})

	body := `{"data":{"claimedBy":"Pat","claimedDate":"2025-12-01T10:00:00.000Z"}}`
	req := httptest.NewRequest(http.MethodPatch, "/api/sheets?id=7", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Equal(t, "7", gotID)
	assert.Equal(t, map[string]string{"claimedBy": "Pat", "claimedDate": "2025-12-01T10:00:00.000Z"}, gotFields)
}

func TestUpdateGift_Errors(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		body       string
		storeErr   error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing id",
			url:        "/api/sheets",
			body:       `{"data":{"claimedBy":"Pat"}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION",
		},
		{
			name:       "malformed body",
			url:        "/api/sheets?id=7",
			body:       `{"data":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION",
		},
		{
			name:       "missing data",
			url:        "/api/sheets?id=7",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION",
		},
		{
			name:       "no valid columns",
			url:        "/api/sheets?id=7",
			body:       `{"data":{"nickname":"P"}}`,
			storeErr:   errors.NoValidColumns("no valid columns to update"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "NO_VALID_COLUMNS",
		},
		{
			name:       "not found",
			url:        "/api/sheets?id=99",
			body:       `{"data":{"claimedBy":"Pat"}}`,
			storeErr:   errors.NotFound("gift 99 not found"),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "store unavailable",
			url:        "/api/sheets?id=7",
			body:       `{"data":{"claimedBy":"Pat"}}`,
			storeErr:   errors.StoreUnavailable(fmt.Errorf("503"), "failed to update gift"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "STORE_UNAVAILABLE",
		},
		{
			name:       "uncoded error",
			url:        "/api/sheets?id=7",
			body:       `{"data":{"claimedBy":"Pat"}}`,
			storeErr:   fmt.Errorf("secret connection string leaked"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			store := &mockGiftStore{
				UpdateGiftFunc: func(ctx context.Context, id string, fields map[string]string) error {
					called = true
					return tt.storeErr
				},
			}
			handler := newTestHandler(store, Options{})

			req := httptest.NewRequest(http.MethodPatch, tt.url, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotEmpty(t, body.Error)
			assert.NotContains(t, body.Error, "secret")
			assert.Equal(t, tt.storeErr != nil, called)
		})
	}
}

func TestUpdateGift_RateLimited(t *testing.T) {
	handler := newTestHandler(&mockGiftStore{}, Options{ClaimRatePerSecond: 0.001, ClaimBurst: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPatch, "/api/sheets?id=7", strings.NewReader(`{"data":{"claimedBy":"Pat"}}`))
		req.RemoteAddr = "192.0.2.10:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Reads are never throttled
	req := httptest.NewRequest(http.MethodGet, "/api/sheets", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	handler := newTestHandler(&mockGiftStore{}, Options{})

	req := httptest.NewRequest(http.MethodOptions, "/api/sheets?id=7", nil)
	req.Header.Set("Origin", "https://santa.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
}

func TestHealth(t *testing.T) {
	handler := newTestHandler(&mockGiftStore{}, Options{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
