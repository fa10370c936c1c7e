package postgres

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSelect(t *testing.T) {
	got := buildSelect([]string{"id", "claimedBy"})
	assert.Equal(t, `SELECT COALESCE("id"::text, ''), COALESCE("claimedBy"::text, '') FROM gift ORDER BY position`, got)
}

func TestBuildUpdate(t *testing.T) {
	got := buildUpdate([]string{"claimedBy", "claimedDate"})
	assert.Equal(t, `UPDATE gift SET "claimedBy" = $2, "claimedDate" = $3 WHERE id = $1`, got)
}

func TestBuildInsert(t *testing.T) {
	got := buildInsert([]string{"id", "item"})
	assert.Equal(t, `INSERT INTO gift ("id", "item") VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, got)
}

func TestBuildSelect_QuotesHostileNames(t *testing.T) {
	got := buildSelect([]string{`a"b`})
	assert.Equal(t, `SELECT COALESCE("a""b"::text, '') FROM gift ORDER BY position`, got)
}

func TestMatchColumns(t *testing.T) {
	tests := []struct {
		name     string
		fields   map[string]string
		wantCols []string
		wantArgs []any
	}{
		{
			name:     "column order wins over map order",
			fields:   map[string]string{"claimedDate": "d", "claimedBy": "Pat"},
			wantCols: []string{"claimedBy", "claimedDate"},
			wantArgs: []any{"Pat", "d"},
		},
		{
			name:     "unknown ignored",
			fields:   map[string]string{"claimedBy": "Pat", "nickname": "P"},
			wantCols: []string{"claimedBy"},
			wantArgs: []any{"Pat"},
		},
		{
			name:     "none known",
			fields:   map[string]string{"nickname": "P"},
			wantCols: nil,
			wantArgs: nil,
		},
	}

	columns := []string{"id", "item", "claimedBy", "claimedDate"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, args := matchColumns(columns, tt.fields)
			assert.Equal(t, tt.wantCols, cols)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestPendingMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/002_add_notes.sql":   {Data: []byte("ALTER TABLE gift ADD COLUMN notes TEXT")},
		"migrations/001_create_gift.sql": {Data: []byte("CREATE TABLE gift ()")},
		"migrations/README.md":           {Data: []byte("docs")},
	}

	pending, err := pendingMigrations(fsys, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_create_gift.sql", "002_add_notes.sql"}, pending)

	pending, err = pendingMigrations(fsys, []string{"001_create_gift.sql"})
	require.NoError(t, err)
	assert.Equal(t, []string{"002_add_notes.sql"}, pending)

	pending, err = pendingMigrations(fsys, []string{"001_create_gift.sql", "002_add_notes.sql"})
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestEmbeddedMigrations(t *testing.T) {
	pending, err := pendingMigrations(migrationsFS, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_create_gift.sql"}, pending)
}
