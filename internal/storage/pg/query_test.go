package pg

import (
	"testing"
	"time"

	"github.com/DjordjeVuckovic/alumni-memories/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, cs ...storage.Constraint) *storage.Plan {
	t.Helper()
	p, err := storage.Compile(cs)
	require.NoError(t, err)
	return p
}

func TestBuildSelect_Defaults(t *testing.T) {
	sql, args, err := buildSelect(compile(t))
	require.NoError(t, err)

	assert.Equal(t, "SELECT "+memoryColumns+" FROM memories WHERE created_at IS NOT NULL ORDER BY created_at DESC, id DESC", sql)
	assert.Empty(t, args)
}

func TestBuildSelect_Filters(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := compile(t,
		storage.Equal(storage.FieldIsPublic, true),
		storage.ArrayContainsAny(storage.FieldTags, []string{"reunion", "campus"}),
		storage.AtLeast(storage.FieldCreatedAt, start),
		storage.NotEmpty(storage.FieldMediaURLs),
		storage.NotEmpty(storage.FieldLocation),
		storage.OrderBy(storage.FieldTitle, storage.Asc),
		storage.Limit(20),
	)

	sql, args, err := buildSelect(p)
	require.NoError(t, err)

	assert.Equal(t, "SELECT "+memoryColumns+" FROM memories WHERE is_public = $1 AND tags && $2::text[] AND created_at >= $3"+
		" AND cardinality(media_urls) > 0 AND location <> '' ORDER BY title ASC, id ASC LIMIT $4", sql)
	assert.Equal(t, []any{true, []string{"reunion", "campus"}, start, 20}, args)
}

func TestBuildSelect_Keyset(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cursor := &storage.Cursor{ID: "m7", Field: storage.FieldUpdatedAt, Value: ts.Format(time.RFC3339Nano)}

	sql, args, err := buildSelect(compile(t,
		storage.OrderBy(storage.FieldUpdatedAt, storage.Desc),
		storage.StartAfter(cursor),
		storage.Limit(5),
	))
	require.NoError(t, err)

	assert.Contains(t, sql, "updated_at IS NOT NULL AND (updated_at, id) < ($1, $2)")
	assert.Contains(t, sql, "ORDER BY updated_at DESC, id DESC LIMIT $3")
	assert.Equal(t, []any{ts, "m7", 5}, args)
}

func TestSQLStateKind(t *testing.T) {
	tests := []struct {
		code string
		want storage.ErrorKind
	}{
		{"08006", storage.KindTransient},
		{"40001", storage.KindTransient},
		{"57014", storage.KindTransient},
		{"42501", storage.KindPermissionDenied},
		{"28P01", storage.KindPermissionDenied},
		{"23505", storage.KindValidation},
		{"42P01", storage.KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, sqlStateKind(tt.code))
		})
	}
}
