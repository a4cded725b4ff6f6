package es

import (
	"testing"
	"time"

	"github.com/DjordjeVuckovic/alumni-memories/internal/storage"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plan(t *testing.T, cs ...storage.Constraint) *storage.Plan {
	t.Helper()
	p, err := storage.Compile(cs)
	require.NoError(t, err)
	return p
}

func TestBuildSearch_Filters(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	req, err := buildSearch(plan(t,
		storage.Equal(storage.FieldIsPublic, true),
		storage.ArrayContainsAny(storage.FieldTags, []string{"reunion"}),
		storage.AtLeast(storage.FieldCreatedAt, start),
		storage.AtMost(storage.FieldTitle, "M"),
		storage.NotEmpty(storage.FieldLocation),
		storage.Limit(20),
	))
	require.NoError(t, err)

	filters := req.Query.Bool.Filter
	require.Len(t, filters, 6)

	assert.Equal(t, true, filters[0].Term["isPublic"].Value)
	assert.Equal(t, []types.FieldValue{"reunion"}, filters[1].Terms.TermsQuery["tags"])

	dr, ok := filters[2].Range["createdAt"].(types.DateRangeQuery)
	require.True(t, ok)
	require.NotNil(t, dr.Gte)
	assert.Equal(t, "2024-01-01T00:00:00Z", *dr.Gte)

	tr, ok := filters[3].Range["title.keyword"].(types.TermRangeQuery)
	require.True(t, ok)
	require.NotNil(t, tr.Lte)
	assert.Equal(t, "M", *tr.Lte)

	assert.Equal(t, "location", filters[4].Exists.Field)
	require.Len(t, req.Query.Bool.MustNot, 1)
	assert.Equal(t, "", req.Query.Bool.MustNot[0].Term["location"].Value)

	// default ordering on createdAt requires the field to exist
	assert.Equal(t, "createdAt", filters[5].Exists.Field)
	assert.Equal(t, 20, req.Size)
	assert.Empty(t, req.SearchAfter)
}

func TestBuildSearch_SortAndSearchAfter(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cursor := &storage.Cursor{ID: "m7", Field: storage.FieldCreatedAt, Value: ts.Format(time.RFC3339Nano)}

	req, err := buildSearch(plan(t,
		storage.OrderBy(storage.FieldCreatedAt, storage.Desc),
		storage.StartAfter(cursor),
	))
	require.NoError(t, err)

	require.Len(t, req.Sort, 2)
	first := req.Sort[0].(*types.SortOptions)
	assert.Equal(t, sortorder.Desc, *first.SortOptions["createdAt"].Order)
	second := req.Sort[1].(*types.SortOptions)
	assert.Equal(t, sortorder.Desc, *second.SortOptions["id"].Order)

	assert.Equal(t, []types.FieldValue{ts.UnixMilli(), "m7"}, req.SearchAfter)
	assert.Equal(t, maxWindow, req.Size)
}

func TestBuildSearch_TitleSortUsesKeyword(t *testing.T) {
	req, err := buildSearch(plan(t, storage.OrderBy(storage.FieldTitle, storage.Asc)))
	require.NoError(t, err)

	first := req.Sort[0].(*types.SortOptions)
	_, ok := first.SortOptions["title.keyword"]
	assert.True(t, ok)
	assert.Empty(t, req.Query.Bool.Filter)
}

func TestStatusKind(t *testing.T) {
	assert.Equal(t, storage.KindNotFound, statusKind(404))
	assert.Equal(t, storage.KindPermissionDenied, statusKind(403))
	assert.Equal(t, storage.KindTransient, statusKind(503))
	assert.Equal(t, storage.KindTransient, statusKind(429))
	assert.Equal(t, storage.KindValidation, statusKind(400))
}
