package querybuilder

import (
	"testing"
	"time"

	"github.com/DjordjeVuckovic/alumni-memories/internal/domain/filter"
	"github.com/DjordjeVuckovic/alumni-memories/internal/domain/memory"
	"github.com/DjordjeVuckovic/alumni-memories/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func describe(cs []storage.Constraint) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}

func TestBuild_Order(t *testing.T) {
	start := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2010, 12, 31, 0, 0, 0, 0, time.UTC)
	f := filter.New(
		filter.WithQuery("졸업"),
		filter.WithTags("여행", "campus"),
		filter.WithAuthor("u1"),
		filter.WithDateRange(start, end),
		filter.WithPublic(true),
		filter.WithHasMedia(true),
		filter.WithSort(filter.SortByTitle, filter.Asc),
		filter.WithLimit(30),
	)
	cursor := &storage.Cursor{ID: "m1", Field: storage.FieldTitle, Value: "b"}

	got := describe(Build(f, cursor, true))

	assert.Equal(t, []string{
		"where(isPublic == true)",
		"where(tags array-contains-any [여행,campus])",
		`where(authorId == "u1")`,
		"where(createdAt >= 2010-01-01T00:00:00Z)",
		"where(createdAt <= 2010-12-31T00:00:00Z)",
		"where(isPublic == true)",
		"where(mediaUrls not-empty)",
		"orderBy(title asc)",
		"startAfter(m1)",
		"limit(30)",
	}, got)
}

func TestBuild_Defaults(t *testing.T) {
	got := describe(Build(filter.SearchFilters{}, nil, false))

	assert.Equal(t, []string{"orderBy(createdAt desc)", "limit(20)"}, got)
}

func TestBuild_CursorOnlyWhenContinuing(t *testing.T) {
	cursor := &storage.Cursor{ID: "m1", Field: storage.FieldCreatedAt, Value: "2024-01-01T00:00:00Z"}

	first := describe(Build(filter.New(), cursor, false))
	assert.NotContains(t, first, "startAfter(m1)")

	noCursor := describe(Build(filter.New(), nil, true))
	assert.Equal(t, describe(Build(filter.New(), nil, false)), noCursor)
}

func TestBuild_PrivateVisibility(t *testing.T) {
	got := describe(Build(filter.New(filter.WithPublic(false)), nil, false))

	assert.Equal(t, "where(isPublic == false)", got[0])
}

func TestBuild_CompilesForEverySortKey(t *testing.T) {
	for _, key := range []filter.SortKey{filter.SortByCreatedAt, filter.SortByUpdatedAt, filter.SortByTitle} {
		t.Run(string(key), func(t *testing.T) {
			p, err := storage.Compile(Build(filter.New(filter.WithSort(key, filter.Asc)), nil, false))
			require.NoError(t, err)
			assert.Equal(t, SortField(key), p.OrderField)
			assert.Equal(t, storage.Asc, p.OrderDir)
		})
	}
}

func TestBuild_TagsMatchIntersectingOnly(t *testing.T) {
	p, err := storage.Compile(Build(filter.New(filter.WithTags("A", "B")), nil, false))
	require.NoError(t, err)

	now := time.Now()
	tests := []struct {
		tags []string
		want bool
	}{
		{[]string{"A"}, true},
		{[]string{"x", "B"}, true},
		{[]string{"A", "B", "C"}, true},
		{[]string{"C"}, false},
		{[]string{"a", "b"}, false},
		{nil, false},
	}
	for _, tt := range tests {
		m := memory.Memory{ID: "m", Tags: tt.tags, CreatedAt: now}
		assert.Equal(t, tt.want, p.Matches(m), "tags %v", tt.tags)
	}
}

func TestLocationSuggestions_PrefixRange(t *testing.T) {
	p, err := storage.Compile(LocationSuggestions("Se", 0))
	require.NoError(t, err)
	assert.Equal(t, DefaultSuggestionSample, p.Limit)

	now := time.Now()
	for loc, want := range map[string]bool{
		"Seoul":  true,
		"Se":     true,
		"Sejong": true,
		"Busan":  false,
		"seoul":  false,
		"":       false,
	} {
		m := memory.Memory{ID: "m", Location: loc, IsPublic: true, CreatedAt: now}
		assert.Equal(t, want, p.Matches(m), "location %q", loc)
	}
}

func TestPopularTags(t *testing.T) {
	p, err := storage.Compile(PopularTags(0))
	require.NoError(t, err)

	assert.Equal(t, DefaultPopularTagSample, p.Limit)
	assert.Equal(t, storage.FieldCreatedAt, p.OrderField)
	assert.Equal(t, storage.Desc, p.OrderDir)
}

func TestTagSuggestions(t *testing.T) {
	p, err := storage.Compile(TagSuggestions("여행", 3))
	require.NoError(t, err)

	assert.Equal(t, 3, p.Limit)
	assert.True(t, p.Matches(memory.Memory{ID: "m", Tags: []string{"여행"}, IsPublic: true, CreatedAt: time.Now()}))
	assert.False(t, p.Matches(memory.Memory{ID: "m", Tags: []string{"여행"}, IsPublic: false, CreatedAt: time.Now()}))
}
