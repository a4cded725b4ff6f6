// Package querybuilder translates search filters into document store constraints.
package querybuilder

import (
	"log/slog"

	"github.com/DjordjeVuckovic/alumni-memories/internal/domain/filter"
	"github.com/DjordjeVuckovic/alumni-memories/internal/storage"
)

const (
	// prefixEnd is appended to a prefix to form the inclusive upper bound of a
	// prefix range; it sorts after every character used in practice.
	prefixEnd = "\uf8ff"

	DefaultSuggestionSample = 5
	DefaultPopularTagSample = 100
)

// SortField maps a filter sort key onto the store field it orders by.
func SortField(key filter.SortKey) storage.Field {
	switch key {
	case filter.SortByUpdatedAt:
		return storage.FieldUpdatedAt
	case filter.SortByTitle:
		return storage.FieldTitle
	default:
		return storage.FieldCreatedAt
	}
}

func direction(o filter.SortOrder) storage.Direction {
	if o == filter.Asc {
		return storage.Asc
	}
	return storage.Desc
}

// Build produces the conjunctive constraint list for one page of results.
// The cursor is only used when continuing pagination.
func Build(f filter.SearchFilters, cursor *storage.Cursor, continuation bool) []storage.Constraint {
	f = f.Normalize()
	var cs []storage.Constraint

	if f.HasQuery() {
		// text ranking happens after a broad fetch of public memories
		cs = append(cs, storage.Equal(storage.FieldIsPublic, true))
	}
	if len(f.Tags) > 0 {
		cs = append(cs, storage.ArrayContainsAny(storage.FieldTags, f.Tags))
	}
	if f.AuthorID != "" {
		cs = append(cs, storage.Equal(storage.FieldAuthorID, f.AuthorID))
	}
	if f.DateRange != nil {
		cs = append(cs,
			storage.AtLeast(storage.FieldCreatedAt, f.DateRange.Start),
			storage.AtMost(storage.FieldCreatedAt, f.DateRange.End),
		)
	}
	switch f.Visibility() {
	case filter.VisibilityPublic:
		cs = append(cs, storage.Equal(storage.FieldIsPublic, true))
	case filter.VisibilityPrivate:
		cs = append(cs, storage.Equal(storage.FieldIsPublic, false))
	}
	if f.HasMedia {
		cs = append(cs, storage.NotEmpty(storage.FieldMediaURLs))
	}

	cs = append(cs, storage.OrderBy(SortField(f.SortBy), direction(f.SortOrder)))

	if continuation && cursor != nil {
		cs = append(cs, storage.StartAfter(cursor))
	}

	cs = append(cs, storage.Limit(f.PageSize()))

	slog.Debug("Built memories query", "constraints", len(cs), "continuation", continuation)
	return cs
}

// TagSuggestions samples public memories carrying text as an exact tag.
func TagSuggestions(text string, sample int) []storage.Constraint {
	return []storage.Constraint{
		storage.Equal(storage.FieldIsPublic, true),
		storage.ArrayContainsAny(storage.FieldTags, []string{text}),
		storage.Limit(sampleSize(sample, DefaultSuggestionSample)),
	}
}

// LocationSuggestions samples public memories whose location starts with text.
func LocationSuggestions(text string, sample int) []storage.Constraint {
	return []storage.Constraint{
		storage.Equal(storage.FieldIsPublic, true),
		storage.AtLeast(storage.FieldLocation, text),
		storage.AtMost(storage.FieldLocation, text+prefixEnd),
		storage.OrderBy(storage.FieldLocation, storage.Asc),
		storage.Limit(sampleSize(sample, DefaultSuggestionSample)),
	}
}

// PopularTags samples the most recent public memories.
func PopularTags(sample int) []storage.Constraint {
	return []storage.Constraint{
		storage.Equal(storage.FieldIsPublic, true),
		storage.OrderBy(storage.FieldCreatedAt, storage.Desc),
		storage.Limit(sampleSize(sample, DefaultPopularTagSample)),
	}
}

func sampleSize(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}
