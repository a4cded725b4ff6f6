package storage

import (
	"testing"
	"time"

	"github.com/DjordjeVuckovic/alumni-memories/internal/domain/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_Defaults(t *testing.T) {
	p, err := Compile(nil)
	require.NoError(t, err)

	assert.Equal(t, FieldCreatedAt, p.OrderField)
	assert.Equal(t, Desc, p.OrderDir)
	assert.Zero(t, p.Limit)
	assert.Nil(t, p.StartAfter)
}

func TestCompile_Rejects(t *testing.T) {
	tests := []struct {
		name        string
		constraints []Constraint
	}{
		{"unknown field", []Constraint{Equal("nope", "x")}},
		{"equality on array", []Constraint{Equal(FieldTags, "x")}},
		{"wrong value type", []Constraint{Equal(FieldIsPublic, "yes")}},
		{"range on bool", []Constraint{AtLeast(FieldIsPublic, true)}},
		{"contains-any on scalar", []Constraint{ArrayContainsAny(FieldTitle, []string{"a"})}},
		{"contains-any empty", []Constraint{ArrayContainsAny(FieldTags, nil)}},
		{"contains-any too many", []Constraint{ArrayContainsAny(FieldTags, make([]string, 11))}},
		{"two contains-any", []Constraint{
			ArrayContainsAny(FieldTags, []string{"a"}),
			ArrayContainsAny(FieldPeople, []string{"b"}),
		}},
		{"two orderings", []Constraint{OrderBy(FieldTitle, Asc), OrderBy(FieldCreatedAt, Desc)}},
		{"order by array", []Constraint{OrderBy(FieldTags, Asc)}},
		{"zero limit", []Constraint{Limit(0)}},
		{"nil cursor", []Constraint{StartAfter(nil)}},
		{"cursor field mismatch", []Constraint{
			OrderBy(FieldTitle, Asc),
			StartAfter(&Cursor{ID: "1", Field: FieldCreatedAt, Value: time.Now().Format(time.RFC3339Nano)}),
		}},
		{"cursor bad time", []Constraint{StartAfter(&Cursor{ID: "1", Field: FieldCreatedAt, Value: "yesterday"})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.constraints)
			require.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}
}

func TestPlan_Matches(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m := memory.Memory{
		ID:        "m1",
		Title:     "2010 졸업식",
		Tags:      []string{"졸업", "여행"},
		Author:    memory.Author{ID: "u1", Name: "Kim"},
		CreatedAt: created,
		IsPublic:  true,
		Location:  "Seoul",
	}

	tests := []struct {
		name        string
		constraints []Constraint
		want        bool
	}{
		{"no filters", nil, true},
		{"public", []Constraint{Equal(FieldIsPublic, true)}, true},
		{"private", []Constraint{Equal(FieldIsPublic, false)}, false},
		{"tag intersects", []Constraint{ArrayContainsAny(FieldTags, []string{"여행", "x"})}, true},
		{"tag disjoint", []Constraint{ArrayContainsAny(FieldTags, []string{"x", "y"})}, false},
		{"author", []Constraint{Equal(FieldAuthorID, "u1")}, true},
		{"inclusive range", []Constraint{AtLeast(FieldCreatedAt, created), AtMost(FieldCreatedAt, created)}, true},
		{"outside range", []Constraint{AtLeast(FieldCreatedAt, created.Add(time.Second))}, false},
		{"has media", []Constraint{NotEmpty(FieldMediaURLs)}, false},
		{"location prefix", []Constraint{AtLeast(FieldLocation, "Se"), AtMost(FieldLocation, "Se\uf8ff")}, true},
		{"order by unset updatedAt", []Constraint{OrderBy(FieldUpdatedAt, Desc)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.constraints)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Matches(m))
		})
	}
}

func TestPlan_AfterCursor(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := memory.Memory{ID: "a", CreatedAt: base.Add(2 * time.Hour)}
	b := memory.Memory{ID: "b", CreatedAt: base.Add(time.Hour)}
	c := memory.Memory{ID: "c", CreatedAt: base.Add(time.Hour)}

	p, err := Compile([]Constraint{OrderBy(FieldCreatedAt, Desc), StartAfter(NewCursor(b, FieldCreatedAt))})
	require.NoError(t, err)

	assert.False(t, p.After(a))
	assert.False(t, p.After(b))
	// equal timestamps fall back to descending id order, so "c" precedes "b"
	assert.False(t, p.After(c))
	assert.Less(t, p.CompareOrder(a, b), 0)
	assert.Less(t, p.CompareOrder(c, b), 0)
}
