package relevance

import (
	"fmt"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/alumni-memories/internal/domain/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

// old is far enough in the past to carry no recency bonus.
var old = now.AddDate(-1, 0, 0)

func TestScore_BlankQuery(t *testing.T) {
	m := memory.Memory{Title: "anything", CreatedAt: now}

	assert.Zero(t, Score(m, "", now))
	assert.Zero(t, Score(m, "   ", now))
}

func TestScore_Criteria(t *testing.T) {
	tests := []struct {
		name string
		m    memory.Memory
		want float64
	}{
		{"title contains", memory.Memory{Title: "Our Reunion"}, 10},
		{"title prefix", memory.Memory{Title: "Reunion 2010"}, 15},
		{"description", memory.Memory{Description: "a reunion dinner"}, 5},
		{"content", memory.Memory{Content: "after the reunion"}, 3},
		{"tag", memory.Memory{Tags: []string{"x", "reunions"}}, 7},
		{"location", memory.Memory{Location: "Reunion Hall"}, 4},
		{"person", memory.Memory{People: []string{"Mr. Reunion"}}, 4},
		{"everything", memory.Memory{
			Title:       "reunion",
			Description: "reunion",
			Content:     "reunion",
			Tags:        []string{"reunion"},
			Location:    "reunion",
			People:      []string{"reunion"},
		}, 38},
		{"no match", memory.Memory{Title: "graduation"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.m.CreatedAt = old
			assert.Equal(t, tt.want, Score(tt.m, "REUNION", now))
		})
	}
}

func TestScore_Recency(t *testing.T) {
	tests := []struct {
		age  time.Duration
		want float64
	}{
		{0, 2},
		{15 * 24 * time.Hour, 1},
		{29 * 24 * time.Hour, 2 - 29.0/15},
		{30 * 24 * time.Hour, 0},
		{-time.Hour, 2},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.age), func(t *testing.T) {
			m := memory.Memory{Title: "none", CreatedAt: now.Add(-tt.age)}
			assert.InDelta(t, tt.want, Score(m, "zzz", now), 1e-9)
		})
	}
}

func TestScore_TitleSubstringAtLeastTen(t *testing.T) {
	titles := []string{"2010 졸업식", "졸업", "The Graduation", "a-b.c*d"}
	queries := []string{"졸업", "졸업", "graduation", ".c*"}
	for i, title := range titles {
		m := memory.Memory{Title: title, CreatedAt: old}
		assert.GreaterOrEqual(t, Score(m, queries[i], now), 10.0, title)
	}
}

func TestRank_StableDescending(t *testing.T) {
	results := []memory.SearchResult{
		{Memory: memory.Memory{ID: "content", Content: "졸업여행", CreatedAt: old}},
		{Memory: memory.Memory{ID: "none-1", CreatedAt: old}},
		{Memory: memory.Memory{ID: "title", Title: "2010 졸업식", CreatedAt: old}},
		{Memory: memory.Memory{ID: "none-2", CreatedAt: old}},
	}

	Rank(results, "졸업", now)

	ids := make([]string, len(results))
	for i, r := range results {
		require.NotNil(t, r.Score)
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"title", "content", "none-1", "none-2"}, ids)
	assert.Equal(t, 10.0, *results[0].Score)
	assert.Equal(t, 3.0, *results[1].Score)
}
