package session

import (
	"github.com/DjordjeVuckovic/alumni-memories/internal/domain/memory"
)

// Status is the state of the session's result list.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusSearching   Status = "searching"
	StatusResults     Status = "results"
	StatusLoadingMore Status = "loading_more"
	StatusError       Status = "error"
)

// State is a read-only snapshot of a session.
type State struct {
	Status         Status                `json:"status"`
	Results        []memory.SearchResult `json:"results"`
	Suggestions    []memory.Suggestion   `json:"suggestions"`
	IsSearching    bool                  `json:"isSearching"`
	HasMore        bool                  `json:"hasMore"`
	RecentSearches []string              `json:"recentSearches"`
	PopularTags    []memory.TagCount     `json:"popularTags"`
	// Generation identifies the search that produced Results.
	Generation uint64 `json:"generation"`
	Error      string `json:"error,omitempty"`
}
