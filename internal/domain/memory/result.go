package memory

// SearchResult is a memory augmented with ranking and highlight data.
// Score is only set when the search carried free text.
type SearchResult struct {
	Memory
	Score              *float64 `json:"score,omitempty"`
	HighlightedTitle   string   `json:"highlightedTitle,omitempty"`
	HighlightedContent string   `json:"highlightedContent,omitempty"`
}

// SuggestionKind is the source field of a suggestion.
type SuggestionKind string

const (
	SuggestionTag      SuggestionKind = "tag"
	SuggestionAuthor   SuggestionKind = "author"
	SuggestionLocation SuggestionKind = "location"
	SuggestionPerson   SuggestionKind = "person"
)

// Suggestion is an autocomplete candidate aggregated from a sample of memories.
type Suggestion struct {
	Kind  SuggestionKind `json:"type"`
	Value string         `json:"value"`
	Count int            `json:"count"`
}

// TagCount is a tag with its occurrence count in a sample.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}
