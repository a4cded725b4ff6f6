package es

import (
	"time"

	"github.com/DjordjeVuckovic/alumni-memories/internal/domain/memory"
	"github.com/DjordjeVuckovic/alumni-memories/internal/storage"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
)

// Document is the indexed form of a memory. Field names match storage.Field.
type Document struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	Tags        []string   `json:"tags"`
	AuthorID    string     `json:"authorId"`
	AuthorName  string     `json:"authorName"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	IsPublic    bool       `json:"isPublic"`
	MediaURLs   []string   `json:"mediaUrls"`
	Location    string     `json:"location"`
	People      []string   `json:"people"`
}

func toDocument(m memory.Memory) Document {
	return Document{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Content:     m.Content,
		Tags:        m.Tags,
		AuthorID:    m.Author.ID,
		AuthorName:  m.Author.Name,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		IsPublic:    m.IsPublic,
		MediaURLs:   m.MediaURLs,
		Location:    m.Location,
		People:      m.People,
	}
}

func (d Document) toMemory() memory.Memory {
	return memory.Memory{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Content:     d.Content,
		Tags:        d.Tags,
		Author:      memory.Author{ID: d.AuthorID, Name: d.AuthorName},
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		IsPublic:    d.IsPublic,
		MediaURLs:   d.MediaURLs,
		Location:    d.Location,
		People:      d.People,
	}
}

// keywordFields are text fields with an exact-match keyword sub-field.
var keywordFields = map[storage.Field]bool{
	storage.FieldTitle:      true,
	storage.FieldAuthorName: true,
}

// exactField returns the index path used for term, range and sort clauses.
func exactField(f storage.Field) string {
	if keywordFields[f] {
		return string(f) + ".keyword"
	}
	return string(f)
}

type IndexBuilder struct {
	analyzer string
}

func NewIndexBuilder() *IndexBuilder {
	return &IndexBuilder{analyzer: "memories_analyzer"}
}

func (b *IndexBuilder) buildSettings() types.IndexSettings {
	return types.IndexSettings{
		Analysis: &types.IndexSettingsAnalysis{
			Analyzer: map[string]types.Analyzer{
				b.analyzer: types.StandardAnalyzer{
					Stopwords: []string{"_none_"},
				},
			},
		},
	}
}

func (b *IndexBuilder) buildMapping() types.TypeMapping {
	return types.TypeMapping{
		Properties: map[string]types.Property{
			"id":          types.NewKeywordProperty(),
			"title":       b.createTextPropertyWithKeyword(b.analyzer),
			"description": b.createTextProperty(b.analyzer),
			"content":     b.createTextProperty(b.analyzer),
			"tags":        types.NewKeywordProperty(),
			"authorId":    types.NewKeywordProperty(),
			"authorName":  b.createTextPropertyWithKeyword(""),
			"createdAt":   types.NewDateProperty(),
			"updatedAt":   types.NewDateProperty(),
			"isPublic":    types.NewBooleanProperty(),
			"mediaUrls":   types.NewKeywordProperty(),
			"location":    types.NewKeywordProperty(),
			"people":      types.NewKeywordProperty(),
		},
	}
}

func (b *IndexBuilder) createTextProperty(analyzer string) types.Property {
	textProp := types.NewTextProperty()
	if analyzer != "" {
		textProp.Analyzer = &analyzer
	}
	return textProp
}

func (b *IndexBuilder) createTextPropertyWithKeyword(analyzer string) types.Property {
	textProp := types.NewTextProperty()
	if analyzer != "" {
		textProp.Analyzer = &analyzer
	}
	textProp.Fields = map[string]types.Property{
		"keyword": types.NewKeywordProperty(),
	}
	return textProp
}
