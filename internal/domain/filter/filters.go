package filter

import (
	"strings"
	"time"

	"github.com/DjordjeVuckovic/alumni-memories/internal/validate"
)

// SortKey is the memory field results are ordered by.
type SortKey string

const (
	SortByCreatedAt SortKey = "createdAt"
	SortByUpdatedAt SortKey = "updatedAt"
	SortByTitle     SortKey = "title"
)

// SortOrder is the ordering direction.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

const (
	// DefaultLimit is the page size used when none is given
	DefaultLimit = 20
	// MaxLimit bounds a single page
	MaxLimit = 100
	// MaxTags mirrors the store's array-contains-any value limit
	MaxTags = 10
)

// Visibility is the tri-state visibility filter derived from IsPublic.
type Visibility int

const (
	VisibilityAll Visibility = iota
	VisibilityPublic
	VisibilityPrivate
)

// DateRange bounds createdAt; both ends are inclusive.
type DateRange struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required,gtefield=Start"`
}

// SearchFilters is an immutable search configuration. It is built fresh for
// every search; use With to derive a changed copy instead of mutating one.
type SearchFilters struct {
	Query     string     `json:"searchQuery,omitempty" validate:"max=200"`
	Tags      []string   `json:"tags,omitempty" validate:"max=10,dive,required"`
	AuthorID  string     `json:"author,omitempty"`
	DateRange *DateRange `json:"dateRange,omitempty"`
	IsPublic  *bool      `json:"isPublic,omitempty"`
	HasMedia  bool       `json:"hasMedia,omitempty"`
	SortBy    SortKey    `json:"sortBy,omitempty" validate:"omitempty,oneof=createdAt updatedAt title"`
	SortOrder SortOrder  `json:"sortOrder,omitempty" validate:"omitempty,oneof=asc desc"`
	Limit     int        `json:"limit,omitempty" validate:"gte=0,lte=100"`
}

type Option func(f *SearchFilters)

// New builds a normalized filters value from options.
func New(opts ...Option) SearchFilters {
	return SearchFilters{}.With(opts...)
}

// With returns a normalized copy of f with opts applied. f itself is untouched.
func (f SearchFilters) With(opts ...Option) SearchFilters {
	c := f.clone()
	for _, opt := range opts {
		opt(&c)
	}
	return c.Normalize()
}

func WithQuery(q string) Option {
	return func(f *SearchFilters) {
		f.Query = q
	}
}

func WithTags(tags ...string) Option {
	return func(f *SearchFilters) {
		f.Tags = append([]string(nil), tags...)
	}
}

func WithAuthor(authorID string) Option {
	return func(f *SearchFilters) {
		f.AuthorID = authorID
	}
}

func WithDateRange(start, end time.Time) Option {
	return func(f *SearchFilters) {
		f.DateRange = &DateRange{Start: start, End: end}
	}
}

// WithPublic restricts results to public (true) or private (false) memories.
func WithPublic(public bool) Option {
	return func(f *SearchFilters) {
		f.IsPublic = &public
	}
}

// WithAnyVisibility clears the visibility filter.
func WithAnyVisibility() Option {
	return func(f *SearchFilters) {
		f.IsPublic = nil
	}
}

func WithHasMedia(hasMedia bool) Option {
	return func(f *SearchFilters) {
		f.HasMedia = hasMedia
	}
}

func WithSort(key SortKey, order SortOrder) Option {
	return func(f *SearchFilters) {
		f.SortBy = key
		f.SortOrder = order
	}
}

func WithLimit(limit int) Option {
	return func(f *SearchFilters) {
		f.Limit = limit
	}
}

// Normalize fills defaults, trims the query and drops blank or duplicate tags.
func (f SearchFilters) Normalize() SearchFilters {
	c := f.clone()
	c.Query = strings.TrimSpace(c.Query)
	if c.SortBy == "" {
		c.SortBy = SortByCreatedAt
	}
	if c.SortOrder == "" {
		c.SortOrder = Desc
	}
	if c.Limit <= 0 {
		c.Limit = DefaultLimit
	}
	if len(c.Tags) > 0 {
		seen := make(map[string]struct{}, len(c.Tags))
		tags := make([]string, 0, len(c.Tags))
		for _, t := range c.Tags {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
		c.Tags = tags
	}
	return c
}

// Validate checks field bounds; malformed filters are reported as apperr.ValidationError.
func (f SearchFilters) Validate() error {
	return validate.Struct("invalid search filters", f)
}

// HasQuery reports whether free text is present.
func (f SearchFilters) HasQuery() bool {
	return strings.TrimSpace(f.Query) != ""
}

func (f SearchFilters) Visibility() Visibility {
	switch {
	case f.IsPublic == nil:
		return VisibilityAll
	case *f.IsPublic:
		return VisibilityPublic
	default:
		return VisibilityPrivate
	}
}

// PageSize is Limit with the default applied.
func (f SearchFilters) PageSize() int {
	if f.Limit <= 0 {
		return DefaultLimit
	}
	return f.Limit
}

func (f SearchFilters) clone() SearchFilters {
	c := f
	if f.Tags != nil {
		c.Tags = append([]string(nil), f.Tags...)
	}
	if f.DateRange != nil {
		dr := *f.DateRange
		c.DateRange = &dr
	}
	if f.IsPublic != nil {
		p := *f.IsPublic
		c.IsPublic = &p
	}
	return c
}
