package router

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/DjordjeVuckovic/alumni-memories/internal/apperr"
	"github.com/DjordjeVuckovic/alumni-memories/internal/domain/filter"
	"github.com/DjordjeVuckovic/alumni-memories/internal/domain/memory"
	"github.com/DjordjeVuckovic/alumni-memories/internal/search/highlight"
	"github.com/DjordjeVuckovic/alumni-memories/internal/search/querybuilder"
	"github.com/DjordjeVuckovic/alumni-memories/internal/search/relevance"
	"github.com/DjordjeVuckovic/alumni-memories/internal/storage"
	"github.com/DjordjeVuckovic/alumni-memories/pkg/pagination"
	"github.com/labstack/echo/v4"
)

// MemoriesRouter serves stateless keyset-paginated listings. Clients that
// keep no session carry the position in an opaque cursor token.
type MemoriesRouter struct {
	e         *echo.Echo
	store     storage.DocumentStore
	sanitizer *highlight.Sanitizer
	now       func() time.Time
}

func NewMemoriesRouter(e *echo.Echo, store storage.DocumentStore) *MemoriesRouter {
	return &MemoriesRouter{
		e:         e,
		store:     store,
		sanitizer: highlight.NewSanitizer(),
		now:       time.Now,
	}
}

func (r *MemoriesRouter) Bind() {
	r.e.GET("/memories", r.list)
}

// list godoc
// @Summary List memories
// @Description Keyset-paginated listing. Results of a text query are ranked within each page.
// @Tags memories
// @Produce json
// @Param q query string false "Free-text query"
// @Param tag query []string false "Tags, any of" collectionFormat(multi)
// @Param author query string false "Author ID"
// @Param public query bool false "Visibility"
// @Param hasMedia query bool false "Only memories with media"
// @Param sortBy query string false "createdAt, updatedAt or title" default(createdAt)
// @Param sortOrder query string false "asc or desc" default(desc)
// @Param size query int false "Page size" default(20) maximum(100)
// @Param cursor query string false "Cursor token from the previous page"
// @Success 200 {object} pagination.CursorResult[memory.SearchResult]
// @Failure 400 {object} ErrorResponse
// @Router /memories [get]
func (r *MemoriesRouter) list(c echo.Context) error {
	var page pagination.CursorRequest
	if v := c.QueryParam("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return apperr.NewFieldValidation("invalid query", map[string]string{"size": "size must be an integer"})
		}
		page.Size = n
	}
	if v := c.QueryParam("cursor"); v != "" {
		page.Cursor = &v
	}
	page.Normalize()

	f, err := filtersFromQuery(c, page.Size)
	if err != nil {
		return err
	}

	var cursor *storage.Cursor
	if page.HasCursor() {
		cursor = &storage.Cursor{}
		if err := pagination.DecodeToken(*page.Cursor, cursor); err != nil {
			return apperr.NewValidationWrap("invalid cursor", err)
		}
		if cursor.Field != querybuilder.SortField(f.SortBy) {
			return apperr.NewValidation("cursor does not match sortBy")
		}
	}

	// one extra document tells whether another page exists
	lookahead := f
	lookahead.Limit = page.Size + 1
	res, err := r.store.Query(c.Request().Context(), querybuilder.Build(lookahead, cursor, cursor != nil))
	if err != nil {
		return err
	}

	field := querybuilder.SortField(f.SortBy)
	docs, err := pagination.NewCursorResult(res.Docs, page.Size, func(m memory.Memory) (string, error) {
		cur := storage.NewCursor(m, field)
		if cur == nil {
			return "", fmt.Errorf("memory %s has no %s", m.ID, field)
		}
		return pagination.EncodeToken(cur)
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, pagination.CursorResult[memory.SearchResult]{
		Items:      r.toResults(docs.Items, f),
		NextCursor: docs.NextCursor,
		HasMore:    docs.HasMore,
	})
}

func (r *MemoriesRouter) toResults(docs []memory.Memory, f filter.SearchFilters) []memory.SearchResult {
	out := make([]memory.SearchResult, len(docs))
	for i, d := range docs {
		out[i] = memory.SearchResult{Memory: d}
	}
	if !f.HasQuery() {
		return out
	}
	relevance.Rank(out, f.Query, r.now())
	for i := range out {
		out[i].HighlightedTitle = r.sanitizer.Safe(out[i].Title, f.Query)
		out[i].HighlightedContent = r.sanitizer.Safe(out[i].Content, f.Query)
	}
	return out
}

func filtersFromQuery(c echo.Context, size int) (filter.SearchFilters, error) {
	opts := []filter.Option{
		filter.WithQuery(c.QueryParam("q")),
		filter.WithLimit(size),
	}
	if tags := c.QueryParams()["tag"]; len(tags) > 0 {
		opts = append(opts, filter.WithTags(tags...))
	}
	if a := c.QueryParam("author"); a != "" {
		opts = append(opts, filter.WithAuthor(a))
	}
	if v := c.QueryParam("public"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter.SearchFilters{}, apperr.NewFieldValidation("invalid query", map[string]string{"public": "public must be a boolean"})
		}
		opts = append(opts, filter.WithPublic(b))
	}
	if v := c.QueryParam("hasMedia"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter.SearchFilters{}, apperr.NewFieldValidation("invalid query", map[string]string{"hasMedia": "hasMedia must be a boolean"})
		}
		opts = append(opts, filter.WithHasMedia(b))
	}
	if by := c.QueryParam("sortBy"); by != "" || c.QueryParam("sortOrder") != "" {
		opts = append(opts, filter.WithSort(filter.SortKey(by), filter.SortOrder(c.QueryParam("sortOrder"))))
	}

	f := filter.New(opts...)
	if err := f.Validate(); err != nil {
		return filter.SearchFilters{}, err
	}
	return f, nil
}
