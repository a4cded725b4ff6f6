package router

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/DjordjeVuckovic/alumni-memories/internal/domain/filter"
	"github.com/DjordjeVuckovic/alumni-memories/internal/domain/memory"
	"github.com/DjordjeVuckovic/alumni-memories/internal/search/session"
	"github.com/labstack/echo/v4"
)

type SessionRouter struct {
	e        *echo.Echo
	registry *Registry
}

func NewSessionRouter(e *echo.Echo, registry *Registry) *SessionRouter {
	return &SessionRouter{
		e:        e,
		registry: registry,
	}
}

func (r *SessionRouter) Bind() {
	g := r.e.Group("/sessions")
	g.POST("", r.createSession)
	g.GET("/:id", r.getSession)
	g.DELETE("/:id", r.deleteSession)
	g.POST("/:id/search", r.search)
	g.POST("/:id/search/debounced", r.debouncedSearch)
	g.POST("/:id/more", r.loadMore)
	g.GET("/:id/suggestions", r.suggestions)
	g.DELETE("/:id/recent", r.clearRecent)
}

type CreateSessionRequest struct {
	ClientID string `json:"clientId"`
}

type CreateSessionResponse struct {
	SessionID string        `json:"sessionId"`
	State     session.State `json:"state"`
}

type DebouncedResponse struct {
	Task uint64 `json:"task"`
}

type SuggestionsResponse struct {
	Suggestions []memory.Suggestion `json:"suggestions"`
}

// createSession godoc
// @Summary Open a search session
// @Description Starts a search session with the client's recent searches and the current popular tags
// @Tags sessions
// @Accept json
// @Produce json
// @Param body body CreateSessionRequest false "Client scoping the recent search history"
// @Success 201 {object} CreateSessionResponse
// @Failure 400 {object} ErrorResponse
// @Router /sessions [post]
func (r *SessionRouter) createSession(c echo.Context) error {
	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	id, s := r.registry.Create(c.Request().Context(), req.ClientID)
	return c.JSON(http.StatusCreated, CreateSessionResponse{SessionID: id, State: s.Snapshot()})
}

// getSession godoc
// @Summary Get session state
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} session.State
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [get]
func (r *SessionRouter) getSession(c echo.Context) error {
	s, err := r.lookup(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.Snapshot())
}

// deleteSession godoc
// @Summary Close a search session
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [delete]
func (r *SessionRouter) deleteSession(c echo.Context) error {
	if !r.registry.Delete(c.Param("id")) {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// search godoc
// @Summary Search memories
// @Description Runs a first-page search, replacing the session's results. Store failures are reported in the returned state.
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body filter.SearchFilters true "Search filters"
// @Success 200 {object} session.State
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "A newer search superseded this one"
// @Router /sessions/{id}/search [post]
func (r *SessionRouter) search(c echo.Context) error {
	s, f, err := r.sessionAndFilters(c)
	if err != nil {
		return err
	}
	st, err := s.Search(c.Request().Context(), f)
	if err != nil {
		return searchError(err)
	}
	return c.JSON(http.StatusOK, st)
}

// debouncedSearch godoc
// @Summary Schedule a debounced search
// @Description Replaces any search still waiting and runs this one after the delay. Poll the session for the outcome.
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param delayMs query int false "Delay in milliseconds" default(300)
// @Param body body filter.SearchFilters true "Search filters"
// @Success 202 {object} DebouncedResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/search/debounced [post]
func (r *SessionRouter) debouncedSearch(c echo.Context) error {
	s, f, err := r.sessionAndFilters(c)
	if err != nil {
		return err
	}
	if err := f.Normalize().Validate(); err != nil {
		return err
	}

	var delay time.Duration
	if v := c.QueryParam("delayMs"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "delayMs must be a non-negative integer")
		}
		delay = time.Duration(ms) * time.Millisecond
	}

	task := s.DebouncedSearch(f, delay)
	return c.JSON(http.StatusAccepted, DebouncedResponse{Task: task.Generation()})
}

// loadMore godoc
// @Summary Load the next page
// @Description Appends the next page to the session's results. Without a previous page it behaves like search.
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body filter.SearchFilters true "Search filters of the current search"
// @Success 200 {object} session.State
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/more [post]
func (r *SessionRouter) loadMore(c echo.Context) error {
	s, f, err := r.sessionAndFilters(c)
	if err != nil {
		return err
	}
	st, err := s.LoadMore(c.Request().Context(), f)
	if err != nil {
		return searchError(err)
	}
	return c.JSON(http.StatusOK, st)
}

// suggestions godoc
// @Summary Suggest search terms
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Param q query string true "Text typed so far"
// @Success 200 {object} SuggestionsResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/suggestions [get]
func (r *SessionRouter) suggestions(c echo.Context) error {
	s, err := r.lookup(c)
	if err != nil {
		return err
	}
	out := s.Suggestions(c.Request().Context(), c.QueryParam("q"))
	if out == nil {
		out = []memory.Suggestion{}
	}
	return c.JSON(http.StatusOK, SuggestionsResponse{Suggestions: out})
}

// clearRecent godoc
// @Summary Clear recent searches
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/recent [delete]
func (r *SessionRouter) clearRecent(c echo.Context) error {
	s, err := r.lookup(c)
	if err != nil {
		return err
	}
	if err := s.ClearRecentSearches(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (r *SessionRouter) lookup(c echo.Context) (*session.Session, error) {
	s, ok := r.registry.Get(c.Param("id"))
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return s, nil
}

func (r *SessionRouter) sessionAndFilters(c echo.Context) (*session.Session, filter.SearchFilters, error) {
	s, err := r.lookup(c)
	if err != nil {
		return nil, filter.SearchFilters{}, err
	}
	var f filter.SearchFilters
	if err := c.Bind(&f); err != nil {
		return nil, filter.SearchFilters{}, err
	}
	return s, f, nil
}

func searchError(err error) error {
	if errors.Is(err, session.ErrSuperseded) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return err
}
