// Package session implements the stateful search orchestrator behind a
// search screen: paged results, suggestions, popular tags and recent queries.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/DjordjeVuckovic/alumni-memories/internal/debounce"
	"github.com/DjordjeVuckovic/alumni-memories/internal/domain/filter"
	"github.com/DjordjeVuckovic/alumni-memories/internal/domain/memory"
	"github.com/DjordjeVuckovic/alumni-memories/internal/history"
	"github.com/DjordjeVuckovic/alumni-memories/internal/metrics"
	"github.com/DjordjeVuckovic/alumni-memories/internal/notify"
	"github.com/DjordjeVuckovic/alumni-memories/internal/search/highlight"
	"github.com/DjordjeVuckovic/alumni-memories/internal/search/querybuilder"
	"github.com/DjordjeVuckovic/alumni-memories/internal/search/relevance"
	"github.com/DjordjeVuckovic/alumni-memories/internal/storage"
)

// ErrSuperseded is returned when a newer search replaced the one whose
// response just arrived; the response was discarded.
var ErrSuperseded = errors.New("search superseded by a newer request")

// Session owns one search surface. Its methods are safe for concurrent use.
type Session struct {
	store     storage.DocumentStore
	history   history.Store
	notifier  notify.Notifier
	sanitizer *highlight.Sanitizer
	debouncer *debounce.Debouncer
	now       func() time.Time

	debounceDelay    time.Duration
	suggestionSample int
	popularTagSample int

	// historyMu serializes history writes so the last save wins.
	historyMu sync.Mutex

	mu          sync.Mutex
	status      Status
	results     []memory.SearchResult
	cursor      *storage.Cursor
	hasMore     bool
	gen         uint64
	lastErr     error
	suggestions []memory.Suggestion
	suggestGen  uint64
	recent      []string
	popular     []memory.TagCount
	closed      bool
}

// New starts a session: it reads the recent-query history and samples
// popular tags. Failures of either are logged and leave the list empty.
func New(ctx context.Context, store storage.DocumentStore, hist history.Store, opts ...Option) *Session {
	s := &Session{
		store:         store,
		history:       hist,
		notifier:      notify.Nop{},
		sanitizer:     highlight.NewSanitizer(),
		now:           time.Now,
		debounceDelay: DefaultDebounce,
		status:        StatusIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.history == nil {
		s.history = history.NewMemStore()
	}
	s.debouncer = debounce.New(context.WithoutCancel(ctx))

	recent, err := s.history.Load(ctx)
	if err != nil {
		slog.Warn("Failed to load recent searches", "error", err)
	}
	s.recent = recent

	s.popular = s.loadPopularTags(ctx)

	metrics.ActiveSessions.Inc()
	return s
}

// Search runs a fresh first-page search, discarding prior results and cursor.
// Malformed filters are returned as a validation error. Store failures are
// not returned: the session moves to StatusError and the notifier is told.
func (s *Session) Search(ctx context.Context, f filter.SearchFilters) (State, error) {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return s.Snapshot(), err
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.status = StatusSearching
	s.results = nil
	s.cursor = nil
	s.hasMore = false
	s.lastErr = nil
	s.mu.Unlock()

	start := time.Now()
	page, err := s.store.Query(ctx, querybuilder.Build(f, nil, false))
	elapsed := time.Since(start).Seconds()

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		metrics.StaleResponses.Inc()
		metrics.RecordSearch("search", "stale", elapsed)
		slog.Info("Discarding stale search response", "generation", gen, "query", f.Query)
		return s.Snapshot(), ErrSuperseded
	}

	if err != nil {
		s.status = StatusError
		s.results = nil
		s.lastErr = err
		s.mu.Unlock()

		metrics.RecordSearch("search", "error", elapsed)
		slog.Error("Search failed", "error", err, "kind", storage.KindOf(err), "query", f.Query)
		s.notifyFailure(ctx, err)
		return s.Snapshot(), nil
	}

	s.results = s.toResults(page.Docs, f)
	s.cursor = page.Last
	s.hasMore = len(page.Docs) == f.PageSize()
	s.status = StatusResults
	if f.HasQuery() {
		s.recent = history.Push(s.recent, f.Query)
	}
	s.mu.Unlock()

	metrics.RecordSearch("search", "success", elapsed)
	slog.Debug("Search completed", "generation", gen, "count", len(page.Docs), "query", f.Query)

	if f.HasQuery() {
		s.persistHistory(ctx)
	}
	return s.Snapshot(), nil
}

// LoadMore appends the next page to the current results. Without a cursor
// it behaves exactly like Search.
func (s *Session) LoadMore(ctx context.Context, f filter.SearchFilters) (State, error) {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return s.Snapshot(), err
	}

	s.mu.Lock()
	cursor := s.cursor
	if cursor == nil || cursor.Field != querybuilder.SortField(f.SortBy) {
		s.mu.Unlock()
		return s.Search(ctx, f)
	}
	if !s.hasMore || s.status == StatusLoadingMore || s.status == StatusSearching {
		s.mu.Unlock()
		return s.Snapshot(), nil
	}
	gen := s.gen
	s.status = StatusLoadingMore
	s.mu.Unlock()

	start := time.Now()
	page, err := s.store.Query(ctx, querybuilder.Build(f, cursor, true))
	elapsed := time.Since(start).Seconds()

	s.mu.Lock()
	if gen != s.gen || s.cursor != cursor {
		s.mu.Unlock()
		metrics.StaleResponses.Inc()
		metrics.RecordSearch("load_more", "stale", elapsed)
		slog.Info("Discarding stale load-more response", "generation", gen)
		return s.Snapshot(), ErrSuperseded
	}

	if err != nil {
		// prior results stay visible
		s.status = StatusError
		s.lastErr = err
		s.mu.Unlock()

		metrics.RecordSearch("load_more", "error", elapsed)
		slog.Error("Load more failed", "error", err, "kind", storage.KindOf(err))
		s.notifyFailure(ctx, err)
		return s.Snapshot(), nil
	}

	s.results = append(s.results, s.toResults(page.Docs, f)...)
	if page.Last != nil {
		s.cursor = page.Last
	}
	s.hasMore = len(page.Docs) == f.PageSize()
	s.status = StatusResults
	s.lastErr = nil
	s.mu.Unlock()

	metrics.RecordSearch("load_more", "success", elapsed)
	return s.Snapshot(), nil
}

// DebouncedSearch schedules a search after delay, replacing any search still
// waiting. A non-positive delay uses the session default.
func (s *Session) DebouncedSearch(f filter.SearchFilters, delay time.Duration) *debounce.Task {
	if delay <= 0 {
		delay = s.debounceDelay
	}
	return s.debouncer.Schedule(delay, func(ctx context.Context, gen uint64) {
		if _, err := s.Search(ctx, f); err != nil && !errors.Is(err, ErrSuperseded) {
			slog.Warn("Debounced search rejected", "error", err, "task", gen)
			s.notifier.Notify(ctx, notify.Notification{
				Level:   notify.LevelWarning,
				Title:   "Invalid search",
				Message: err.Error(),
				Time:    s.now(),
			})
		}
	})
}

// ClearRecentSearches empties the in-memory and persisted history.
func (s *Session) ClearRecentSearches(ctx context.Context) error {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.mu.Lock()
	s.recent = nil
	s.mu.Unlock()

	if err := s.history.Clear(ctx); err != nil {
		slog.Error("Failed to clear recent searches", "error", err)
		return err
	}
	return nil
}

// Snapshot returns a copy of the observable state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Status:         s.status,
		Results:        cloneResults(s.results),
		Suggestions:    append([]memory.Suggestion(nil), s.suggestions...),
		IsSearching:    s.status == StatusSearching || s.status == StatusLoadingMore,
		HasMore:        s.hasMore,
		RecentSearches: append([]string(nil), s.recent...),
		PopularTags:    append([]memory.TagCount(nil), s.popular...),
		Generation:     s.gen,
	}
	if s.lastErr != nil {
		st.Error = s.lastErr.Error()
	}
	return st
}

// Close cancels a pending debounced search. Searches already running finish
// but their results are no longer observed.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.debouncer.Stop()
	metrics.ActiveSessions.Dec()
}

func (s *Session) toResults(docs []memory.Memory, f filter.SearchFilters) []memory.SearchResult {
	out := make([]memory.SearchResult, len(docs))
	for i, d := range docs {
		out[i] = memory.SearchResult{Memory: d}
	}
	if !f.HasQuery() {
		return out
	}

	relevance.Rank(out, f.Query, s.now())
	for i := range out {
		out[i].HighlightedTitle = s.sanitizer.Safe(out[i].Title, f.Query)
		out[i].HighlightedContent = s.sanitizer.Safe(out[i].Content, f.Query)
	}
	return out
}

func (s *Session) persistHistory(ctx context.Context) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.mu.Lock()
	recent := append([]string(nil), s.recent...)
	s.mu.Unlock()

	if err := s.history.Save(ctx, recent); err != nil {
		slog.Warn("Failed to persist recent searches", "error", err)
	}
}

func (s *Session) notifyFailure(ctx context.Context, err error) {
	msg := "Search is temporarily unavailable. Please try again."
	switch storage.KindOf(err) {
	case storage.KindPermissionDenied:
		msg = "You do not have access to these memories."
	case storage.KindValidation:
		msg = "The search could not be run with these filters."
	}
	s.notifier.Notify(ctx, notify.Notification{
		Level:   notify.LevelError,
		Title:   "Search failed",
		Message: msg,
		Time:    s.now(),
	})
}

func cloneResults(in []memory.SearchResult) []memory.SearchResult {
	if in == nil {
		return nil
	}
	out := make([]memory.SearchResult, len(in))
	for i, r := range in {
		out[i] = r
		out[i].Memory = r.Memory.Clone()
		if r.Score != nil {
			score := *r.Score
			out[i].Score = &score
		}
	}
	return out
}
