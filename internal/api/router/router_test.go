package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/alumni-memories/internal/apperr"
	"github.com/DjordjeVuckovic/alumni-memories/internal/domain/memory"
	"github.com/DjordjeVuckovic/alumni-memories/internal/history"
	"github.com/DjordjeVuckovic/alumni-memories/internal/objectstore"
	"github.com/DjordjeVuckovic/alumni-memories/internal/search/session"
	"github.com/DjordjeVuckovic/alumni-memories/internal/storage"
	"github.com/DjordjeVuckovic/alumni-memories/internal/storage/in_mem"
	"github.com/DjordjeVuckovic/alumni-memories/internal/upload"
	"github.com/DjordjeVuckovic/alumni-memories/pkg/pagination"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

type fixture struct {
	e        *echo.Echo
	store    *in_mem.InMemStorer
	registry *Registry
	bucket   *objectstore.MemBucket
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := in_mem.NewInMemStorer()
	for i := 0; i < 5; i++ {
		_, err := store.Put(context.Background(), memory.Memory{
			ID:        fmt.Sprintf("m%d", i),
			Title:     fmt.Sprintf("reunion %d", i),
			Tags:      []string{"reunion"},
			Location:  "Seoul",
			IsPublic:  true,
			CreatedAt: now.Add(-time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	var mu sync.Mutex
	histories := map[string]*history.MemStore{}
	registry := NewRegistry(func(ctx context.Context, clientID string) *session.Session {
		mu.Lock()
		h, ok := histories[clientID]
		if !ok {
			h = history.NewMemStore()
			histories[clientID] = h
		}
		mu.Unlock()
		return session.New(ctx, store, h, session.WithClock(func() time.Time { return now }))
	})
	t.Cleanup(registry.Close)

	bucket := objectstore.NewMemBucket("")
	e := echo.New()
	e.HTTPErrorHandler = apperr.GlobalErrorHandler()
	NewSessionRouter(e, registry).Bind()
	NewMemoriesRouter(e, store).Bind()
	NewUploadRouter(e, upload.NewPipeline(bucket), upload.DefaultOptions()).Bind()

	return &fixture{e: e, store: store, registry: registry, bucket: bucket}
}

func (f *fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, target, bytes.NewReader(b))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (f *fixture) createSession(t *testing.T) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/sessions", CreateSessionRequest{ClientID: "alice"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[CreateSessionResponse](t, rec).SessionID
}

func TestSessionLifecycle(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/sessions", CreateSessionRequest{ClientID: "alice"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[CreateSessionResponse](t, rec)
	assert.NotEmpty(t, created.SessionID)
	assert.Equal(t, []memory.TagCount{{Tag: "reunion", Count: 5}}, created.State.PopularTags)
	id := created.SessionID

	rec = f.do(t, http.MethodPost, "/sessions/"+id+"/search", map[string]any{"searchQuery": "reunion 3", "limit": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	st := decode[session.State](t, rec)
	assert.Equal(t, session.StatusResults, st.Status)
	require.Len(t, st.Results, 2)
	assert.True(t, st.HasMore)
	assert.Equal(t, []string{"reunion 3"}, st.RecentSearches)

	rec = f.do(t, http.MethodPost, "/sessions/"+id+"/more", map[string]any{"searchQuery": "reunion 3", "limit": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[session.State](t, rec).Results, 4)

	rec = f.do(t, http.MethodGet, "/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[session.State](t, rec).Results, 4)

	rec = f.do(t, http.MethodGet, "/sessions/"+id+"/suggestions?q=Seo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []memory.Suggestion{{Kind: memory.SuggestionLocation, Value: "Seoul", Count: 5}}, decode[SuggestionsResponse](t, rec).Suggestions)

	rec = f.do(t, http.MethodDelete, "/sessions/"+id+"/recent", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodGet, "/sessions/"+id, nil)
	assert.Empty(t, decode[session.State](t, rec).RecentSearches)

	rec = f.do(t, http.MethodDelete, "/sessions/"+id, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodGet, "/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessions_ShareHistoryPerClient(t *testing.T) {
	f := newFixture(t)
	first := f.createSession(t)

	rec := f.do(t, http.MethodPost, "/sessions/"+first+"/search", map[string]any{"searchQuery": "reunion"})
	require.Equal(t, http.StatusOK, rec.Code)

	second := f.createSession(t)
	rec = f.do(t, http.MethodGet, "/sessions/"+second, nil)
	assert.Equal(t, []string{"reunion"}, decode[session.State](t, rec).RecentSearches)
}

func TestSearch_InvalidFilters(t *testing.T) {
	f := newFixture(t)
	id := f.createSession(t)

	rec := f.do(t, http.MethodPost, "/sessions/"+id+"/search", map[string]any{"limit": 500})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Fields, "limit")
}

func TestUnknownSession(t *testing.T) {
	f := newFixture(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/sessions/nope"},
		{http.MethodPost, "/sessions/nope/search"},
		{http.MethodGet, "/sessions/nope/suggestions?q=a"},
		{http.MethodDelete, "/sessions/nope"},
	} {
		rec := f.do(t, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, tc.path)
	}
}

func TestDebouncedSearch(t *testing.T) {
	f := newFixture(t)
	id := f.createSession(t)

	rec := f.do(t, http.MethodPost, "/sessions/"+id+"/search/debounced?delayMs=10", map[string]any{"tags": []string{"reunion"}})
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Positive(t, decode[DebouncedResponse](t, rec).Task)

	require.Eventually(t, func() bool {
		rec := f.do(t, http.MethodGet, "/sessions/"+id, nil)
		st := decode[session.State](t, rec)
		return st.Status == session.StatusResults && len(st.Results) == 5
	}, time.Second, 10*time.Millisecond)

	rec = f.do(t, http.MethodPost, "/sessions/"+id+"/search/debounced?delayMs=x", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/sessions/"+id+"/search/debounced", map[string]any{"sortBy": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListMemories_FollowsCursor(t *testing.T) {
	f := newFixture(t)

	var ids []string
	target := "/memories?size=2&public=true"
	for pages := 0; ; pages++ {
		require.Less(t, pages, 5)
		rec := f.do(t, http.MethodGet, target, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		page := decode[pagination.CursorResult[memory.SearchResult]](t, rec)
		for _, r := range page.Items {
			ids = append(ids, r.ID)
		}
		if !page.HasMore {
			assert.Nil(t, page.NextCursor)
			break
		}
		require.NotNil(t, page.NextCursor)
		target = "/memories?size=2&public=true&cursor=" + url.QueryEscape(*page.NextCursor)
	}

	assert.Equal(t, []string{"m0", "m1", "m2", "m3", "m4"}, ids)
}

func TestListMemories_RanksQueryWithinPage(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/memories?q=reunion+4&size=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[pagination.CursorResult[memory.SearchResult]](t, rec)

	require.Len(t, page.Items, 5)
	assert.Equal(t, "m4", page.Items[0].ID)
	assert.Equal(t, "<mark>reunion 4</mark>", page.Items[0].HighlightedTitle)
}

func TestListMemories_BadCursor(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/memories?cursor=%25%25", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	token, err := pagination.EncodeToken(storage.Cursor{ID: "m1", Field: storage.FieldTitle, Value: "reunion 1"})
	require.NoError(t, err)
	rec = f.do(t, http.MethodGet, "/memories?cursor="+token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/memories?public=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func multipartBody(t *testing.T, folder string, files ...upload.File) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, f.Name))
		h.Set("Content-Type", f.ContentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.Data)
		require.NoError(t, err)
	}
	if folder != "" {
		require.NoError(t, w.WriteField("folder", folder))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func TestUploads(t *testing.T) {
	f := newFixture(t)

	body, ct := multipartBody(t, "reunion-2024",
		upload.File{Name: "a.png", ContentType: "image/png", Data: tinyPNG(t)},
		upload.File{Name: "notes.txt", ContentType: "text/plain", Data: []byte("hi")},
	)
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set(echo.HeaderContentType, ct)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[UploadResponse](t, rec)
	require.Len(t, resp.Results, 2)
	assert.True(t, resp.Results[0].Success)
	assert.True(t, strings.HasPrefix(resp.Results[0].URL, "mem://objects/reunion-2024/"), resp.Results[0].URL)
	assert.False(t, resp.Results[1].Success)
	assert.NotEmpty(t, resp.Results[1].Error)
	assert.Equal(t, upload.Stats{Total: 2, Succeeded: 1, Failed: 1,
		OriginalBytes:   resp.Results[0].OriginalSize + 2,
		CompressedBytes: resp.Results[0].CompressedSize,
	}, resp.Stats)
	assert.Equal(t, 1, f.bucket.Len())

	rec = f.do(t, http.MethodGet, "/uploads/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[UploadStatsResponse](t, rec).Stats.Succeeded)

	rec = f.do(t, http.MethodPost, "/uploads/cancel", nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	rec = f.do(t, http.MethodGet, "/uploads/stats", nil)
	assert.Zero(t, decode[UploadStatsResponse](t, rec).Stats.Total)
}

func TestUploads_NoFiles(t *testing.T) {
	f := newFixture(t)
	body, ct := multipartBody(t, "x")
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set(echo.HeaderContentType, ct)
	rec := httptest.NewRecorder()

	f.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegistry_ReapsIdleSessions(t *testing.T) {
	clock := now
	store := in_mem.NewInMemStorer()
	r := NewRegistry(func(ctx context.Context, _ string) *session.Session {
		return session.New(ctx, store, history.NewMemStore())
	}, WithTTL(time.Minute), WithRegistryClock(func() time.Time { return clock }))
	defer r.Close()

	idle, _ := r.Create(context.Background(), "")
	active, _ := r.Create(context.Background(), "")

	clock = clock.Add(45 * time.Second)
	_, ok := r.Get(active)
	require.True(t, ok)

	clock = clock.Add(30 * time.Second)
	assert.Equal(t, 1, r.Reap())

	_, ok = r.Get(idle)
	assert.False(t, ok)
	_, ok = r.Get(active)
	assert.True(t, ok)
	assert.Equal(t, 1, r.Len())
}
