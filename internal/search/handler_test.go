package search

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiberdesk/fiberdesk/internal/auth"
	"github.com/fiberdesk/fiberdesk/internal/directory"
	"github.com/fiberdesk/fiberdesk/internal/view"
)

type countingRecorder struct {
	mu    sync.Mutex
	calls map[string]int
}

func (c *countingRecorder) SearchExecuted(channel string, results int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = map[string]int{}
	}
	c.calls[channel]++
}

func (c *countingRecorder) count(channel string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[channel]
}

func newSearchRouter(t *testing.T, recorder Recorder) http.Handler {
	t.Helper()
	engine, err := view.NewEngine()
	require.NoError(t, err)
	src := directory.Fixtures(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	h := NewHandler(nil, src, auth.Renderer{Templates: engine}, recorder, 40*time.Millisecond)
	r := chi.NewRouter()
	r.Route("/search", h.MountRoutes)
	return r
}

func TestSearchJSON(t *testing.T) {
	recorder := &countingRecorder{}
	router := newSearchRouter(t, recorder)

	req := httptest.NewRequest(http.MethodGet, "/search?q=rudi", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "rudi", body.Query)
	require.NotEmpty(t, body.Results)
	assert.Equal(t, "Rudi Hartono", body.Results[0].Title)
	assert.Equal(t, "/engineers/1", body.Results[0].Href)
	assert.Equal(t, 1, recorder.count("http"))
}

func TestSearchPage(t *testing.T) {
	router := newSearchRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=%20%20", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No matches.")
}

func TestOpenRedirectsToDetailRoute(t *testing.T) {
	router := newSearchRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search/open/complaint/12", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/complaints/12", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search/open/plan/1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLiveSearchDebouncesKeystrokes(t *testing.T) {
	recorder := &countingRecorder{}
	server := httptest.NewServer(newSearchRouter(t, recorder))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/search/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	for _, q := range []string{"r", "ru", "rudi"} {
		require.NoError(t, conn.WriteJSON(liveRequest{Query: q}))
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var body response
	require.NoError(t, conn.ReadJSON(&body))
	assert.Equal(t, "rudi", body.Query)
	require.NotEmpty(t, body.Results)
	assert.Equal(t, "Rudi Hartono", body.Results[0].Title)
	assert.Equal(t, 1, recorder.count("live"))
}
