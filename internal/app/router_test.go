package app

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiberdesk/fiberdesk/internal/observability"
	_ "github.com/fiberdesk/fiberdesk/internal/testing/guard"
	"github.com/fiberdesk/fiberdesk/jobs"
)

const testPassword = "fiberdesk-demo"

var csrfPattern = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

type fakeEnqueuer struct {
	mu       sync.Mutex
	payloads []jobs.DirectoryRefreshPayload
	err      error
}

func (f *fakeEnqueuer) EnqueueDirectoryRefresh(_ context.Context, payload jobs.DirectoryRefreshPayload) (*asynq.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.payloads = append(f.payloads, payload)
	return &asynq.TaskInfo{Queue: jobs.QueueDefault, Type: jobs.TaskDirectoryRefresh}, nil
}

type browser struct {
	t      *testing.T
	server *httptest.Server
	client *http.Client
	csrf   string
}

func newBrowser(t *testing.T, enqueuer RefreshEnqueuer) *browser {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := validConfig()
	cfg.SessionTTL = time.Hour
	cfg.AccessTokenTTL = time.Hour
	cfg.RefreshTokenTTL = 24 * time.Hour
	cfg.CacheTTL = time.Minute
	cfg.SearchDebounce = 20 * time.Millisecond
	cfg.SeedPassword = testPassword
	cfg.AppRequestTimeout = 5 * time.Second

	deps := Dependencies{
		Config:  &cfg,
		Redis:   client,
		Metrics: observability.NewMetrics(),
		Now:     func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) },
	}
	if enqueuer != nil {
		deps.Jobs = enqueuer
	}
	handler, err := NewServer(context.Background(), deps)
	require.NoError(t, err)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:      t,
		server: server,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) do(req *http.Request) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp, string(body)
}

func (b *browser) get(path string, headers ...string) (*http.Response, string) {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.server.URL+path, nil)
	require.NoError(b.t, err)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return b.do(req)
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) signIn(email, next string) *http.Response {
	b.t.Helper()
	resp, body := b.get("/auth/login")
	require.Equal(b.t, http.StatusOK, resp.StatusCode)
	match := csrfPattern.FindStringSubmatch(body)
	require.Len(b.t, match, 2, "login page carries a csrf token")
	b.csrf = match[1]

	resp, _ = b.post("/auth/login", url.Values{
		"csrf_token": {b.csrf},
		"email":      {email},
		"password":   {testPassword},
		"next":       {next},
	})
	return resp
}

func TestRouterHealthz(t *testing.T) {
	b := newBrowser(t, nil)
	resp, body := b.get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestRouterRedirectsAnonymousToLogin(t *testing.T) {
	b := newBrowser(t, nil)

	resp, _ := b.get("/users?page=2")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/auth/login?next=%2Fusers%3Fpage%3D2", resp.Header.Get("Location"))

	resp, _ = b.get("/", "Accept", "text/html")
	assert.Equal(t, "/auth/login", resp.Header.Get("Location"))

	resp, _ = b.get("/analytics", "Accept", "application/json")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouterAgentNavigation(t *testing.T) {
	b := newBrowser(t, nil)

	resp := b.signIn("agent@fiberdesk.local", "/users")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/users", resp.Header.Get("Location"))

	resp, body := b.get("/users")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Users")

	resp, _ = b.get("/engineers")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	resp, _ = b.get("/settings")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	resp, _ = b.get("/users/export.csv")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = b.get("/search?q=rudi", "Accept", "application/json")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Rudi Hartono")

	resp, _ = b.post("/auth/logout", url.Values{"csrf_token": {b.csrf}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, _ = b.get("/users")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/auth/login?next=%2Fusers", resp.Header.Get("Location"))
}

func TestRouterRejectsPostWithoutCSRF(t *testing.T) {
	b := newBrowser(t, nil)
	b.signIn("admin@fiberdesk.local", "")

	resp, _ := b.post("/settings/refresh-data", url.Values{})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRouterAdminQueuesRefresh(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	b := newBrowser(t, enqueuer)

	resp := b.signIn("admin@fiberdesk.local", "")
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	resp, body := b.get("/settings")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "memory")

	resp, _ = b.post("/settings/refresh-data", url.Values{"csrf_token": {b.csrf}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/settings", resp.Header.Get("Location"))

	require.Len(t, enqueuer.payloads, 1)
	assert.Equal(t, "manual", enqueuer.payloads[0].Reason)
	assert.Equal(t, "admin@fiberdesk.local", enqueuer.payloads[0].RequestedBy)

	resp, body = b.get("/settings")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Data refresh queued.")

	resp, _ = b.get("/roles")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode, "roles page is superadmin only")
}

func TestRouterSuperAdminSeesRoles(t *testing.T) {
	b := newBrowser(t, nil)
	b.signIn("superadmin@fiberdesk.local", "/roles")

	resp, body := b.get("/roles")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "manage-roles")
}

func TestRouterLocalAuthAPI(t *testing.T) {
	b := newBrowser(t, nil)
	req, err := http.NewRequest(http.MethodPost, b.server.URL+"/api/auth/login",
		strings.NewReader(`{"email":"manager@fiberdesk.local","password":"`+testPassword+`"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, body := b.do(req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "refreshToken")
}

func TestRouterExposesMetrics(t *testing.T) {
	b := newBrowser(t, nil)
	b.get("/users")

	resp, body := b.get("/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "fiberdesk_guard_denials_total")
}
