package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiberdesk/fiberdesk/internal/directory"
	"github.com/fiberdesk/fiberdesk/internal/rbac"
	"github.com/fiberdesk/fiberdesk/internal/shared"
	"github.com/fiberdesk/fiberdesk/internal/token"
)

func newClient(t *testing.T, h http.Handler, bearer TokenFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return New(Config{BaseURL: server.URL + "/", Timeout: time.Second, RetryMax: 2, ServiceToken: "svc"}, bearer, nil)
}

func TestListsSendBearerAndRetry(t *testing.T) {
	var calls atomic.Int32
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/engineers", r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode([]directory.Engineer{{ID: 1, Name: "Rudi"}})
	}), func(context.Context) string { return "user-token" })

	engineers, err := client.Engineers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []directory.Engineer{{ID: 1, Name: "Rudi"}}, engineers)
	assert.EqualValues(t, 2, calls.Load())
}

func TestListsFallBackToServiceToken(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer svc", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	}), nil)

	plans, err := client.Plans(context.Background())
	require.NoError(t, err)
	assert.Empty(t, plans)
}

func TestListErrorStatus(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}), nil)

	_, err := client.Leads(context.Background())
	require.ErrorIs(t, err, ErrUnexpectedStatus)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.Code)
}

func TestRefreshContract(t *testing.T) {
	var calls atomic.Int32
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/refresh", r.URL.Path)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["refreshToken"] != "good" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"accessToken":"fresh"}`))
	}), nil)

	tok, err := client.Refresh(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok)

	_, err = client.Refresh(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.EqualValues(t, 2, calls.Load(), "refresh is never retried")
}

func TestRefreshFailureClearsTokenStore(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}), nil)
	store := token.NewStore(token.MemoryKV{}, "auth")
	store.SetAccessToken("old")
	store.SetRefreshToken("refresh")

	_, ok := store.Refresh(context.Background(), client)
	assert.False(t, ok)
	assert.False(t, store.HasValidTokens())
}

func TestAuthenticate(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body loginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Password != "secret123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":4,"name":"Agus","email":"agent@fiberdesk.local","role":"AGENT","accessToken":"a","refreshToken":"r"}`))
	}), nil)

	user, err := client.Authenticate(context.Background(), "agent@fiberdesk.local", "secret123")
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAgent, user.Role)
	assert.Equal(t, "r", user.RefreshToken)

	_, err = client.Authenticate(context.Background(), "agent@fiberdesk.local", "wrong")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
