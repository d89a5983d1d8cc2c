package token

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedWithExp(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

func TestIsExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	badPayload := "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".sig"

	cases := []struct {
		name    string
		token   string
		expired bool
	}{
		{name: "empty", token: "", expired: true},
		{name: "two segments", token: "abc.def", expired: true},
		{name: "payload not json", token: badPayload, expired: true},
		{name: "garbage base64", token: "a.%%%.c", expired: true},
		{name: "exp in past", token: signedWithExp(t, now.Add(-time.Minute)), expired: true},
		{name: "exp equals now", token: signedWithExp(t, now), expired: true},
		{name: "exp in future", token: signedWithExp(t, now.Add(time.Minute)), expired: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expired, IsExpired(tc.token, now))
		})
	}
}

func TestIsExpiredReadsOnlyPayload(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	enc := base64.RawURLEncoding.EncodeToString
	payload := enc([]byte(`{"exp":1800000000}`))

	cases := []struct {
		name   string
		header string
	}{
		{name: "header without alg", header: enc([]byte(`{"typ":"JWT"}`))},
		{name: "header not base64 json", header: "xxx"},
		{name: "unknown alg", header: enc([]byte(`{"alg":"XYZ"}`))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, IsExpired(tc.header+"."+payload+".sig", now))
		})
	}

	padded := base64.URLEncoding.EncodeToString([]byte(`{"exp":1800000000}`))
	assert.False(t, IsExpired("xxx."+padded+".sig", now))
	assert.True(t, IsExpired("xxx."+payload+".sig.extra", now))
}

func TestIsExpiredWithoutExpClaim(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1"}).SignedString([]byte("k"))
	require.NoError(t, err)
	assert.True(t, IsExpired(tok, time.Now()))
}

func TestStorePresenceIsNotExpiry(t *testing.T) {
	kv := MemoryKV{}
	store := NewStore(kv, "auth")
	assert.False(t, store.HasValidTokens())

	store.SetAccessToken(signedWithExp(t, time.Now().Add(-time.Hour)))
	assert.True(t, store.HasValidTokens(), "an expired token is still present")
	assert.Contains(t, kv, "auth:access_token")

	store.SetAccessToken("")
	assert.False(t, store.HasValidTokens())
}

func TestStoreClearIsIdempotent(t *testing.T) {
	kv := MemoryKV{}
	store := NewStore(kv, "auth")
	store.SetAccessToken("a")
	store.SetRefreshToken("r")

	store.Clear()
	store.Clear()

	_, ok := store.AccessToken()
	assert.False(t, ok)
	_, ok = store.RefreshToken()
	assert.False(t, ok)
	assert.Empty(t, kv)
}

type stubEndpoint struct {
	token string
	err   error
	calls int
	got   string
}

func (s *stubEndpoint) Refresh(ctx context.Context, refreshToken string) (string, error) {
	s.calls++
	s.got = refreshToken
	return s.token, s.err
}

func TestStoreRefresh(t *testing.T) {
	t.Run("no refresh token", func(t *testing.T) {
		store := NewStore(MemoryKV{}, "")
		endpoint := &stubEndpoint{token: "new"}
		tok, ok := store.Refresh(context.Background(), endpoint)
		assert.False(t, ok)
		assert.Empty(t, tok)
		assert.Zero(t, endpoint.calls)
	})

	t.Run("success stores new access token", func(t *testing.T) {
		store := NewStore(MemoryKV{}, "")
		store.SetAccessToken("old")
		store.SetRefreshToken("refresh-1")
		endpoint := &stubEndpoint{token: "new"}

		tok, ok := store.Refresh(context.Background(), endpoint)
		require.True(t, ok)
		assert.Equal(t, "new", tok)
		assert.Equal(t, "refresh-1", endpoint.got)
		current, _ := store.AccessToken()
		assert.Equal(t, "new", current)
	})

	t.Run("failure clears tokens", func(t *testing.T) {
		store := NewStore(MemoryKV{}, "")
		store.SetAccessToken("old")
		store.SetRefreshToken("refresh-1")
		endpoint := &stubEndpoint{err: errors.New("503")}

		tok, ok := store.Refresh(context.Background(), endpoint)
		assert.False(t, ok)
		assert.Empty(t, tok)
		assert.False(t, store.HasValidTokens())
		_, hasRefresh := store.RefreshToken()
		assert.False(t, hasRefresh)
		assert.Equal(t, 1, endpoint.calls)
	})
}

func TestIssuerExchange(t *testing.T) {
	issuer := NewIssuer("secret", time.Minute, time.Hour)
	pair, err := issuer.Issue(Subject{ID: 7, Name: "Rina", Email: "rina@fiberdesk.local", Role: "ADMIN"})
	require.NoError(t, err)
	assert.False(t, IsExpired(pair.AccessToken, time.Now()))

	access, err := issuer.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	exp, ok := ExpiresAt(access)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 2*time.Second)

	_, err = issuer.Exchange(pair.AccessToken)
	assert.ErrorIs(t, err, ErrRefreshRejected, "access tokens cannot be exchanged")

	other := NewIssuer("other", time.Minute, time.Hour)
	_, err = other.Exchange(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshRejected)
}
