// Package token keeps the dashboard's bearer credentials: storage, client-side
// expiry inspection, refresh through the auth API and local issuing.
package token

import (
	"context"
	"strings"
)

const (
	accessTokenKey  = "access_token"
	refreshTokenKey = "refresh_token"
)

// KV is the durable key/value store tokens are written to. *shared.Session
// satisfies it.
type KV interface {
	Get(key string) string
	Set(key, value string)
	Delete(key string)
}

// RefreshEndpoint exchanges a refresh token for a new access token.
type RefreshEndpoint interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// Store is a scoped view over a KV holding the access and refresh tokens.
type Store struct {
	kv    KV
	scope string
}

// NewStore returns a Store whose keys are prefixed with scope.
func NewStore(kv KV, scope string) *Store {
	return &Store{kv: kv, scope: scope}
}

// SetAccessToken stores the access token.
func (s *Store) SetAccessToken(tok string) {
	s.set(accessTokenKey, tok)
}

// AccessToken returns the stored access token.
func (s *Store) AccessToken() (string, bool) {
	return s.get(accessTokenKey)
}

// SetRefreshToken stores the refresh token.
func (s *Store) SetRefreshToken(tok string) {
	s.set(refreshTokenKey, tok)
}

// RefreshToken returns the stored refresh token.
func (s *Store) RefreshToken() (string, bool) {
	return s.get(refreshTokenKey)
}

// HasValidTokens reports whether a non-empty access token is stored. Expiry is
// not inspected.
func (s *Store) HasValidTokens() bool {
	_, ok := s.AccessToken()
	return ok
}

// Clear removes both tokens. Safe to call repeatedly.
func (s *Store) Clear() {
	if s == nil || s.kv == nil {
		return
	}
	s.kv.Delete(s.key(accessTokenKey))
	s.kv.Delete(s.key(refreshTokenKey))
}

// Refresh trades the stored refresh token for a new access token. Any failure
// clears both tokens and reports false; the caller has to log in again.
func (s *Store) Refresh(ctx context.Context, endpoint RefreshEndpoint) (string, bool) {
	refresh, ok := s.RefreshToken()
	if !ok || endpoint == nil {
		return "", false
	}
	access, err := endpoint.Refresh(ctx, refresh)
	if err != nil || strings.TrimSpace(access) == "" {
		s.Clear()
		return "", false
	}
	s.SetAccessToken(access)
	return access, true
}

func (s *Store) get(name string) (string, bool) {
	if s == nil || s.kv == nil {
		return "", false
	}
	value := s.kv.Get(s.key(name))
	if value == "" {
		return "", false
	}
	return value, true
}

func (s *Store) set(name, value string) {
	if s == nil || s.kv == nil {
		return
	}
	if value == "" {
		s.kv.Delete(s.key(name))
		return
	}
	s.kv.Set(s.key(name), value)
}

func (s *Store) key(name string) string {
	if s.scope == "" {
		return name
	}
	return s.scope + ":" + name
}

// MemoryKV is a map backed KV for tests and background callers.
type MemoryKV map[string]string

// Get implements KV.
func (m MemoryKV) Get(key string) string { return m[key] }

// Set implements KV.
func (m MemoryKV) Set(key, value string) { m[key] = value }

// Delete implements KV.
func (m MemoryKV) Delete(key string) { delete(m, key) }
