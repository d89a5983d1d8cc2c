package auth

import (
	"context"
	"encoding/json"

	"github.com/fiberdesk/fiberdesk/internal/rbac"
	"github.com/fiberdesk/fiberdesk/internal/token"
)

// StorageKey names the persisted auth record in the durable store.
const StorageKey = "auth-storage"

const tokenScope = "auth"

// persistedState is the record written under StorageKey. Permission and route
// tables are code and never persisted.
type persistedState struct {
	User            *User  `json:"user"`
	AccessToken     string `json:"accessToken,omitempty"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

// Session is the authentication state of one browser session. It is either
// anonymous or holds a user and a credential. No method panics or returns an
// error; failures surface as false or empty values.
type Session struct {
	kv         token.KV
	tokens     *token.Store
	policy     *rbac.Policy
	user       *User
	credential string
}

// NewSession returns an anonymous session persisting into kv.
func NewSession(kv token.KV, policy *rbac.Policy) *Session {
	if kv == nil {
		kv = token.MemoryKV{}
	}
	return &Session{kv: kv, tokens: token.NewStore(kv, tokenScope), policy: policy}
}

// Restore rebuilds the session persisted in kv. A missing or unreadable record
// yields an anonymous session.
func Restore(kv token.KV, policy *rbac.Policy) *Session {
	s := NewSession(kv, policy)
	raw := s.kv.Get(StorageKey)
	if raw == "" {
		return s
	}
	var state persistedState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		s.kv.Delete(StorageKey)
		return s
	}
	if !state.IsAuthenticated || state.User == nil {
		return s
	}
	user := *state.User
	s.user = &user
	s.credential = state.AccessToken
	return s
}

// Login makes user the current user, replacing any previous one, and stores
// its tokens.
func (s *Session) Login(user User) {
	u := user
	s.user = &u
	s.credential = user.AccessToken
	s.tokens.SetAccessToken(user.AccessToken)
	s.tokens.SetRefreshToken(user.RefreshToken)
	s.persist()
}

// Logout returns the session to anonymous and clears all tokens.
func (s *Session) Logout() {
	s.user = nil
	s.credential = ""
	s.tokens.Clear()
	s.persist()
}

// IsAuthenticated reports whether both a user and a credential are present.
func (s *Session) IsAuthenticated() bool {
	if s == nil || s.user == nil {
		return false
	}
	return s.AccessToken() != ""
}

// User returns a copy of the current user.
func (s *Session) User() (User, bool) {
	if s == nil || s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Role returns the role of the authenticated user.
func (s *Session) Role() (rbac.Role, bool) {
	if !s.IsAuthenticated() {
		return "", false
	}
	return s.user.Role, true
}

// HasPermission reports whether the current user's role holds perm.
func (s *Session) HasPermission(perm rbac.Permission) bool {
	role, ok := s.Role()
	if !ok {
		return false
	}
	return s.policy.HasPermission(role, perm)
}

// CanAccessRoute reports whether the current user may view path.
func (s *Session) CanAccessRoute(path string) bool {
	role, ok := s.Role()
	if !ok {
		return false
	}
	return s.policy.CanAccessRoute(path, role)
}

// AccessToken returns the in-memory credential, falling back to the token
// store and caching what it finds there.
func (s *Session) AccessToken() string {
	if s == nil {
		return ""
	}
	if s.credential != "" {
		return s.credential
	}
	if tok, ok := s.tokens.AccessToken(); ok {
		s.credential = tok
		return tok
	}
	return ""
}

// SetCredential replaces the access token after a refresh.
func (s *Session) SetCredential(tok string) {
	s.credential = tok
	s.tokens.SetAccessToken(tok)
	if s.user != nil {
		s.user.AccessToken = tok
	}
	s.persist()
}

// Refresh exchanges the stored refresh token through endpoint. On failure the
// tokens are cleared and the caller must send the user back to login.
func (s *Session) Refresh(ctx context.Context, endpoint token.RefreshEndpoint) (string, bool) {
	tok, ok := s.tokens.Refresh(ctx, endpoint)
	if !ok {
		s.credential = ""
		s.persist()
		return "", false
	}
	s.SetCredential(tok)
	return tok, true
}

// Policy exposes the authorization authority the session consults.
func (s *Session) Policy() *rbac.Policy {
	return s.policy
}

func (s *Session) persist() {
	state := persistedState{User: s.user, AccessToken: s.credential}
	state.IsAuthenticated = s.user != nil && s.credential != ""
	data, err := json.Marshal(state)
	if err != nil {
		return
	}
	s.kv.Set(StorageKey, string(data))
}

type sessionContextKey struct{}

// ContextWithSession stores the auth session in context.
func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// SessionFromContext returns the request's auth session; an anonymous session
// without a backing store when none was attached.
func SessionFromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(sessionContextKey{}).(*Session); ok && s != nil {
		return s
	}
	return NewSession(nil, nil)
}
