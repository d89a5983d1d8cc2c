package auth

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fiberdesk/fiberdesk/internal/platform/httpx"
	"github.com/fiberdesk/fiberdesk/internal/rbac"
	"github.com/fiberdesk/fiberdesk/internal/shared"
	"github.com/fiberdesk/fiberdesk/internal/token"
)

// DenialRecorder counts guard redirects.
type DenialRecorder interface {
	GuardDenied(reason string)
}

// Middleware attaches the auth session to every request and evaluates guards.
type Middleware struct {
	Policy   *rbac.Policy
	Refresh  token.RefreshEndpoint
	Logger   *slog.Logger
	Recorder DenialRecorder
	Now      func() time.Time
}

// LoadSession restores the auth session from the web session. It must run
// after the web session middleware.
func (m Middleware) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var kv token.KV
		if sess := shared.SessionFromContext(r.Context()); sess != nil {
			kv = sess
		}
		authSession := Restore(kv, m.Policy)
		next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), authSession)))
	})
}

// KeepFresh refreshes an expired access token once per request. When the
// refresh fails the session is logged out so the guards send the user to login.
func (m Middleware) KeepFresh(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := SessionFromContext(r.Context())
		if s.IsAuthenticated() && token.IsExpired(s.AccessToken(), m.now()) {
			if _, ok := s.Refresh(r.Context(), m.Refresh); !ok {
				m.logger().Info("access token refresh failed, logging out", slog.String("path", r.URL.Path))
				s.Logout()
				if sess := shared.SessionFromContext(r.Context()); sess != nil {
					sess.AddFlash(shared.FlashMessage{Kind: "warning", Message: "Your session expired, please sign in again."})
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRoute guards navigation with the policy's route registry.
func (m Middleware) RequireRoute(guard RouteGuard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.enforce(w, r, next, guard.Decide(SessionFromContext(r.Context()), target(r)))
		})
	}
}

// RequireRoles guards navigation with an explicit role set.
func (m Middleware) RequireRoles(guard RoleGuard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.enforce(w, r, next, guard.Decide(SessionFromContext(r.Context()), target(r)))
		})
	}
}

// RoleGuardFor builds a RoleGuard from the roles the policy grants on path.
func (m Middleware) RoleGuardFor(path string) RoleGuard {
	return RoleGuard{Roles: m.Policy.AllowedRoles(path), Fallback: DefaultFallback}
}

// ResolveRole adapts the request's auth session for rbac.Middleware.
func ResolveRole(r *http.Request) (rbac.Role, bool) {
	return SessionFromContext(r.Context()).Role()
}

func (m Middleware) enforce(w http.ResponseWriter, r *http.Request, next http.Handler, decision Decision) {
	if decision.Allow {
		next.ServeHTTP(w, r)
		return
	}
	if m.Recorder != nil {
		m.Recorder.GuardDenied(decision.Reason)
	}
	m.logger().Debug("navigation redirected", slog.String("path", r.URL.Path), slog.String("reason", decision.Reason), slog.String("to", decision.Redirect))
	if wantsJSON(r) {
		if decision.Reason == "unauthenticated" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
			return
		}
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "not allowed for your role")
		return
	}
	http.Redirect(w, r, decision.Redirect, http.StatusSeeOther)
}

func (m Middleware) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m Middleware) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

func target(r *http.Request) string {
	return r.URL.RequestURI()
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
