package rbac

import (
	"log/slog"
	"net/http"
	"strings"
)

// RoleResolver returns the role of the authenticated caller of r.
type RoleResolver func(r *http.Request) (Role, bool)

// Middleware wires permission checks for HTTP handlers. Navigation is guarded
// separately; these checks protect actions such as exports and job triggers.
type Middleware struct {
	Policy  *Policy
	Resolve RoleResolver
	Logger  *slog.Logger
}

// RequireAny ensures the caller's role holds at least one of perms.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	required := normalizePermissions(perms)
	return m.require(required, func(role Role) bool {
		for _, perm := range required {
			if m.Policy.HasPermission(role, perm) {
				return true
			}
		}
		return false
	})
}

// RequireAll ensures the caller's role holds every one of perms.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	required := normalizePermissions(perms)
	return m.require(required, func(role Role) bool {
		for _, perm := range required {
			if !m.Policy.HasPermission(role, perm) {
				return false
			}
		}
		return true
	})
}

func (m Middleware) require(required []string, allowed func(Role) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(required) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			role, ok := m.resolve(r)
			if !ok || !allowed(role) {
				if m.Logger != nil {
					m.Logger.Warn("permission denied", slog.String("path", r.URL.Path), slog.String("role", string(role)), slog.Any("required", required))
				}
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) resolve(r *http.Request) (Role, bool) {
	if m.Resolve == nil {
		return "", false
	}
	return m.Resolve(r)
}

func normalizePermissions(perms []string) []string {
	seen := make(map[string]struct{}, len(perms))
	normalized := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		normalized = append(normalized, p)
	}
	return normalized
}
