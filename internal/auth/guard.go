package auth

import (
	"net/url"
	"strings"

	"github.com/fiberdesk/fiberdesk/internal/rbac"
)

const (
	// LoginPath is where unauthenticated navigation is sent.
	LoginPath = "/auth/login"
	// DefaultFallback is where authenticated but unauthorized navigation is sent.
	DefaultFallback = "/dashboard"
)

// Decision is the outcome of a guard: render the target or redirect.
type Decision struct {
	Allow    bool
	Redirect string
	Reason   string
}

func allow() Decision { return Decision{Allow: true} }

func redirectToLogin(target string) Decision {
	return Decision{Redirect: LoginRedirect(target), Reason: "unauthenticated"}
}

// LoginRedirect builds the login URL remembering target for the return trip.
func LoginRedirect(target string) string {
	if target == "" || target == LoginPath {
		return LoginPath
	}
	return LoginPath + "?next=" + url.QueryEscape(target)
}

// SafeNext returns next when it is a local path, DefaultFallback otherwise.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return DefaultFallback
	}
	if strings.HasPrefix(next, LoginPath) {
		return DefaultFallback
	}
	return next
}

// RoleGuard admits authenticated users whose role is in Roles.
type RoleGuard struct {
	Roles    []rbac.Role
	Fallback string
}

// Decide evaluates the guard for target.
func (g RoleGuard) Decide(s *Session, target string) Decision {
	if !s.IsAuthenticated() {
		return redirectToLogin(target)
	}
	role, _ := s.Role()
	for _, allowed := range g.Roles {
		if allowed == role {
			return allow()
		}
	}
	return Decision{Redirect: fallback(g.Fallback), Reason: "role"}
}

// RouteGuard admits authenticated users the policy lets view the target path.
type RouteGuard struct {
	Fallback string
}

// Decide evaluates the guard for target.
func (g RouteGuard) Decide(s *Session, target string) Decision {
	if !s.IsAuthenticated() {
		return redirectToLogin(target)
	}
	if !s.CanAccessRoute(target) {
		return Decision{Redirect: fallback(g.Fallback), Reason: "route"}
	}
	return allow()
}

func fallback(path string) string {
	if path == "" {
		return DefaultFallback
	}
	return path
}
