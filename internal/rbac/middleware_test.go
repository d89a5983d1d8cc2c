package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fiberdesk/fiberdesk/internal/shared"
)

func serve(mw func(http.Handler) http.Handler) int {
	rec := httptest.NewRecorder()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	mw(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/export.csv", nil))
	return rec.Code
}

func TestMiddlewareRequireAny(t *testing.T) {
	for _, tc := range []struct {
		role Role
		ok   bool
		want int
	}{
		{RoleAgent, true, http.StatusNoContent},
		{RoleManager, true, http.StatusNoContent},
		{"", false, http.StatusForbidden},
	} {
		mw := Middleware{Policy: DefaultPolicy(), Resolve: func(*http.Request) (Role, bool) { return tc.role, tc.ok }}
		assert.Equal(t, tc.want, serve(mw.RequireAny(shared.PermViewUsers)))
	}
}

func TestMiddlewareRequireAll(t *testing.T) {
	resolve := func(role Role) RoleResolver {
		return func(*http.Request) (Role, bool) { return role, true }
	}
	required := []string{shared.PermViewUsers, shared.PermManageUsers}

	admin := Middleware{Policy: DefaultPolicy(), Resolve: resolve(RoleAdmin)}
	assert.Equal(t, http.StatusNoContent, serve(admin.RequireAll(required...)))

	agent := Middleware{Policy: DefaultPolicy(), Resolve: resolve(RoleAgent)}
	assert.Equal(t, http.StatusForbidden, serve(agent.RequireAll(required...)))
}

func TestMiddlewareWithoutRequirementsPassesThrough(t *testing.T) {
	mw := Middleware{Policy: DefaultPolicy()}
	assert.Equal(t, http.StatusNoContent, serve(mw.RequireAny(" ")))
}
