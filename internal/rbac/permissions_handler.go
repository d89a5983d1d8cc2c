package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fiberdesk/fiberdesk/internal/shared"
)

// PageRenderer renders a full dashboard page.
type PageRenderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any)
}

// PermissionsHandler serves the read-only roles and permissions page.
type PermissionsHandler struct {
	policy *Policy
	pages  PageRenderer
	rbac   Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(policy *Policy, pages PageRenderer, rbac Middleware) *PermissionsHandler {
	return &PermissionsHandler{policy: policy, pages: pages, rbac: rbac}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermManageRoles))
		r.Get("/", h.listPermissions)
	})
}

// MatrixRow lists, per role column, whether the permission is granted.
type MatrixRow struct {
	Permission Permission
	Granted    []bool
}

// PermissionsPage is the data behind the roles page.
type PermissionsPage struct {
	Roles  []Role
	Matrix []MatrixRow
	Routes []RouteRule
}

// BuildPermissionsPage lays the policy out as a permission by role grid.
func BuildPermissionsPage(policy *Policy) PermissionsPage {
	page := PermissionsPage{Roles: AllRoles()}
	for _, perm := range shared.CoreScopes() {
		row := MatrixRow{Permission: perm, Granted: make([]bool, len(page.Roles))}
		for i, role := range page.Roles {
			row.Granted[i] = policy.HasPermission(role, perm)
		}
		page.Matrix = append(page.Matrix, row)
	}
	routes, details := policy.Routes()
	page.Routes = append(routes, details...)
	return page
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, http.StatusOK, "pages/roles.html", "Roles", BuildPermissionsPage(h.policy))
}
