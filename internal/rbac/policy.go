package rbac

import (
	"slices"

	"github.com/fiberdesk/fiberdesk/internal/shared"
)

// Policy is the single authorization authority of the dashboard: the role to
// permission table plus the top-level and detail route registries. It is built
// once at startup and never mutated.
type Policy struct {
	permissions map[Role]map[Permission]struct{}
	routes      []RouteRule
	details     []RouteRule
}

// NewPolicy builds a Policy from literal tables.
func NewPolicy(permissions map[Role][]Permission, routes, details []RouteRule) *Policy {
	p := &Policy{
		permissions: make(map[Role]map[Permission]struct{}, len(permissions)),
		routes:      cloneRules(routes),
		details:     cloneRules(details),
	}
	for role, perms := range permissions {
		set := make(map[Permission]struct{}, len(perms))
		for _, perm := range perms {
			set[perm] = struct{}{}
		}
		p.permissions[role] = set
	}
	return p
}

// HasPermission reports whether role holds perm. Unknown roles and
// permissions are denied.
func (p *Policy) HasPermission(role Role, perm Permission) bool {
	if p == nil {
		return false
	}
	set, ok := p.permissions[role]
	if !ok {
		return false
	}
	_, ok = set[perm]
	return ok
}

// Permissions returns the sorted permissions of role.
func (p *Policy) Permissions(role Role) []Permission {
	if p == nil {
		return nil
	}
	perms := make([]Permission, 0, len(p.permissions[role]))
	for perm := range p.permissions[role] {
		perms = append(perms, perm)
	}
	slices.Sort(perms)
	return perms
}

// Rule returns the first rule matching path, top-level routes before detail
// routes.
func (p *Policy) Rule(path string) (RouteRule, bool) {
	if p == nil {
		return RouteRule{}, false
	}
	for _, registry := range [][]RouteRule{p.routes, p.details} {
		for _, rule := range registry {
			if rule.Matches(path) {
				return rule, true
			}
		}
	}
	return RouteRule{}, false
}

// CanAccessRoute reports whether role may view path. Paths without a matching
// rule are denied.
func (p *Policy) CanAccessRoute(path string, role Role) bool {
	rule, ok := p.Rule(path)
	if !ok {
		return false
	}
	return rule.Allows(role)
}

// AllowedRoles returns the roles granted by the rule matching path.
func (p *Policy) AllowedRoles(path string) []Role {
	rule, ok := p.Rule(path)
	if !ok {
		return nil
	}
	return slices.Clone(rule.AllowedRoles)
}

// Routes returns copies of the top-level and detail registries.
func (p *Policy) Routes() (routes, details []RouteRule) {
	if p == nil {
		return nil, nil
	}
	return cloneRules(p.routes), cloneRules(p.details)
}

func cloneRules(rules []RouteRule) []RouteRule {
	out := make([]RouteRule, len(rules))
	for i, rule := range rules {
		out[i] = RouteRule{Path: rule.Path, AllowedRoles: slices.Clone(rule.AllowedRoles)}
	}
	return out
}

var (
	everyone   = []Role{RoleSuperAdmin, RoleAdmin, RoleManager, RoleAgent}
	management = []Role{RoleSuperAdmin, RoleAdmin, RoleManager}
	admins     = []Role{RoleSuperAdmin, RoleAdmin}
	superOnly  = []Role{RoleSuperAdmin}
)

// DefaultPermissions is the dashboard's role to permission table.
func DefaultPermissions() map[Role][]Permission {
	all := shared.CoreScopes()
	adminPerms := slices.DeleteFunc(slices.Clone(all), func(p string) bool {
		return p == shared.PermManageRoles
	})
	return map[Role][]Permission{
		RoleSuperAdmin: all,
		RoleAdmin:      adminPerms,
		RoleManager: {
			shared.PermViewDashboard,
			shared.PermViewUsers,
			shared.PermViewEngineers,
			shared.PermManageEngineers,
			shared.PermViewComplaints,
			shared.PermManageComplaints,
			shared.PermViewPlans,
			shared.PermViewLeads,
			shared.PermManageLeads,
			shared.PermViewAnalytics,
		},
		RoleAgent: {
			shared.PermViewDashboard,
			shared.PermViewUsers,
			shared.PermViewComplaints,
			shared.PermManageComplaints,
			shared.PermViewLeads,
		},
	}
}

// DefaultRoutes is the top-level route registry.
func DefaultRoutes() []RouteRule {
	return []RouteRule{
		{Path: "/dashboard", AllowedRoles: everyone},
		{Path: "/users", AllowedRoles: everyone},
		{Path: "/engineers", AllowedRoles: management},
		{Path: "/complaints", AllowedRoles: everyone},
		{Path: "/plans", AllowedRoles: management},
		{Path: "/leads", AllowedRoles: everyone},
		{Path: "/analytics", AllowedRoles: management},
		{Path: "/search", AllowedRoles: everyone},
		{Path: "/settings", AllowedRoles: admins},
		{Path: "/roles", AllowedRoles: superOnly},
	}
}

// DefaultDetailRoutes is the parameterised route registry.
func DefaultDetailRoutes() []RouteRule {
	return []RouteRule{
		{Path: "/users/:id", AllowedRoles: everyone},
		{Path: "/engineers/:id", AllowedRoles: management},
		{Path: "/complaints/:id", AllowedRoles: everyone},
		{Path: "/plans/:id", AllowedRoles: management},
		{Path: "/leads/:id", AllowedRoles: everyone},
		{Path: "/search/live", AllowedRoles: everyone},
		{Path: "/search/open/:type/:id", AllowedRoles: everyone},
		{Path: "/settings/:action", AllowedRoles: admins},
	}
}

// DefaultPolicy assembles the dashboard policy.
func DefaultPolicy() *Policy {
	return NewPolicy(DefaultPermissions(), DefaultRoutes(), DefaultDetailRoutes())
}
