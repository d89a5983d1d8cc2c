package rbac

import "strings"

// Role is a named privilege tier. Roles carry no ordering; what a role may do
// is listed explicitly in the policy.
type Role string

// Dashboard roles.
const (
	RoleSuperAdmin Role = "SUPERADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleManager    Role = "MANAGER"
	RoleAgent      Role = "AGENT"
)

// AllRoles lists every known role.
func AllRoles() []Role {
	return []Role{RoleSuperAdmin, RoleAdmin, RoleManager, RoleAgent}
}

// ParseRole normalises raw into a known Role.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range AllRoles() {
		if role == known {
			return role, true
		}
	}
	return "", false
}

// Permission names an atomic capability.
type Permission = string

// RouteRule grants a path pattern to a set of roles. Segments starting with
// ':' match exactly one path segment.
type RouteRule struct {
	Path         string
	AllowedRoles []Role
}

// Allows reports whether role is granted by the rule.
func (r RouteRule) Allows(role Role) bool {
	for _, allowed := range r.AllowedRoles {
		if allowed == role {
			return true
		}
	}
	return false
}

// Matches reports whether path matches the rule's pattern.
func (r RouteRule) Matches(path string) bool {
	return matchPattern(r.Path, path)
}

func matchPattern(pattern, path string) bool {
	want := splitPath(pattern)
	got := splitPath(path)
	if len(want) != len(got) {
		return false
	}
	for i, segment := range want {
		if strings.HasPrefix(segment, ":") {
			if got[i] == "" {
				return false
			}
			continue
		}
		if segment != got[i] {
			return false
		}
	}
	return true
}

func splitPath(path string) []string {
	path = strings.TrimSpace(path)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return []string{}
	}
	return strings.Split(path, "/")
}
