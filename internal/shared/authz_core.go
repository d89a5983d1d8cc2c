package shared

// Dashboard permissions.
const (
	PermViewDashboard = "view-dashboard"

	PermViewUsers   = "view-users"
	PermManageUsers = "manage-users"

	PermViewEngineers   = "view-engineers"
	PermManageEngineers = "manage-engineers"

	PermViewComplaints   = "view-complaints"
	PermManageComplaints = "manage-complaints"

	PermViewPlans   = "view-plans"
	PermManagePlans = "manage-plans"

	PermViewLeads   = "view-leads"
	PermManageLeads = "manage-leads"

	PermViewAnalytics  = "view-analytics"
	PermManageSettings = "manage-settings"
	PermManageRoles    = "manage-roles"
)

// CoreScopes lists every permission known to the dashboard.
func CoreScopes() []string {
	return []string{
		PermViewDashboard,
		PermViewUsers,
		PermManageUsers,
		PermViewEngineers,
		PermManageEngineers,
		PermViewComplaints,
		PermManageComplaints,
		PermViewPlans,
		PermManagePlans,
		PermViewLeads,
		PermManageLeads,
		PermViewAnalytics,
		PermManageSettings,
		PermManageRoles,
	}
}
