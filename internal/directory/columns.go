package directory

import (
	"fmt"
	"strconv"

	"github.com/fiberdesk/fiberdesk/internal/shared"
	"github.com/fiberdesk/fiberdesk/internal/table"
)

// CustomerColumns are the /users table columns.
func CustomerColumns() []table.Column[Customer] {
	return []table.Column[Customer]{
		{Key: "name", Label: "Name"},
		{Key: "email", Label: "Email"},
		{Key: "phone", Label: "Phone"},
		{Key: "location", Label: "Location"},
		{Key: "plan", Label: "Plan"},
		{Key: "status", Label: "Status"},
		{Key: "monthlyFee", Label: "Monthly fee", Render: func(c Customer) string { return shared.FormatAmount(c.MonthlyFee) }},
		{Key: "joinedAt", Label: "Joined"},
	}
}

// EngineerColumns are the /engineers table columns.
func EngineerColumns() []table.Column[Engineer] {
	return []table.Column[Engineer]{
		{Key: "name", Label: "Name"},
		{Key: "email", Label: "Email"},
		{Key: "phone", Label: "Phone"},
		{Key: "location", Label: "Location"},
		{Key: "specialization", Label: "Specialization"},
		{Key: "status", Label: "Status"},
		{Key: "activeJobs", Label: "Active jobs"},
		{Key: "rating", Label: "Rating", Render: func(e Engineer) string {
			if e.Rating == nil {
				return "-"
			}
			return strconv.FormatFloat(*e.Rating, 'f', 1, 64)
		}},
	}
}

// ComplaintColumns are the /complaints table columns.
func ComplaintColumns() []table.Column[Complaint] {
	return []table.Column[Complaint]{
		{Key: "title", Label: "Title"},
		{Key: "customer", Label: "Customer"},
		{Key: "location", Label: "Location"},
		{Key: "status", Label: "Status"},
		{Key: "priority", Label: "Priority"},
		{Key: "engineer", Label: "Engineer"},
		{Key: "createdAt", Label: "Opened", Render: func(c Complaint) string { return c.CreatedAt.Format("2006-01-02 15:04") }},
	}
}

// PlanColumns are the /plans table columns.
func PlanColumns() []table.Column[Plan] {
	return []table.Column[Plan]{
		{Key: "name", Label: "Name"},
		{Key: "speed", Label: "Speed", Render: func(p Plan) string { return fmt.Sprintf("%d Mbps", p.SpeedMbps) }},
		{Key: "price", Label: "Price", Render: func(p Plan) string { return shared.FormatAmount(p.Price) }},
		{Key: "quota", Label: "Quota"},
		{Key: "subscribers", Label: "Subscribers", Render: func(p Plan) string { return shared.FormatCount(p.Subscribers) }},
		{Key: "active", Label: "Active", Sortable: table.NotSortable(), Render: func(p Plan) string {
			if p.Active {
				return "yes"
			}
			return "no"
		}},
	}
}

// LeadColumns are the /leads table columns.
func LeadColumns() []table.Column[Lead] {
	return []table.Column[Lead]{
		{Key: "name", Label: "Name"},
		{Key: "email", Label: "Email"},
		{Key: "phone", Label: "Phone"},
		{Key: "location", Label: "Location"},
		{Key: "plan", Label: "Plan interest"},
		{Key: "stage", Label: "Stage"},
		{Key: "source", Label: "Source"},
		{Key: "createdAt", Label: "Created"},
	}
}
