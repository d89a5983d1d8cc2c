// Package directory holds the ISP's operational records (customers, engineers,
// complaints, plans and leads) and the sources they are read from.
package directory

import "time"

// Customer statuses.
const (
	CustomerActive    = "active"
	CustomerSuspended = "suspended"
	CustomerInactive  = "inactive"
)

// Complaint statuses.
const (
	ComplaintOpen       = "open"
	ComplaintInProgress = "in-progress"
	ComplaintResolved   = "resolved"
	ComplaintClosed     = "closed"
)

// Lead stages.
const (
	LeadNew       = "new"
	LeadContacted = "contacted"
	LeadSurvey    = "survey"
	LeadWon       = "won"
	LeadLost      = "lost"
)

// Customer is a subscriber account. It is listed under /users.
type Customer struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Location   string    `json:"location"`
	PlanName   string    `json:"planName"`
	Status     string    `json:"status"`
	MonthlyFee float64   `json:"monthlyFee"`
	JoinedAt   time.Time `json:"joinedAt"`
}

// Field implements table.Record.
func (c Customer) Field(key string) any {
	switch key {
	case "id":
		return c.ID
	case "name":
		return optional(c.Name)
	case "email":
		return optional(c.Email)
	case "phone":
		return optional(c.Phone)
	case "location":
		return optional(c.Location)
	case "plan":
		return optional(c.PlanName)
	case "status":
		return optional(c.Status)
	case "monthlyFee":
		return c.MonthlyFee
	case "joinedAt":
		if c.JoinedAt.IsZero() {
			return nil
		}
		return c.JoinedAt
	}
	return nil
}

// Engineer is a field technician.
type Engineer struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Location       string   `json:"location"`
	Specialization string   `json:"specialization"`
	Status         string   `json:"status"`
	ActiveJobs     int      `json:"activeJobs"`
	Rating         *float64 `json:"rating,omitempty"`
}

// Field implements table.Record.
func (e Engineer) Field(key string) any {
	switch key {
	case "id":
		return e.ID
	case "name":
		return optional(e.Name)
	case "email":
		return optional(e.Email)
	case "phone":
		return optional(e.Phone)
	case "location":
		return optional(e.Location)
	case "specialization":
		return optional(e.Specialization)
	case "status":
		return optional(e.Status)
	case "activeJobs":
		return e.ActiveJobs
	case "rating":
		if e.Rating == nil {
			return nil
		}
		return *e.Rating
	}
	return nil
}

// Complaint is a trouble ticket raised by a customer.
type Complaint struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	CustomerID   int64      `json:"customerId"`
	CustomerName string     `json:"customerName"`
	Location     string     `json:"location"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	EngineerName string     `json:"engineerName,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	ResolvedAt   *time.Time `json:"resolvedAt,omitempty"`
}

// Field implements table.Record.
func (c Complaint) Field(key string) any {
	switch key {
	case "id":
		return c.ID
	case "title":
		return optional(c.Title)
	case "description":
		return optional(c.Description)
	case "customer":
		return optional(c.CustomerName)
	case "location":
		return optional(c.Location)
	case "status":
		return optional(c.Status)
	case "priority":
		return optional(c.Priority)
	case "engineer":
		return optional(c.EngineerName)
	case "createdAt":
		if c.CreatedAt.IsZero() {
			return nil
		}
		return c.CreatedAt
	case "resolvedAt":
		if c.ResolvedAt == nil {
			return nil
		}
		return *c.ResolvedAt
	}
	return nil
}

// Plan is a sellable internet package.
type Plan struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	SpeedMbps   int     `json:"speedMbps"`
	Price       float64 `json:"price"`
	Quota       string  `json:"quota"`
	Subscribers int     `json:"subscribers"`
	Active      bool    `json:"active"`
}

// Field implements table.Record.
func (p Plan) Field(key string) any {
	switch key {
	case "id":
		return p.ID
	case "name":
		return optional(p.Name)
	case "speed":
		return p.SpeedMbps
	case "price":
		return p.Price
	case "quota":
		return optional(p.Quota)
	case "subscribers":
		return p.Subscribers
	case "active":
		return p.Active
	}
	return nil
}

// Lead is a prospective subscriber in the sales pipeline.
type Lead struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Location     string    `json:"location"`
	PlanInterest string    `json:"planInterest"`
	Stage        string    `json:"stage"`
	Source       string    `json:"source"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Field implements table.Record.
func (l Lead) Field(key string) any {
	switch key {
	case "id":
		return l.ID
	case "name":
		return optional(l.Name)
	case "email":
		return optional(l.Email)
	case "phone":
		return optional(l.Phone)
	case "location":
		return optional(l.Location)
	case "plan":
		return optional(l.PlanInterest)
	case "stage":
		return optional(l.Stage)
	case "source":
		return optional(l.Source)
	case "createdAt":
		if l.CreatedAt.IsZero() {
			return nil
		}
		return l.CreatedAt
	}
	return nil
}

// Count is one labelled bucket of a summary.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summary aggregates the dashboard figures.
type Summary struct {
	Customers          int     `json:"customers"`
	ActiveCustomers    int     `json:"activeCustomers"`
	Engineers          int     `json:"engineers"`
	OpenComplaints     int     `json:"openComplaints"`
	Leads              int     `json:"leads"`
	MonthlyRevenue     float64 `json:"monthlyRevenue"`
	ComplaintsByStatus []Count `json:"complaintsByStatus"`
	LeadsByStage       []Count `json:"leadsByStage"`
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}
