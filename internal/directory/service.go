package directory

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/fiberdesk/fiberdesk/internal/shared"
)

// Service exposes directory reads to handlers.
type Service struct {
	source Source
}

// NewService constructs the service.
func NewService(source Source) *Service {
	return &Service{source: source}
}

// Source returns the underlying source.
func (s *Service) Source() Source {
	return s.source
}

// Customers lists every customer.
func (s *Service) Customers(ctx context.Context) ([]Customer, error) {
	return s.source.Customers(ctx)
}

// Engineers lists every engineer.
func (s *Service) Engineers(ctx context.Context) ([]Engineer, error) {
	return s.source.Engineers(ctx)
}

// Complaints lists every complaint.
func (s *Service) Complaints(ctx context.Context) ([]Complaint, error) {
	return s.source.Complaints(ctx)
}

// Plans lists every plan.
func (s *Service) Plans(ctx context.Context) ([]Plan, error) {
	return s.source.Plans(ctx)
}

// Leads lists every lead.
func (s *Service) Leads(ctx context.Context) ([]Lead, error) {
	return s.source.Leads(ctx)
}

// FindCustomer returns the customer with id or shared.ErrNotFound.
func (s *Service) FindCustomer(ctx context.Context, id int64) (Customer, error) {
	return find(ctx, s.source.Customers, func(c Customer) bool { return c.ID == id })
}

// FindEngineer returns the engineer with id or shared.ErrNotFound.
func (s *Service) FindEngineer(ctx context.Context, id int64) (Engineer, error) {
	return find(ctx, s.source.Engineers, func(e Engineer) bool { return e.ID == id })
}

// FindComplaint returns the complaint with id or shared.ErrNotFound.
func (s *Service) FindComplaint(ctx context.Context, id int64) (Complaint, error) {
	return find(ctx, s.source.Complaints, func(c Complaint) bool { return c.ID == id })
}

// FindPlan returns the plan with id or shared.ErrNotFound.
func (s *Service) FindPlan(ctx context.Context, id int64) (Plan, error) {
	return find(ctx, s.source.Plans, func(p Plan) bool { return p.ID == id })
}

// FindLead returns the lead with id or shared.ErrNotFound.
func (s *Service) FindLead(ctx context.Context, id int64) (Lead, error) {
	return find(ctx, s.source.Leads, func(l Lead) bool { return l.ID == id })
}

// Summary loads the collections concurrently and aggregates them.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	var (
		customers  []Customer
		engineers  []Engineer
		complaints []Complaint
		leads      []Lead
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { customers, err = s.source.Customers(gctx); return })
	g.Go(func() (err error) { engineers, err = s.source.Engineers(gctx); return })
	g.Go(func() (err error) { complaints, err = s.source.Complaints(gctx); return })
	g.Go(func() (err error) { leads, err = s.source.Leads(gctx); return })
	if err := g.Wait(); err != nil {
		return Summary{}, fmt.Errorf("directory: summary: %w", err)
	}

	summary := Summary{
		Customers: len(customers),
		Engineers: len(engineers),
		Leads:     len(leads),
	}
	for _, c := range customers {
		if c.Status == CustomerActive {
			summary.ActiveCustomers++
			summary.MonthlyRevenue += c.MonthlyFee
		}
	}
	byStatus := make(map[string]int)
	for _, c := range complaints {
		byStatus[c.Status]++
		if c.Status == ComplaintOpen || c.Status == ComplaintInProgress {
			summary.OpenComplaints++
		}
	}
	byStage := make(map[string]int)
	for _, l := range leads {
		byStage[l.Stage]++
	}
	summary.ComplaintsByStatus = counts([]string{ComplaintOpen, ComplaintInProgress, ComplaintResolved, ComplaintClosed}, byStatus)
	summary.LeadsByStage = counts([]string{LeadNew, LeadContacted, LeadSurvey, LeadWon, LeadLost}, byStage)
	return summary, nil
}

func counts(order []string, tally map[string]int) []Count {
	out := make([]Count, 0, len(order))
	for _, label := range order {
		out = append(out, Count{Label: label, Count: tally[label]})
	}
	return out
}

func find[T any](ctx context.Context, list func(context.Context) ([]T, error), match func(T) bool) (T, error) {
	var zero T
	items, err := list(ctx)
	if err != nil {
		return zero, err
	}
	for _, item := range items {
		if match(item) {
			return item, nil
		}
	}
	return zero, shared.ErrNotFound
}
