package directory

import (
	"context"
	"slices"
)

// Source loads whole entity collections.
type Source interface {
	Customers(ctx context.Context) ([]Customer, error)
	Engineers(ctx context.Context) ([]Engineer, error)
	Complaints(ctx context.Context) ([]Complaint, error)
	Plans(ctx context.Context) ([]Plan, error)
	Leads(ctx context.Context) ([]Lead, error)
}

// MemorySource serves fixed in-memory collections.
type MemorySource struct {
	customers  []Customer
	engineers  []Engineer
	complaints []Complaint
	plans      []Plan
	leads      []Lead
}

// NewMemorySource wraps the given collections.
func NewMemorySource(customers []Customer, engineers []Engineer, complaints []Complaint, plans []Plan, leads []Lead) *MemorySource {
	return &MemorySource{customers: customers, engineers: engineers, complaints: complaints, plans: plans, leads: leads}
}

// Customers implements Source.
func (m *MemorySource) Customers(context.Context) ([]Customer, error) {
	return slices.Clone(m.customers), nil
}

// Engineers implements Source.
func (m *MemorySource) Engineers(context.Context) ([]Engineer, error) {
	return slices.Clone(m.engineers), nil
}

// Complaints implements Source.
func (m *MemorySource) Complaints(context.Context) ([]Complaint, error) {
	return slices.Clone(m.complaints), nil
}

// Plans implements Source.
func (m *MemorySource) Plans(context.Context) ([]Plan, error) {
	return slices.Clone(m.plans), nil
}

// Leads implements Source.
func (m *MemorySource) Leads(context.Context) ([]Lead, error) {
	return slices.Clone(m.leads), nil
}

var _ Source = (*MemorySource)(nil)
