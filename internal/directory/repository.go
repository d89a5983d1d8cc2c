package directory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository reads the directory from PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Customers implements Source.
func (r *PGRepository) Customers(ctx context.Context) ([]Customer, error) {
	const query = `SELECT c.id, c.name, c.email, coalesce(c.phone, ''), coalesce(c.location, ''),
	coalesce(p.name, ''), c.status, coalesce(p.price, 0), c.joined_at
FROM customers c LEFT JOIN plans p ON p.id = c.plan_id
ORDER BY c.id`
	return collect(ctx, r.pool, "customers", query, func(row pgx.Row) (Customer, error) {
		var c Customer
		err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Location, &c.PlanName, &c.Status, &c.MonthlyFee, &c.JoinedAt)
		return c, err
	})
}

// Engineers implements Source.
func (r *PGRepository) Engineers(ctx context.Context) ([]Engineer, error) {
	const query = `SELECT e.id, e.name, e.email, coalesce(e.phone, ''), coalesce(e.location, ''),
	coalesce(e.specialization, ''), e.status,
	(SELECT count(*) FROM complaints x WHERE x.engineer_id = e.id AND x.status = 'in-progress'),
	e.rating
FROM engineers e
ORDER BY e.id`
	return collect(ctx, r.pool, "engineers", query, func(row pgx.Row) (Engineer, error) {
		var e Engineer
		err := row.Scan(&e.ID, &e.Name, &e.Email, &e.Phone, &e.Location, &e.Specialization, &e.Status, &e.ActiveJobs, &e.Rating)
		return e, err
	})
}

// Complaints implements Source.
func (r *PGRepository) Complaints(ctx context.Context) ([]Complaint, error) {
	const query = `SELECT x.id, x.title, coalesce(x.description, ''), x.customer_id, c.name,
	coalesce(c.location, ''), x.status, x.priority, e.name, x.created_at, x.resolved_at
FROM complaints x
JOIN customers c ON c.id = x.customer_id
LEFT JOIN engineers e ON e.id = x.engineer_id
ORDER BY x.created_at DESC, x.id`
	return collect(ctx, r.pool, "complaints", query, func(row pgx.Row) (Complaint, error) {
		var (
			c        Complaint
			engineer *string
		)
		err := row.Scan(&c.ID, &c.Title, &c.Description, &c.CustomerID, &c.CustomerName, &c.Location,
			&c.Status, &c.Priority, &engineer, &c.CreatedAt, &c.ResolvedAt)
		if engineer != nil {
			c.EngineerName = *engineer
		}
		return c, err
	})
}

// Plans implements Source.
func (r *PGRepository) Plans(ctx context.Context) ([]Plan, error) {
	const query = `SELECT p.id, p.name, p.speed_mbps, p.price, p.quota,
	(SELECT count(*) FROM customers c WHERE c.plan_id = p.id AND c.status = 'active'), p.is_active
FROM plans p
ORDER BY p.speed_mbps, p.id`
	return collect(ctx, r.pool, "plans", query, func(row pgx.Row) (Plan, error) {
		var p Plan
		err := row.Scan(&p.ID, &p.Name, &p.SpeedMbps, &p.Price, &p.Quota, &p.Subscribers, &p.Active)
		return p, err
	})
}

// Leads implements Source.
func (r *PGRepository) Leads(ctx context.Context) ([]Lead, error) {
	const query = `SELECT l.id, l.name, coalesce(l.email, ''), coalesce(l.phone, ''), coalesce(l.location, ''),
	coalesce(p.name, ''), l.stage, coalesce(l.source, ''), l.created_at
FROM leads l LEFT JOIN plans p ON p.id = l.plan_id
ORDER BY l.created_at DESC, l.id`
	return collect(ctx, r.pool, "leads", query, func(row pgx.Row) (Lead, error) {
		var l Lead
		err := row.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Location, &l.PlanInterest, &l.Stage, &l.Source, &l.CreatedAt)
		return l, err
	})
}

func collect[T any](ctx context.Context, pool *pgxpool.Pool, what, query string, scan func(pgx.Row) (T, error)) ([]T, error) {
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("directory: query %s: %w", what, err)
	}
	defer rows.Close()
	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("directory: scan %s: %w", what, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("directory: iterate %s: %w", what, err)
	}
	return out, nil
}

var _ Source = (*PGRepository)(nil)
