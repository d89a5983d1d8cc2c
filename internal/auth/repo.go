package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/fiberdesk/fiberdesk/internal/rbac"
	"github.com/fiberdesk/fiberdesk/internal/shared"
)

// AccountRepository looks up staff accounts for local authentication.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
}

// PGAccounts implements AccountRepository using PostgreSQL.
type PGAccounts struct {
	pool *pgxpool.Pool
}

// NewPGAccounts constructs a PostgreSQL account repository.
func NewPGAccounts(pool *pgxpool.Pool) *PGAccounts {
	return &PGAccounts{pool: pool}
}

// FindByEmail fetches an account by email.
func (r *PGAccounts) FindByEmail(ctx context.Context, email string) (*Account, error) {
	const query = `SELECT id, name, email, role, password_hash, is_active, created_at, updated_at
FROM staff_accounts WHERE lower(email) = lower($1)`
	var (
		account Account
		role    string
	)
	err := r.pool.QueryRow(ctx, query, strings.TrimSpace(email)).Scan(
		&account.ID, &account.Name, &account.Email, &role, &account.PasswordHash,
		&account.IsActive, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("auth: find account: %w", err)
	}
	parsed, ok := rbac.ParseRole(role)
	if !ok {
		return nil, fmt.Errorf("auth: account %d has unknown role %q", account.ID, role)
	}
	account.Role = parsed
	return &account, nil
}

// MemoryAccounts is an in-memory AccountRepository keyed by lower-cased email.
type MemoryAccounts struct {
	byEmail map[string]Account
}

// NewMemoryAccounts indexes accounts by email.
func NewMemoryAccounts(accounts ...Account) *MemoryAccounts {
	m := &MemoryAccounts{byEmail: make(map[string]Account, len(accounts))}
	for _, a := range accounts {
		m.byEmail[strings.ToLower(a.Email)] = a
	}
	return m
}

// FindByEmail implements AccountRepository.
func (m *MemoryAccounts) FindByEmail(_ context.Context, email string) (*Account, error) {
	account, ok := m.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &account, nil
}

// DemoAccounts returns one active account per role, all sharing password.
func DemoAccounts(password string) ([]Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash demo password: %w", err)
	}
	now := time.Now().UTC()
	people := []struct {
		name  string
		email string
		role  rbac.Role
	}{
		{"Sari Wulandari", "superadmin@fiberdesk.local", rbac.RoleSuperAdmin},
		{"Bima Pratama", "admin@fiberdesk.local", rbac.RoleAdmin},
		{"Dewi Lestari", "manager@fiberdesk.local", rbac.RoleManager},
		{"Agus Setiawan", "agent@fiberdesk.local", rbac.RoleAgent},
	}
	accounts := make([]Account, 0, len(people))
	for i, p := range people {
		accounts = append(accounts, Account{
			ID:           int64(i + 1),
			Name:         p.name,
			Email:        p.email,
			Role:         p.role,
			PasswordHash: string(hash),
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return accounts, nil
}

var (
	_ AccountRepository = (*PGAccounts)(nil)
	_ AccountRepository = (*MemoryAccounts)(nil)
)
