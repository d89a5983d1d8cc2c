package auth

import (
	"time"

	"github.com/fiberdesk/fiberdesk/internal/rbac"
)

// User is the authenticated staff member as returned by the login endpoint.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         rbac.Role `json:"role"`
	AccessToken  string    `json:"accessToken,omitempty"`
	RefreshToken string    `json:"refreshToken,omitempty"`
}

// Account is a staff login record held by an AccountRepository.
type Account struct {
	ID           int64
	Name         string
	Email        string
	Role         rbac.Role
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
