package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/fiberdesk/fiberdesk/internal/shared"
	"github.com/fiberdesk/fiberdesk/internal/token"
)

// Authenticator turns credentials into a User carrying its tokens.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*User, error)
}

// Service authenticates against local staff accounts and issues tokens.
type Service struct {
	accounts AccountRepository
	issuer   *token.Issuer
}

// NewService constructs a new Service.
func NewService(accounts AccountRepository, issuer *token.Issuer) *Service {
	return &Service{accounts: accounts, issuer: issuer}
}

// Authenticate validates email/password credentials and mints a token pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	pair, err := s.issuer.Issue(token.Subject{ID: account.ID, Name: account.Name, Email: account.Email, Role: string(account.Role)})
	if err != nil {
		return nil, fmt.Errorf("auth: issue tokens: %w", err)
	}
	return &User{
		ID:           account.ID,
		Name:         account.Name,
		Email:        account.Email,
		Role:         account.Role,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Refresh implements token.RefreshEndpoint with the local issuer.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	return s.issuer.Refresh(ctx, refreshToken)
}

var (
	_ Authenticator         = (*Service)(nil)
	_ token.RefreshEndpoint = (*Service)(nil)
)
