package token

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

// ErrRefreshRejected is returned when a refresh token cannot be exchanged.
var ErrRefreshRejected = errors.New("token: refresh rejected")

// Subject identifies who a token is issued for.
type Subject struct {
	ID    int64
	Name  string
	Email string
	Role  string
}

// Claims is the payload of tokens minted by Issuer.
type Claims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	Kind  string `json:"typ"`
	jwt.RegisteredClaims
}

// Pair is an access and refresh token minted together.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Issuer mints and verifies HS256 tokens for local authentication.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer constructs an Issuer.
func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

// Issue mints a fresh token pair for subject.
func (i *Issuer) Issue(subject Subject) (Pair, error) {
	access, err := i.sign(subject, kindAccess, i.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := i.sign(subject, kindRefresh, i.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// Exchange verifies a refresh token and mints a new access token for the same
// subject.
func (i *Issuer) Exchange(refreshToken string) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(refreshToken, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRefreshRejected, err)
	}
	if claims.Kind != kindRefresh {
		return "", fmt.Errorf("%w: not a refresh token", ErrRefreshRejected)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: bad subject", ErrRefreshRejected)
	}
	return i.sign(Subject{ID: id, Name: claims.Name, Email: claims.Email, Role: claims.Role}, kindAccess, i.accessTTL)
}

func (i *Issuer) sign(subject Subject, kind string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		Name:  subject.Name,
		Email: subject.Email,
		Role:  subject.Role,
		Kind:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(subject.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Refresh implements RefreshEndpoint so a locally authenticating deployment
// can refresh without a remote API.
func (i *Issuer) Refresh(_ context.Context, refreshToken string) (string, error) {
	return i.Exchange(refreshToken)
}
