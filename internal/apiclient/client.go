// Package apiclient talks to the FiberDesk REST API when the dashboard runs
// against a remote backend instead of its own database.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fiberdesk/fiberdesk/internal/auth"
	"github.com/fiberdesk/fiberdesk/internal/directory"
	"github.com/fiberdesk/fiberdesk/internal/shared"
	"github.com/fiberdesk/fiberdesk/internal/token"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultRetryWaitMin = 200 * time.Millisecond
	defaultRetryWaitMax = 2 * time.Second
	maxErrorBody        = 512
)

// ErrUnexpectedStatus is returned for any non-2xx answer.
var ErrUnexpectedStatus = errors.New("apiclient: unexpected status")

// Config configures the client.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	RetryMax int
	// ServiceToken is sent when the context carries no user credential, as in
	// background jobs.
	ServiceToken string
}

// TokenFunc returns the bearer credential for a request context.
type TokenFunc func(ctx context.Context) string

// Client reads directory collections and performs login and refresh calls.
// Collection reads are retried; login and refresh are sent exactly once.
type Client struct {
	reads   *http.Client
	once    *http.Client
	baseURL string
	service string
	bearer  TokenFunc
	logger  *slog.Logger
}

// New constructs a Client. bearer may be nil.
func New(cfg Config, bearer TokenFunc, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = defaultRetryWaitMin
	retryClient.RetryWaitMax = defaultRetryWaitMax
	retryClient.HTTPClient.Timeout = timeout
	retryClient.Logger = nil
	retryClient.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		retry, checkErr := retryablehttp.DefaultRetryPolicy(ctx, resp, err)
		if retry {
			logger.Debug("retrying api request", slog.Any("error", err))
		}
		return retry, checkErr
	}
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		reads:   retryClient.StandardClient(),
		once:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		service: cfg.ServiceToken,
		bearer:  bearer,
		logger:  logger,
	}
}

// Customers implements directory.Source.
func (c *Client) Customers(ctx context.Context) ([]directory.Customer, error) {
	return list[directory.Customer](ctx, c, "/api/users")
}

// Engineers implements directory.Source.
func (c *Client) Engineers(ctx context.Context) ([]directory.Engineer, error) {
	return list[directory.Engineer](ctx, c, "/api/engineers")
}

// Complaints implements directory.Source.
func (c *Client) Complaints(ctx context.Context) ([]directory.Complaint, error) {
	return list[directory.Complaint](ctx, c, "/api/complaints")
}

// Plans implements directory.Source.
func (c *Client) Plans(ctx context.Context) ([]directory.Plan, error) {
	return list[directory.Plan](ctx, c, "/api/plans")
}

// Leads implements directory.Source.
func (c *Client) Leads(ctx context.Context) ([]directory.Lead, error) {
	return list[directory.Lead](ctx, c, "/api/leads")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Authenticate implements auth.Authenticator against POST /api/auth/login.
func (c *Client) Authenticate(ctx context.Context, email, password string) (*auth.User, error) {
	var user auth.User
	err := c.postJSON(ctx, "/api/auth/login", loginRequest{Email: email, Password: password}, &user)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && (statusErr.Code == http.StatusUnauthorized || statusErr.Code == http.StatusBadRequest) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.AccessToken == "" {
		return nil, fmt.Errorf("apiclient: login response without access token")
	}
	return &user, nil
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// Refresh implements token.RefreshEndpoint against POST /api/auth/refresh.
// Any non-2xx status or transport error is a failure.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	var body refreshResponse
	if err := c.postJSON(ctx, "/api/auth/refresh", refreshRequest{RefreshToken: refreshToken}, &body); err != nil {
		return "", err
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("apiclient: refresh response without access token")
	}
	return body.AccessToken, nil
}

// StatusError reports a non-2xx answer.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("apiclient: %s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Unwrap lets callers match ErrUnexpectedStatus.
func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

func list[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var out []T
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("apiclient: create request: %w", err)
	}
	c.authorize(ctx, req)
	return c.do(c.reads, req, dest)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, dest any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("apiclient: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("apiclient: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(c.once, req, dest)
}

func (c *Client) do(client *http.Client, req *http.Request, dest any) error {
	req.Header.Set("Accept", "application/json")
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("apiclient: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("api request", slog.String("method", req.Method), slog.String("path", req.URL.Path),
		slog.Int("status", resp.StatusCode), slog.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Method: req.Method, Path: req.URL.Path, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("apiclient: decode %s: %w", req.URL.Path, err)
	}
	return nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) {
	tok := ""
	if c.bearer != nil {
		tok = c.bearer(ctx)
	}
	if tok == "" {
		tok = c.service
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
}

var (
	_ directory.Source      = (*Client)(nil)
	_ auth.Authenticator    = (*Client)(nil)
	_ token.RefreshEndpoint = (*Client)(nil)
)
