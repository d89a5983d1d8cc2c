package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/fiberdesk/fiberdesk/internal/apiclient"
	"github.com/fiberdesk/fiberdesk/internal/auth"
	"github.com/fiberdesk/fiberdesk/internal/directory"
	"github.com/fiberdesk/fiberdesk/internal/observability"
	"github.com/fiberdesk/fiberdesk/internal/rbac"
	"github.com/fiberdesk/fiberdesk/internal/search"
	"github.com/fiberdesk/fiberdesk/internal/shared"
	"github.com/fiberdesk/fiberdesk/internal/token"
	"github.com/fiberdesk/fiberdesk/internal/view"
	"github.com/fiberdesk/fiberdesk/jobs"
)

// SessionCookieName names the dashboard session cookie.
const SessionCookieName = "fiberdesk_session"

// Dependencies are the connections main opens before the server is built.
type Dependencies struct {
	Config  *Config
	Logger  *slog.Logger
	Redis   *redis.Client
	Pool    *pgxpool.Pool
	Metrics *observability.Metrics
	// Jobs and Inspector are optional; without them the settings refresh
	// action reports that jobs are unavailable.
	Jobs      RefreshEnqueuer
	Inspector *asynq.Inspector
	// Now stamps the in-memory fixtures; time.Now when nil.
	Now func() time.Time
}

// NewAPIClient builds the REST client for remote auth or the api data source.
// It forwards the signed-in user's access token.
func NewAPIClient(cfg *Config, logger *slog.Logger) *apiclient.Client {
	bearer := func(ctx context.Context) string {
		return auth.SessionFromContext(ctx).AccessToken()
	}
	return apiclient.New(apiclient.Config{
		BaseURL:      cfg.APIBaseURL,
		Timeout:      cfg.APITimeout,
		RetryMax:     cfg.APIRetryMax,
		ServiceToken: cfg.APIServiceToken,
	}, bearer, logger)
}

// NewDirectorySource picks the configured backing source and puts the Redis
// cache in front of it.
func NewDirectorySource(deps Dependencies, api *apiclient.Client) (*directory.CachedSource, error) {
	cfg := deps.Config
	var next directory.Source
	switch cfg.DataSource {
	case DataSourceMemory:
		now := time.Now
		if deps.Now != nil {
			now = deps.Now
		}
		next = directory.Fixtures(now())
	case DataSourcePostgres:
		if deps.Pool == nil {
			return nil, errors.New("postgres data source requires a database pool")
		}
		next = directory.NewPGRepository(deps.Pool)
	case DataSourceAPI:
		if api == nil {
			return nil, errors.New("api data source requires an api client")
		}
		next = api
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.DataSource)
	}
	cache := directory.NewCache(deps.Redis, cfg.CacheTTL)
	return directory.NewCachedSource(next, cache, deps.Logger), nil
}

// authBackend returns the authenticator and the refresh endpoint for the
// configured auth mode.
func authBackend(ctx context.Context, deps Dependencies, api *apiclient.Client) (auth.Authenticator, token.RefreshEndpoint, error) {
	cfg := deps.Config
	if cfg.AuthMode == AuthModeRemote {
		if api == nil {
			return nil, nil, errors.New("remote auth requires an api client")
		}
		return api, api, nil
	}

	var accounts auth.AccountRepository
	if cfg.DataSource == DataSourcePostgres && deps.Pool != nil {
		accounts = auth.NewPGAccounts(deps.Pool)
	} else {
		demo, err := auth.DemoAccounts(cfg.SeedPassword)
		if err != nil {
			return nil, nil, err
		}
		accounts = auth.NewMemoryAccounts(demo...)
		deps.Logger.InfoContext(ctx, "using demo staff accounts", slog.Int("accounts", len(demo)))
	}
	service := auth.NewService(accounts, token.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL))
	return service, service, nil
}

// NewServer assembles every handler and returns the dashboard's router.
func NewServer(ctx context.Context, deps Dependencies) (http.Handler, error) {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
		deps.Logger = logger
	}

	templates, err := view.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	sessionManager := shared.NewSessionManager(deps.Redis, SessionCookieName, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	pages := auth.Renderer{Templates: templates, CSRF: csrfManager, Logger: logger}
	policy := rbac.DefaultPolicy()

	var api *apiclient.Client
	if cfg.AuthMode == AuthModeRemote || cfg.DataSource == DataSourceAPI {
		api = NewAPIClient(cfg, logger)
	}
	authenticator, refresher, err := authBackend(ctx, deps, api)
	if err != nil {
		return nil, err
	}
	source, err := NewDirectorySource(deps, api)
	if err != nil {
		return nil, err
	}

	authMiddleware := auth.Middleware{Policy: policy, Refresh: refresher, Logger: logger, Recorder: deps.Metrics}
	rbacMiddleware := rbac.Middleware{Policy: policy, Resolve: auth.ResolveRole, Logger: logger}

	directoryService := directory.NewService(source)

	return NewRouter(RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		AuthMiddleware: authMiddleware,

		AuthHandler:        auth.NewHandler(logger, sessionManager, authenticator, refresher, pages),
		DirectoryHandler:   directory.NewHandler(logger, directoryService, pages, rbacMiddleware, cfg.ItemsPerPage),
		SearchHandler:      search.NewHandler(logger, source, pages, deps.Metrics, cfg.SearchDebounce),
		SettingsHandler:    NewSettingsHandler(logger, cfg, pages, rbacMiddleware, deps.Jobs),
		PermissionsHandler: rbac.NewPermissionsHandler(policy, pages, rbacMiddleware),
		JobHandler:         jobs.NewHandler(deps.Inspector, logger),
		Metrics:            deps.Metrics,

		ExposeAuthAPI:  cfg.AuthMode == AuthModeLocal,
		RequestLogging: !InTestMode(),
	}), nil
}
