package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/fiberdesk/fiberdesk/internal/auth"
	"github.com/fiberdesk/fiberdesk/internal/directory"
	"github.com/fiberdesk/fiberdesk/internal/observability"
	"github.com/fiberdesk/fiberdesk/internal/rbac"
	"github.com/fiberdesk/fiberdesk/internal/search"
	"github.com/fiberdesk/fiberdesk/internal/shared"
	"github.com/fiberdesk/fiberdesk/jobs"
	"github.com/fiberdesk/fiberdesk/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	AuthMiddleware auth.Middleware
	RateLimit      int

	AuthHandler        *auth.Handler
	DirectoryHandler   *directory.Handler
	SearchHandler      *search.Handler
	SettingsHandler    *SettingsHandler
	PermissionsHandler *rbac.PermissionsHandler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics

	// ExposeAuthAPI mounts /api/auth when the dashboard issues its own tokens.
	ExposeAuthAPI bool
	// RequestLogging enables chi's access log.
	RequestLogging bool
}

// NewRouter constructs the chi.Router with FiberDesk defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
		Auth:           params.AuthMiddleware,
		RateLimit:      params.RateLimit,
	}) {
		r.Use(mw)
	}

	if params.RequestLogging {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		if !auth.SessionFromContext(r.Context()).IsAuthenticated() {
			http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, auth.DefaultFallback, http.StatusSeeOther)
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	if params.ExposeAuthAPI {
		r.Route("/api/auth", params.AuthHandler.MountAPI)
	}

	guarded := params.AuthMiddleware
	r.Group(func(r chi.Router) {
		r.Use(guarded.RequireRoute(auth.RouteGuard{Fallback: auth.DefaultFallback}))
		if h := params.DirectoryHandler; h != nil {
			r.Route("/dashboard", h.MountDashboard)
			r.Route("/users", h.MountUsers)
			r.Route("/engineers", h.MountEngineers)
			r.Route("/complaints", h.MountComplaints)
			r.Route("/plans", h.MountPlans)
			r.Route("/leads", h.MountLeads)
			r.Route("/analytics", h.MountAnalytics)
		}
		if params.SearchHandler != nil {
			r.Route("/search", params.SearchHandler.MountRoutes)
		}
		if params.PermissionsHandler != nil {
			r.Route("/roles", params.PermissionsHandler.MountRoutes)
		}
	})
	if params.SettingsHandler != nil {
		r.Group(func(r chi.Router) {
			r.Use(guarded.RequireRoles(guarded.RoleGuardFor("/settings")))
			r.Route("/settings", params.SettingsHandler.MountRoutes)
		})
	}

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
