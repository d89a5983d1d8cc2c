package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/fiberdesk/fiberdesk/internal/auth"
	"github.com/fiberdesk/fiberdesk/internal/rbac"
	"github.com/fiberdesk/fiberdesk/internal/shared"
	"github.com/fiberdesk/fiberdesk/jobs"
)

// RefreshEnqueuer schedules a directory refresh.
type RefreshEnqueuer interface {
	EnqueueDirectoryRefresh(ctx context.Context, payload jobs.DirectoryRefreshPayload) (*asynq.TaskInfo, error)
}

// SettingsHandler serves the settings page and its actions.
type SettingsHandler struct {
	logger   *slog.Logger
	config   *Config
	pages    auth.Renderer
	rbac     rbac.Middleware
	enqueuer RefreshEnqueuer
}

// NewSettingsHandler constructs the handler. enqueuer may be nil when no
// worker queue is configured.
func NewSettingsHandler(logger *slog.Logger, cfg *Config, pages auth.Renderer, rbac rbac.Middleware, enqueuer RefreshEnqueuer) *SettingsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsHandler{logger: logger, config: cfg, pages: pages, rbac: rbac, enqueuer: enqueuer}
}

// MountRoutes registers /settings routes.
func (h *SettingsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermManageSettings))
		r.Get("/", h.show)
		r.Post("/refresh-data", h.refreshData)
	})
}

type settingsPage struct {
	DataSource string
	AuthMode   string
	PerPage    int
}

func (h *SettingsHandler) show(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, http.StatusOK, "pages/settings.html", "Settings", settingsPage{
		DataSource: h.config.DataSource,
		AuthMode:   h.config.AuthMode,
		PerPage:    h.config.ItemsPerPage,
	})
}

func (h *SettingsHandler) refreshData(w http.ResponseWriter, r *http.Request) {
	if h.enqueuer == nil {
		auth.RedirectWithFlash(w, r, "/settings", "warning", "Background jobs are not configured.")
		return
	}
	payload := jobs.DirectoryRefreshPayload{Reason: "manual"}
	if user, ok := auth.SessionFromContext(r.Context()).User(); ok {
		payload.RequestedBy = user.Email
	}
	_, err := h.enqueuer.EnqueueDirectoryRefresh(r.Context(), payload)
	switch {
	case err == nil:
		h.logger.Info("directory refresh enqueued", slog.String("requested_by", payload.RequestedBy))
		auth.RedirectWithFlash(w, r, "/settings", "success", "Data refresh queued.")
	case errors.Is(err, asynq.ErrTaskIDConflict):
		auth.RedirectWithFlash(w, r, "/settings", "info", "A data refresh is already queued.")
	default:
		h.logger.Error("enqueue directory refresh", slog.Any("error", err))
		auth.RedirectWithFlash(w, r, "/settings", "error", "Could not queue the data refresh.")
	}
}
