package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fiberdesk/fiberdesk/internal/platform/httpx"
	"github.com/fiberdesk/fiberdesk/internal/shared"
	"github.com/fiberdesk/fiberdesk/internal/token"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger        *slog.Logger
	authenticator Authenticator
	refresher     token.RefreshEndpoint
	pages         Renderer
	sessions      *shared.SessionManager
	validator     *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, sessions *shared.SessionManager, authenticator Authenticator, refresher token.RefreshEndpoint, pages Renderer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:        logger,
		authenticator: authenticator,
		refresher:     refresher,
		pages:         pages,
		sessions:      sessions,
		validator:     validator.New(),
	}
}

// MountRoutes registers the browser auth routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Post("/refresh", h.handleRefresh)
}

// MountAPI registers the JSON login and refresh endpoints other clients of the
// dashboard API call.
func (h *Handler) MountAPI(r chi.Router) {
	r.Post("/login", h.apiLogin)
	r.Post("/refresh", h.apiRefresh)
}

type loginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginPageData struct {
	Email  string
	Next   string
	Errors map[string]string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if SessionFromContext(r.Context()).IsAuthenticated() {
		http.Redirect(w, r, SafeNext(next), http.StatusSeeOther)
		return
	}
	h.pages.Render(w, r, http.StatusOK, "pages/login.html", "Sign in", loginPageData{Next: next})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	next := r.PostFormValue("next")
	errs := h.validate(form)

	if len(errs) == 0 {
		user, err := h.authenticator.Authenticate(r.Context(), form.Email, form.Password)
		if err == nil {
			SessionFromContext(r.Context()).Login(*user)
			h.logger.Info("staff signed in", slog.Int64("user_id", user.ID), slog.String("role", string(user.Role)))
			RedirectWithFlash(w, r, SafeNext(next), "success", "Welcome back, "+user.Name)
			return
		}
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			h.logger.Error("authenticate", slog.Any("error", err))
		}
		errs["general"] = shared.UserSafeMessage(shared.ErrInvalidCredentials)
	}

	h.pages.Render(w, r, http.StatusBadRequest, "pages/login.html", "Sign in", loginPageData{Email: form.Email, Next: next, Errors: errs})
}

// handleLogout clears the auth record and drops the web session with it, so a
// replayed cookie starts from an empty session.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	SessionFromContext(r.Context()).Logout()
	if sess := shared.SessionFromContext(r.Context()); sess != nil && h.sessions != nil {
		h.sessions.Destroy(sess)
	}
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s := SessionFromContext(r.Context())
	if _, ok := s.User(); !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}
	tok, ok := s.Refresh(r.Context(), h.refresher)
	if !ok {
		s.Logout()
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "session expired")
		return
	}
	httpx.JSON(w, http.StatusOK, refreshResponse{AccessToken: tok})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

func (h *Handler) apiLogin(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if errs := h.validate(form); len(errs) > 0 {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	user, err := h.authenticator.Authenticate(r.Context(), form.Email, form.Password)
	if err != nil {
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			h.logger.Error("api authenticate", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) apiRefresh(w http.ResponseWriter, r *http.Request) {
	var body refreshRequest
	if err := httpx.DecodeJSON(r, &body); err != nil || h.validator.Struct(body) != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "refreshToken required")
		return
	}
	tok, err := h.refresher.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		h.logger.Info("refresh rejected", slog.Any("error", err))
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "refresh token rejected")
		return
	}
	httpx.JSON(w, http.StatusOK, refreshResponse{AccessToken: tok})
}

func (h *Handler) validate(form loginForm) map[string]string {
	errs := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs {
				errs[fieldErr.Field()] = fieldErr.Error()
			}
		}
	}
	return errs
}
