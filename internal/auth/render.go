package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/fiberdesk/fiberdesk/internal/shared"
	"github.com/fiberdesk/fiberdesk/internal/view"
)

var navigation = []view.NavItem{
	{Label: "Dashboard", Href: "/dashboard"},
	{Label: "Users", Href: "/users"},
	{Label: "Engineers", Href: "/engineers"},
	{Label: "Complaints", Href: "/complaints"},
	{Label: "Plans", Href: "/plans"},
	{Label: "Leads", Href: "/leads"},
	{Label: "Analytics", Href: "/analytics"},
	{Label: "Settings", Href: "/settings"},
	{Label: "Roles", Href: "/roles"},
}

// ViewerFor builds the page chrome for s, listing only reachable sections.
func ViewerFor(s *Session, currentPath string) *view.Viewer {
	user, ok := s.User()
	if !ok || !s.IsAuthenticated() {
		return nil
	}
	viewer := &view.Viewer{Name: user.Name, Email: user.Email, Role: string(user.Role)}
	for _, item := range navigation {
		if !s.CanAccessRoute(item.Href) {
			continue
		}
		item.Active = currentPath == item.Href || strings.HasPrefix(currentPath, item.Href+"/")
		viewer.Nav = append(viewer.Nav, item)
	}
	return viewer
}

// Renderer renders full pages with the session chrome, CSRF token and flash.
type Renderer struct {
	Templates *view.Engine
	CSRF      *shared.CSRFManager
	Logger    *slog.Logger
}

// Render writes template name with status.
func (p Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	ctx := r.Context()
	sess := shared.SessionFromContext(ctx)
	csrfToken := ""
	if sess != nil && p.CSRF != nil {
		csrfToken, _ = p.CSRF.EnsureToken(ctx, sess)
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       shared.PopFlashFromContext(ctx),
		CurrentPath: r.URL.Path,
		Viewer:      ViewerFor(SessionFromContext(ctx), r.URL.Path),
		Data:        data,
	}
	w.WriteHeader(status)
	if err := p.Templates.Render(w, name, viewData); err != nil {
		p.logger().Error("render template", slog.String("template", name), slog.Any("error", err))
	}
}

// RedirectWithFlash queues a flash message and redirects.
func RedirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func (p Renderer) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
