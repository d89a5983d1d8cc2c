package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fiberdesk/fiberdesk/internal/auth"
	"github.com/fiberdesk/fiberdesk/internal/platform/httpx"
	"github.com/fiberdesk/fiberdesk/internal/rbac"
	"github.com/fiberdesk/fiberdesk/internal/shared"
	"github.com/fiberdesk/fiberdesk/internal/table"
)

// Handler serves the entity list, detail and export pages plus the dashboard.
type Handler struct {
	logger  *slog.Logger
	service *Service
	pages   auth.Renderer
	rbac    rbac.Middleware
	perPage int
}

// NewHandler builds the handler. perPage <= 0 uses the table default.
func NewHandler(logger *slog.Logger, service *Service, pages auth.Renderer, rbac rbac.Middleware, perPage int) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, pages: pages, rbac: rbac, perPage: perPage}
}

// MountUsers registers /users routes.
func (h *Handler) MountUsers(r chi.Router) {
	mountSection(h, r, section[Customer]{
		heading: "Users", basePath: "/users", detailLabel: "user",
		view: shared.PermViewUsers, manage: shared.PermManageUsers,
		columns: CustomerColumns, list: h.service.Customers, find: h.service.FindCustomer,
		id: func(c Customer) int64 { return c.ID },
		detail: func(c Customer) detailPage {
			return detailPage{Heading: c.Name, Status: c.Status, Fields: []field{
				{"Email", c.Email}, {"Phone", c.Phone}, {"Location", c.Location}, {"Plan", c.PlanName},
				{"Monthly fee", shared.FormatAmount(c.MonthlyFee)}, {"Joined", formatDay(c.JoinedAt)},
			}}
		},
	})
}

// MountEngineers registers /engineers routes.
func (h *Handler) MountEngineers(r chi.Router) {
	mountSection(h, r, section[Engineer]{
		heading: "Engineers", basePath: "/engineers", detailLabel: "engineer",
		view: shared.PermViewEngineers, manage: shared.PermManageEngineers,
		columns: EngineerColumns, list: h.service.Engineers, find: h.service.FindEngineer,
		id: func(e Engineer) int64 { return e.ID },
		detail: func(e Engineer) detailPage {
			rating := "not rated"
			if e.Rating != nil {
				rating = strconv.FormatFloat(*e.Rating, 'f', 1, 64)
			}
			return detailPage{Heading: e.Name, Status: e.Status, Fields: []field{
				{"Email", e.Email}, {"Phone", e.Phone}, {"Location", e.Location},
				{"Specialization", e.Specialization}, {"Active jobs", strconv.Itoa(e.ActiveJobs)}, {"Rating", rating},
			}}
		},
	})
}

// MountComplaints registers /complaints routes.
func (h *Handler) MountComplaints(r chi.Router) {
	mountSection(h, r, section[Complaint]{
		heading: "Complaints", basePath: "/complaints", detailLabel: "complaint",
		view: shared.PermViewComplaints, manage: shared.PermManageComplaints,
		columns: ComplaintColumns, list: h.service.Complaints, find: h.service.FindComplaint,
		id: func(c Complaint) int64 { return c.ID },
		detail: func(c Complaint) detailPage {
			resolved := "-"
			if c.ResolvedAt != nil {
				resolved = c.ResolvedAt.Format("2006-01-02 15:04")
			}
			engineer := c.EngineerName
			if engineer == "" {
				engineer = "unassigned"
			}
			return detailPage{Heading: c.Title, Status: c.Status, Priority: c.Priority, Fields: []field{
				{"Description", c.Description}, {"Customer", c.CustomerName}, {"Location", c.Location},
				{"Engineer", engineer}, {"Opened", c.CreatedAt.Format("2006-01-02 15:04")}, {"Resolved", resolved},
			}}
		},
	})
}

// MountPlans registers /plans routes.
func (h *Handler) MountPlans(r chi.Router) {
	mountSection(h, r, section[Plan]{
		heading: "Plans", basePath: "/plans", detailLabel: "plan",
		view: shared.PermViewPlans, manage: shared.PermManagePlans,
		columns: PlanColumns, list: h.service.Plans, find: h.service.FindPlan,
		id: func(p Plan) int64 { return p.ID },
		detail: func(p Plan) detailPage {
			status := "retired"
			if p.Active {
				status = "active"
			}
			return detailPage{Heading: p.Name, Status: status, Fields: []field{
				{"Speed", fmt.Sprintf("%d Mbps", p.SpeedMbps)}, {"Price", shared.FormatAmount(p.Price)},
				{"Quota", p.Quota}, {"Subscribers", shared.FormatCount(p.Subscribers)},
			}}
		},
	})
}

// MountLeads registers /leads routes.
func (h *Handler) MountLeads(r chi.Router) {
	mountSection(h, r, section[Lead]{
		heading: "Leads", basePath: "/leads", detailLabel: "lead",
		view: shared.PermViewLeads, manage: shared.PermManageLeads,
		columns: LeadColumns, list: h.service.Leads, find: h.service.FindLead,
		id: func(l Lead) int64 { return l.ID },
		detail: func(l Lead) detailPage {
			return detailPage{Heading: l.Name, Status: l.Stage, Fields: []field{
				{"Email", l.Email}, {"Phone", l.Phone}, {"Location", l.Location},
				{"Plan interest", l.PlanInterest}, {"Source", l.Source}, {"Created", formatDay(l.CreatedAt)},
			}}
		},
	})
}

// MountDashboard registers /dashboard.
func (h *Handler) MountDashboard(r chi.Router) {
	r.With(h.rbac.RequireAny(shared.PermViewDashboard)).Get("/", h.showDashboard)
}

// MountAnalytics registers /analytics.
func (h *Handler) MountAnalytics(r chi.Router) {
	r.With(h.rbac.RequireAny(shared.PermViewAnalytics)).Get("/", h.showAnalytics)
}

type dashboardPage struct {
	Heading     string
	Summary     Summary
	ShowRevenue bool
	Revenue     string
}

func (h *Handler) showDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.fail(w, r, "dashboard summary", err)
		return
	}
	h.pages.Render(w, r, http.StatusOK, "pages/dashboard.html", "Dashboard", dashboardPage{Heading: "Dashboard", Summary: summary})
}

func (h *Handler) showAnalytics(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.fail(w, r, "analytics summary", err)
		return
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		httpx.JSON(w, http.StatusOK, summary)
		return
	}
	h.pages.Render(w, r, http.StatusOK, "pages/dashboard.html", "Analytics", dashboardPage{
		Heading:     "Analytics",
		Summary:     summary,
		ShowRevenue: true,
		Revenue:     shared.FormatAmount(summary.MonthlyRevenue),
	})
}

type section[T table.Record] struct {
	heading     string
	basePath    string
	detailLabel string
	view        string
	manage      string
	columns     func() []table.Column[T]
	list        func(context.Context) ([]T, error)
	find        func(context.Context, int64) (T, error)
	id          func(T) int64
	detail      func(T) detailPage
}

type listPage struct {
	Heading    string
	BasePath   string
	ExportHref string
	Table      table.View
}

type field struct {
	Label string
	Value string
}

type detailPage struct {
	BackHref  string
	BackLabel string
	Heading   string
	Status    string
	Priority  string
	Fields    []field
}

func mountSection[T table.Record](h *Handler, r chi.Router, s section[T]) {
	tbl := table.New(s.columns(), h.perPage)
	tbl.Href = func(row T) string { return fmt.Sprintf("%s/%d", s.basePath, s.id(row)) }

	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(s.view))
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			rows, err := s.list(r.Context())
			if err != nil {
				h.fail(w, r, "list "+s.detailLabel, err)
				return
			}
			state := table.ParseState(r.URL.Query())
			page := listPage{Heading: s.heading, BasePath: s.basePath, Table: tbl.Render(rows, state, s.basePath)}
			if auth.SessionFromContext(r.Context()).HasPermission(s.manage) {
				page.ExportHref = table.ExportLink(s.basePath+"/export.csv", state)
			}
			h.pages.Render(w, r, http.StatusOK, "pages/list.html", s.heading, page)
		})
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				http.NotFound(w, r)
				return
			}
			item, err := s.find(r.Context(), id)
			if err != nil {
				h.fail(w, r, "find "+s.detailLabel, err)
				return
			}
			page := s.detail(item)
			page.BackHref = s.basePath
			page.BackLabel = strings.ToLower(s.heading)
			h.pages.Render(w, r, http.StatusOK, "pages/detail.html", page.Heading, page)
		})
	})
	r.With(h.rbac.RequireAny(s.manage)).Get("/export.csv", func(w http.ResponseWriter, r *http.Request) {
		rows, err := s.list(r.Context())
		if err != nil {
			h.fail(w, r, "export "+s.detailLabel, err)
			return
		}
		filename := fmt.Sprintf("%s-%s.csv", strings.ToLower(s.heading), time.Now().Format("20060102"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		if err := tbl.WriteCSV(w, rows, table.ParseState(r.URL.Query())); err != nil {
			h.logger.Error("write csv export", slog.String("section", s.basePath), slog.Any("error", err))
		}
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		http.Error(w, shared.UserSafeMessage(err), http.StatusNotFound)
		return
	}
	h.logger.Error(op, slog.String("path", r.URL.Path), slog.Any("error", err))
	http.Error(w, shared.UserSafeMessage(err), http.StatusInternalServerError)
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
