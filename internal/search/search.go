// Package search implements the dashboard's global cross-entity search.
package search

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/fiberdesk/fiberdesk/internal/directory"
	"github.com/fiberdesk/fiberdesk/internal/shared"
)

// MaxResults caps a result list.
const MaxResults = 8

// Type names the kind of entity a result points at.
type Type string

// Searchable entity types.
const (
	TypeUser      Type = "user"
	TypeEngineer  Type = "engineer"
	TypeComplaint Type = "complaint"
)

// DetailRoutes maps each type to the detail route template results link to.
var DetailRoutes = map[Type]string{
	TypeUser:      "/users/:id",
	TypeEngineer:  "/engineers/:id",
	TypeComplaint: "/complaints/:id",
}

// Href fills the detail route template of t with id. Unknown types yield "".
func Href(t Type, id int64) string {
	tpl, ok := DetailRoutes[t]
	if !ok {
		return ""
	}
	return strings.Replace(tpl, ":id", strconv.FormatInt(id, 10), 1)
}

// ParseType validates raw as a searchable type.
func ParseType(raw string) (Type, bool) {
	t := Type(raw)
	_, ok := DetailRoutes[t]
	return t, ok
}

// Result is one search hit.
type Result struct {
	ID       int64  `json:"id"`
	Type     Type   `json:"type"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Status   string `json:"status,omitempty"`
	Priority string `json:"priority,omitempty"`
	Location string `json:"location,omitempty"`
	Details  string `json:"details"`
	Href     string `json:"href"`
}

// Sources are the collections a search runs over.
type Sources struct {
	Users      []directory.Customer
	Engineers  []directory.Engineer
	Complaints []directory.Complaint
}

// Load reads the three searchable collections concurrently.
func Load(ctx context.Context, src directory.Source) (Sources, error) {
	var out Sources
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { out.Users, err = src.Customers(gctx); return })
	g.Go(func() (err error) { out.Engineers, err = src.Engineers(gctx); return })
	g.Go(func() (err error) { out.Complaints, err = src.Complaints(gctx); return })
	if err := g.Wait(); err != nil {
		return Sources{}, err
	}
	return out, nil
}

// Search returns at most MaxResults matches for query. Users come first, then
// engineers, then complaints; results whose title starts with the query are
// moved ahead of the rest without otherwise changing that order. A blank
// query returns nothing.
func Search(query string, src Sources) []Result {
	raw := strings.TrimSpace(query)
	if raw == "" {
		return []Result{}
	}
	folded := shared.Fold(raw)
	contains := func(value string) bool {
		return value != "" && strings.Contains(shared.Fold(value), folded)
	}

	var pooled []Result
	for _, u := range src.Users {
		if contains(u.Name) || contains(u.Email) || strings.Contains(u.Phone, raw) || contains(u.Location) {
			pooled = append(pooled, userResult(u))
		}
	}
	for _, e := range src.Engineers {
		if contains(e.Name) || contains(e.Email) || strings.Contains(e.Phone, raw) || contains(e.Location) || contains(e.Specialization) {
			pooled = append(pooled, engineerResult(e))
		}
	}
	for _, c := range src.Complaints {
		if contains(c.Title) || contains(c.Description) || contains(c.CustomerName) || contains(c.Location) {
			pooled = append(pooled, complaintResult(c))
		}
	}

	slices.SortStableFunc(pooled, func(a, b Result) int {
		ap := strings.HasPrefix(shared.Fold(a.Title), folded)
		bp := strings.HasPrefix(shared.Fold(b.Title), folded)
		switch {
		case ap == bp:
			return 0
		case ap:
			return -1
		default:
			return 1
		}
	})
	if len(pooled) > MaxResults {
		pooled = pooled[:MaxResults]
	}
	return pooled
}

func userResult(u directory.Customer) Result {
	return Result{
		ID:       u.ID,
		Type:     TypeUser,
		Title:    u.Name,
		Subtitle: u.Email,
		Status:   u.Status,
		Location: u.Location,
		Details:  joinDetails(u.PlanName, u.Phone),
		Href:     Href(TypeUser, u.ID),
	}
}

func engineerResult(e directory.Engineer) Result {
	return Result{
		ID:       e.ID,
		Type:     TypeEngineer,
		Title:    e.Name,
		Subtitle: e.Email,
		Status:   e.Status,
		Location: e.Location,
		Details:  joinDetails(e.Specialization, strconv.Itoa(e.ActiveJobs)+" active jobs"),
		Href:     Href(TypeEngineer, e.ID),
	}
}

func complaintResult(c directory.Complaint) Result {
	return Result{
		ID:       c.ID,
		Type:     TypeComplaint,
		Title:    c.Title,
		Subtitle: c.CustomerName,
		Status:   c.Status,
		Priority: c.Priority,
		Location: c.Location,
		Details:  c.Description,
		Href:     Href(TypeComplaint, c.ID),
	}
}

func joinDetails(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " · ")
}
