// Package table renders any homogeneous record list as a searchable, sortable,
// paginated page. State lives in an immutable value updated by reducers, so a
// page is a pure function of (rows, columns, state).
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fiberdesk/fiberdesk/internal/shared"
)

// Record exposes named fields of a row. Field returns nil for absent values.
type Record interface {
	Field(key string) any
}

// Column describes one rendered column. A nil Sortable means sortable.
type Column[T Record] struct {
	Key      string
	Label    string
	Sortable *bool
	Render   func(T) string
}

// IsSortable reports whether clicking the header sorts by the column.
func (c Column[T]) IsSortable() bool {
	return c.Sortable == nil || *c.Sortable
}

// NotSortable is a helper for Column.Sortable.
func NotSortable() *bool {
	v := false
	return &v
}

// Table binds columns to a page size and an optional row link builder.
type Table[T Record] struct {
	Columns []Column[T]
	PerPage int
	Href    func(T) string
}

// New constructs a Table with the given page size, DefaultPerPage when <= 0.
func New[T Record](columns []Column[T], perPage int) *Table[T] {
	if perPage <= 0 {
		perPage = shared.DefaultPerPage
	}
	return &Table[T]{Columns: columns, PerPage: perPage}
}

// Filter returns the rows where any column value, stringified and lower-cased,
// contains the lower-cased term. An empty term keeps every row.
func (t *Table[T]) Filter(rows []T, term string) []T {
	if term == "" {
		return rows
	}
	needle := shared.Fold(term)
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if t.matches(row, needle) {
			out = append(out, row)
		}
	}
	return out
}

func (t *Table[T]) matches(row T, needle string) bool {
	for _, col := range t.Columns {
		value := row.Field(col.Key)
		if value == nil {
			continue
		}
		if strings.Contains(shared.Fold(Stringify(value)), needle) {
			return true
		}
	}
	return false
}

// Sort returns a stably sorted copy of rows ordered by the key field. Absent
// values go last in both directions.
func (t *Table[T]) Sort(rows []T, key string, dir Direction) []T {
	out := slices.Clone(rows)
	if key == "" {
		return out
	}
	slices.SortStableFunc(out, func(a, b T) int {
		av, bv := a.Field(key), b.Field(key)
		switch {
		case av == nil && bv == nil:
			return 0
		case av == nil:
			return 1
		case bv == nil:
			return -1
		}
		c := Compare(av, bv)
		if dir == Desc {
			return -c
		}
		return c
	})
	return out
}

// Prepare applies the state's filter and sort.
func (t *Table[T]) Prepare(rows []T, state State) []T {
	filtered := t.Filter(rows, state.SearchTerm)
	if !t.sortable(state.SortColumn) {
		return slices.Clone(filtered)
	}
	return t.Sort(filtered, state.SortColumn, state.SortDirection)
}

// Page filters, sorts and slices rows. The requested page is clamped into the
// available range for rendering; state itself is left untouched.
func (t *Table[T]) Page(rows []T, state State) ([]T, shared.Pagination) {
	prepared := t.Prepare(rows, state)
	pagination := shared.NewPagination(state.CurrentPage, t.PerPage, len(prepared)).Clamped()
	start, end := pagination.Bounds()
	return prepared[start:end], pagination
}

// SetSort applies the sort reducer when key names a sortable column.
func (t *Table[T]) SetSort(state State, key string) State {
	if !t.sortable(key) {
		return state
	}
	return state.SetSort(key)
}

// Cell renders the value of col for row.
func (t *Table[T]) Cell(row T, col Column[T]) string {
	if col.Render != nil {
		return col.Render(row)
	}
	return Stringify(row.Field(col.Key))
}

// Header is a rendered column heading.
type Header struct {
	Key       string
	Label     string
	SortHref  string
	Indicator string
}

// Row is a rendered table row.
type Row struct {
	Href  string
	Cells []string
}

// View is what the list template consumes.
type View struct {
	SearchTerm    string
	SortColumn    string
	SortDirection Direction
	Headers       []Header
	Rows          []Row
	Page          int
	TotalPages    int
	Total         int
	PrevHref      string
	NextHref      string
}

// Render builds the View for state. Links are basePath plus the query of the
// state each reducer would produce.
func (t *Table[T]) Render(rows []T, state State, basePath string) View {
	pageRows, pagination := t.Page(rows, state)
	view := View{
		SearchTerm:    state.SearchTerm,
		SortColumn:    state.SortColumn,
		SortDirection: state.SortDirection,
		Page:          pagination.Page,
		TotalPages:    pagination.TotalPages,
		Total:         pagination.Total,
	}
	for _, col := range t.Columns {
		header := Header{Key: col.Key, Label: col.Label}
		if col.IsSortable() {
			header.SortHref = link(basePath, t.SetSort(state, col.Key))
			if state.SortColumn == col.Key {
				header.Indicator = state.SortDirection.Arrow()
			}
		}
		view.Headers = append(view.Headers, header)
	}
	for _, row := range pageRows {
		rendered := Row{Cells: make([]string, 0, len(t.Columns))}
		if t.Href != nil {
			rendered.Href = t.Href(row)
		}
		for _, col := range t.Columns {
			rendered.Cells = append(rendered.Cells, t.Cell(row, col))
		}
		view.Rows = append(view.Rows, rendered)
	}
	if pagination.HasPrev() {
		view.PrevHref = link(basePath, state.SetPage(pagination.Page-1))
	}
	if pagination.HasNext() {
		view.NextHref = link(basePath, state.SetPage(pagination.Page+1))
	}
	return view
}

// WriteCSV writes a header line and every filtered, sorted row of state.
func (t *Table[T]) WriteCSV(w io.Writer, rows []T, state State) error {
	writer := csv.NewWriter(w)
	header := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		header = append(header, col.Label)
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("table: write csv header: %w", err)
	}
	for _, row := range t.Prepare(rows, state) {
		record := make([]string, 0, len(t.Columns))
		for _, col := range t.Columns {
			record = append(record, t.Cell(row, col))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("table: write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func (t *Table[T]) sortable(key string) bool {
	if key == "" {
		return false
	}
	for _, col := range t.Columns {
		if col.Key == key {
			return col.IsSortable()
		}
	}
	return false
}

func link(basePath string, state State) string {
	query := state.Query().Encode()
	if query == "" {
		return basePath
	}
	return basePath + "?" + query
}

// ExportLink returns basePath with the filter and sort of state, without page.
func ExportLink(basePath string, state State) string {
	values := state.Query()
	values.Del(queryPage)
	if len(values) == 0 {
		return basePath
	}
	return basePath + "?" + values.Encode()
}
