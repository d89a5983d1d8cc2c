package table

import (
	"bytes"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	id    int
	name  string
	score any
}

func (r row) Field(key string) any {
	switch key {
	case "id":
		return r.id
	case "name":
		if r.name == "" {
			return nil
		}
		return r.name
	case "score":
		return r.score
	default:
		return nil
	}
}

func columns() []Column[row] {
	return []Column[row]{
		{Key: "id", Label: "ID"},
		{Key: "name", Label: "Name"},
		{Key: "score", Label: "Score"},
		{Key: "actions", Label: "Actions", Sortable: NotSortable(), Render: func(r row) string { return fmt.Sprintf("open %d", r.id) }},
	}
}

func rows(n int) []row {
	out := make([]row, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, row{id: i, name: fmt.Sprintf("Customer %02d", i), score: i * 10})
	}
	return out
}

func TestPaginationOfTwentyFiveRows(t *testing.T) {
	tbl := New(columns(), 10)
	state := NewState().SetPage(3)

	page, pagination := tbl.Page(rows(25), state)
	assert.Equal(t, 3, pagination.TotalPages)
	assert.Equal(t, 3, pagination.Page)
	require.Len(t, page, 5)
	assert.Equal(t, 21, page[0].id)
}

func TestSearchResetsPage(t *testing.T) {
	tbl := New(columns(), 10)
	state := NewState().SetPage(3).SetSearch("customer 0")

	assert.Equal(t, 1, state.CurrentPage)
	page, pagination := tbl.Page(rows(25), state)
	assert.Len(t, page, 9)
	assert.Equal(t, 1, pagination.TotalPages)
}

func TestOutOfRangePageIsClampedOnRender(t *testing.T) {
	tbl := New(columns(), 10)
	state := NewState().SetPage(3)
	state.SearchTerm = "customer 2"

	page, pagination := tbl.Page(rows(25), state)
	assert.Equal(t, 3, state.CurrentPage)
	assert.Equal(t, 1, pagination.Page)
	assert.Len(t, page, 6)
}

func TestFilterMatchesAnyColumnCaseInsensitive(t *testing.T) {
	tbl := New(columns(), 10)
	data := []row{{id: 1, name: "Alice"}, {id: 2, name: "Bob"}, {id: 3}}

	assert.Equal(t, []row{{id: 1, name: "Alice"}}, tbl.Filter(data, "ALI"))
	assert.Len(t, tbl.Filter(data, ""), 3)
	assert.Equal(t, []row{{id: 2, name: "Bob"}}, tbl.Filter(data, "2"))
	assert.Empty(t, tbl.Filter(data, "open"), "rendered-only columns are not searched")
}

func TestSortReversesWithNullsLast(t *testing.T) {
	tbl := New(columns(), 10)
	data := []row{
		{id: 1, score: 30},
		{id: 2, score: nil},
		{id: 3, score: 10},
		{id: 4, score: 20.5},
		{id: 5, score: nil},
	}

	asc := tbl.Sort(data, "score", Asc)
	desc := tbl.Sort(data, "score", Desc)

	assert.Equal(t, []int{3, 4, 1, 2, 5}, ids(asc))
	assert.Equal(t, []int{1, 4, 3, 2, 5}, ids(desc))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(data), "input is not mutated")
}

func TestSetSortCycle(t *testing.T) {
	tbl := New(columns(), 10)
	state := NewState()

	state = tbl.SetSort(state, "name")
	assert.Equal(t, "name", state.SortColumn)
	assert.Equal(t, Asc, state.SortDirection)
	state = tbl.SetSort(state, "name")
	assert.Equal(t, Desc, state.SortDirection)
	state = tbl.SetSort(state, "name")
	assert.Equal(t, Asc, state.SortDirection)

	state = tbl.SetSort(state, "name")
	state = tbl.SetSort(state, "id")
	assert.Equal(t, "id", state.SortColumn)
	assert.Equal(t, Asc, state.SortDirection)

	assert.Equal(t, state, tbl.SetSort(state, "actions"))
}

func TestCellRendering(t *testing.T) {
	tbl := New(columns(), 10)
	r := row{id: 7}
	cols := tbl.Columns

	assert.Equal(t, "7", tbl.Cell(r, cols[0]))
	assert.Equal(t, "", tbl.Cell(r, cols[1]))
	assert.Equal(t, "open 7", tbl.Cell(r, cols[3]))
}

func TestStateQueryRoundTrip(t *testing.T) {
	state := NewState().SetSearch("fiber").SetSort("name").SetSort("name").SetPage(4)
	parsed := ParseState(state.Query())
	assert.Equal(t, state, parsed)

	assert.Equal(t, NewState(), ParseState(url.Values{"page": {"x"}, "dir": {"sideways"}}))
	assert.Empty(t, NewState().Query())
}

func TestRenderLinks(t *testing.T) {
	tbl := New(columns(), 10)
	tbl.Href = func(r row) string { return fmt.Sprintf("/users/%d", r.id) }
	state := NewState().SetSort("name").SetPage(2)

	view := tbl.Render(rows(25), state, "/users")
	require.Len(t, view.Headers, 4)
	assert.Equal(t, "/users?dir=asc&page=2&sort=id", view.Headers[0].SortHref)
	assert.Equal(t, "/users?dir=desc&page=2&sort=name", view.Headers[1].SortHref)
	assert.Equal(t, "▲", view.Headers[1].Indicator)
	assert.Empty(t, view.Headers[3].SortHref)
	assert.Equal(t, "/users?dir=asc&sort=name", view.PrevHref)
	assert.Equal(t, "/users?dir=asc&page=3&sort=name", view.NextHref)
	require.Len(t, view.Rows, 10)
	assert.Equal(t, "/users/11", view.Rows[0].Href)
	assert.Equal(t, []string{"11", "Customer 11", "110", "open 11"}, view.Rows[0].Cells)
}

func TestWriteCSV(t *testing.T) {
	tbl := New(columns(), 10)
	var buf bytes.Buffer
	require.NoError(t, tbl.WriteCSV(&buf, rows(3), NewState().SetSort("id").SetSort("id")))
	assert.Equal(t, "ID,Name,Score,Actions\n3,Customer 03,30,open 3\n2,Customer 02,20,open 2\n1,Customer 01,10,open 1\n", buf.String())
}

func TestExportLinkDropsPage(t *testing.T) {
	state := NewState().SetSearch("a").SetPage(3)
	assert.Equal(t, "/users/export.csv?q=a", ExportLink("/users/export.csv", state))
	assert.Equal(t, "/users/export.csv", ExportLink("/users/export.csv", NewState()))
}

func ids(in []row) []int {
	out := make([]int, 0, len(in))
	for _, r := range in {
		out = append(out, r.id)
	}
	return out
}
