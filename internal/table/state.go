package table

import (
	"net/url"
	"strconv"
	"strings"
)

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Arrow renders the direction for a header.
func (d Direction) Arrow() string {
	if d == Desc {
		return "▼"
	}
	return "▲"
}

const (
	querySearch = "q"
	querySort   = "sort"
	queryDir    = "dir"
	queryPage   = "page"
)

// State is the search, sort and page selection of one table.
type State struct {
	SearchTerm    string
	CurrentPage   int
	SortColumn    string
	SortDirection Direction
}

// NewState returns the initial state: no filter, no sort, page 1.
func NewState() State {
	return State{CurrentPage: 1, SortDirection: Asc}
}

// SetSearch changes the search term and returns to page 1.
func (s State) SetSearch(term string) State {
	s.SearchTerm = term
	s.CurrentPage = 1
	return s
}

// SetSort sorts by key. The same key toggles asc and desc; a new key starts
// ascending.
func (s State) SetSort(key string) State {
	if s.SortColumn == key {
		if s.SortDirection == Asc {
			s.SortDirection = Desc
		} else {
			s.SortDirection = Asc
		}
		return s
	}
	s.SortColumn = key
	s.SortDirection = Asc
	return s
}

// SetPage moves to page, never below 1. Pages past the end are kept.
func (s State) SetPage(page int) State {
	if page < 1 {
		page = 1
	}
	s.CurrentPage = page
	return s
}

// Query encodes the state as URL query values, omitting defaults.
func (s State) Query() url.Values {
	values := url.Values{}
	if s.SearchTerm != "" {
		values.Set(querySearch, s.SearchTerm)
	}
	if s.SortColumn != "" {
		values.Set(querySort, s.SortColumn)
		values.Set(queryDir, string(s.SortDirection))
	}
	if s.CurrentPage > 1 {
		values.Set(queryPage, strconv.Itoa(s.CurrentPage))
	}
	return values
}

// ParseState reads the state encoded by Query. Unknown or malformed values
// fall back to the initial state's.
func ParseState(values url.Values) State {
	state := NewState()
	state.SearchTerm = strings.TrimSpace(values.Get(querySearch))
	state.SortColumn = values.Get(querySort)
	if Direction(values.Get(queryDir)) == Desc {
		state.SortDirection = Desc
	}
	if page, err := strconv.Atoi(values.Get(queryPage)); err == nil {
		state = state.SetPage(page)
	}
	return state
}
