package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiberdesk/fiberdesk/internal/directory"
)

func TestPrefixMatchesRankFirst(t *testing.T) {
	src := Sources{Users: []directory.Customer{
		{ID: 1, Name: "Bob Alice"},
		{ID: 2, Name: "Alice Smith"},
	}}

	results := Search("alice", src)
	require.Len(t, results, 2)
	assert.Equal(t, "Alice Smith", results[0].Title)
	assert.Equal(t, "Bob Alice", results[1].Title)
}

func TestRankingKeepsPoolOrderWithinTier(t *testing.T) {
	src := Sources{
		Users:      []directory.Customer{{ID: 1, Name: "Dewi", Location: "Bandung"}},
		Engineers:  []directory.Engineer{{ID: 2, Name: "Bandung Crew"}, {ID: 3, Name: "Raka", Location: "Bandung"}},
		Complaints: []directory.Complaint{{ID: 4, Title: "Bandung outage"}, {ID: 5, Title: "Slow", Location: "Bandung"}},
	}

	results := Search("BANDUNG", src)
	var order []string
	for _, r := range results {
		order = append(order, fmt.Sprintf("%s:%d", r.Type, r.ID))
	}
	assert.Equal(t, []string{"engineer:2", "complaint:4", "user:1", "engineer:3", "complaint:5"}, order)
}

func TestResultsAreCapped(t *testing.T) {
	var complaints []directory.Complaint
	for i := 1; i <= 20; i++ {
		complaints = append(complaints, directory.Complaint{ID: int64(i), Title: fmt.Sprintf("Outage %d", i)})
	}

	results := Search("outage", Sources{Complaints: complaints})
	assert.Len(t, results, MaxResults)
	assert.Equal(t, int64(1), results[0].ID)
}

func TestBlankQuery(t *testing.T) {
	src := Sources{Users: []directory.Customer{{ID: 1, Name: "Anyone"}}}
	assert.Empty(t, Search("", src))
	assert.Empty(t, Search("   ", src))
	assert.NotNil(t, Search("", src))
}

func TestFieldsPerType(t *testing.T) {
	src := Sources{
		Users:      []directory.Customer{{ID: 1, Name: "A", Phone: "+62-812-1111"}},
		Engineers:  []directory.Engineer{{ID: 2, Name: "B", Specialization: "Fiber splicing"}},
		Complaints: []directory.Complaint{{ID: 3, Title: "C", Description: "LOS light red", CustomerName: "Citra"}},
	}

	assert.Equal(t, []int64{1}, ids(Search("+62-812", src)))
	assert.Equal(t, []int64{2}, ids(Search("splicing", src)))
	assert.Equal(t, []int64{3}, ids(Search("los light", src)))
	assert.Equal(t, []int64{3}, ids(Search("citra", src)))
	assert.Empty(t, Search("nothing", src))
}

func TestResultLinks(t *testing.T) {
	src := Sources{
		Users:      []directory.Customer{{ID: 7, Name: "x"}},
		Engineers:  []directory.Engineer{{ID: 8, Name: "x"}},
		Complaints: []directory.Complaint{{ID: 9, Title: "x"}},
	}
	results := Search("x", src)
	require.Len(t, results, 3)
	assert.Equal(t, "/users/7", results[0].Href)
	assert.Equal(t, "/engineers/8", results[1].Href)
	assert.Equal(t, "/complaints/9", results[2].Href)
	assert.Empty(t, Href(Type("plan"), 1))
}

func ids(results []Result) []int64 {
	out := make([]int64, 0, len(results))
	for _, r := range results {
		out = append(out, r.ID)
	}
	return out
}
