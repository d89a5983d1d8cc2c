package table

import (
	"fmt"
	"testing"
)

func BenchmarkRender(b *testing.B) {
	rows := make([]row, 2000)
	for i := range rows {
		rows[i] = row{id: i + 1, name: fmt.Sprintf("Customer %04d", i), score: float64(i % 97)}
	}
	tbl := New(columns(), 25)
	state := State{SearchTerm: "customer 1", SortColumn: "score", SortDirection: Desc, CurrentPage: 3}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tbl.Render(rows, state, "/users")
	}
}
