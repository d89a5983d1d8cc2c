package search

import (
	"context"
	"testing"
	"time"

	"github.com/fiberdesk/fiberdesk/internal/directory"
)

func BenchmarkSearch(b *testing.B) {
	src, err := Load(context.Background(), directory.Fixtures(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Search("an", src)
	}
}
