package search

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type calls struct {
	mu   sync.Mutex
	seen []string
}

func (c *calls) record(v string) func() {
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.seen = append(c.seen, v)
	}
}

func (c *calls) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.seen...)
}

func TestDebounceRunsOnlyLastCall(t *testing.T) {
	d := NewDebouncer(DefaultDelay)
	var c calls

	d.Schedule(c.record("ali"))
	time.Sleep(30 * time.Millisecond)
	d.Schedule(c.record("alice"))

	require.Eventually(t, func() bool { return len(c.snapshot()) > 0 }, time.Second, 10*time.Millisecond)
	time.Sleep(2 * DefaultDelay)
	assert.Equal(t, []string{"alice"}, c.snapshot())
}

func TestDebounceSeparatedCallsBothRun(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var c calls

	d.Schedule(c.record("a"))
	require.Eventually(t, func() bool { return len(c.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	d.Schedule(c.record("b"))
	require.Eventually(t, func() bool { return len(c.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, c.snapshot())
}

func TestHandleCancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var c calls

	first := d.Schedule(c.record("a"))
	assert.True(t, first.Cancel())
	assert.False(t, first.Cancel())

	second := d.Schedule(c.record("b"))
	d.Stop()
	assert.False(t, second.Cancel())

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, c.snapshot())
}
