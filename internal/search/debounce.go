package search

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period before a live search runs.
const DefaultDelay = 150 * time.Millisecond

// Debouncer runs only the most recently scheduled function once no newer call
// arrived for the delay. Scheduling cancels whatever is pending.
type Debouncer struct {
	delay   time.Duration
	mu      sync.Mutex
	gen     uint64
	pending *Handle
}

// Handle is a scheduled call.
type Handle struct {
	d     *Debouncer
	gen   uint64
	timer *time.Timer
}

// NewDebouncer returns a Debouncer; delay <= 0 uses DefaultDelay.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay}
}

// Schedule cancels the pending call, if any, and schedules fn.
func (d *Debouncer) Schedule(fn func()) *Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		d.pending.timer.Stop()
	}
	d.gen++
	h := &Handle{d: d, gen: d.gen}
	h.timer = time.AfterFunc(d.delay, func() {
		if !d.claim(h.gen) {
			return
		}
		fn()
	})
	d.pending = h
	return h
}

// Cancel discards the call if it has not started. It reports whether the call
// was still pending.
func (h *Handle) Cancel() bool {
	if h == nil {
		return false
	}
	h.d.mu.Lock()
	defer h.d.mu.Unlock()
	if h.d.pending != h {
		return false
	}
	h.timer.Stop()
	h.d.pending = nil
	h.d.gen++
	return true
}

// Stop cancels whatever is pending.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	pending := d.pending
	d.mu.Unlock()
	pending.Cancel()
}

func (d *Debouncer) claim(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen || d.pending == nil {
		return false
	}
	d.pending = nil
	return true
}
