package watch

import (
	"sync"
	"time"
)

// DefaultDebounceDuration coalesces editor save bursts into one change.
const DefaultDebounceDuration = 200 * time.Millisecond

// Debouncer runs only the last of a burst of triggers, after a quiet period.
type Debouncer struct {
	mu       sync.Mutex
	duration time.Duration
	timer    *time.Timer
}

// NewDebouncer creates a debouncer. A non-positive duration selects
// DefaultDebounceDuration.
func NewDebouncer(d time.Duration) *Debouncer {
	if d <= 0 {
		d = DefaultDebounceDuration
	}
	return &Debouncer{duration: d}
}

// Duration returns the quiet period.
func (d *Debouncer) Duration() time.Duration { return d.duration }

// Trigger schedules fn, replacing any pending call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, fn)
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
