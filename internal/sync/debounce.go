package sync

import (
	stdsync "sync"
	"time"
)

// Debouncer coalesces bursts of trigger calls into a single invocation of fn
// after the quiet period elapses. Mirrors the batch timer used for remote
// change notifications, where a seeding pass can fire many updates in a row.
type Debouncer struct {
	delay time.Duration
	fn    func()

	mu      stdsync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewDebouncer creates a debouncer that calls fn delay after the most recent
// Trigger.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger schedules fn, resetting the quiet period if a call is already
// pending. Calls after Stop are ignored.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fn)
}

// Flush runs any pending invocation now instead of waiting out the delay.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	pending := d.timer != nil && d.timer.Stop()
	d.timer = nil
	d.mu.Unlock()

	if pending {
		d.fn()
	}
}

// Stop cancels any pending invocation and rejects further triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
