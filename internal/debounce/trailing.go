// Package debounce coalesces bursts of values into a single delayed apply.
package debounce

import (
	"sync"
	"time"
)

// Trailing applies only the last value pushed within a quiescence window.
// Each Push restarts the window; Flush applies the pending value at once and
// cancels the window so the timer cannot apply it a second time.
type Trailing[T any] struct {
	delay time.Duration
	apply func(T)

	mu      sync.Mutex
	timer   *time.Timer
	pending T
	has     bool
	gen     uint64
	stopped bool
}

// NewTrailing returns a Trailing that calls apply with the last value once
// delay has passed without a new Push.
func NewTrailing[T any](delay time.Duration, apply func(T)) *Trailing[T] {
	return &Trailing[T]{delay: delay, apply: apply}
}

// Push records v as the pending value and restarts the window.
func (d *Trailing[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending = v
	d.has = true
	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Flush applies the pending value immediately, if any. It reports whether a
// value was applied.
func (d *Trailing[T]) Flush() bool {
	d.mu.Lock()
	v, ok := d.takeLocked()
	d.mu.Unlock()

	if ok {
		d.apply(v)
	}
	return ok
}

// Stop drops any pending value and disables further pushes.
func (d *Trailing[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.takeLocked()
	d.stopped = true
}

// Pending reports whether a value is waiting for the window to close.
func (d *Trailing[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.has
}

func (d *Trailing[T]) fire(gen uint64) {
	d.mu.Lock()
	// A newer Push, a Flush or a Stop happened after this timer was armed.
	if gen != d.gen || !d.has {
		d.mu.Unlock()
		return
	}
	v, _ := d.takeLocked()
	d.mu.Unlock()

	d.apply(v)
}

// takeLocked clears the pending value and cancels the timer.
// Caller must hold d.mu.
func (d *Trailing[T]) takeLocked() (T, bool) {
	var zero T
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	if !d.has {
		return zero, false
	}
	v := d.pending
	d.pending = zero
	d.has = false
	return v, true
}
