// Package throttle provides a rate-limited callback adapter for
// high-frequency pointer streams.
//
// A Limiter wraps a callback with a minimum interval between
// deliveries. The leading call is delivered immediately; calls arriving
// inside the interval are coalesced, keeping only the most recent
// value, and delivered by the next call outside the interval or by
// Flush. Flush exists so a gesture's terminal event is never dropped:
// drag handlers flush on pointer-up and pointer-leave.
//
// The limiter is built for a single-threaded event loop. It sets no
// timers and spawns no goroutines; delivery only ever happens inside
// Call or Flush, on the caller's goroutine.
package throttle

import "time"

// DefaultInterval is the minimum delivery interval used when none is
// configured, roughly one delivery per frame at 60Hz.
const DefaultInterval = 16 * time.Millisecond

// Limiter rate-limits delivery of values to a callback.
type Limiter[T any] struct {
	// Clock returns the current time. Defaults to time.Now; tests
	// substitute a fake.
	Clock func() time.Time

	interval time.Duration
	fn       func(T)

	last       time.Time
	pending    T
	hasPending bool
}

// NewLimiter wraps fn with a minimum delivery interval. Non-positive
// intervals default to DefaultInterval.
func NewLimiter[T any](interval time.Duration, fn func(T)) *Limiter[T] {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Limiter[T]{interval: interval, fn: fn}
}

func (l *Limiter[T]) now() time.Time {
	if l.Clock != nil {
		return l.Clock()
	}
	return time.Now()
}

// Call offers a value for delivery. If the interval since the last
// delivery has elapsed (or nothing was delivered yet) the value is
// delivered immediately; otherwise it replaces any pending value and
// waits for a later Call or a Flush.
func (l *Limiter[T]) Call(v T) {
	now := l.now()
	if l.last.IsZero() || now.Sub(l.last) >= l.interval {
		l.hasPending = false
		l.last = now
		l.fn(v)
		return
	}
	l.pending = v
	l.hasPending = true
}

// Flush delivers the pending value, if any, immediately. Used at
// gesture end so the final event is always processed.
func (l *Limiter[T]) Flush() {
	if !l.hasPending {
		return
	}
	v := l.pending
	l.hasPending = false
	l.last = l.now()
	l.fn(v)
}

// Pending reports whether a coalesced value is waiting for delivery.
func (l *Limiter[T]) Pending() bool {
	return l.hasPending
}

// Reset clears pending state and the delivery clock, so the next Call
// delivers immediately.
func (l *Limiter[T]) Reset() {
	l.hasPending = false
	l.last = time.Time{}
}
