// Package edit implements the per-quantity edit transaction driving
// center and radius drag gestures.
//
// Each mutable quantity of a circle (its center, its radius) owns one
// Transaction. Programmatic setters commit instantly through Set;
// gestures move the value through Begin/Update/End, with the committed
// value untouched until the gesture resolves.
package edit

import (
	"fmt"

	"github.com/go-drift/mapcircle/pkg/errors"
)

// State is the current phase of a transaction.
//
// The state machine is:
//
//	Idle ──Begin()──► Dragging ──End(commit)──► Idle
//	  ▲                   │
//	  └────End(cancel)────┘
type State int

const (
	// StateIdle means no drag is active; Current equals the last
	// committed value.
	StateIdle State = iota
	// StateDragging means a drag is in flight; Current tracks the
	// in-progress value.
	StateDragging
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Transaction tracks the last-committed, in-progress, and current
// values of one editable quantity.
//
// Invariant: Current() == inProgress while dragging, and
// Current() == lastCommitted otherwise.
type Transaction[T any] struct {
	// Clamp, if set, constrains every value entering the transaction.
	// Clamping is silent; out-of-range values simply stop at the bound.
	Clamp func(T) T

	lastCommitted T
	inProgress    T
	state         State
}

// New creates an idle transaction holding the initial committed value.
// The initial value is stored as-is; Clamp applies only to subsequent
// updates.
func New[T any](initial T) *Transaction[T] {
	return &Transaction[T]{lastCommitted: initial, inProgress: initial}
}

// State returns the transaction's current phase.
func (t *Transaction[T]) State() State {
	return t.state
}

// Current returns the authoritative value: the live in-progress value
// while dragging, the last committed value otherwise.
func (t *Transaction[T]) Current() T {
	if t.state == StateDragging {
		return t.inProgress
	}
	return t.lastCommitted
}

// Committed returns the last committed value regardless of state.
func (t *Transaction[T]) Committed() T {
	return t.lastCommitted
}

// Begin starts a drag, snapshotting the committed value as the
// in-progress value. Beginning while already dragging is a state
// error.
func (t *Transaction[T]) Begin() error {
	const op = "edit.Begin"
	if t.state == StateDragging {
		return errors.State(op, fmt.Errorf("drag already active"))
	}
	t.inProgress = t.lastCommitted
	t.state = StateDragging
	return nil
}

// Update replaces the in-progress value during a drag and returns the
// value actually stored (after clamping). Updating an idle transaction
// is a state error.
func (t *Transaction[T]) Update(v T) (T, error) {
	const op = "edit.Update"
	if t.state != StateDragging {
		var zero T
		return zero, errors.State(op, fmt.Errorf("update outside a drag (state %s)", t.state))
	}
	if t.Clamp != nil {
		v = t.Clamp(v)
	}
	t.inProgress = v
	return v, nil
}

// End resolves the drag. With commit true the in-progress value becomes
// the committed value and End reports whether it changed; with commit
// false the in-progress value is discarded. Ending an idle transaction
// is a state error.
func (t *Transaction[T]) End(commit bool) (final T, changed bool, err error) {
	const op = "edit.End"
	if t.state != StateDragging {
		var zero T
		return zero, false, errors.State(op, fmt.Errorf("end outside a drag (state %s)", t.state))
	}
	t.state = StateIdle
	if commit {
		changed = !equal(t.lastCommitted, t.inProgress)
		t.lastCommitted = t.inProgress
	} else {
		t.inProgress = t.lastCommitted
	}
	return t.lastCommitted, changed, nil
}

// Set commits a value instantly, outside any drag, and returns the
// stored (clamped) value plus whether it changed. Setting during a
// drag is a state error; the drag owns the value until it resolves.
func (t *Transaction[T]) Set(v T) (final T, changed bool, err error) {
	const op = "edit.Set"
	if t.state == StateDragging {
		var zero T
		return zero, false, errors.State(op, fmt.Errorf("set during an active drag"))
	}
	if t.Clamp != nil {
		v = t.Clamp(v)
	}
	changed = !equal(t.lastCommitted, v)
	t.lastCommitted = v
	t.inProgress = v
	return v, changed, nil
}

// equal compares two values of any type via interface comparison.
// Transaction values are small comparable structs or floats.
func equal[T any](a, b T) bool {
	return any(a) == any(b)
}
