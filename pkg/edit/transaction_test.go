package edit

import (
	"testing"

	"github.com/go-drift/mapcircle/pkg/errors"
)

func clampRange(min, max float64) func(float64) float64 {
	return func(v float64) float64 {
		if v < min {
			return min
		}
		if v > max {
			return max
		}
		return v
	}
}

// TestTransaction_IdleCurrent verifies the idle invariant
// Current == Committed.
func TestTransaction_IdleCurrent(t *testing.T) {
	tx := New(25000.0)
	if tx.State() != StateIdle {
		t.Fatalf("state = %s, want idle", tx.State())
	}
	if tx.Current() != 25000 {
		t.Errorf("Current = %g, want 25000", tx.Current())
	}
	if tx.Committed() != 25000 {
		t.Errorf("Committed = %g, want 25000", tx.Committed())
	}
}

// TestTransaction_DragCommit verifies the full
// Begin → Update → End(commit) cycle.
func TestTransaction_DragCommit(t *testing.T) {
	tx := New(25000.0)
	if err := tx.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if tx.State() != StateDragging {
		t.Fatalf("state = %s, want dragging", tx.State())
	}

	got, err := tx.Update(30000)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got != 30000 {
		t.Errorf("Update returned %g, want 30000", got)
	}
	// Live value visible during the drag; committed untouched.
	if tx.Current() != 30000 {
		t.Errorf("Current during drag = %g, want 30000", tx.Current())
	}
	if tx.Committed() != 25000 {
		t.Errorf("Committed during drag = %g, want 25000", tx.Committed())
	}

	final, changed, err := tx.End(true)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if final != 30000 || !changed {
		t.Errorf("End = (%g, %v), want (30000, true)", final, changed)
	}
	if tx.Committed() != 30000 {
		t.Errorf("Committed after commit = %g, want 30000", tx.Committed())
	}
}

// TestTransaction_DragCancel verifies cancellation reverts to the
// committed value.
func TestTransaction_DragCancel(t *testing.T) {
	tx := New(25000.0)
	tx.Begin()
	tx.Update(99999)

	final, changed, err := tx.End(false)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if final != 25000 || changed {
		t.Errorf("End = (%g, %v), want (25000, false)", final, changed)
	}
	if tx.Current() != 25000 {
		t.Errorf("Current after cancel = %g, want 25000", tx.Current())
	}
}

// TestTransaction_CommitUnchanged verifies committing without movement
// reports no change.
func TestTransaction_CommitUnchanged(t *testing.T) {
	tx := New(1500.0)
	tx.Begin()
	_, changed, err := tx.End(true)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if changed {
		t.Error("commit without updates should report changed=false")
	}
}

// TestTransaction_ClampDuringDrag verifies every intermediate value is
// silently clamped.
func TestTransaction_ClampDuringDrag(t *testing.T) {
	tx := New(25000.0)
	tx.Clamp = clampRange(1500, 1_100_000)

	tx.Begin()
	got, err := tx.Update(1_100_000 + 1000)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got != 1_100_000 {
		t.Errorf("clamped value = %g, want 1100000", got)
	}
	if tx.Current() != 1_100_000 {
		t.Errorf("Current = %g, want clamp bound", tx.Current())
	}

	got, _ = tx.Update(500)
	if got != 1500 {
		t.Errorf("clamped value = %g, want 1500", got)
	}
	tx.End(true)
	if tx.Committed() != 1500 {
		t.Errorf("Committed = %g, want 1500", tx.Committed())
	}
}

// TestTransaction_SetClamps verifies instantaneous commits clamp too.
func TestTransaction_SetClamps(t *testing.T) {
	tx := New(25000.0)
	tx.Clamp = clampRange(1500, 1_100_000)

	final, changed, err := tx.Set(500)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if final != 1500 || !changed {
		t.Errorf("Set = (%g, %v), want (1500, true)", final, changed)
	}
}

// TestTransaction_StateErrors verifies drag-only operations fail
// outside a drag and vice versa.
func TestTransaction_StateErrors(t *testing.T) {
	tx := New(0.0)

	if _, err := tx.Update(1); !errors.IsKind(err, errors.KindState) {
		t.Errorf("Update while idle: err = %v, want state error", err)
	}
	if _, _, err := tx.End(true); !errors.IsKind(err, errors.KindState) {
		t.Errorf("End while idle: err = %v, want state error", err)
	}

	tx.Begin()
	if err := tx.Begin(); !errors.IsKind(err, errors.KindState) {
		t.Errorf("double Begin: err = %v, want state error", err)
	}
	if _, _, err := tx.Set(5); !errors.IsKind(err, errors.KindState) {
		t.Errorf("Set during drag: err = %v, want state error", err)
	}
}

// TestTransaction_CenterValues verifies the transaction works for
// comparable struct values such as positions.
func TestTransaction_CenterValues(t *testing.T) {
	type latlng struct{ Lat, Lng float64 }

	tx := New(latlng{39.984, -75.343})
	tx.Begin()
	tx.Update(latlng{40, -75})
	final, changed, err := tx.End(true)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if !changed || final != (latlng{40, -75}) {
		t.Errorf("End = (%v, %v), want moved center", final, changed)
	}
}

// TestState_String verifies state names.
func TestState_String(t *testing.T) {
	if StateIdle.String() != "idle" || StateDragging.String() != "dragging" {
		t.Error("unexpected state names")
	}
	if State(7).String() != "State(7)" {
		t.Errorf("unknown state = %q", State(7).String())
	}
}
