package events

import "testing"

// TestEmit_RegistrationOrder verifies handlers fire in registration
// order, once each.
func TestEmit_RegistrationOrder(t *testing.T) {
	e := NewEmitter()
	var order []int
	e.On("radiuschanged", func(any) { order = append(order, 1) })
	e.On("radiuschanged", func(any) { order = append(order, 2) })
	e.On("radiuschanged", func(any) { order = append(order, 3) })

	e.Emit("radiuschanged", nil)

	if len(order) != 3 {
		t.Fatalf("expected 3 invocations, got %d", len(order))
	}
	for i, got := range order {
		if got != i+1 {
			t.Errorf("invocation %d was handler %d", i, got)
		}
	}
}

// TestEmit_Payload verifies the payload reaches every handler.
func TestEmit_Payload(t *testing.T) {
	e := NewEmitter()
	var got any
	e.On("click", func(p any) { got = p })

	e.Emit("click", "raw-event")

	if got != "raw-event" {
		t.Errorf("payload = %v, want %q", got, "raw-event")
	}
}

// TestOnce_FiresOnlyOnce verifies a once handler is not invoked on a
// second emit.
func TestOnce_FiresOnlyOnce(t *testing.T) {
	e := NewEmitter()
	count := 0
	e.Once("radiuschanged", func(any) { count++ })

	e.Emit("radiuschanged", nil)
	e.Emit("radiuschanged", nil)

	if count != 1 {
		t.Errorf("once handler fired %d times, want 1", count)
	}
}

// TestOnce_NoReentrantRetrigger verifies a once handler cannot be
// re-triggered by an emit from inside the same dispatch.
func TestOnce_NoReentrantRetrigger(t *testing.T) {
	e := NewEmitter()
	onceCount := 0
	e.Once("centerchanged", func(any) { onceCount++ })
	e.On("centerchanged", func(any) {
		if onceCount == 1 {
			// Re-entrant emit while the first dispatch is running.
			onceCount += 10 // sentinel guard against infinite recursion
			e.Emit("centerchanged", nil)
			onceCount -= 10
		}
	})

	e.Emit("centerchanged", nil)

	if onceCount != 1 {
		t.Errorf("once handler fired %d times, want 1", onceCount)
	}
}

// TestOff_RemovesAllMatching verifies Off removes every registration
// of the handler.
func TestOff_RemovesAllMatching(t *testing.T) {
	e := NewEmitter()
	count := 0
	fn := func(any) { count++ }
	e.On("click", fn)
	e.On("click", fn)

	e.Off("click", fn)
	e.Emit("click", nil)

	if count != 0 {
		t.Errorf("removed handler fired %d times", count)
	}
	if n := e.ListenerCount("click"); n != 0 {
		t.Errorf("listener count = %d, want 0", n)
	}
}

// TestOff_UnknownHandler verifies removing a non-registered handler is
// a no-op.
func TestOff_UnknownHandler(t *testing.T) {
	e := NewEmitter()
	e.On("click", func(any) {})

	// Should not panic or disturb existing registrations.
	e.Off("click", func(any) {})
	e.Off("contextmenu", func(any) {})
	e.Off("click", nil)

	if n := e.ListenerCount("click"); n != 1 {
		t.Errorf("listener count = %d, want 1", n)
	}
}

// TestOff_LeavesOtherHandlers verifies Off only removes the matching
// handler.
func TestOff_LeavesOtherHandlers(t *testing.T) {
	e := NewEmitter()
	var fired []string
	a := func(any) { fired = append(fired, "a") }
	b := func(any) { fired = append(fired, "b") }
	e.On("click", a)
	e.On("click", b)

	e.Off("click", a)
	e.Emit("click", nil)

	if len(fired) != 1 || fired[0] != "b" {
		t.Errorf("fired = %v, want [b]", fired)
	}
}

// TestSubscription_Cancel verifies cancellation via the returned
// subscription, including double-cancel.
func TestSubscription_Cancel(t *testing.T) {
	e := NewEmitter()
	count := 0
	sub := e.On("radiuschanged", func(any) { count++ })

	sub.Cancel()
	sub.Cancel()
	e.Emit("radiuschanged", nil)

	if count != 0 {
		t.Errorf("canceled handler fired %d times", count)
	}
}

// TestEmit_RemoveDuringDispatch verifies a handler removed re-entrantly
// during dispatch does not fire afterwards in that dispatch.
func TestEmit_RemoveDuringDispatch(t *testing.T) {
	e := NewEmitter()
	var fired []string
	late := func(any) { fired = append(fired, "late") }
	e.On("click", func(any) {
		fired = append(fired, "first")
		e.Off("click", late)
	})
	e.On("click", late)

	e.Emit("click", nil)

	if len(fired) != 1 || fired[0] != "first" {
		t.Errorf("fired = %v, want [first]", fired)
	}
}
