package errors

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestCircleErrorString(t *testing.T) {
	err := &CircleError{
		Op:   "circle.New",
		Kind: KindConstruction,
		Err:  fmt.Errorf("radius must be positive, got -5"),
	}
	got := err.Error()
	if got == "" {
		t.Error("expected non-empty error string")
	}
	if !strings.Contains(got, "circle.New") {
		t.Errorf("error string %q should contain the op", got)
	}
	if !strings.Contains(got, "construction") {
		t.Errorf("error string %q should contain the kind", got)
	}
}

func TestCircleErrorWithInstance(t *testing.T) {
	err := &CircleError{
		Op:     "binding.Attach",
		Kind:   KindHost,
		Circle: "a1b2c3",
		Err:    fmt.Errorf("source already exists"),
	}
	got := err.Error()
	want := "circle=a1b2c3"
	if !strings.Contains(got, want) {
		t.Errorf("error string %q should contain %q", got, want)
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindConstruction, "construction"},
		{KindConfiguration, "configuration"},
		{KindState, "state"},
		{KindHost, "host"},
		{KindPanic, "panic"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestUnwrap(t *testing.T) {
	inner := fmt.Errorf("inner failure")
	err := State("edit.Update", inner)
	if !errors.Is(err, inner) {
		t.Error("errors.Is should reach the wrapped error")
	}
}

func TestIsKind(t *testing.T) {
	err := Configuration("circle.New", fmt.Errorf("minRadius above maxRadius"))
	if !IsKind(err, KindConfiguration) {
		t.Error("IsKind should match the error's kind")
	}
	if IsKind(err, KindState) {
		t.Error("IsKind should not match a different kind")
	}
	if IsKind(fmt.Errorf("plain"), KindState) {
		t.Error("IsKind should be false for non-CircleError values")
	}
}

// recordingHandler captures reported errors for assertions.
type recordingHandler struct {
	mu     sync.Mutex
	errors []*CircleError
	panics []*PanicError
}

func (h *recordingHandler) HandleError(err *CircleError) {
	h.mu.Lock()
	h.errors = append(h.errors, err)
	h.mu.Unlock()
}

func (h *recordingHandler) HandlePanic(err *PanicError) {
	h.mu.Lock()
	h.panics = append(h.panics, err)
	h.mu.Unlock()
}

func TestReportUsesHandler(t *testing.T) {
	rec := &recordingHandler{}
	SetHandler(rec)
	defer SetHandler(nil)

	Report(Host("binding.Attach", fmt.Errorf("boom")))

	if len(rec.errors) != 1 {
		t.Fatalf("expected 1 reported error, got %d", len(rec.errors))
	}
	if rec.errors[0].Timestamp.IsZero() {
		t.Error("Report should stamp a timestamp")
	}
}

func TestReportNil(t *testing.T) {
	// Should not panic.
	Report(nil)
	ReportPanic(nil)
}

func TestRecover(t *testing.T) {
	rec := &recordingHandler{}
	SetHandler(rec)
	defer SetHandler(nil)

	func() {
		defer Recover("test.op")
		panic("deliberate")
	}()

	if len(rec.panics) != 1 {
		t.Fatalf("expected 1 reported panic, got %d", len(rec.panics))
	}
	if rec.panics[0].Op != "test.op" {
		t.Errorf("panic op = %q, want %q", rec.panics[0].Op, "test.op")
	}
	if rec.panics[0].StackTrace == "" {
		t.Error("recovered panic should carry a stack trace")
	}
}

func TestSetHandlerNilRestoresDefault(t *testing.T) {
	SetHandler(&recordingHandler{})
	SetHandler(nil)
	if _, ok := DefaultHandler.(*LogHandler); !ok {
		t.Errorf("expected default LogHandler, got %T", DefaultHandler)
	}
}
