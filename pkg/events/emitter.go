// Package events provides the typed publish/subscribe surface circle
// instances expose to their consumers.
//
// The emitter is written for the host renderer's single-threaded event
// loop: dispatch is synchronous and handlers run on the caller's
// goroutine. Registration order is preserved, and handlers added or
// removed during a dispatch do not disturb the dispatch in flight.
package events

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// Handler receives an event payload.
type Handler func(payload any)

// registration is one (event, handler) entry in the emitter.
type registration struct {
	event    string
	fn       Handler
	fnPtr    uintptr
	once     bool
	canceled atomic.Bool
}

// Subscription represents an active handler registration.
type Subscription struct {
	emitter *Emitter
	reg     *registration
}

// Cancel removes the registration. Canceling twice is a no-op.
func (s *Subscription) Cancel() {
	if s == nil || s.reg == nil {
		return
	}
	if s.reg.canceled.CompareAndSwap(false, true) {
		s.emitter.remove(s.reg)
	}
}

// Emitter dispatches named events to registered handlers.
//
// The zero value is not usable; construct with NewEmitter.
type Emitter struct {
	mu   sync.Mutex
	regs map[string][]*registration
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{regs: make(map[string][]*registration)}
}

// On registers a handler for the named event and returns its
// subscription. Handlers fire in registration order. The same function
// may be registered more than once; it will fire once per
// registration.
func (e *Emitter) On(event string, fn Handler) *Subscription {
	return e.register(event, fn, false)
}

// Once registers a handler that is removed after its first invocation.
// The removal happens before the handler runs, so a re-entrant emit
// from inside the handler cannot re-trigger it.
func (e *Emitter) Once(event string, fn Handler) *Subscription {
	return e.register(event, fn, true)
}

func (e *Emitter) register(event string, fn Handler, once bool) *Subscription {
	reg := &registration{
		event: event,
		fn:    fn,
		fnPtr: reflect.ValueOf(fn).Pointer(),
		once:  once,
	}
	e.mu.Lock()
	e.regs[event] = append(e.regs[event], reg)
	e.mu.Unlock()
	return &Subscription{emitter: e, reg: reg}
}

// Off removes every registration of fn for the named event. Removing a
// handler that was never registered is a no-op.
func (e *Emitter) Off(event string, fn Handler) {
	if fn == nil {
		return
	}
	ptr := reflect.ValueOf(fn).Pointer()

	e.mu.Lock()
	regs := e.regs[event]
	kept := regs[:0]
	for _, reg := range regs {
		if reg.fnPtr == ptr {
			reg.canceled.Store(true)
			continue
		}
		kept = append(kept, reg)
	}
	if len(kept) == 0 {
		delete(e.regs, event)
	} else {
		e.regs[event] = kept
	}
	e.mu.Unlock()
}

// Emit invokes every handler registered for the named event, in
// registration order, passing payload to each.
func (e *Emitter) Emit(event string, payload any) {
	e.mu.Lock()
	regs := e.regs[event]
	snapshot := make([]*registration, len(regs))
	copy(snapshot, regs)
	e.mu.Unlock()

	for _, reg := range snapshot {
		if reg.canceled.Load() {
			continue
		}
		if reg.once {
			// Remove before invoking so a re-entrant Emit skips it.
			reg.canceled.Store(true)
			e.remove(reg)
		}
		reg.fn(payload)
	}
}

// ListenerCount returns the number of live registrations for the event.
func (e *Emitter) ListenerCount(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.regs[event])
}

// remove deletes a single registration from the emitter.
func (e *Emitter) remove(target *registration) {
	e.mu.Lock()
	regs := e.regs[target.event]
	for i, reg := range regs {
		if reg == target {
			e.regs[target.event] = append(regs[:i], regs[i+1:]...)
			break
		}
	}
	if len(e.regs[target.event]) == 0 {
		delete(e.regs, target.event)
	}
	e.mu.Unlock()
}
