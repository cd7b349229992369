// Package broadcast coordinates handle interactivity across every
// editable circle sharing one map.
//
// All editable circles listen to the same pointer-event stream, so a
// drag on one circle could spuriously hover or click an overlapping
// handle of another. The coordinator is the mutual-exclusion mechanism
// for that single-threaded, shared-canvas environment: the circle
// beginning a drag broadcasts a suspend for the handle kind being
// dragged, every other member disables matching handle handling, and a
// matching resume at drag end re-enables them.
package broadcast

import (
	"fmt"
	"sync"
)

// HandleKind identifies which kind of handle a broadcast refers to.
type HandleKind int

const (
	// CenterHandle is the draggable point at the circle's center.
	CenterHandle HandleKind = iota
	// RadiusHandle is any of the draggable points on the circle's
	// rim.
	RadiusHandle
)

// String returns a human-readable representation of the handle kind.
func (k HandleKind) String() string {
	switch k {
	case CenterHandle:
		return "center"
	case RadiusHandle:
		return "radius"
	default:
		return fmt.Sprintf("HandleKind(%d)", int(k))
	}
}

// Member is an editable circle participating in suspend/resume.
//
// Recipients own their suspension bookkeeping: a member records the
// source id of an outstanding suspend per handle kind, and ignores a
// resume whose source id does not match (two concurrent drags on
// different circles must not release each other early).
type Member interface {
	// InstanceID returns the member's globally unique id.
	InstanceID() string
	// SuspendHandles disables pointer handling for handles of the
	// given kind on behalf of sourceID.
	SuspendHandles(kind HandleKind, sourceID string)
	// ResumeHandles re-enables pointer handling for the given kind if
	// sourceID matches the outstanding suspension.
	ResumeHandles(kind HandleKind, sourceID string)
}

// Coordinator is the shared registry and signaling channel for one map
// or application context. Construct one per context and hand the same
// reference to every circle attached to that context; it lives for the
// life of the program, since circles come and go dynamically.
type Coordinator struct {
	mu      sync.Mutex
	members []Member
}

// NewCoordinator creates an empty coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// Register adds a member. Members are kept in registration order and a
// member already present is not added twice.
func (c *Coordinator) Register(m Member) {
	if m == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.members {
		if existing.InstanceID() == m.InstanceID() {
			return
		}
	}
	c.members = append(c.members, m)
}

// Unregister removes a member. Removing an unknown member is a no-op.
func (c *Coordinator) Unregister(m Member) {
	if m == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.members {
		if existing.InstanceID() == m.InstanceID() {
			c.members = append(c.members[:i], c.members[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered members.
func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.members)
}

// Suspend broadcasts a suspension of the given handle kind to every
// member except the source. Sent by the circle beginning a drag; its
// own handles stay active.
func (c *Coordinator) Suspend(sourceID string, kind HandleKind) {
	for _, m := range c.snapshot() {
		if m.InstanceID() == sourceID {
			continue
		}
		m.SuspendHandles(kind, sourceID)
	}
}

// Resume broadcasts the end of a suspension. Members that recorded a
// different (or no) suspender ignore it.
func (c *Coordinator) Resume(sourceID string, kind HandleKind) {
	for _, m := range c.snapshot() {
		if m.InstanceID() == sourceID {
			continue
		}
		m.ResumeHandles(kind, sourceID)
	}
}

// snapshot copies the member list so delivery happens without the lock
// held; a member may (un)register re-entrantly from its callback.
func (c *Coordinator) snapshot() []Member {
	c.mu.Lock()
	defer c.mu.Unlock()
	members := make([]Member, len(c.members))
	copy(members, c.members)
	return members
}

var (
	defaultMu          sync.Mutex
	defaultCoordinator *Coordinator
)

// Default returns the process-wide coordinator, creating it on first
// use. Circles constructed without an explicit coordinator share this
// one; nothing ever tears it down mid-run.
func Default() *Coordinator {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultCoordinator == nil {
		defaultCoordinator = NewCoordinator()
	}
	return defaultCoordinator
}
