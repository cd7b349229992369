// Package circle implements the editable circle overlay: one Circle
// owns a geodesic center+radius, renders it through a host map
// renderer as a ground-projected polygon, and drives the center/radius
// drag gestures that let the user edit it.
//
// A Circle composes the geometry engine (pkg/geo), the per-quantity
// edit transactions (pkg/edit), the renderer binding (pkg/binding),
// the cross-instance broadcast coordinator (pkg/broadcast), and the
// public event emitter (pkg/events). All of it runs on the host
// renderer's single-threaded event loop.
package circle

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/go-drift/mapcircle/pkg/binding"
	"github.com/go-drift/mapcircle/pkg/broadcast"
	"github.com/go-drift/mapcircle/pkg/edit"
	"github.com/go-drift/mapcircle/pkg/errors"
	"github.com/go-drift/mapcircle/pkg/events"
	"github.com/go-drift/mapcircle/pkg/geo"
	"github.com/go-drift/mapcircle/pkg/host"
)

// Public event names. click and contextmenu carry the host's raw
// pointer event as payload; centerchanged and radiuschanged carry the
// *Circle itself, to be queried via GetCenter/GetRadius.
const (
	EventClick         = "click"
	EventContextMenu   = "contextmenu"
	EventCenterChanged = "centerchanged"
	EventRadiusChanged = "radiuschanged"
)

// Cursor styles used while interacting with handles.
const (
	cursorCenterDrag = "move"
	cursorRadiusDrag = "ew-resize"
	cursorHover      = "pointer"
)

// Circle is one editable circle overlay instance. It exclusively owns
// its data; destroying it (Remove) releases every renderer resource it
// registered.
type Circle struct {
	id   string
	opts Options

	center *edit.Transaction[geo.LatLng]
	radius *edit.Transaction[float64]

	emitter   *events.Emitter
	binding   *binding.Binding
	coord     *broadcast.Coordinator
	precision geo.Precision

	m    host.Map
	zoom float64
	ring []geo.LatLng

	// Drag bookkeeping. dragging is true between a handle mousedown
	// and the matching mouseup/mouseleave.
	dragging bool
	dragKind broadcast.HandleKind

	// suspendedBy records, per handle kind, the instance ids of
	// sibling circles holding an outstanding suspension against us.
	suspendedBy map[broadcast.HandleKind]map[string]struct{}
}

// New constructs a circle at center with the given radius in meters.
//
// The radius must be positive and the center well-formed; violating
// either is fatal to the instance (there is no partially constructed
// circle). For editable circles the initial radius is additionally
// clamped into [MinRadius, MaxRadius]; non-editable circles accept it
// as-is.
func New(center geo.LatLng, radiusMeters float64, opts Options) (*Circle, error) {
	const op = "circle.New"

	if !center.Valid() {
		return nil, errors.Construction(op, fmt.Errorf("malformed center %v", center))
	}
	if radiusMeters <= 0 {
		return nil, errors.Construction(op, fmt.Errorf("radius must be positive, got %g", radiusMeters))
	}
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	if opts.Editable {
		radiusMeters = opts.clampRadius(radiusMeters)
	}

	c := &Circle{
		id:          uuid.NewString(),
		opts:        opts,
		center:      edit.New(center),
		radius:      edit.New(radiusMeters),
		emitter:     events.NewEmitter(),
		suspendedBy: make(map[broadcast.HandleKind]map[string]struct{}),
	}
	c.radius.Clamp = opts.clampRadius

	if opts.RefineStroke {
		c.precision = geo.AdaptivePrecision(0.5)
	} else {
		c.precision = geo.FixedPrecision(geo.DefaultSteps)
	}

	c.coord = opts.Coordinator
	if c.coord == nil {
		c.coord = broadcast.Default()
	}

	c.binding = binding.New(binding.Config{
		InstanceID: c.id,
		Editable:   opts.Editable,
		Adaptive:   opts.RefineStroke,
		Style: binding.Style{
			StrokeColor:   opts.StrokeColor,
			StrokeWeight:  opts.StrokeWeight,
			StrokeOpacity: opts.StrokeOpacity,
			FillColor:     opts.FillColor,
			FillOpacity:   opts.FillOpacity,
		},
		Properties: opts.Properties,
		Ring:       func() []geo.LatLng { return c.ring },
		Handles:    c.handlePoints,
		Handlers: binding.Handlers{
			OnFillClick:       func(e host.PointerEvent) { c.emitter.Emit(EventClick, e.Original) },
			OnFillContextMenu: func(e host.PointerEvent) { c.emitter.Emit(EventContextMenu, e.Original) },
			OnFillEnter:       c.handleFillEnter,
			OnFillLeave:       c.handleFillLeave,
			OnCenterDown:      c.handleCenterDown,
			OnRadiusDown:      c.handleRadiusDown,
			OnHandleEnter:     c.handleHandleEnter,
			OnHandleLeave:     c.handleHandleLeave,
			OnDragMove:        c.handleDragMove,
			OnDragEnd:         c.handleDragEnd,
			OnZoomEnd:         c.handleZoomEnd,
		},
	})

	if err := c.rebuildGeometry(); err != nil {
		return nil, err
	}
	return c, nil
}

// InstanceID returns the circle's globally unique id.
func (c *Circle) InstanceID() string { return c.id }

// Editable reports whether the circle participates in editing.
func (c *Circle) Editable() bool { return c.opts.Editable }

// AddTo attaches the circle to a renderer. A non-empty beforeLayerID
// inserts the circle's layers beneath the named layer; an empty one
// appends at the top of the layer stack. Adding an attached circle is
// a no-op.
func (c *Circle) AddTo(m host.Map, beforeLayerID string) error {
	if c.binding.Attached() {
		return nil
	}
	c.m = m
	c.zoom = m.Zoom()
	if err := c.rebuildGeometry(); err != nil {
		return err
	}
	if err := c.binding.Attach(m, beforeLayerID); err != nil {
		return err
	}
	if c.opts.Editable {
		c.coord.Register(c)
	}
	return nil
}

// Remove detaches the circle from its renderer, releasing every
// source, layer, and listener it registered, and leaves the broadcast
// registry. Removing a detached circle is a no-op.
func (c *Circle) Remove() {
	if !c.binding.Attached() {
		return
	}
	if c.dragging {
		c.finishDrag()
	}
	c.binding.Detach()
	if c.opts.Editable {
		c.coord.Unregister(c)
	}
	c.m = nil
}

// GetCenter returns the circle's center. During a center drag this is
// the live in-progress position.
func (c *Circle) GetCenter() geo.LatLng { return c.center.Current() }

// SetCenter moves the circle programmatically: an instantaneous
// commit that fires centerchanged synchronously if the center moved.
// Invalid positions are rejected; calling during a center drag is a
// state error.
func (c *Circle) SetCenter(p geo.LatLng) error {
	const op = "circle.SetCenter"
	if !p.Valid() {
		return errors.Construction(op, fmt.Errorf("malformed center %v", p))
	}
	_, changed, err := c.center.Set(p)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if err := c.render(); err != nil {
		return err
	}
	c.emitter.Emit(EventCenterChanged, c)
	return nil
}

// GetRadius returns the radius in meters. During a radius drag this is
// the live in-progress value.
func (c *Circle) GetRadius() float64 { return c.radius.Current() }

// SetRadius sets the radius programmatically: the value is silently
// clamped to [MinRadius, MaxRadius], committed instantly, and
// radiuschanged fires synchronously with the clamped value if it
// changed. Calling during a radius drag is a state error.
func (c *Circle) SetRadius(r float64) error {
	_, changed, err := c.radius.Set(r)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if err := c.render(); err != nil {
		return err
	}
	c.emitter.Emit(EventRadiusChanged, c)
	return nil
}

// GetBounds returns the axis-aligned bounding box of the current
// polygon: a min/max over its vertices, not a geodesic circumscribing
// box.
func (c *Circle) GetBounds() geo.Bounds {
	return geo.PolygonBounds(c.ring)
}

// On registers a handler for one of the public events.
func (c *Circle) On(event string, handler events.Handler) *events.Subscription {
	return c.emitter.On(event, handler)
}

// Once registers a handler that fires at most once.
func (c *Circle) Once(event string, handler events.Handler) *events.Subscription {
	return c.emitter.Once(event, handler)
}

// Off removes every registration of handler for the event. Removing an
// unregistered handler is a no-op.
func (c *Circle) Off(event string, handler events.Handler) {
	c.emitter.Off(event, handler)
}

// SuspendHandles implements broadcast.Member: a sibling circle began a
// drag, so pointer handling for our handles of that kind stops until
// the matching resume.
func (c *Circle) SuspendHandles(kind broadcast.HandleKind, sourceID string) {
	set := c.suspendedBy[kind]
	if set == nil {
		set = make(map[string]struct{})
		c.suspendedBy[kind] = set
	}
	set[sourceID] = struct{}{}
}

// ResumeHandles implements broadcast.Member. A resume whose source id
// never suspended us is ignored, so two concurrent drags on different
// circles cannot release each other early.
func (c *Circle) ResumeHandles(kind broadcast.HandleKind, sourceID string) {
	delete(c.suspendedBy[kind], sourceID)
}

// handlesSuspended reports whether any sibling holds an outstanding
// suspension for the kind.
func (c *Circle) handlesSuspended(kind broadcast.HandleKind) bool {
	return len(c.suspendedBy[kind]) > 0
}

// handlePoints provides the binding with live handle positions.
func (c *Circle) handlePoints() (geo.LatLng, []geo.LatLng) {
	center, handles, err := geo.HandlePoints(c.GetCenter(), c.GetRadius())
	if err != nil {
		// Radius is kept positive by construction and clamping.
		errors.Report(&errors.CircleError{
			Op: "circle.handlePoints", Kind: errors.KindState, Err: err, Circle: c.id,
		})
		return c.GetCenter(), nil
	}
	return center, handles
}

// rebuildGeometry recomputes the polygon ring from the current center,
// radius, zoom, and precision policy.
func (c *Circle) rebuildGeometry() error {
	ring, err := geo.CirclePolygon(c.GetCenter(), c.GetRadius(), c.zoom, c.precision)
	if err != nil {
		if ce, ok := err.(*errors.CircleError); ok {
			ce.Circle = c.id
		}
		return err
	}
	c.ring = ring
	return nil
}

// render recomputes geometry and pushes it to the renderer.
func (c *Circle) render() error {
	if err := c.rebuildGeometry(); err != nil {
		return err
	}
	return c.binding.Refresh()
}

func (c *Circle) handleFillEnter(host.PointerEvent) {
	if c.dragging || c.m == nil {
		return
	}
	c.m.SetCursor(cursorHover)
}

func (c *Circle) handleFillLeave(host.PointerEvent) {
	if c.dragging || c.m == nil {
		return
	}
	c.m.SetCursor("")
}

func (c *Circle) handleHandleEnter(center bool, _ host.PointerEvent) {
	kind := broadcast.RadiusHandle
	if center {
		kind = broadcast.CenterHandle
	}
	if c.dragging || c.m == nil || c.handlesSuspended(kind) {
		return
	}
	c.m.SetCursor(cursorHover)
}

func (c *Circle) handleHandleLeave(_ bool, _ host.PointerEvent) {
	if c.dragging || c.m == nil {
		return
	}
	c.m.SetCursor("")
}

// handleCenterDown begins a center drag.
func (c *Circle) handleCenterDown(host.PointerEvent) {
	c.beginDrag(broadcast.CenterHandle, cursorCenterDrag)
}

// handleRadiusDown begins a radius drag.
func (c *Circle) handleRadiusDown(host.PointerEvent) {
	c.beginDrag(broadcast.RadiusHandle, cursorRadiusDrag)
}

func (c *Circle) beginDrag(kind broadcast.HandleKind, cursor string) {
	if c.dragging || c.handlesSuspended(kind) || c.m == nil {
		return
	}
	var err error
	if kind == broadcast.CenterHandle {
		err = c.center.Begin()
	} else {
		err = c.radius.Begin()
	}
	if err != nil {
		errors.Report(&errors.CircleError{
			Op: "circle.beginDrag", Kind: errors.KindState, Err: err, Circle: c.id,
		})
		return
	}

	c.dragging = true
	c.dragKind = kind
	c.coord.Suspend(c.id, kind)
	c.m.DisablePan()
	c.m.SetCursor(cursor)
}

// handleDragMove applies a rate-limited pointer move to the active
// drag. The live value is visible through GetCenter/GetRadius, but the
// committed-change event waits for drag end unless FireDuringDrag is
// set.
func (c *Circle) handleDragMove(e host.PointerEvent) {
	if !c.dragging {
		return
	}
	if !c.applyDragPosition(e.LngLat) {
		return
	}
	if c.opts.FireDuringDrag {
		c.emitChanged(c.dragKind)
	}
}

// handleDragEnd resolves the drag as a commit at the last known
// position. Mouseup and the pointer leaving the map both land here;
// neither leaves the gesture dangling.
func (c *Circle) handleDragEnd(e host.PointerEvent) {
	if !c.dragging {
		return
	}
	if e.Type == host.EventMouseUp {
		c.applyDragPosition(e.LngLat)
	}
	c.finishDrag()
}

// applyDragPosition updates the in-progress value from a pointer
// position, re-rendering on success.
func (c *Circle) applyDragPosition(at geo.LatLng) bool {
	var err error
	if c.dragKind == broadcast.CenterHandle {
		if !at.Valid() {
			return false
		}
		_, err = c.center.Update(at)
	} else {
		r := geo.Distance(c.GetCenter(), at)
		if r <= 0 {
			return false
		}
		_, err = c.radius.Update(r)
	}
	if err != nil {
		errors.Report(&errors.CircleError{
			Op: "circle.applyDragPosition", Kind: errors.KindState, Err: err, Circle: c.id,
		})
		return false
	}
	if err := c.render(); err != nil {
		errors.Report(&errors.CircleError{
			Op: "circle.applyDragPosition", Kind: errors.KindHost, Err: err, Circle: c.id,
		})
	}
	return true
}

// finishDrag commits the transaction, restores camera and cursor,
// resumes siblings, and fires the changed event at most once, after
// all geometry updates are complete.
func (c *Circle) finishDrag() {
	kind := c.dragKind
	var changed bool
	var err error
	if kind == broadcast.CenterHandle {
		_, changed, err = c.center.End(true)
	} else {
		_, changed, err = c.radius.End(true)
	}
	c.dragging = false
	if err != nil {
		errors.Report(&errors.CircleError{
			Op: "circle.finishDrag", Kind: errors.KindState, Err: err, Circle: c.id,
		})
	}

	c.coord.Resume(c.id, kind)
	if c.m != nil {
		c.m.EnablePan()
		c.m.SetCursor("")
	}

	if changed {
		c.emitChanged(kind)
	}
}

func (c *Circle) emitChanged(kind broadcast.HandleKind) {
	if kind == broadcast.CenterHandle {
		c.emitter.Emit(EventCenterChanged, c)
	} else {
		c.emitter.Emit(EventRadiusChanged, c)
	}
}

// handleZoomEnd re-tessellates adaptive circles for the new zoom.
func (c *Circle) handleZoomEnd() {
	if c.m == nil {
		return
	}
	c.zoom = c.m.Zoom()
	if err := c.render(); err != nil {
		errors.Report(&errors.CircleError{
			Op: "circle.handleZoomEnd", Kind: errors.KindHost, Err: err, Circle: c.id,
		})
	}
}
