// Package host defines the contract between the circle engine and the
// host map renderer.
//
// The renderer owns the canvas, the camera, and the raw pointer-event
// stream; the engine only registers GeoJSON sources, style layers, and
// event listeners against it. Everything in this contract is
// single-threaded: the renderer dispatches events on its UI loop and
// the engine calls back into it from those same dispatches, so
// implementations need no locking on behalf of the engine.
package host

import (
	geojson "github.com/paulmach/go.geojson"

	"github.com/go-drift/mapcircle/pkg/geo"
)

// Pointer and lifecycle event names dispatched by the renderer.
const (
	EventClick       = "click"
	EventContextMenu = "contextmenu"
	EventMouseDown   = "mousedown"
	EventMouseMove   = "mousemove"
	EventMouseUp     = "mouseup"
	EventMouseEnter  = "mouseenter"
	EventMouseLeave  = "mouseleave"

	// EventStyleData fires when a style (re)load finishes. A style
	// swap invalidates every previously registered source and layer.
	EventStyleData = "styledata"

	// EventZoomEnd fires when the camera settles on a new zoom level.
	EventZoomEnd = "zoomend"
)

// ScreenPoint is a position in canvas pixels.
type ScreenPoint struct {
	X float64
	Y float64
}

// PointerEvent is a pointer or lifecycle event delivered by the
// renderer.
type PointerEvent struct {
	// Type is one of the Event* names.
	Type string
	// Point is the pointer position in canvas pixels.
	Point ScreenPoint
	// LngLat is the pointer position unprojected to the ground.
	LngLat geo.LatLng
	// Original is the renderer's raw event object, passed through to
	// consumers of click/contextmenu unchanged.
	Original any
}

// Listener receives pointer and lifecycle events.
type Listener func(PointerEvent)

// LayerType selects the style-layer renderer.
type LayerType string

const (
	LayerLine   LayerType = "line"
	LayerFill   LayerType = "fill"
	LayerCircle LayerType = "circle"
)

// SourceSpec describes a GeoJSON source.
type SourceSpec struct {
	// Data is the source's feature collection.
	Data *geojson.FeatureCollection
	// Buffer is the tile buffer in pixels; larger buffers widen the
	// click-tolerance region around features.
	Buffer int
	// Tolerance is the simplification tolerance in pixels.
	Tolerance float64
}

// LayerSpec describes a style layer bound to a source.
type LayerSpec struct {
	ID     string
	Type   LayerType
	Source string
	// Paint is the renderer's paint-property bag.
	Paint map[string]any
	// Filter is the renderer's filter expression, or nil for all
	// features of the source.
	Filter []any
}

// Map is the subset of a map renderer the circle engine consumes.
//
// Source and layer registration must be idempotent-friendly: the
// engine checks HasSource/HasLayer before registering, because style
// reloads may race with explicit attach/detach calls.
type Map interface {
	// AddSource registers a GeoJSON source under the given id.
	AddSource(id string, spec SourceSpec) error
	// SetSourceData replaces the data of an existing source.
	SetSourceData(id string, data *geojson.FeatureCollection) error
	// RemoveSource unregisters a source. Removing an unknown source
	// is an error; callers guard with HasSource.
	RemoveSource(id string) error
	// HasSource reports whether a source with the id exists.
	HasSource(id string) bool

	// AddLayer registers a style layer. A non-empty beforeID inserts
	// the layer beneath the named layer; an empty beforeID appends at
	// the top of the layer stack.
	AddLayer(spec LayerSpec, beforeID string) error
	// RemoveLayer unregisters a layer.
	RemoveLayer(id string) error
	// HasLayer reports whether a layer with the id exists.
	HasLayer(id string) bool

	// On subscribes fn to the named event, scoped to the layer with
	// layerID or map-wide when layerID is empty. The returned function
	// removes the subscription and is safe to call more than once.
	On(event, layerID string, fn Listener) (off func())

	// Zoom returns the camera's current zoom level.
	Zoom() float64

	// DisablePan and EnablePan toggle camera panning, so a handle
	// drag does not also drag the map.
	DisablePan()
	EnablePan()

	// SetCursor sets the canvas cursor style ("", "pointer", "move").
	SetCursor(cursor string)

	// Project converts a ground position to canvas pixels.
	Project(p geo.LatLng) ScreenPoint
	// Unproject converts canvas pixels to a ground position.
	Unproject(p ScreenPoint) geo.LatLng
}
