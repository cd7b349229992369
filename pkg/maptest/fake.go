// Package maptest provides an in-memory host.Map for exercising the
// circle engine without a real renderer.
//
// The fake records every source, layer, and listener registration, and
// exposes FirePointer/FireStyleReload so tests can drive the same
// event sequences a real map would deliver. Dispatch is synchronous on
// the caller's goroutine, matching the single-threaded host contract.
package maptest

import (
	"fmt"
	"math"

	geojson "github.com/paulmach/go.geojson"

	"github.com/go-drift/mapcircle/pkg/errors"
	"github.com/go-drift/mapcircle/pkg/geo"
	"github.com/go-drift/mapcircle/pkg/host"
)

// listenerReg is one live On registration.
type listenerReg struct {
	event   string
	layerID string
	fn      host.Listener
	active  bool
}

// Fake is an in-memory implementation of host.Map.
type Fake struct {
	// ZoomLevel is the camera zoom reported by Zoom. Tests set it
	// directly.
	ZoomLevel float64

	// PanDisabled and Cursor mirror the camera/cursor state the
	// engine toggles during drags.
	PanDisabled bool
	Cursor      string

	sources    map[string]host.SourceSpec
	layers     map[string]host.LayerSpec
	layerOrder []string
	listeners  []*listenerReg
}

// NewFake creates an empty fake map at zoom 10.
func NewFake() *Fake {
	return &Fake{
		ZoomLevel: 10,
		sources:   make(map[string]host.SourceSpec),
		layers:    make(map[string]host.LayerSpec),
	}
}

// AddSource registers a GeoJSON source.
func (f *Fake) AddSource(id string, spec host.SourceSpec) error {
	if _, ok := f.sources[id]; ok {
		return errors.Host("maptest.AddSource", fmt.Errorf("source %q already exists", id))
	}
	f.sources[id] = spec
	return nil
}

// SetSourceData replaces the data of an existing source.
func (f *Fake) SetSourceData(id string, data *geojson.FeatureCollection) error {
	spec, ok := f.sources[id]
	if !ok {
		return errors.Host("maptest.SetSourceData", fmt.Errorf("unknown source %q", id))
	}
	spec.Data = data
	f.sources[id] = spec
	return nil
}

// RemoveSource unregisters a source.
func (f *Fake) RemoveSource(id string) error {
	if _, ok := f.sources[id]; !ok {
		return errors.Host("maptest.RemoveSource", fmt.Errorf("unknown source %q", id))
	}
	delete(f.sources, id)
	return nil
}

// HasSource reports whether a source exists.
func (f *Fake) HasSource(id string) bool {
	_, ok := f.sources[id]
	return ok
}

// AddLayer registers a style layer, inserting before beforeID when it
// names an existing layer and appending otherwise.
func (f *Fake) AddLayer(spec host.LayerSpec, beforeID string) error {
	if _, ok := f.layers[spec.ID]; ok {
		return errors.Host("maptest.AddLayer", fmt.Errorf("layer %q already exists", spec.ID))
	}
	if _, ok := f.sources[spec.Source]; !ok {
		return errors.Host("maptest.AddLayer", fmt.Errorf("layer %q references unknown source %q", spec.ID, spec.Source))
	}
	f.layers[spec.ID] = spec

	if beforeID != "" {
		for i, id := range f.layerOrder {
			if id == beforeID {
				f.layerOrder = append(f.layerOrder[:i], append([]string{spec.ID}, f.layerOrder[i:]...)...)
				return nil
			}
		}
	}
	f.layerOrder = append(f.layerOrder, spec.ID)
	return nil
}

// RemoveLayer unregisters a layer.
func (f *Fake) RemoveLayer(id string) error {
	if _, ok := f.layers[id]; !ok {
		return errors.Host("maptest.RemoveLayer", fmt.Errorf("unknown layer %q", id))
	}
	delete(f.layers, id)
	for i, existing := range f.layerOrder {
		if existing == id {
			f.layerOrder = append(f.layerOrder[:i], f.layerOrder[i+1:]...)
			break
		}
	}
	return nil
}

// HasLayer reports whether a layer exists.
func (f *Fake) HasLayer(id string) bool {
	_, ok := f.layers[id]
	return ok
}

// On subscribes a listener. The returned function removes it and may
// be called more than once.
func (f *Fake) On(event, layerID string, fn host.Listener) (off func()) {
	reg := &listenerReg{event: event, layerID: layerID, fn: fn, active: true}
	f.listeners = append(f.listeners, reg)
	return func() {
		if !reg.active {
			return
		}
		reg.active = false
		for i, r := range f.listeners {
			if r == reg {
				f.listeners = append(f.listeners[:i], f.listeners[i+1:]...)
				break
			}
		}
	}
}

// Zoom returns the configured zoom level.
func (f *Fake) Zoom() float64 { return f.ZoomLevel }

// DisablePan records that camera panning is off.
func (f *Fake) DisablePan() { f.PanDisabled = true }

// EnablePan records that camera panning is on.
func (f *Fake) EnablePan() { f.PanDisabled = false }

// SetCursor records the canvas cursor style.
func (f *Fake) SetCursor(cursor string) { f.Cursor = cursor }

// worldPixels is the edge length of the projected world at the current
// zoom, using 512px tiles.
func (f *Fake) worldPixels() float64 {
	return 512 * math.Pow(2, f.ZoomLevel)
}

// Project converts a ground position to canvas pixels using a plate
// carrée projection, which is linear and therefore exactly invertible
// in tests.
func (f *Fake) Project(p geo.LatLng) host.ScreenPoint {
	w := f.worldPixels()
	return host.ScreenPoint{
		X: (p.Lng + 180) / 360 * w,
		Y: (90 - p.Lat) / 180 * w,
	}
}

// Unproject converts canvas pixels back to a ground position.
func (f *Fake) Unproject(p host.ScreenPoint) geo.LatLng {
	w := f.worldPixels()
	return geo.LatLng{
		Lat: 90 - p.Y/w*180,
		Lng: p.X/w*360 - 180,
	}
}

// FirePointer dispatches a pointer event to listeners registered for
// the event on the given layer (empty for map-wide listeners). A real
// map hit-tests the pointer against layer features; tests name the
// target layer explicitly instead.
func (f *Fake) FirePointer(event, layerID string, at geo.LatLng, original any) {
	e := host.PointerEvent{
		Type:     event,
		Point:    f.Project(at),
		LngLat:   at,
		Original: original,
	}
	for _, reg := range f.snapshot() {
		if reg.active && reg.event == event && reg.layerID == layerID {
			reg.fn(e)
		}
	}
}

// FireStyleReload simulates a style swap: every registered source and
// layer is invalidated, then styledata fires once the new style is
// loaded.
func (f *Fake) FireStyleReload() {
	f.sources = make(map[string]host.SourceSpec)
	f.layers = make(map[string]host.LayerSpec)
	f.layerOrder = nil

	for _, reg := range f.snapshot() {
		if reg.active && reg.event == host.EventStyleData {
			reg.fn(host.PointerEvent{Type: host.EventStyleData})
		}
	}
}

func (f *Fake) snapshot() []*listenerReg {
	regs := make([]*listenerReg, len(f.listeners))
	copy(regs, f.listeners)
	return regs
}

// ListenerCount returns the number of live listeners for (event,
// layerID).
func (f *Fake) ListenerCount(event, layerID string) int {
	n := 0
	for _, reg := range f.listeners {
		if reg.active && reg.event == event && reg.layerID == layerID {
			n++
		}
	}
	return n
}

// TotalListeners returns the number of live listeners of any kind.
func (f *Fake) TotalListeners() int { return len(f.listeners) }

// SourceCount returns the number of registered sources.
func (f *Fake) SourceCount() int { return len(f.sources) }

// LayerOrder returns the layer ids bottom to top.
func (f *Fake) LayerOrder() []string {
	order := make([]string, len(f.layerOrder))
	copy(order, f.layerOrder)
	return order
}

// Source returns the spec registered under id.
func (f *Fake) Source(id string) (host.SourceSpec, bool) {
	spec, ok := f.sources[id]
	return spec, ok
}

// Layer returns the spec registered under id.
func (f *Fake) Layer(id string) (host.LayerSpec, bool) {
	spec, ok := f.layers[id]
	return spec, ok
}
