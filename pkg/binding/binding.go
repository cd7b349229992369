// Package binding manages one circle's footprint on the host renderer:
// its GeoJSON sources, its style layers, and its named listener
// groups.
//
// Attach and Detach are exact inverses and both are idempotent,
// because style reloads may race with explicit attach/detach calls.
// On the host's style-reload notification the binding tears down its
// bookkeeping and re-creates every source and layer from the circle's
// current data, so the overlay reappears unchanged after a style swap.
package binding

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"

	"github.com/go-drift/mapcircle/pkg/errors"
	"github.com/go-drift/mapcircle/pkg/geo"
	"github.com/go-drift/mapcircle/pkg/host"
	"github.com/go-drift/mapcircle/pkg/throttle"
)

// handleDotRadius and handleHitRadius are the painted and interactive
// pixel radii of handle points. The hit layer is invisible and larger,
// giving the user a forgiving grab target.
const (
	handleDotRadius = 5.0
	handleHitRadius = 12.0

	// sourceBuffer widens the tile buffer so clicks just outside a
	// feature still hit it.
	sourceBuffer = 16
)

// Style carries the paint attributes of a circle overlay. Colors are
// CSS color strings as accepted by the host's paint properties.
type Style struct {
	StrokeColor   string
	StrokeWeight  float64
	StrokeOpacity float64
	FillColor     string
	FillOpacity   float64
}

// Handlers are the pointer callbacks the binding routes to. Nil
// callbacks are simply not invoked.
type Handlers struct {
	OnFillClick       func(host.PointerEvent)
	OnFillContextMenu func(host.PointerEvent)
	OnFillEnter       func(host.PointerEvent)
	OnFillLeave       func(host.PointerEvent)

	// OnCenterDown and OnRadiusDown begin handle drags.
	OnCenterDown func(host.PointerEvent)
	OnRadiusDown func(host.PointerEvent)

	// OnHandleEnter/OnHandleLeave drive hover-cursor feedback; the
	// bool is true for the center handle.
	OnHandleEnter func(center bool, e host.PointerEvent)
	OnHandleLeave func(center bool, e host.PointerEvent)

	// OnDragMove receives map-wide pointer moves, rate-limited.
	OnDragMove func(host.PointerEvent)
	// OnDragEnd receives mouseup and map mouseleave. Any pending
	// rate-limited move is flushed first, so the terminal position of
	// a gesture is never dropped.
	OnDragEnd func(host.PointerEvent)

	// OnZoomEnd fires after the camera settles on a new zoom;
	// adaptive-precision circles re-tessellate on it.
	OnZoomEnd func()
}

// Config describes everything the binding needs from its circle. Ring
// and Handles are data providers so re-renders always see the live
// geometry.
type Config struct {
	InstanceID string
	Editable   bool
	// Adaptive registers the zoom listener group used by adaptive
	// precision.
	Adaptive   bool
	Style      Style
	Properties map[string]any

	Ring     func() []geo.LatLng
	Handles  func() (center geo.LatLng, radius []geo.LatLng)
	Handlers Handlers
}

// Binding owns the renderer-side resources of one circle.
type Binding struct {
	cfg      Config
	m        host.Map
	beforeID string
	attached bool

	// groups maps listener-group names to their unsubscribe
	// functions, so Detach reverses every Attach side effect with no
	// leaked listeners.
	groups map[string][]func()

	moves *throttle.Limiter[host.PointerEvent]
}

// New creates a detached binding for the given configuration.
func New(cfg Config) *Binding {
	b := &Binding{
		cfg:    cfg,
		groups: make(map[string][]func()),
	}
	b.moves = throttle.NewLimiter(throttle.DefaultInterval, func(e host.PointerEvent) {
		if b.cfg.Handlers.OnDragMove != nil {
			b.cfg.Handlers.OnDragMove(e)
		}
	})
	return b
}

// Source and layer id helpers. Everything the binding registers is
// namespaced by the circle's instance id.

func (b *Binding) PolygonSourceID() string { return "circle-" + b.cfg.InstanceID }

func (b *Binding) StrokeLayerID() string { return b.PolygonSourceID() + "-stroke" }

func (b *Binding) FillLayerID() string { return b.PolygonSourceID() + "-fill" }

func (b *Binding) CenterSourceID() string { return b.PolygonSourceID() + "-center" }

func (b *Binding) CenterDotLayerID() string { return b.CenterSourceID() + "-dot" }

func (b *Binding) CenterHitLayerID() string { return b.CenterSourceID() + "-hit" }

func (b *Binding) RadiusSourceID() string { return b.PolygonSourceID() + "-radius" }

func (b *Binding) RadiusDotLayerID() string { return b.RadiusSourceID() + "-dot" }

func (b *Binding) RadiusHitLayerID() string { return b.RadiusSourceID() + "-hit" }

// Attached reports whether the binding currently holds renderer
// resources.
func (b *Binding) Attached() bool { return b.attached }

// Map returns the renderer the binding is attached to, or nil.
func (b *Binding) Map() host.Map {
	if !b.attached {
		return nil
	}
	return b.m
}

// Attach registers the circle's sources, layers, and listener groups
// on the renderer. A non-empty beforeID inserts the circle's layers
// beneath the named layer. Attaching an already-attached binding is a
// no-op.
func (b *Binding) Attach(m host.Map, beforeID string) error {
	if b.attached {
		return nil
	}
	b.m = m
	b.beforeID = beforeID

	if err := b.createResources(); err != nil {
		return err
	}
	b.bindListeners()
	b.attached = true
	return nil
}

// Detach removes every source, layer, and listener the binding
// registered. Detaching a detached binding is a no-op.
func (b *Binding) Detach() {
	if !b.attached {
		return
	}
	for name, offs := range b.groups {
		for _, off := range offs {
			off()
		}
		delete(b.groups, name)
	}
	b.moves.Reset()
	b.removeResources()
	b.attached = false
	b.m = nil
}

// Refresh pushes the circle's current geometry into the renderer's
// sources. Called after every center, radius, or zoom change.
func (b *Binding) Refresh() error {
	const op = "binding.Refresh"
	if !b.attached {
		return nil
	}
	// A style reload may have invalidated the sources between the
	// notification and this render; re-create anything missing.
	if !b.m.HasSource(b.PolygonSourceID()) {
		if err := b.createResources(); err != nil {
			return err
		}
		return nil
	}

	if err := b.m.SetSourceData(b.PolygonSourceID(), b.polygonData()); err != nil {
		return errors.Host(op, err)
	}
	if b.cfg.Editable {
		center, handles := b.handleData()
		if err := b.m.SetSourceData(b.CenterSourceID(), center); err != nil {
			return errors.Host(op, err)
		}
		if err := b.m.SetSourceData(b.RadiusSourceID(), handles); err != nil {
			return errors.Host(op, err)
		}
	}
	return nil
}

// polygonData builds the circle polygon feature collection.
func (b *Binding) polygonData() *geojson.FeatureCollection {
	ring := b.cfg.Ring()
	coords := make([][]float64, 0, len(ring))
	for _, p := range ring {
		coords = append(coords, []float64{p.Lng, p.Lat})
	}
	feature := geojson.NewPolygonFeature([][][]float64{coords})
	for k, v := range b.cfg.Properties {
		feature.SetProperty(k, v)
	}
	fc := geojson.NewFeatureCollection()
	fc.AddFeature(feature)
	return fc
}

// handleData builds the center and radius handle collections.
func (b *Binding) handleData() (center, radius *geojson.FeatureCollection) {
	c, handles := b.cfg.Handles()

	center = geojson.NewFeatureCollection()
	center.AddFeature(geojson.NewPointFeature([]float64{c.Lng, c.Lat}))

	radius = geojson.NewFeatureCollection()
	for i, h := range handles {
		f := geojson.NewPointFeature([]float64{h.Lng, h.Lat})
		f.SetProperty("handle", i)
		radius.AddFeature(f)
	}
	return center, radius
}

// createResources registers the sources and layers that are not
// already present.
func (b *Binding) createResources() error {
	const op = "binding.createResources"

	if !b.m.HasSource(b.PolygonSourceID()) {
		spec := host.SourceSpec{Data: b.polygonData(), Buffer: sourceBuffer}
		if err := b.m.AddSource(b.PolygonSourceID(), spec); err != nil {
			return errors.Host(op, err)
		}
	}
	if err := b.addLayer(host.LayerSpec{
		ID:     b.FillLayerID(),
		Type:   host.LayerFill,
		Source: b.PolygonSourceID(),
		Paint: map[string]any{
			"fill-color":   b.cfg.Style.FillColor,
			"fill-opacity": b.cfg.Style.FillOpacity,
		},
	}); err != nil {
		return err
	}
	if err := b.addLayer(host.LayerSpec{
		ID:     b.StrokeLayerID(),
		Type:   host.LayerLine,
		Source: b.PolygonSourceID(),
		Paint: map[string]any{
			"line-color":   b.cfg.Style.StrokeColor,
			"line-width":   b.cfg.Style.StrokeWeight,
			"line-opacity": b.cfg.Style.StrokeOpacity,
		},
	}); err != nil {
		return err
	}

	if !b.cfg.Editable {
		return nil
	}

	centerData, radiusData := b.handleData()
	if !b.m.HasSource(b.CenterSourceID()) {
		spec := host.SourceSpec{Data: centerData, Buffer: sourceBuffer}
		if err := b.m.AddSource(b.CenterSourceID(), spec); err != nil {
			return errors.Host(op, err)
		}
	}
	if !b.m.HasSource(b.RadiusSourceID()) {
		spec := host.SourceSpec{Data: radiusData, Buffer: sourceBuffer}
		if err := b.m.AddSource(b.RadiusSourceID(), spec); err != nil {
			return errors.Host(op, err)
		}
	}

	handleLayers := []struct {
		id, source string
		hit        bool
	}{
		{b.CenterDotLayerID(), b.CenterSourceID(), false},
		{b.CenterHitLayerID(), b.CenterSourceID(), true},
		{b.RadiusDotLayerID(), b.RadiusSourceID(), false},
		{b.RadiusHitLayerID(), b.RadiusSourceID(), true},
	}
	for _, l := range handleLayers {
		paint := map[string]any{
			"circle-radius": handleDotRadius,
			"circle-color":  b.cfg.Style.StrokeColor,
		}
		if l.hit {
			paint = map[string]any{
				"circle-radius":  handleHitRadius,
				"circle-opacity": 0.0,
			}
		}
		if err := b.addLayer(host.LayerSpec{
			ID:     l.id,
			Type:   host.LayerCircle,
			Source: l.source,
			Paint:  paint,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (b *Binding) addLayer(spec host.LayerSpec) error {
	if b.m.HasLayer(spec.ID) {
		return nil
	}
	if err := b.m.AddLayer(spec, b.beforeID); err != nil {
		return errors.Host("binding.addLayer", fmt.Errorf("layer %q: %w", spec.ID, err))
	}
	return nil
}

// removeResources unregisters layers, then their sources.
func (b *Binding) removeResources() {
	layers := []string{
		b.StrokeLayerID(), b.FillLayerID(),
		b.CenterDotLayerID(), b.CenterHitLayerID(),
		b.RadiusDotLayerID(), b.RadiusHitLayerID(),
	}
	for _, id := range layers {
		if b.m.HasLayer(id) {
			_ = b.m.RemoveLayer(id)
		}
	}
	sources := []string{b.PolygonSourceID(), b.CenterSourceID(), b.RadiusSourceID()}
	for _, id := range sources {
		if b.m.HasSource(id) {
			_ = b.m.RemoveSource(id)
		}
	}
}

// bindListeners registers the fixed catalogue of listener groups.
func (b *Binding) bindListeners() {
	h := b.cfg.Handlers

	b.addGroup("fill-pointer",
		b.on(host.EventClick, b.FillLayerID(), h.OnFillClick),
		b.on(host.EventContextMenu, b.FillLayerID(), h.OnFillContextMenu),
		b.on(host.EventMouseEnter, b.FillLayerID(), h.OnFillEnter),
		b.on(host.EventMouseLeave, b.FillLayerID(), h.OnFillLeave),
	)
	b.addGroup("style-reload",
		b.m.On(host.EventStyleData, "", func(host.PointerEvent) { b.handleStyleReload() }),
	)
	if b.cfg.Adaptive && h.OnZoomEnd != nil {
		b.addGroup("zoom",
			b.m.On(host.EventZoomEnd, "", func(host.PointerEvent) { h.OnZoomEnd() }),
		)
	}

	if !b.cfg.Editable {
		return
	}

	b.addGroup("center-drag",
		b.on(host.EventMouseDown, b.CenterHitLayerID(), h.OnCenterDown),
		b.onHandleHover(b.CenterHitLayerID(), true),
	)
	b.addGroup("radius-drag",
		b.on(host.EventMouseDown, b.RadiusHitLayerID(), h.OnRadiusDown),
		b.onHandleHover(b.RadiusHitLayerID(), false),
	)
	b.addGroup("drag-tracking",
		b.m.On(host.EventMouseMove, "", func(e host.PointerEvent) { b.moves.Call(e) }),
		b.m.On(host.EventMouseUp, "", b.endDrag),
		// A pointer leaving the canvas mid-drag behaves exactly like
		// mouseup at the last known position; no gesture is left
		// dangling.
		b.m.On(host.EventMouseLeave, "", b.endDrag),
	)
}

// on registers fn for (event, layer), tolerating nil handlers, and
// returns the unsubscribe function.
func (b *Binding) on(event, layerID string, fn func(host.PointerEvent)) func() {
	if fn == nil {
		return func() {}
	}
	return b.m.On(event, layerID, fn)
}

func (b *Binding) onHandleHover(layerID string, center bool) func() {
	h := b.cfg.Handlers
	offEnter := b.on(host.EventMouseEnter, layerID, func(e host.PointerEvent) {
		if h.OnHandleEnter != nil {
			h.OnHandleEnter(center, e)
		}
	})
	offLeave := b.on(host.EventMouseLeave, layerID, func(e host.PointerEvent) {
		if h.OnHandleLeave != nil {
			h.OnHandleLeave(center, e)
		}
	})
	return func() {
		offEnter()
		offLeave()
	}
}

func (b *Binding) addGroup(name string, offs ...func()) {
	b.groups[name] = append(b.groups[name], offs...)
}

// endDrag flushes any pending rate-limited move, then reports the
// terminal event, guaranteeing the final position of a gesture is
// processed.
func (b *Binding) endDrag(e host.PointerEvent) {
	b.moves.Flush()
	if b.cfg.Handlers.OnDragEnd != nil {
		b.cfg.Handlers.OnDragEnd(e)
	}
}

// handleStyleReload re-creates all sources and layers once the new
// style has loaded. The host invalidated the old ones; current circle
// data flows back in through the providers.
func (b *Binding) handleStyleReload() {
	if !b.attached {
		return
	}
	if err := b.createResources(); err != nil {
		if ce, ok := err.(*errors.CircleError); ok {
			ce.Circle = b.cfg.InstanceID
			errors.Report(ce)
			return
		}
		errors.Report(errors.Host("binding.handleStyleReload", err))
	}
}
