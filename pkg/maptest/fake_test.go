package maptest

import (
	"math"
	"testing"

	geojson "github.com/paulmach/go.geojson"

	"github.com/go-drift/mapcircle/pkg/geo"
	"github.com/go-drift/mapcircle/pkg/host"
)

func pointFC(lng, lat float64) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.AddFeature(geojson.NewPointFeature([]float64{lng, lat}))
	return fc
}

// TestSourceLifecycle verifies add/replace/remove of sources.
func TestSourceLifecycle(t *testing.T) {
	f := NewFake()

	if err := f.AddSource("s", host.SourceSpec{Data: pointFC(0, 0)}); err != nil {
		t.Fatalf("AddSource: %v", err)
	}
	if !f.HasSource("s") {
		t.Fatal("source should exist")
	}
	if err := f.AddSource("s", host.SourceSpec{}); err == nil {
		t.Error("duplicate AddSource should fail")
	}

	if err := f.SetSourceData("s", pointFC(1, 1)); err != nil {
		t.Fatalf("SetSourceData: %v", err)
	}
	spec, _ := f.Source("s")
	if got := spec.Data.Features[0].Geometry.Point[0]; got != 1 {
		t.Errorf("source data lng = %g, want 1", got)
	}

	if err := f.RemoveSource("s"); err != nil {
		t.Fatalf("RemoveSource: %v", err)
	}
	if err := f.RemoveSource("s"); err == nil {
		t.Error("removing a missing source should fail")
	}
}

// TestAddLayer_Ordering verifies append and before-id insertion.
func TestAddLayer_Ordering(t *testing.T) {
	f := NewFake()
	f.AddSource("s", host.SourceSpec{})

	f.AddLayer(host.LayerSpec{ID: "fill", Type: host.LayerFill, Source: "s"}, "")
	f.AddLayer(host.LayerSpec{ID: "stroke", Type: host.LayerLine, Source: "s"}, "")
	f.AddLayer(host.LayerSpec{ID: "under", Type: host.LayerFill, Source: "s"}, "stroke")

	want := []string{"fill", "under", "stroke"}
	got := f.LayerOrder()
	if len(got) != len(want) {
		t.Fatalf("layer order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("layer order = %v, want %v", got, want)
		}
	}
}

// TestAddLayer_UnknownSource verifies layers must reference an
// existing source.
func TestAddLayer_UnknownSource(t *testing.T) {
	f := NewFake()
	if err := f.AddLayer(host.LayerSpec{ID: "l", Source: "missing"}, ""); err == nil {
		t.Error("expected error for unknown source")
	}
}

// TestOn_OffIdempotent verifies listener removal is precise and
// repeatable.
func TestOn_OffIdempotent(t *testing.T) {
	f := NewFake()
	count := 0
	off := f.On(host.EventClick, "layer", func(host.PointerEvent) { count++ })

	f.FirePointer(host.EventClick, "layer", geo.LatLng{}, nil)
	off()
	off() // second call is a no-op
	f.FirePointer(host.EventClick, "layer", geo.LatLng{}, nil)

	if count != 1 {
		t.Errorf("listener fired %d times, want 1", count)
	}
	if f.TotalListeners() != 0 {
		t.Errorf("live listeners = %d, want 0", f.TotalListeners())
	}
}

// TestFirePointer_LayerScoping verifies events reach only listeners on
// the matching layer.
func TestFirePointer_LayerScoping(t *testing.T) {
	f := NewFake()
	var fired []string
	f.On(host.EventMouseDown, "a", func(host.PointerEvent) { fired = append(fired, "a") })
	f.On(host.EventMouseDown, "b", func(host.PointerEvent) { fired = append(fired, "b") })
	f.On(host.EventMouseDown, "", func(host.PointerEvent) { fired = append(fired, "map") })

	f.FirePointer(host.EventMouseDown, "a", geo.LatLng{}, nil)

	if len(fired) != 1 || fired[0] != "a" {
		t.Errorf("fired = %v, want [a]", fired)
	}
}

// TestFireStyleReload verifies a style swap invalidates sources and
// layers and notifies styledata listeners.
func TestFireStyleReload(t *testing.T) {
	f := NewFake()
	f.AddSource("s", host.SourceSpec{})
	f.AddLayer(host.LayerSpec{ID: "l", Source: "s"}, "")
	reloaded := false
	f.On(host.EventStyleData, "", func(host.PointerEvent) { reloaded = true })

	f.FireStyleReload()

	if f.HasSource("s") || f.HasLayer("l") {
		t.Error("style reload should invalidate sources and layers")
	}
	if !reloaded {
		t.Error("styledata listener should fire")
	}
}

// TestProjectUnproject_RoundTrip verifies the fake projection is
// invertible.
func TestProjectUnproject_RoundTrip(t *testing.T) {
	f := NewFake()
	f.ZoomLevel = 7
	p := geo.LatLng{Lat: 39.984, Lng: -75.343}

	back := f.Unproject(f.Project(p))

	if math.Abs(back.Lat-p.Lat) > 1e-9 || math.Abs(back.Lng-p.Lng) > 1e-9 {
		t.Errorf("round trip %v -> %v", p, back)
	}
}
