package geo

import (
	"fmt"
	"math"

	"github.com/go-drift/mapcircle/pkg/errors"
)

const (
	// DefaultSteps is the vertex count used by fixed-precision circles.
	DefaultSteps = 64

	// minSteps is the smallest ring that is still a polygon.
	minSteps = 3

	// Adaptive precision bounds. Even a sub-pixel circle keeps enough
	// vertices to look round when hit-tested, and a fully zoomed-in
	// circle never exceeds one vertex per degree of arc.
	minAdaptiveSteps = 16
	maxAdaptiveSteps = 360

	// mercatorMetersPerPixelZ0 is the Web-Mercator ground resolution at
	// the equator for zoom 0 with 512px tiles.
	mercatorMetersPerPixelZ0 = 78271.51696402048
)

// Precision selects the vertex-count policy for circle polygons.
//
// The zero value is fixed precision with DefaultSteps vertices.
type Precision struct {
	adaptive   bool
	steps      int
	maxErrorPx float64
}

// FixedPrecision returns a policy that always uses the given number of
// vertices. Counts below 3 fall back to DefaultSteps.
func FixedPrecision(steps int) Precision {
	if steps < minSteps {
		steps = DefaultSteps
	}
	return Precision{steps: steps}
}

// AdaptivePrecision returns a policy that chooses the vertex count from
// the current zoom and radius so the on-screen chord error stays below
// maxErrorPx. Non-positive thresholds default to half a pixel.
func AdaptivePrecision(maxErrorPx float64) Precision {
	if maxErrorPx <= 0 {
		maxErrorPx = 0.5
	}
	return Precision{adaptive: true, maxErrorPx: maxErrorPx}
}

// Steps returns the vertex count the policy selects for a circle of the
// given radius at the given zoom and center latitude.
func (p Precision) Steps(radiusMeters, zoom, centerLat float64) int {
	if !p.adaptive {
		if p.steps < minSteps {
			return DefaultSteps
		}
		return p.steps
	}

	// Ground resolution at the center latitude, then the apparent
	// on-screen radius in pixels.
	metersPerPixel := mercatorMetersPerPixelZ0 * math.Cos(radians(centerLat)) / math.Pow(2, zoom)
	if metersPerPixel <= 0 {
		return minAdaptiveSteps
	}
	radiusPx := radiusMeters / metersPerPixel
	if radiusPx <= p.maxErrorPx {
		return minAdaptiveSteps
	}

	// An n-gon inscribed in a circle of radius r deviates from it by
	// the sagitta r*(1-cos(pi/n)); solve for the smallest n that keeps
	// the sagitta under the threshold.
	n := math.Ceil(math.Pi / math.Acos(1-p.maxErrorPx/radiusPx))
	if n < minAdaptiveSteps {
		return minAdaptiveSteps
	}
	if n > maxAdaptiveSteps {
		return maxAdaptiveSteps
	}
	return int(n)
}

// CirclePolygon projects a circle of radiusMeters around center onto
// the ground as a closed ring of vertices (first == last), wound
// counterclockwise so fill renderers treat it as an outer ring.
//
// Valid for radii from near zero up to several thousand kilometers;
// beyond that the great-circle approximation distorts and the result is
// used as-is. Centers inside ~0.1 degrees of a pole produce degraded
// rings for the same reason (see Destination).
func CirclePolygon(center LatLng, radiusMeters, zoom float64, precision Precision) ([]LatLng, error) {
	const op = "geo.CirclePolygon"
	if err := validateCenter(op, center); err != nil {
		return nil, err
	}
	if radiusMeters <= 0 || math.IsNaN(radiusMeters) || math.IsInf(radiusMeters, 0) {
		return nil, errors.Construction(op, fmt.Errorf("radius must be positive, got %g", radiusMeters))
	}

	steps := precision.Steps(radiusMeters, zoom, center.Lat)
	ring := make([]LatLng, 0, steps+1)
	for i := 0; i < steps; i++ {
		// Decreasing bearing yields counterclockwise winding in
		// lng/lat space.
		bearing := -360 * float64(i) / float64(steps)
		ring = append(ring, Destination(center, radiusMeters, bearing))
	}
	ring = append(ring, ring[0])
	return ring, nil
}

// HandleBearings are the fixed bearings, clockwise from north, at which
// radius handles are placed.
var HandleBearings = [4]float64{0, 90, 180, 270}

// HandlePoints returns the center handle position and the radius handle
// positions at the cardinal bearings from center at the current radius.
func HandlePoints(center LatLng, radiusMeters float64) (LatLng, []LatLng, error) {
	const op = "geo.HandlePoints"
	if err := validateCenter(op, center); err != nil {
		return LatLng{}, nil, err
	}
	if radiusMeters <= 0 {
		return LatLng{}, nil, errors.Construction(op, fmt.Errorf("radius must be positive, got %g", radiusMeters))
	}

	handles := make([]LatLng, 0, len(HandleBearings))
	for _, bearing := range HandleBearings {
		handles = append(handles, Destination(center, radiusMeters, bearing))
	}
	return center, handles, nil
}

// PolygonBounds returns the axis-aligned bounding box of a ring: a
// plain min/max over vertices, not a geodesic circumscribing box. An
// empty ring yields the zero Bounds.
func PolygonBounds(ring []LatLng) Bounds {
	if len(ring) == 0 {
		return Bounds{}
	}
	b := Bounds{SouthWest: ring[0], NorthEast: ring[0]}
	for _, p := range ring[1:] {
		b.SouthWest.Lat = math.Min(b.SouthWest.Lat, p.Lat)
		b.SouthWest.Lng = math.Min(b.SouthWest.Lng, p.Lng)
		b.NorthEast.Lat = math.Max(b.NorthEast.Lat, p.Lat)
		b.NorthEast.Lng = math.Max(b.NorthEast.Lng, p.Lng)
	}
	return b
}
