// Package geo provides the spherical-earth geometry used to project
// circles onto a map.
//
// All functions are pure and deterministic: they keep no shared state
// and are safe to call from any goroutine. Positions are geographic
// WGS84-style latitude/longitude pairs in degrees; distances are in
// meters on a mean-radius sphere.
package geo

import (
	"fmt"
	"math"

	"github.com/go-drift/mapcircle/pkg/errors"
)

// EarthRadiusMeters is the mean Earth radius used for all great-circle
// calculations.
const EarthRadiusMeters = 6371008.8

// LatLng is a geographic position in degrees.
type LatLng struct {
	Lat float64
	Lng float64
}

// Valid reports whether the position is a finite coordinate with a
// latitude inside [-90, 90]. Longitude is not range-checked; it is
// normalized by the functions that consume it.
func (p LatLng) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) {
		return false
	}
	if math.IsNaN(p.Lng) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90
}

func (p LatLng) String() string {
	return fmt.Sprintf("(%g, %g)", p.Lat, p.Lng)
}

// Bounds is an axis-aligned geographic bounding box.
type Bounds struct {
	SouthWest LatLng
	NorthEast LatLng
}

// Contains reports whether p lies inside the box, borders included.
func (b Bounds) Contains(p LatLng) bool {
	return p.Lat >= b.SouthWest.Lat && p.Lat <= b.NorthEast.Lat &&
		p.Lng >= b.SouthWest.Lng && p.Lng <= b.NorthEast.Lng
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// normalizeLng wraps a longitude into [-180, 180).
func normalizeLng(deg float64) float64 {
	deg = math.Mod(deg+180, 360)
	if deg < 0 {
		deg += 360
	}
	return deg - 180
}

// Destination returns the point reached by travelling distanceMeters
// along the great circle leaving origin at the given initial bearing
// (degrees clockwise from north).
//
// Accuracy degrades when origin is within a fraction of a degree of a
// pole, where every bearing points away from the pole and the formula's
// trigonometry becomes ill-conditioned. That loss is accepted, not
// corrected.
func Destination(origin LatLng, distanceMeters, bearingDeg float64) LatLng {
	angular := distanceMeters / EarthRadiusMeters
	lat1 := radians(origin.Lat)
	lng1 := radians(origin.Lng)
	bearing := radians(bearingDeg)

	sinLat2 := math.Sin(lat1)*math.Cos(angular) +
		math.Cos(lat1)*math.Sin(angular)*math.Cos(bearing)
	lat2 := math.Asin(sinLat2)
	lng2 := lng1 + math.Atan2(
		math.Sin(bearing)*math.Sin(angular)*math.Cos(lat1),
		math.Cos(angular)-math.Sin(lat1)*sinLat2,
	)

	return LatLng{
		Lat: degrees(lat2),
		Lng: normalizeLng(degrees(lng2)),
	}
}

// Distance returns the great-circle distance between a and b in meters
// (haversine formula).
func Distance(a, b LatLng) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Bearing returns the initial great-circle bearing from a to b in
// degrees, normalized to [0, 360).
func Bearing(a, b LatLng) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLng := radians(b.Lng - a.Lng)

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)
	deg := degrees(math.Atan2(y, x))
	return math.Mod(deg+360, 360)
}

// validateCenter rejects non-finite or out-of-range centers with a
// construction error.
func validateCenter(op string, center LatLng) error {
	if !center.Valid() {
		return errors.Construction(op, fmt.Errorf("malformed center %v", center))
	}
	return nil
}
