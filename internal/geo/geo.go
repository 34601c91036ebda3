// Package geo provides great-circle distance and bounding-box math for
// geographic track points.
package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for haversine distance.
const EarthRadiusMeters = 6371000.0

// ValidCoordinate reports whether lat/lon form a usable coordinate pair.
func ValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Haversine returns the great-circle distance in meters between two
// coordinates given in decimal degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// Bounds is an axis-aligned bounding region over latitude and longitude.
// The zero value is empty; Extend on an empty Bounds initialises it.
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64

	set bool
}

// IsZero reports whether the bounds contain no points.
func (b Bounds) IsZero() bool {
	return !b.set
}

// Extend grows the bounds to include the given coordinate.
func (b *Bounds) Extend(lat, lon float64) {
	if !b.set {
		b.MinLat, b.MaxLat = lat, lat
		b.MinLon, b.MaxLon = lon, lon
		b.set = true
		return
	}
	b.MinLat = math.Min(b.MinLat, lat)
	b.MaxLat = math.Max(b.MaxLat, lat)
	b.MinLon = math.Min(b.MinLon, lon)
	b.MaxLon = math.Max(b.MaxLon, lon)
}

// Union grows the bounds to include another bounding region.
func (b *Bounds) Union(other Bounds) {
	if other.IsZero() {
		return
	}
	b.Extend(other.MinLat, other.MinLon)
	b.Extend(other.MaxLat, other.MaxLon)
}

// Center returns the midpoint of the bounds. Empty bounds yield (0, 0).
func (b Bounds) Center() (lat, lon float64) {
	if !b.set {
		return 0, 0
	}
	return (b.MinLat + b.MaxLat) / 2, (b.MinLon + b.MaxLon) / 2
}
