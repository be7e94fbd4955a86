// Package geo provides the geometric primitives shared by the placement
// engine: points, bounding boxes, great-circle distance, and grid-cell area.
package geo

import (
	"math"

	"github.com/golang/geo/s2"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// EarthRadiusM is the mean Earth radius in meters.
const EarthRadiusM = 6371000.0

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BBox is a geographic bounding box in degrees.
type BBox struct {
	South float64 `json:"south"`
	North float64 `json:"north"`
	West  float64 `json:"west"`
	East  float64 `json:"east"`
}

// Validate checks the bounding box invariants (south < north, west < east).
func (b BBox) Validate() error {
	if b.South >= b.North {
		return eris.Errorf("geo: invalid bbox: south (%f) must be less than north (%f)", b.South, b.North)
	}
	if b.West >= b.East {
		return eris.Errorf("geo: invalid bbox: west (%f) must be less than east (%f)", b.West, b.East)
	}
	return nil
}

// Center returns the midpoint of the bounding box.
func (b BBox) Center() Point {
	return Point{Lat: (b.South + b.North) / 2, Lng: (b.West + b.East) / 2}
}

// Contains reports whether the point falls inside the box (inclusive).
func (b BBox) Contains(p Point) bool {
	return p.Lat >= b.South && p.Lat <= b.North && p.Lng >= b.West && p.Lng <= b.East
}

// WidthM returns the east-west extent in meters, measured at the box's
// central latitude.
func (b BBox) WidthM() float64 {
	midLat := (b.South + b.North) / 2
	return Haversine(Point{Lat: midLat, Lng: b.West}, Point{Lat: midLat, Lng: b.East})
}

// HeightM returns the north-south extent in meters.
func (b BBox) HeightM() float64 {
	return Haversine(Point{Lat: b.South, Lng: b.West}, Point{Lat: b.North, Lng: b.West})
}

// Bounds returns the box as a go-geom bounds in XY (lng, lat) order.
func (b BBox) Bounds() *geom.Bounds {
	return geom.NewBounds(geom.XY).SetCoords(
		geom.Coord{b.West, b.South},
		geom.Coord{b.East, b.North},
	)
}

// Haversine returns the great-circle distance between two points in meters.
func Haversine(a, b Point) float64 {
	la := s2.LatLngFromDegrees(a.Lat, a.Lng)
	lb := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return la.Distance(lb).Radians() * EarthRadiusM
}

// CellAreaM2 approximates the surface area of a grid cell spanning dLat by
// dLng degrees centered at the given latitude, using a spherical-cap
// approximation: R² · Δlat · Δlng · cos(lat) · (π/180)².
func CellAreaM2(latDeg, dLat, dLng float64) float64 {
	rad := math.Pi / 180.0
	return EarthRadiusM * EarthRadiusM * dLat * dLng * math.Cos(latDeg*rad) * rad * rad
}

// Zone is a circular area of interest, typically an underserved or
// food-desert zone supplied by an upstream detector.
type Zone struct {
	Name    string  `json:"name,omitempty"`
	Center  Point   `json:"center"`
	RadiusM float64 `json:"radius_m"`
}

// Contains reports whether the point falls inside the zone.
func (z Zone) Contains(p Point) bool {
	return Haversine(z.Center, p) <= z.RadiusM
}

// CirclePolygon approximates a circle of the given radius around center as a
// go-geom polygon with the given number of segments. Used for service-area
// rendering payloads.
func CirclePolygon(center Point, radiusM float64, segments int) *geom.Polygon {
	if segments < 3 {
		segments = 32
	}
	rad := math.Pi / 180.0
	latRad := center.Lat * rad

	// Meters-per-degree at this latitude.
	mPerDegLat := EarthRadiusM * rad
	mPerDegLng := EarthRadiusM * rad * math.Cos(latRad)

	coords := make([]float64, 0, (segments+1)*2)
	for i := 0; i <= segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		lng := center.Lng + radiusM*math.Cos(theta)/mPerDegLng
		lat := center.Lat + radiusM*math.Sin(theta)/mPerDegLat
		coords = append(coords, lng, lat)
	}
	return geom.NewPolygonFlat(geom.XY, coords, []int{len(coords)})
}
