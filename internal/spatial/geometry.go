package spatial

import (
	"math"

	"github.com/golang/geo/s2"
)

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
	EarthRadiusKm     = 6371.0    // Earth's mean radius in kilometers

	// Web-mercator zoom limits used by the map layer
	MinZoom = 1.0
	MaxZoom = 18.0
)

// Point represents a 2D point with latitude and longitude
type Point struct {
	Lat float64
	Lon float64
}

// Centroid returns the arithmetic mean of the coordinates; ok is false for no points
func Centroid(points []Point) (center Point, ok bool) {
	if len(points) == 0 {
		return Point{}, false
	}

	var sumLat, sumLon float64
	for _, p := range points {
		sumLat += p.Lat
		sumLon += p.Lon
	}

	return Point{
		Lat: sumLat / float64(len(points)),
		Lon: sumLon / float64(len(points)),
	}, true
}

// BoundingBox returns the smallest lat/lng rectangle containing the points; ok is false for no points
func BoundingBox(points []Point) (rect s2.Rect, ok bool) {
	rect = s2.EmptyRect()
	for _, p := range points {
		rect = rect.AddPoint(s2.LatLngFromDegrees(p.Lat, p.Lon))
	}
	return rect, len(points) > 0
}

// HaversineDistance calculates the great-circle distance between two points in meters
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// FitZoom estimates the web-mercator zoom level at which the rectangle fits a 512px-wide viewport.
// A degenerate rectangle (single point) returns MaxZoom.
func FitZoom(rect s2.Rect) float64 {
	size := rect.Size()
	span := math.Max(size.Lat.Degrees(), size.Lng.Degrees())
	if rect.IsEmpty() || span <= 0 {
		return MaxZoom
	}

	zoom := math.Log2(360 / span)
	return math.Max(MinZoom, math.Min(MaxZoom, math.Floor(zoom*10)/10))
}
