package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCentroid(t *testing.T) {
	_, ok := Centroid(nil)
	assert.False(t, ok)

	c, ok := Centroid([]Point{{Lat: 35.0, Lon: 139.0}, {Lat: 36.0, Lon: 140.0}})
	require.True(t, ok)
	assert.InDelta(t, 35.5, c.Lat, 1e-9)
	assert.InDelta(t, 139.5, c.Lon, 1e-9)
}

func TestBoundingBox(t *testing.T) {
	_, ok := BoundingBox(nil)
	assert.False(t, ok)

	rect, ok := BoundingBox([]Point{{35.6, 139.7}, {35.9, 139.5}, {35.7, 140.1}})
	require.True(t, ok)
	assert.InDelta(t, 35.6, rect.Lo().Lat.Degrees(), 1e-9)
	assert.InDelta(t, 139.5, rect.Lo().Lng.Degrees(), 1e-9)
	assert.InDelta(t, 35.9, rect.Hi().Lat.Degrees(), 1e-9)
	assert.InDelta(t, 140.1, rect.Hi().Lng.Degrees(), 1e-9)
}

func TestFitZoom(t *testing.T) {
	single, _ := BoundingBox([]Point{{35.6, 139.7}})
	assert.Equal(t, MaxZoom, FitZoom(single))

	// about 0.7 degrees across the Tokyo area
	area, _ := BoundingBox([]Point{{35.5, 139.4}, {35.9, 140.1}})
	zoom := FitZoom(area)
	assert.Greater(t, zoom, 8.0)
	assert.Less(t, zoom, 10.0)

	world, _ := BoundingBox([]Point{{-60, -170}, {60, 170}})
	assert.GreaterOrEqual(t, FitZoom(world), MinZoom)
}

func TestHaversineDistance(t *testing.T) {
	// Tokyo station to Shinjuku station, roughly 6.2 km
	d := HaversineDistance(35.6812, 139.7671, 35.6896, 139.7006)
	assert.InDelta(t, 6100, d, 300)
	assert.Equal(t, 0.0, HaversineDistance(35, 139, 35, 139))
}
