package models

// Color is an RGBA tuple as consumed by scatter-plot map layers
type Color [4]int

// Display colors for map points
var (
	ColorDefault   = Color{255, 0, 0, 200} // regular reallocation
	ColorHighlight = Color{0, 0, 255, 200} // collection -> allocation match
)

// Bounds is a lat/lon bounding box
type Bounds struct {
	MinLat float64 `json:"minLat"`
	MinLon float64 `json:"minLon"`
	MaxLat float64 `json:"maxLat"`
	MaxLon float64 `json:"maxLon"`
}

// MapViewState is the initial camera of the map
type MapViewState struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      float64 `json:"zoom"`
	Pitch     float64 `json:"pitch"`
	FitZoom   float64 `json:"fitZoom"` // zoom that fits Bounds
	Bounds    Bounds  `json:"bounds"`
	ExtentKm  float64 `json:"extentKm"` // diagonal of Bounds
}
