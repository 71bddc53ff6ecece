package presentation

import (
	geojson "github.com/paulmach/go.geojson"

	"github.com/jengzang/reallocation-screener/internal/models"
	"github.com/jengzang/reallocation-screener/internal/screening"
	"github.com/jengzang/reallocation-screener/internal/spatial"
)

// Tooltip is the hover template rendered by scatter-plot clients
const Tooltip = "<b>表示名:</b> {表示名}<br/>" +
	"<b>再配置先:</b> {再配置先都道府県}<br/>" +
	"<b>距離:</b> {再配置距離(km)} km<br/>" +
	"<b>St.ID:</b> {Start Port Id} → {Return Port Id}"

// LegendEntry explains one map color
type LegendEntry struct {
	Color models.Color `json:"color"`
	Label string       `json:"label"`
}

// MapOptions holds the camera defaults
type MapOptions struct {
	Zoom  float64
	Pitch float64
}

// MapLayer is a scatter layer of the filtered view's destinations
type MapLayer struct {
	ViewState *models.MapViewState      `json:"viewState"` // nil when no record has coordinates
	Features  *geojson.FeatureCollection `json:"features"`
	Legend    []LegendEntry             `json:"legend"`
	Tooltip   string                    `json:"tooltip"`
	Radius    float64                   `json:"radius"` // meters
	Omitted   int                       `json:"omitted"` // records without coordinates
}

// BuildMap renders the records that have both coordinates as GeoJSON points.
// The camera is centered on the mean of the plotted coordinates.
func BuildMap(view *models.Table, highlight screening.StationSet, opts MapOptions) *MapLayer {
	colorizer := NewColorizer(view, highlight)
	fc := geojson.NewFeatureCollection()
	points := make([]spatial.Point, 0, view.Len())
	omitted := 0

	for i := range view.Records {
		r := &view.Records[i]
		if !r.Lat.Valid || !r.Lon.Valid {
			omitted++
			continue
		}
		points = append(points, spatial.Point{Lat: r.Lat.Float64, Lon: r.Lon.Float64})

		f := geojson.NewPointFeature([]float64{r.Lon.Float64, r.Lat.Float64})
		for _, col := range []string{models.ColDisplayName, models.ColDestPrefecture, models.ColDistanceKm, models.ColStartPortID, models.ColReturnPortID} {
			f.SetProperty(col, r.Value(col))
		}
		f.SetProperty("color", colorizer.Color(r))
		f.SetProperty("highlighted", colorizer.Highlighted(r))
		fc.AddFeature(f)
	}

	legend := []LegendEntry{{Color: models.ColorDefault, Label: "通常の再配置"}}
	if colorizer.Highlighting() {
		legend = append(legend, LegendEntry{Color: models.ColorHighlight, Label: "collection→allocationの再配置"})
	}

	return &MapLayer{
		ViewState: viewState(points, opts),
		Features:  fc,
		Legend:    legend,
		Tooltip:   Tooltip,
		Radius:    100,
		Omitted:   omitted,
	}
}

func viewState(points []spatial.Point, opts MapOptions) *models.MapViewState {
	center, ok := spatial.Centroid(points)
	if !ok {
		return nil
	}
	rect, _ := spatial.BoundingBox(points)
	lo, hi := rect.Lo(), rect.Hi()

	return &models.MapViewState{
		Latitude:  center.Lat,
		Longitude: center.Lon,
		Zoom:      opts.Zoom,
		Pitch:     opts.Pitch,
		FitZoom:   spatial.FitZoom(rect),
		Bounds: models.Bounds{
			MinLat: lo.Lat.Degrees(),
			MinLon: lo.Lng.Degrees(),
			MaxLat: hi.Lat.Degrees(),
			MaxLon: hi.Lng.Degrees(),
		},
		ExtentKm: spatial.HaversineDistance(lo.Lat.Degrees(), lo.Lng.Degrees(), hi.Lat.Degrees(), hi.Lng.Degrees()) / 1000,
	}
}
