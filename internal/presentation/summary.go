// Package presentation turns a filtered view into metrics, a map layer and a CSV export.
package presentation

import (
	"strconv"

	"github.com/jengzang/reallocation-screener/internal/models"
	"github.com/jengzang/reallocation-screener/internal/screening"
	"github.com/jengzang/reallocation-screener/internal/stats"
)

// Summarize computes the headline metrics. Mean and max distance are 0 for an
// empty view and when no record carries a distance.
func Summarize(view *models.Table) models.ViewSummary {
	if view == nil || view.Len() == 0 {
		return models.ViewSummary{}
	}

	values := make([]float64, 0, view.Len())
	for i := range view.Records {
		if d := view.Records[i].DistanceKm; d.Valid {
			values = append(values, d.Float64)
		}
	}
	desc := stats.Describe(values)

	return models.ViewSummary{
		Count:          view.Len(),
		MeanDistanceKm: desc.Mean,
		MaxDistanceKm:  desc.Max,
	}
}

// Colorizer assigns the display color of each record.
// Records are highlighted when their return port is in the highlight set.
type Colorizer struct {
	highlight screening.StationSet
	enabled   bool
}

// NewColorizer creates a colorizer for a view. Highlighting is off when the set is
// empty or the view has no return port column.
func NewColorizer(view *models.Table, highlight screening.StationSet) *Colorizer {
	return &Colorizer{
		highlight: highlight,
		enabled:   len(highlight) > 0 && view.Has(models.ColReturnPortID),
	}
}

// Highlighting reports whether any record can receive the alternate color
func (c *Colorizer) Highlighting() bool {
	return c.enabled
}

// Color returns the display color of a record
func (c *Colorizer) Color(r *models.Record) models.Color {
	if c.Highlighted(r) {
		return models.ColorHighlight
	}
	return models.ColorDefault
}

// Highlighted reports whether the record belongs to the highlight set.
// Return port ids are integers after load; a non-numeric id is null and never highlighted.
func (c *Colorizer) Highlighted(r *models.Record) bool {
	if !c.enabled || !r.ReturnPortID.Valid {
		return false
	}
	return c.highlight.Contains(strconv.FormatInt(r.ReturnPortID.Int64, 10))
}
