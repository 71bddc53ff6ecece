// Package screening builds the analyst-facing filter options and computes filtered views.
package screening

import (
	"database/sql"
	"errors"
	"sort"

	"github.com/jengzang/reallocation-screener/internal/models"
	"github.com/jengzang/reallocation-screener/internal/stats"
)

// DateLayout is the layout of date bounds in filter options and state
const DateLayout = "2006-01-02"

// ErrNoData is returned when there is nothing to screen: the table is empty or no date parses
var ErrNoData = errors.New("no data to display")

// BuildOptions derives the selectable values of every dimension from the table.
// Distinct values keep their order of first appearance; city keys are sorted.
func BuildOptions(table *models.Table) (*models.FilterOptions, error) {
	minDate, maxDate, ok := dateBounds(table)
	if table.Len() == 0 || !ok {
		return nil, ErrNoData
	}

	opts := &models.FilterOptions{
		DateMin:      minDate.Format(DateLayout),
		DateMax:      maxDate.Format(DateLayout),
		Prefectures:  distinct(table, func(r *models.Record) sql.NullString { return r.DestPrefecture }),
		DisplayNames: distinct(table, func(r *models.Record) sql.NullString { return r.DisplayName }),
		DistanceMax:  stats.Max(distances(table)),
	}

	if table.Has(models.ColOriginCityKey) {
		opts.HasOriginCities = true
		opts.OriginCities = sortedKeys(table, func(r *models.Record) string { return r.OriginCityKey })
	}
	if table.Has(models.ColDestCityKey) {
		opts.HasDestCities = true
		opts.DestCities = sortedKeys(table, func(r *models.Record) string { return r.DestCityKey })
	}
	if table.Has(models.ColOwner) {
		opts.HasOwners = true
		opts.Owners = distinct(table, func(r *models.Record) sql.NullString { return r.Owner })
	}
	if table.Has(models.ColCategory) {
		opts.HasCategories = true
		opts.Categories = distinct(table, func(r *models.Record) sql.NullString { return r.Category })
	}

	return opts, nil
}

// DefaultState is the "everything selected" state: all dimensions unconstrained
func DefaultState() models.FilterState {
	return models.FilterState{}
}

// FullSelection returns a state that explicitly selects every listed option.
// Range bounds stay open so records with null dates or distances are kept.
func FullSelection(opts *models.FilterOptions) models.FilterState {
	return models.FilterState{
		Prefectures:  clone(opts.Prefectures),
		OriginCities: clone(opts.OriginCities),
		DestCities:   clone(opts.DestCities),
		DisplayNames: clone(opts.DisplayNames),
		Owners:       clone(opts.Owners),
		Categories:   clone(opts.Categories),
	}
}

func clone(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string{}, values...)
}

// nullKey maps a nullable string to its selection key; null selects as ""
func nullKey(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

func distinct(table *models.Table, get func(*models.Record) sql.NullString) []string {
	seen := make(map[string]bool)
	out := []string{}
	for i := range table.Records {
		k := nullKey(get(&table.Records[i]))
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func sortedKeys(table *models.Table, get func(*models.Record) string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for i := range table.Records {
		k := get(&table.Records[i])
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func distances(table *models.Table) []float64 {
	values := make([]float64, 0, table.Len())
	for i := range table.Records {
		if d := table.Records[i].DistanceKm; d.Valid {
			values = append(values, d.Float64)
		}
	}
	return values
}
