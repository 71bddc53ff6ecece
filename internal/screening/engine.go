package screening

import (
	"errors"
	"fmt"
	"time"

	"github.com/jengzang/reallocation-screener/internal/models"
)

// ErrInvalidRange is returned for malformed or reversed date/distance bounds
var ErrInvalidRange = errors.New("invalid filter range")

type predicate func(*models.Record) bool

// ComputeView applies every active filter of state to the table and returns the
// records satisfying all of them. The input table is never modified.
func ComputeView(table *models.Table, state models.FilterState) (*models.Table, error) {
	if table.Len() == 0 {
		return nil, ErrNoData
	}
	if _, _, ok := dateBounds(table); !ok {
		return nil, ErrNoData
	}

	preds, err := predicates(table, state)
	if err != nil {
		return nil, err
	}

	return table.Filter(func(r *models.Record) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}), nil
}

func predicates(table *models.Table, state models.FilterState) ([]predicate, error) {
	var preds []predicate

	dateP, err := dateRange(state.DateFrom, state.DateTo)
	if err != nil {
		return nil, err
	}
	if dateP != nil {
		preds = append(preds, dateP)
	}

	distP, err := distanceRange(state.DistanceMin, state.DistanceMax)
	if err != nil {
		return nil, err
	}
	if distP != nil && table.Has(models.ColDistanceKm) {
		preds = append(preds, distP)
	}

	sets := []struct {
		column   string
		selected []string
		key      func(*models.Record) string
	}{
		{models.ColDestPrefecture, state.Prefectures, func(r *models.Record) string { return nullKey(r.DestPrefecture) }},
		{models.ColOriginCityKey, state.OriginCities, func(r *models.Record) string { return r.OriginCityKey }},
		{models.ColDestCityKey, state.DestCities, func(r *models.Record) string { return r.DestCityKey }},
		{models.ColDisplayName, state.DisplayNames, func(r *models.Record) string { return nullKey(r.DisplayName) }},
		{models.ColOwner, state.Owners, func(r *models.Record) string { return nullKey(r.Owner) }},
		{models.ColCategory, state.Categories, func(r *models.Record) string { return nullKey(r.Category) }},
	}
	for _, s := range sets {
		if s.selected == nil || !table.Has(s.column) {
			continue
		}
		preds = append(preds, membership(s.selected, s.key))
	}

	return preds, nil
}

func membership(selected []string, key func(*models.Record) string) predicate {
	set := make(map[string]bool, len(selected))
	for _, v := range selected {
		set[v] = true
	}
	return func(r *models.Record) bool {
		return set[key(r)]
	}
}

// dateRange builds an inclusive day-granularity predicate. Records without a
// parseable date never satisfy a constrained range.
func dateRange(from, to string) (predicate, error) {
	if from == "" && to == "" {
		return nil, nil
	}

	var lo, hi time.Time
	var err error
	if from != "" {
		if lo, err = time.Parse(DateLayout, from); err != nil {
			return nil, fmt.Errorf("%w: dateFrom %q", ErrInvalidRange, from)
		}
	}
	if to != "" {
		if hi, err = time.Parse(DateLayout, to); err != nil {
			return nil, fmt.Errorf("%w: dateTo %q", ErrInvalidRange, to)
		}
	}
	if from != "" && to != "" && hi.Before(lo) {
		return nil, fmt.Errorf("%w: dateTo before dateFrom", ErrInvalidRange)
	}

	return func(r *models.Record) bool {
		if !r.CreatedAt.Valid {
			return false
		}
		day := truncateDay(r.CreatedAt.Time)
		if from != "" && day.Before(lo) {
			return false
		}
		return to == "" || !day.After(hi)
	}, nil
}

func distanceRange(minKm, maxKm *float64) (predicate, error) {
	if minKm == nil && maxKm == nil {
		return nil, nil
	}
	if minKm != nil && maxKm != nil && *maxKm < *minKm {
		return nil, fmt.Errorf("%w: distanceMax below distanceMin", ErrInvalidRange)
	}

	return func(r *models.Record) bool {
		d := r.DistanceKm
		if !d.Valid {
			return false
		}
		if minKm != nil && d.Float64 < *minKm {
			return false
		}
		return maxKm == nil || d.Float64 <= *maxKm
	}, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dateBounds returns the earliest and latest record day; ok is false when no date parses
func dateBounds(table *models.Table) (min, max time.Time, ok bool) {
	for i := range table.Records {
		ts := table.Records[i].CreatedAt
		if !ts.Valid {
			continue
		}
		day := truncateDay(ts.Time)
		if !ok || day.Before(min) {
			min = day
		}
		if !ok || day.After(max) {
			max = day
		}
		ok = true
	}
	return min, max, ok
}
