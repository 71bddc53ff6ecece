package screening

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/jengzang/reallocation-screener/internal/models"
)

// StationSet is a set of normalized station identifiers
type StationSet map[string]struct{}

// NewStationSet normalizes ids into a set, dropping blanks
func NewStationSet(ids []string) StationSet {
	set := make(StationSet, len(ids))
	for _, id := range ids {
		if n := NormalizeStationID(id); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// Contains reports membership
func (s StationSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order
func (s StationSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// HighlightSet returns the stations present in both lists.
// It is empty whenever either list is empty.
func HighlightSet(collection, allocation StationSet) StationSet {
	out := make(StationSet)
	if len(collection) == 0 || len(allocation) == 0 {
		return out
	}
	small, large := collection, allocation
	if len(large) < len(small) {
		small, large = large, small
	}
	for id := range small {
		if large.Contains(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Summarize describes the two uploaded lists and their intersection
func Summarize(collection, allocation StationSet) models.HighlightSummary {
	return models.HighlightSummary{
		CollectionCount: len(collection),
		AllocationCount: len(allocation),
		Matched:         HighlightSet(collection, allocation).Sorted(),
	}
}

// NormalizeStationID trims an identifier and renders integral numbers without a
// fractional part, so "101", " 101 " and "101.0" compare equal.
func NormalizeStationID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(id, 64); err == nil && !math.IsInf(f, 0) && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return id
}
