package models

import "time"

// Cleaning rule names, in the order they are applied
const (
	RuleRegionScope     = "region_scope"
	RuleMasterExclusion = "master_exclusion"
	RuleFlagExclusion   = "flag_exclusion"
)

// CleaningStep reports the effect of a single cleaning rule
type CleaningStep struct {
	Rule    string `json:"rule"`
	Removed int    `json:"removed"`
	Skipped bool   `json:"skipped,omitempty"` // column absent
}

// CleaningReport summarizes a cleaning pass
type CleaningReport struct {
	Enabled  bool           `json:"enabled"`
	Before   int            `json:"before"`
	After    int            `json:"after"`
	Excluded int            `json:"excluded"`
	Steps    []CleaningStep `json:"steps,omitempty"`
}

// ViewSummary holds the headline metrics of a filtered view.
// Distances are zero for an empty view.
type ViewSummary struct {
	Count          int     `json:"count"`
	MeanDistanceKm float64 `json:"meanDistanceKm"`
	MaxDistanceKm  float64 `json:"maxDistanceKm"`
}

// HighlightSummary describes the uploaded match lists and their intersection
type HighlightSummary struct {
	CollectionCount int      `json:"collectionCount"`
	AllocationCount int      `json:"allocationCount"`
	Matched         []string `json:"matched"`
}

// DatasetInfo describes the memoized load
type DatasetInfo struct {
	Rows        int       `json:"rows"`
	ExcludedIDs int       `json:"excludedIds"`
	LoadedAt    time.Time `json:"loadedAt"`
}

// OptionsResponse is returned by the options endpoint
type OptionsResponse struct {
	Dataset  DatasetInfo    `json:"dataset"`
	Cleaning CleaningReport `json:"cleaning"`
	Options  *FilterOptions `json:"options"`
}

// ViewResponse is returned by the view endpoint
type ViewResponse struct {
	Summary   ViewSummary      `json:"summary"`
	Cleaning  CleaningReport   `json:"cleaning"`
	Highlight HighlightSummary `json:"highlight"`
	Columns   []string         `json:"columns"`
	Rows      [][]interface{}  `json:"rows"`
}
