package models

// FilterState represents the analyst's current selection for every filter dimension.
// A nil set or an empty bound means "all"; a non-nil empty set selects nothing.
type FilterState struct {
	DateFrom     string   `json:"dateFrom,omitempty" form:"dateFrom"` // YYYY-MM-DD, inclusive
	DateTo       string   `json:"dateTo,omitempty" form:"dateTo"`     // YYYY-MM-DD, inclusive
	Prefectures  []string `json:"prefectures,omitempty" form:"prefecture"`
	OriginCities []string `json:"originCities,omitempty" form:"originCity"`
	DestCities   []string `json:"destCities,omitempty" form:"destCity"`
	DistanceMin  *float64 `json:"distanceMin,omitempty" form:"distanceMin"` // km
	DistanceMax  *float64 `json:"distanceMax,omitempty" form:"distanceMax"` // km
	DisplayNames []string `json:"displayNames,omitempty" form:"displayName"`
	Owners       []string `json:"owners,omitempty" form:"owner"`
	Categories   []string `json:"categories,omitempty" form:"category"`
}

// FilterOptions lists the selectable values of each dimension, derived from the cleaned table
type FilterOptions struct {
	DateMin     string   `json:"dateMin"`
	DateMax     string   `json:"dateMax"`
	Prefectures []string `json:"prefectures"`

	HasOriginCities bool     `json:"hasOriginCities"`
	OriginCities    []string `json:"originCities,omitempty"`
	HasDestCities   bool     `json:"hasDestCities"`
	DestCities      []string `json:"destCities,omitempty"`

	DistanceMax  float64  `json:"distanceMax"` // km
	DisplayNames []string `json:"displayNames"`

	HasOwners     bool     `json:"hasOwners"`
	Owners        []string `json:"owners,omitempty"`
	HasCategories bool     `json:"hasCategories"`
	Categories    []string `json:"categories,omitempty"`
}

// ViewRequest is the body accepted by the view, map and export endpoints
type ViewRequest struct {
	Clean         *bool       `json:"clean,omitempty"` // defaults to true
	Filters       FilterState `json:"filters"`
	CollectionIDs []string    `json:"collectionIds,omitempty"`
	AllocationIDs []string    `json:"allocationIds,omitempty"`
}

// CleaningEnabled resolves the cleaning toggle, which is on unless explicitly disabled
func (r ViewRequest) CleaningEnabled() bool {
	return r.Clean == nil || *r.Clean
}
