package screening

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/reallocation-screener/internal/models"
)

func str(s string) sql.NullString { return sql.NullString{String: s, Valid: true} }
func km(f float64) sql.NullFloat64  { return sql.NullFloat64{Float64: f, Valid: true} }
func ptr(f float64) *float64        { return &f }

func at(day int) sql.NullTime {
	return sql.NullTime{Time: time.Date(2024, 5, day, 9, 30, 0, 0, time.UTC), Valid: true}
}

var fullColumns = []string{
	models.ColCreatedAt, models.ColDestPrefecture, models.ColDistanceKm,
	models.ColDisplayName, models.ColOwner, models.ColCategory,
	models.ColOriginCityKey, models.ColDestCityKey,
}

func sample() *models.Table {
	return models.NewTable(fullColumns, []models.Record{
		{CreatedAt: at(1), DestPrefecture: str("東京都"), DistanceKm: km(1.5), DisplayName: str("PT-A"), Owner: str("X社"), Category: str("電動"), OriginCityKey: "新宿区", DestCityKey: "港区"},
		{CreatedAt: at(2), DestPrefecture: str("千葉県"), DistanceKm: km(12), DisplayName: str("PT-B"), Owner: str("Y社"), Category: str("通常"), OriginCityKey: "千葉市中央区", DestCityKey: "船橋市"},
		{CreatedAt: at(3), DestPrefecture: str("東京都"), DistanceKm: km(4), DisplayName: str("PT-A"), Owner: str("X社"), Category: str("通常"), OriginCityKey: "新宿区", DestCityKey: ""},
		{CreatedAt: sql.NullTime{}, DestPrefecture: sql.NullString{}, DistanceKm: sql.NullFloat64{}, DisplayName: str("PT-C"), Owner: str("Y社"), Category: str("電動"), OriginCityKey: "港区", DestCityKey: "港区"},
	})
}

func TestBuildOptions(t *testing.T) {
	opts, err := BuildOptions(sample())
	require.NoError(t, err)

	want := &models.FilterOptions{
		DateMin:         "2024-05-01",
		DateMax:         "2024-05-03",
		Prefectures:     []string{"東京都", "千葉県", ""},
		HasOriginCities: true,
		OriginCities:    []string{"千葉市中央区", "新宿区", "港区"}, // sorted byte-wise
		HasDestCities:   true,
		DestCities:      []string{"", "港区", "船橋市"},
		DistanceMax:     12,
		DisplayNames:    []string{"PT-A", "PT-B", "PT-C"},
		HasOwners:       true,
		Owners:          []string{"X社", "Y社"},
		HasCategories:   true,
		Categories:      []string{"電動", "通常"},
	}
	if diff := cmp.Diff(want, opts); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildOptionsOptionalDimensions(t *testing.T) {
	table := models.NewTable([]string{models.ColCreatedAt, models.ColDestPrefecture}, []models.Record{
		{CreatedAt: at(1), DestPrefecture: str("東京都")},
	})

	opts, err := BuildOptions(table)
	require.NoError(t, err)
	assert.False(t, opts.HasOwners)
	assert.Nil(t, opts.Owners)
	assert.False(t, opts.HasOriginCities)
	assert.Equal(t, 0.0, opts.DistanceMax)
}

func TestNoData(t *testing.T) {
	empty := models.NewTable(fullColumns, nil)
	_, err := BuildOptions(empty)
	assert.ErrorIs(t, err, ErrNoData)
	_, err = ComputeView(empty, DefaultState())
	assert.ErrorIs(t, err, ErrNoData)

	undated := models.NewTable(fullColumns, []models.Record{{DisplayName: str("PT-A")}})
	_, err = BuildOptions(undated)
	assert.ErrorIs(t, err, ErrNoData)
	_, err = ComputeView(undated, DefaultState())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestComputeViewIdentity(t *testing.T) {
	table := sample()

	view, err := ComputeView(table, DefaultState())
	require.NoError(t, err)
	assert.Equal(t, table.Records, view.Records)

	opts, err := BuildOptions(table)
	require.NoError(t, err)
	view, err = ComputeView(table, FullSelection(opts))
	require.NoError(t, err)
	assert.Equal(t, table.Records, view.Records)
}

func TestComputeViewFilters(t *testing.T) {
	tests := []struct {
		name  string
		state models.FilterState
		want  []string // display names of surviving records
	}{
		{name: "date range inclusive", state: models.FilterState{DateFrom: "2024-05-02", DateTo: "2024-05-03"}, want: []string{"PT-B", "PT-A"}},
		{name: "date from only", state: models.FilterState{DateFrom: "2024-05-03"}, want: []string{"PT-A"}},
		{name: "distance range", state: models.FilterState{DistanceMin: ptr(0), DistanceMax: ptr(4)}, want: []string{"PT-A", "PT-A"}},
		{name: "prefecture", state: models.FilterState{Prefectures: []string{"千葉県"}}, want: []string{"PT-B"}},
		{name: "null prefecture selectable", state: models.FilterState{Prefectures: []string{""}}, want: []string{"PT-C"}},
		{name: "origin city", state: models.FilterState{OriginCities: []string{"港区"}}, want: []string{"PT-C"}},
		{name: "dest city", state: models.FilterState{DestCities: []string{"港区", "船橋市"}}, want: []string{"PT-A", "PT-B", "PT-C"}},
		{name: "display name", state: models.FilterState{DisplayNames: []string{"PT-B", "PT-C"}}, want: []string{"PT-B", "PT-C"}},
		{name: "owner and category", state: models.FilterState{Owners: []string{"X社"}, Categories: []string{"通常"}}, want: []string{"PT-A"}},
		{name: "empty selection", state: models.FilterState{Owners: []string{}}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := ComputeView(sample(), tt.state)
			require.NoError(t, err)
			got := []string{}
			for _, r := range view.Records {
				got = append(got, r.DisplayName.String)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeViewSkipsAbsentColumns(t *testing.T) {
	table := models.NewTable([]string{models.ColCreatedAt, models.ColDestPrefecture}, []models.Record{
		{CreatedAt: at(1), DestPrefecture: str("東京都")},
		{CreatedAt: at(2), DestPrefecture: str("東京都")},
	})

	view, err := ComputeView(table, models.FilterState{
		Owners:       []string{"nobody"},
		Categories:   []string{"nothing"},
		OriginCities: []string{},
		DistanceMax:  ptr(1),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, view.Len())
}

func TestComputeViewInvalidRanges(t *testing.T) {
	for _, state := range []models.FilterState{
		{DateFrom: "2024-05-03", DateTo: "2024-05-01"},
		{DateFrom: "05/01/2024"},
		{DistanceMin: ptr(5), DistanceMax: ptr(1)},
	} {
		_, err := ComputeView(sample(), state)
		assert.ErrorIs(t, err, ErrInvalidRange)
	}
}

func TestHighlightSet(t *testing.T) {
	collection := NewStationSet([]string{"A", "B"})
	allocation := NewStationSet([]string{"B", "C"})

	got := HighlightSet(collection, allocation)
	assert.Equal(t, []string{"B"}, got.Sorted())

	assert.Empty(t, HighlightSet(collection, nil))
	assert.Empty(t, HighlightSet(NewStationSet(nil), allocation))

	summary := Summarize(collection, allocation)
	assert.Equal(t, models.HighlightSummary{CollectionCount: 2, AllocationCount: 2, Matched: []string{"B"}}, summary)
}

func TestNormalizeStationID(t *testing.T) {
	tests := map[string]string{
		" 101 ": "101",
		"101.0": "101",
		"1e3":   "1000",
		"101.5": "101.5",
		"ST-9":  "ST-9",
		"   ":   "",
		"NaN":   "NaN",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeStationID(in), in)
	}
}
