// Package loader fetches the reallocation tables from the warehouse and coerces them into typed records.
package loader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jengzang/reallocation-screener/internal/metrics"
	"github.com/jengzang/reallocation-screener/internal/models"
)

// ErrMainSourceUnavailable wraps any failure to fetch the main event table
var ErrMainSourceUnavailable = errors.New("main reallocation table unavailable")

// Source is an external tabular data source
type Source interface {
	FetchTable(ctx context.Context, name string) (*models.RawTable, error)
}

// Tables names the tables read by the loader
type Tables struct {
	Main         string
	Master       string
	MasterColumn string
}

// Dataset is the result of one load
type Dataset struct {
	Table      *models.Table
	ExcludeIDs []int64
	LoadedAt   time.Time
}

// Info summarizes the dataset for API responses
func (d *Dataset) Info() models.DatasetInfo {
	return models.DatasetInfo{
		Rows:        d.Table.Len(),
		ExcludedIDs: len(d.ExcludeIDs),
		LoadedAt:    d.LoadedAt,
	}
}

// Loader reads and normalizes the event and exclusion master tables
type Loader struct {
	source Source
	tables Tables
	logger *zap.Logger
	now    func() time.Time
}

// New creates a loader
func New(source Source, tables Tables, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tables.MasterColumn == "" {
		tables.MasterColumn = "ST_ID"
	}
	return &Loader{source: source, tables: tables, logger: logger, now: time.Now}
}

// Load fetches both tables. A missing main table is fatal; a missing master
// table degrades to an empty exclusion list.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	start := time.Now()
	raw, err := l.source.FetchTable(ctx, l.tables.Main)
	if err != nil {
		metrics.ObserveLoad(time.Since(start), 0, err)
		return nil, fmt.Errorf("%w: %v", ErrMainSourceUnavailable, err)
	}

	var excludeIDs []int64
	if l.tables.Master == "" {
		l.logger.Warn("no exclusion master table configured")
	} else if master, err := l.source.FetchTable(ctx, l.tables.Master); err != nil {
		l.logger.Warn("exclusion master unavailable, continuing without master exclusion",
			zap.String("table", l.tables.Master), zap.Error(err))
	} else {
		excludeIDs = ExcludedStationIDs(master, l.tables.MasterColumn)
	}
	if excludeIDs == nil {
		excludeIDs = []int64{}
	}

	table := BuildTable(raw)

	metrics.ObserveLoad(time.Since(start), table.Len(), nil)
	l.logger.Info("reallocation data loaded",
		zap.Int("rows", table.Len()),
		zap.Int("columns", len(table.Columns)),
		zap.Int("excluded_ids", len(excludeIDs)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &Dataset{Table: table, ExcludeIDs: excludeIDs, LoadedAt: l.now()}, nil
}

// ExcludedStationIDs returns the distinct integer-coercible identifiers of the master
// column in order of first appearance. A missing column yields an empty list.
func ExcludedStationIDs(master *models.RawTable, column string) []int64 {
	ids := []int64{}
	if master == nil {
		return ids
	}
	idx := master.Index(column)
	if idx < 0 {
		return ids
	}

	seen := make(map[int64]bool)
	for _, row := range master.Rows {
		id := ParseInt(row[idx])
		if !id.Valid || seen[id.Int64] {
			continue
		}
		seen[id.Int64] = true
		ids = append(ids, id.Int64)
	}
	return ids
}

// BuildTable coerces a raw warehouse table into typed records.
// Destination coordinates are renamed to lat/lon and the city filter keys are appended.
func BuildTable(raw *models.RawTable) *models.Table {
	columns := make([]string, 0, len(raw.Columns)+2)
	for _, c := range raw.Columns {
		switch c {
		case models.SourceColLat:
			columns = append(columns, models.ColLat)
		case models.SourceColLon:
			columns = append(columns, models.ColLon)
		default:
			columns = append(columns, c)
		}
	}

	hasOriginWard := raw.Index(models.ColOriginCityWard) >= 0
	hasDestWard := raw.Index(models.ColDestCityWard) >= 0
	if hasOriginWard {
		columns = append(columns, models.ColOriginCityKey)
	}
	if hasDestWard {
		columns = append(columns, models.ColDestCityKey)
	}

	records := make([]models.Record, len(raw.Rows))
	for i, row := range raw.Rows {
		rec := &records[i]
		for j, col := range raw.Columns {
			assign(rec, col, row[j])
		}
		if hasOriginWard {
			rec.OriginCityKey = cityKey(rec.OriginCityWard)
		}
		if hasDestWard {
			rec.DestCityKey = cityKey(rec.DestCityWard)
		}
	}

	return models.NewTable(columns, records)
}

// cityKey derives the city filter key. The key mirrors the city+ward column with
// nulls mapped to the empty string so they stay selectable.
func cityKey(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

func assign(rec *models.Record, col string, v sql.NullString) {
	switch col {
	case models.ColCreatedAt:
		rec.CreatedAt = ParseTimestamp(v)
	case models.ColOriginPrefecture:
		rec.OriginPrefecture = v
	case models.ColDestPrefecture:
		rec.DestPrefecture = v
	case models.ColOriginCityWard:
		rec.OriginCityWard = v
	case models.ColDestCityWard:
		rec.DestCityWard = v
	case models.ColDistanceKm:
		rec.DistanceKm = ParseFloat(v)
	case models.ColStartPortID:
		rec.StartPortID = ParseInt(v)
	case models.ColReturnPortID:
		rec.ReturnPortID = ParseInt(v)
	case models.SourceColLat, models.ColLat:
		rec.Lat = ParseFloat(v)
	case models.SourceColLon, models.ColLon:
		rec.Lon = ParseFloat(v)
	case models.ColDisplayName:
		rec.DisplayName = v
	case models.ColOwner:
		rec.Owner = v
	case models.ColCategory:
		rec.Category = v
	case models.ColFlag:
		rec.Flag = v
	default:
		if rec.Extra == nil {
			rec.Extra = make(map[string]sql.NullString)
		}
		rec.Extra[col] = v
	}
}
