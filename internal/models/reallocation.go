package models

import (
	"database/sql"
	"time"
)

// Warehouse column names of the reallocation table
const (
	ColCreatedAt        = "作成日時"
	ColOriginPrefecture = "回収元都道府県"
	ColDestPrefecture   = "再配置先都道府県"
	ColOriginCityWard   = "回収元_市区町村+行政区"
	ColDestCityWard     = "再配置先_市区町村+行政区"
	ColDistanceKm       = "再配置距離(km)"
	ColStartPortID      = "Start Port Id"
	ColReturnPortID     = "Return Port Id"
	ColDisplayName      = "表示名"
	ColOwner            = "自転車所有企業"
	ColCategory         = "バイクカテゴリ"
	ColFlag             = "再配置_FLAG"

	// Destination coordinates are renamed on load
	SourceColLat = "緯度_再配置先"
	SourceColLon = "経度_再配置先"
	ColLat       = "lat"
	ColLon       = "lon"

	// Derived filter keys, kept in exports for auditing
	ColOriginCityKey = "_filter_回収元_詳細"
	ColDestCityKey   = "_filter_再配置先_詳細"
)

// ExportTimeLayout is the timestamp layout used when rendering records as text
const ExportTimeLayout = "2006-01-02 15:04:05"

// Record represents one reallocation event after type coercion.
// Fields that failed to parse are null rather than zero.
type Record struct {
	CreatedAt sql.NullTime

	// Administrative regions
	OriginPrefecture sql.NullString
	DestPrefecture   sql.NullString
	OriginCityWard   sql.NullString
	DestCityWard     sql.NullString

	DistanceKm   sql.NullFloat64
	StartPortID  sql.NullInt64
	ReturnPortID sql.NullInt64
	Lat          sql.NullFloat64
	Lon          sql.NullFloat64

	DisplayName sql.NullString // partner operator
	Owner       sql.NullString
	Category    sql.NullString
	Flag        sql.NullString

	OriginCityKey string
	DestCityKey   string

	// Columns the screening logic does not interpret
	Extra map[string]sql.NullString
}

// Value returns the typed value stored under a column name, or nil when null or unknown.
func (r *Record) Value(col string) interface{} {
	switch col {
	case ColCreatedAt:
		if r.CreatedAt.Valid {
			return r.CreatedAt.Time
		}
	case ColOriginPrefecture:
		return nullString(r.OriginPrefecture)
	case ColDestPrefecture:
		return nullString(r.DestPrefecture)
	case ColOriginCityWard:
		return nullString(r.OriginCityWard)
	case ColDestCityWard:
		return nullString(r.DestCityWard)
	case ColDistanceKm:
		return nullFloat(r.DistanceKm)
	case ColStartPortID:
		return nullInt(r.StartPortID)
	case ColReturnPortID:
		return nullInt(r.ReturnPortID)
	case ColLat:
		return nullFloat(r.Lat)
	case ColLon:
		return nullFloat(r.Lon)
	case ColDisplayName:
		return nullString(r.DisplayName)
	case ColOwner:
		return nullString(r.Owner)
	case ColCategory:
		return nullString(r.Category)
	case ColFlag:
		return nullString(r.Flag)
	case ColOriginCityKey:
		return r.OriginCityKey
	case ColDestCityKey:
		return r.DestCityKey
	default:
		if v, ok := r.Extra[col]; ok {
			return nullString(v)
		}
	}
	return nil
}

func nullString(v sql.NullString) interface{} {
	if !v.Valid {
		return nil
	}
	return v.String
}

func nullFloat(v sql.NullFloat64) interface{} {
	if !v.Valid {
		return nil
	}
	return v.Float64
}

func nullInt(v sql.NullInt64) interface{} {
	if !v.Valid {
		return nil
	}
	return v.Int64
}

// Table is an ordered set of records together with the columns present in the source.
// Optional dimensions are detected through Has.
type Table struct {
	Columns []string
	Records []Record

	present map[string]bool
}

// NewTable creates a table over the given columns and records
func NewTable(columns []string, records []Record) *Table {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	return &Table{Columns: columns, Records: records, present: present}
}

// Has reports whether the column exists in the table
func (t *Table) Has(col string) bool {
	return t.present[col]
}

// Len returns the number of records
func (t *Table) Len() int {
	return len(t.Records)
}

// Filter returns a new table sharing the column set and holding the records that satisfy keep.
// Surviving records are copied, never mutated.
func (t *Table) Filter(keep func(*Record) bool) *Table {
	out := make([]Record, 0, len(t.Records))
	for i := range t.Records {
		if keep(&t.Records[i]) {
			out = append(out, t.Records[i])
		}
	}
	return &Table{Columns: t.Columns, Records: out, present: t.present}
}

// Rows renders every record as a slice of values aligned with Columns
func (t *Table) Rows() [][]interface{} {
	rows := make([][]interface{}, len(t.Records))
	for i := range t.Records {
		row := make([]interface{}, len(t.Columns))
		for j, col := range t.Columns {
			v := t.Records[i].Value(col)
			if ts, ok := v.(time.Time); ok {
				v = ts.Format(ExportTimeLayout)
			}
			row[j] = v
		}
		rows[i] = row
	}
	return rows
}

// RawTable is an untyped table as returned by the warehouse
type RawTable struct {
	Columns []string
	Rows    [][]sql.NullString
}

// Index returns the position of a column, or -1
func (r *RawTable) Index(col string) int {
	for i, c := range r.Columns {
		if c == col {
			return i
		}
	}
	return -1
}
