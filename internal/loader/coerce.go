package loader

import (
	"database/sql"
	"math"
	"strconv"
	"strings"
	"time"
)

// Accepted timestamp layouts, most specific first
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
}

// ParseTimestamp coerces text into a timestamp; unparseable input yields null
func ParseTimestamp(v sql.NullString) sql.NullTime {
	if !v.Valid {
		return sql.NullTime{}
	}
	s := strings.TrimSpace(v.String)
	if s == "" {
		return sql.NullTime{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return sql.NullTime{Time: t, Valid: true}
		}
	}
	return sql.NullTime{}
}

// ParseFloat coerces text into a finite float; anything else yields null
func ParseFloat(v sql.NullString) sql.NullFloat64 {
	if !v.Valid {
		return sql.NullFloat64{}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.String), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

// ParseInt coerces text into an integer. Integral floats such as "101.0" are accepted;
// fractional values are null.
func ParseInt(v sql.NullString) sql.NullInt64 {
	if !v.Valid {
		return sql.NullInt64{}
	}
	s := strings.TrimSpace(v.String)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return sql.NullInt64{Int64: n, Valid: true}
	}
	f := ParseFloat(sql.NullString{String: s, Valid: true})
	if !f.Valid || f.Float64 != math.Trunc(f.Float64) || math.Abs(f.Float64) > 1<<53 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(f.Float64), Valid: true}
}

