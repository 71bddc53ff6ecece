package cleaning

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/reallocation-screener/internal/models"
)

func str(s string) sql.NullString { return sql.NullString{String: s, Valid: true} }
func id(n int64) sql.NullInt64    { return sql.NullInt64{Int64: n, Valid: true} }

var allColumns = []string{
	models.ColOriginPrefecture, models.ColDestPrefecture,
	models.ColStartPortID, models.ColReturnPortID, models.ColFlag,
}

func defaultCleaner() *Cleaner {
	return NewCleaner(Rules{
		AllowedPrefectures: []string{"埼玉県", "千葉県", "神奈川県", "東京都"},
		ExcludedFlags:      []string{"同じST", "NA"},
	})
}

func rec(origin, dest string, start, ret int64, flag string) models.Record {
	return models.Record{
		OriginPrefecture: str(origin),
		DestPrefecture:   str(dest),
		StartPortID:      id(start),
		ReturnPortID:     id(ret),
		Flag:             str(flag),
	}
}

func TestApplyRegionScope(t *testing.T) {
	table := models.NewTable(allColumns, []models.Record{
		rec("東京都", "東京都", 1, 2, "OK"),
		rec("大阪府", "東京都", 3, 4, "OK"),
		rec("東京都", "大阪府", 5, 6, "OK"),
		rec("大阪府", "大阪府", 7, 8, "OK"),
	})

	res := defaultCleaner().Apply(table, nil, true)

	require.Equal(t, 1, res.Table.Len())
	assert.Equal(t, "東京都", res.Table.Records[0].OriginPrefecture.String)
	assert.Equal(t, 4, res.Report.Before)
	assert.Equal(t, 1, res.Report.After)
	assert.Equal(t, 3, res.Report.Excluded)
	assert.Equal(t, models.CleaningStep{Rule: models.RuleRegionScope, Removed: 3}, res.Report.Steps[0])
}

func TestApplyMasterExclusion(t *testing.T) {
	table := models.NewTable(allColumns, []models.Record{
		rec("東京都", "千葉県", 101, 5, "OK"),
		rec("東京都", "千葉県", 6, 101, "OK"),
		rec("東京都", "千葉県", 7, 8, "OK"),
	})
	noIDs := rec("東京都", "千葉県", 0, 0, "OK")
	noIDs.StartPortID = sql.NullInt64{}
	noIDs.ReturnPortID = sql.NullInt64{}
	table.Records = append(table.Records, noIDs)

	res := defaultCleaner().Apply(table, []int64{101}, true)

	require.Equal(t, 2, res.Table.Len())
	assert.Equal(t, int64(7), res.Table.Records[0].StartPortID.Int64)
	assert.False(t, res.Table.Records[1].StartPortID.Valid)
	assert.Equal(t, 2, res.Report.Steps[1].Removed)
}

func TestApplyFlagExclusion(t *testing.T) {
	nullFlag := rec("東京都", "東京都", 1, 2, "")
	nullFlag.Flag = sql.NullString{}
	table := models.NewTable(allColumns, []models.Record{
		rec("東京都", "東京都", 1, 2, "同じST"),
		rec("東京都", "東京都", 1, 2, "NA"),
		nullFlag,
		rec("東京都", "東京都", 1, 2, "別ST"),
	})

	res := defaultCleaner().Apply(table, nil, true)

	require.Equal(t, 1, res.Table.Len())
	assert.Equal(t, "別ST", res.Table.Records[0].Flag.String)
	assert.Equal(t, models.CleaningStep{Rule: models.RuleFlagExclusion, Removed: 3}, res.Report.Steps[2])
}

func TestApplySkipsAbsentColumns(t *testing.T) {
	table := models.NewTable([]string{models.ColStartPortID}, []models.Record{
		{StartPortID: id(1)},
		{StartPortID: id(2)},
	})

	res := defaultCleaner().Apply(table, []int64{2}, true)

	assert.Equal(t, 1, res.Table.Len())
	assert.True(t, res.Report.Steps[0].Skipped)
	assert.False(t, res.Report.Steps[1].Skipped)
	assert.True(t, res.Report.Steps[2].Skipped)
}

func TestApplyDisabled(t *testing.T) {
	table := models.NewTable(allColumns, []models.Record{
		rec("大阪府", "大阪府", 1, 2, "NA"),
	})

	res := defaultCleaner().Apply(table, []int64{1}, false)

	assert.Same(t, table, res.Table)
	assert.False(t, res.Report.Enabled)
	assert.Equal(t, 0, res.Report.Excluded)
	assert.Empty(t, res.Report.Steps)
}

func TestApplyIsIdempotent(t *testing.T) {
	table := models.NewTable(allColumns, []models.Record{
		rec("東京都", "神奈川県", 1, 2, "OK"),
		rec("大阪府", "東京都", 3, 4, "OK"),
		rec("埼玉県", "千葉県", 101, 5, "OK"),
		rec("千葉県", "千葉県", 6, 7, "NA"),
		rec("神奈川県", "埼玉県", 8, 9, "別ST"),
	})
	c := defaultCleaner()

	once := c.Apply(table, []int64{101}, true)
	twice := c.Apply(once.Table, []int64{101}, true)

	assert.Equal(t, 2, once.Table.Len())
	assert.Equal(t, 0, twice.Report.Excluded)
	assert.Equal(t, once.Table.Records, twice.Table.Records)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	table := models.NewTable(allColumns, []models.Record{
		rec("大阪府", "東京都", 1, 2, "OK"),
		rec("東京都", "東京都", 1, 2, "OK"),
	})

	defaultCleaner().Apply(table, nil, true)

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "大阪府", table.Records[0].OriginPrefecture.String)
}
