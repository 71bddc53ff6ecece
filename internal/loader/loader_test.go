package loader

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/reallocation-screener/internal/models"
)

type fakeSource struct {
	tables map[string]*models.RawTable
	calls  int32
}

func (f *fakeSource) FetchTable(_ context.Context, name string) (*models.RawTable, error) {
	atomic.AddInt32(&f.calls, 1)
	t, ok := f.tables[name]
	if !ok {
		return nil, errors.New("no such table: " + name)
	}
	return t, nil
}

func ns(s string) sql.NullString { return sql.NullString{String: s, Valid: true} }

var null = sql.NullString{}

func mainTable() *models.RawTable {
	return &models.RawTable{
		Columns: []string{
			models.ColCreatedAt, models.ColDestPrefecture, models.ColDestCityWard,
			models.ColDistanceKm, models.ColStartPortID, models.ColReturnPortID,
			models.SourceColLat, models.SourceColLon, models.ColDisplayName, "備考",
		},
		Rows: [][]sql.NullString{
			{ns("2024-05-01 10:00:00"), ns("東京都"), ns("新宿区"), ns("3.5"), ns("101"), ns("202.0"), ns("35.69"), ns("139.70"), ns("PT-A"), ns("memo")},
			{ns("not a date"), ns("千葉県"), null, ns("far"), ns("x"), null, ns(""), ns("140.1"), null, null},
		},
	}
}

func TestLoadCoercesTypes(t *testing.T) {
	src := &fakeSource{tables: map[string]*models.RawTable{
		"main": mainTable(),
		"master": {
			Columns: []string{"ST_ID"},
			Rows:    [][]sql.NullString{{ns("101")}, {null}, {ns("7.0")}, {ns("101")}, {ns("oops")}},
		},
	}}

	ds, err := New(src, Tables{Main: "main", Master: "master"}, nil).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int64{101, 7}, ds.ExcludeIDs)
	require.Equal(t, 2, ds.Table.Len())

	first := ds.Table.Records[0]
	assert.True(t, first.CreatedAt.Valid)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), first.CreatedAt.Time)
	assert.Equal(t, 3.5, first.DistanceKm.Float64)
	assert.Equal(t, int64(202), first.ReturnPortID.Int64)
	assert.Equal(t, 35.69, first.Lat.Float64)
	assert.Equal(t, "新宿区", first.DestCityKey)
	assert.Equal(t, ns("memo"), first.Extra["備考"])

	second := ds.Table.Records[1]
	assert.False(t, second.CreatedAt.Valid)
	assert.False(t, second.DistanceKm.Valid)
	assert.False(t, second.StartPortID.Valid)
	assert.False(t, second.Lat.Valid)
	assert.Equal(t, "", second.DestCityKey)

	assert.True(t, ds.Table.Has(models.ColLat))
	assert.False(t, ds.Table.Has(models.SourceColLat))
	assert.True(t, ds.Table.Has(models.ColDestCityKey))
	assert.False(t, ds.Table.Has(models.ColOriginCityKey))
}

func TestLoadMasterMissingFallsBack(t *testing.T) {
	src := &fakeSource{tables: map[string]*models.RawTable{"main": mainTable()}}

	ds, err := New(src, Tables{Main: "main", Master: "master"}, nil).Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, ds.ExcludeIDs)
	assert.Empty(t, ds.ExcludeIDs)
	assert.Equal(t, 2, ds.Table.Len())
}

func TestLoadMainMissingIsFatal(t *testing.T) {
	src := &fakeSource{tables: map[string]*models.RawTable{}}

	_, err := New(src, Tables{Main: "main", Master: "master"}, nil).Load(context.Background())
	assert.ErrorIs(t, err, ErrMainSourceUnavailable)
}

func TestExcludedStationIDs(t *testing.T) {
	tests := []struct {
		name   string
		master *models.RawTable
		want   []int64
	}{
		{name: "nil master", master: nil, want: []int64{}},
		{name: "missing column", master: &models.RawTable{Columns: []string{"OTHER"}, Rows: [][]sql.NullString{{ns("1")}}}, want: []int64{}},
		{
			name: "distinct non-null integers",
			master: &models.RawTable{Columns: []string{"ST_ID"}, Rows: [][]sql.NullString{
				{ns("3")}, {ns(" 3 ")}, {null}, {ns("2.5")}, {ns("4.0")}, {ns("-1")},
			}},
			want: []int64{3, 4, -1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExcludedStationIDs(tt.master, "ST_ID"))
		})
	}
}

func TestParseTimestampLayouts(t *testing.T) {
	for _, s := range []string{"2024-05-01T10:00:00Z", "2024-05-01 10:00:00", "2024/05/01 10:00", "2024/5/1 10:00:00", "2024-05-01"} {
		got := ParseTimestamp(ns(s))
		require.True(t, got.Valid, s)
		assert.Equal(t, 2024, got.Time.Year(), s)
		assert.Equal(t, time.May, got.Time.Month(), s)
		assert.Equal(t, 1, got.Time.Day(), s)
	}
	assert.False(t, ParseTimestamp(ns("")).Valid)
	assert.False(t, ParseTimestamp(null).Valid)
	assert.False(t, ParseTimestamp(ns("yesterday")).Valid)
}

func TestParseNumbers(t *testing.T) {
	assert.Equal(t, sql.NullFloat64{Float64: 1.25, Valid: true}, ParseFloat(ns(" 1.25 ")))
	assert.False(t, ParseFloat(ns("NaN")).Valid)
	assert.False(t, ParseFloat(ns("Inf")).Valid)
	assert.Equal(t, sql.NullInt64{Int64: 42, Valid: true}, ParseInt(ns("42.0")))
	assert.False(t, ParseInt(ns("42.5")).Valid)
	assert.False(t, ParseInt(null).Valid)
}

type countingLoader struct {
	calls int32
	err   error
	delay time.Duration
}

func (c *countingLoader) Load(context.Context) (*Dataset, error) {
	atomic.AddInt32(&c.calls, 1)
	time.Sleep(c.delay)
	if c.err != nil {
		return nil, c.err
	}
	return &Dataset{Table: models.NewTable(nil, nil), ExcludeIDs: []int64{}}, nil
}

func TestCacheMemoizesAndInvalidates(t *testing.T) {
	l := &countingLoader{}
	cache := NewCache(l)
	ctx := context.Background()

	first, err := cache.Get(ctx)
	require.NoError(t, err)
	second, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&l.calls))
	assert.True(t, cache.Loaded())

	cache.Invalidate()
	assert.False(t, cache.Loaded())

	third, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, int32(2), atomic.LoadInt32(&l.calls))
}

// gatedLoader blocks its first load until gate is closed
type gatedLoader struct {
	calls int32
	gate  chan struct{}
}

func (g *gatedLoader) Load(ctx context.Context) (*Dataset, error) {
	if atomic.AddInt32(&g.calls, 1) == 1 {
		<-g.gate
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Dataset{Table: models.NewTable(nil, nil), ExcludeIDs: []int64{}}, nil
}

func TestCacheInvalidateDuringLoadForcesFreshLoad(t *testing.T) {
	l := &gatedLoader{gate: make(chan struct{})}
	cache := NewCache(l)

	type result struct {
		ds  *Dataset
		err error
	}
	stale := make(chan result, 1)
	go func() {
		ds, err := cache.Get(context.Background())
		stale <- result{ds, err}
	}()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&l.calls) == 1 }, time.Second, time.Millisecond)

	cache.Invalidate()
	fresh, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&l.calls))

	close(l.gate)
	old := <-stale
	require.NoError(t, old.err)
	assert.NotSame(t, old.ds, fresh)

	cached, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, fresh, cached)
	assert.Equal(t, int32(2), atomic.LoadInt32(&l.calls))
}

func TestCacheSharedLoadSurvivesCallerCancel(t *testing.T) {
	l := &gatedLoader{gate: make(chan struct{})}
	cache := NewCache(l)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := cache.Get(ctx)
		first <- err
	}()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&l.calls) == 1 }, time.Second, time.Millisecond)

	second := make(chan error, 1)
	go func() {
		_, err := cache.Get(context.Background())
		second <- err
	}()

	cancel()
	close(l.gate)
	assert.NoError(t, <-first)
	assert.NoError(t, <-second)
	assert.True(t, cache.Loaded())
	assert.Equal(t, int32(1), atomic.LoadInt32(&l.calls))
}

func TestCacheCollapsesConcurrentLoads(t *testing.T) {
	l := &countingLoader{delay: 50 * time.Millisecond}
	cache := NewCache(l)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Get(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&l.calls))
}

func TestCacheDoesNotKeepErrors(t *testing.T) {
	l := &countingLoader{err: errors.New("warehouse down")}
	cache := NewCache(l)

	_, err := cache.Get(context.Background())
	require.Error(t, err)
	assert.False(t, cache.Loaded())

	l.err = nil
	_, err = cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&l.calls))
}
