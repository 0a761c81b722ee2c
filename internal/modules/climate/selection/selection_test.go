package selection

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghcn-dashboard/internal/modules/climate/repository"
	"ghcn-dashboard/internal/modules/climate/types"
)

func f(v float64) *float64 { return &v }

// yearRows builds a full year of rows, 366 for leap years.
func yearRows(year int) []types.DailyRecord {
	days := 365
	if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
		days = 366
	}
	rows := make([]types.DailyRecord, 0, days)
	for d := 1; d <= days; d++ {
		rows = append(rows, types.DailyRecord{Year: year, DayOfYear: d, TMax: f(20), TMin: f(10)})
	}
	return rows
}

func table(id, name string, years ...int) types.Table {
	t := types.Table{Station: types.Station{ID: id, Name: name}}
	for _, y := range years {
		t.Records = append(t.Records, yearRows(y)...)
	}
	return t
}

func testCatalog() *repository.Catalog {
	return repository.NewCatalog([]types.Table{
		table("USW00094728", "New York, NY", 1999, 2000),
		table("USW00094846", "Chicago, IL", 2019, 2020, 2023),
		table("USW00012839", "Miami, FL"),
	})
}

func TestNew_DefaultsToFirstCityLatestYear(t *testing.T) {
	v := New(testCatalog())

	snap := v.Snapshot()
	assert.Equal(t, State{City: "Chicago, IL", Year: 2023}, snap.State)
	assert.Equal(t, "Weather Data for Chicago, IL in 2023", snap.Title)
	assert.Len(t, snap.Rows, 365)
	assert.Equal(t, []int{2019, 2020, 2023}, snap.Years())
	assert.False(t, snap.Empty())
}

func TestSelect_ValidPair(t *testing.T) {
	v := New(testCatalog())

	require.True(t, v.Select("New York, NY", 2000))

	snap := v.Snapshot()
	assert.Equal(t, State{City: "New York, NY", Year: 2000}, snap.State)
	assert.Equal(t, "Weather Data for New York, NY in 2000", snap.Title)
	require.Len(t, snap.Rows, 366)
	for i, r := range snap.Rows {
		assert.Equal(t, 2000, r.Year)
		assert.Equal(t, i+1, r.DayOfYear)
	}
}

func TestSelect_RepeatedIsStable(t *testing.T) {
	v := New(testCatalog())

	require.True(t, v.Select("Chicago, IL", 2020))
	first := v.Snapshot().Rows
	require.True(t, v.Select("Chicago, IL", 2020))
	second := v.Snapshot().Rows

	assert.Equal(t, first, second)
	assert.LessOrEqual(t, len(second), 366)
	seen := make(map[int]bool)
	for _, r := range second {
		assert.False(t, seen[r.DayOfYear], "duplicate day %d", r.DayOfYear)
		seen[r.DayOfYear] = true
	}
}

func TestSelect_MissingYearKeepsPreviousState(t *testing.T) {
	v := New(testCatalog())
	require.True(t, v.Select("New York, NY", 1999))
	before := v.Snapshot()

	assert.False(t, v.Select("Chicago, IL", 1999))

	after := v.Snapshot()
	assert.Equal(t, before.State, after.State)
	assert.Equal(t, before.Rows, after.Rows)
	assert.Equal(t, before.Title, after.Title)
	assert.Equal(t, before, after)

	require.True(t, v.Select("Chicago, IL", 2019))
	assert.Equal(t, State{City: "Chicago, IL", Year: 2019}, v.State())
}

func TestSelect_UnknownOrUnusableCity(t *testing.T) {
	v := New(testCatalog())
	before := v.State()

	assert.False(t, v.Select("Springfield", 2020))
	assert.False(t, v.Select("Miami, FL", 2020), "station without data is not selectable")
	assert.Equal(t, before, v.State())
}

func TestEmptyCatalog(t *testing.T) {
	v := New(repository.NewCatalog(nil))

	snap := v.Snapshot()
	assert.True(t, snap.Empty())
	assert.Empty(t, snap.Title)
	assert.Empty(t, snap.Rows)
	assert.False(t, v.Select("Chicago, IL", 2020))
}

func TestPreview_DoesNotMutate(t *testing.T) {
	v := New(testCatalog())
	before := v.State()

	rows, title, ok := v.Preview("New York, NY", 1999)
	require.True(t, ok)
	assert.Len(t, rows, 365)
	assert.Equal(t, "Weather Data for New York, NY in 1999", title)
	assert.Equal(t, before, v.State())

	_, _, ok = v.Preview("New York, NY", 1850)
	assert.False(t, ok)
	_, _, ok = v.Preview("Atlantis", 2000)
	assert.False(t, ok)
}

func TestSelect_Concurrent(t *testing.T) {
	v := New(testCatalog())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				v.Select("Chicago, IL", 2020)
			} else {
				v.Select("New York, NY", 2000)
			}
		}(i)
		go func() {
			defer wg.Done()
			snap := v.Snapshot()
			for _, r := range snap.Rows {
				if r.Year != snap.State.Year {
					t.Errorf("row year %d does not match state year %d", r.Year, snap.State.Year)
					return
				}
			}
		}()
	}
	wg.Wait()
}
