package history_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsprackett/usagetray/internal/history"
)

func openTestDB(t *testing.T, size int) *history.DB {
	t.Helper()
	store, err := history.Open(size)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInsertAndRecent(t *testing.T) {
	store := openTestDB(t, 10)
	base := time.Date(2026, 2, 16, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Insert(history.Snapshot{
			Ts:           base.Add(time.Duration(i) * time.Minute),
			FiveHourUtil: float64(10 * i),
			SevenDayUtil: 5,
		}))
	}

	snaps, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.Equal(t, 20.0, snaps[0].FiveHourUtil, "newest first")
	assert.True(t, snaps[0].Ts.Equal(base.Add(2*time.Minute)))
}

func TestInsertPrunesToSize(t *testing.T) {
	store := openTestDB(t, 3)
	base := time.Date(2026, 2, 16, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Insert(history.Snapshot{
			Ts:           base.Add(time.Duration(i) * time.Minute),
			FiveHourUtil: float64(i),
		}))
	}

	snaps, err := store.Recent(100)
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.Equal(t, 4.0, snaps[0].FiveHourUtil)
	assert.Equal(t, 2.0, snaps[2].FiveHourUtil)
}

func TestTrendsSkipAbsent(t *testing.T) {
	store := openTestDB(t, 10)
	base := time.Date(2026, 2, 16, 10, 0, 0, 0, time.UTC)

	rows := []history.Snapshot{
		{FiveHourUtil: 10, SevenDayUtil: -1},
		{FiveHourUtil: 20, SevenDayUtil: 3},
		{FiveHourUtil: -1, SevenDayUtil: 4},
	}
	for i, s := range rows {
		s.Ts = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Insert(s))
	}

	five, seven, err := store.Trends()
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20}, five)
	assert.Equal(t, []float64{3, 4}, seven)
}

func TestOpenClampsSize(t *testing.T) {
	store := openTestDB(t, 0)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Insert(history.Snapshot{Ts: time.Now()}))
	}
	snaps, err := store.Recent(10)
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}
