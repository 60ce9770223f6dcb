package ranking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zealAPI/internal/types/progress"
)

func rec(points float64, finished *time.Time) *progress.Record {
	return &progress.Record{UserID: uuid.New(), Points: points, FinishedAt: finished}
}

func ptr(t time.Time) *time.Time { return &t }

func TestRankZeroLastThenPointsThenFinishTime(t *testing.T) {
	t1 := time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	zero := rec(0, ptr(t1))
	late := rec(50, ptr(t2))
	early := rec(50, ptr(t1))

	ranked := Rank([]*progress.Record{zero, late, early})

	require.Len(t, ranked, 3)
	assert.Same(t, early, ranked[0])
	assert.Same(t, late, ranked[1])
	assert.Same(t, zero, ranked[2])
}

func TestRankDoesNotReorderInput(t *testing.T) {
	a, b := rec(0, nil), rec(10, nil)
	in := []*progress.Record{a, b}

	_ = Rank(in)

	assert.Same(t, a, in[0])
	assert.Same(t, b, in[1])
}

func TestRankHigherPointsFirst(t *testing.T) {
	t1 := time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)
	low := rec(10, ptr(t1))
	high := rec(300, ptr(t1.Add(48*time.Hour)))
	mid := rec(120, nil)

	ranked := Rank([]*progress.Record{low, high, mid})

	assert.Equal(t, []*progress.Record{high, mid, low}, ranked)
}

func TestRankMissingFinishTimeSortsAfterSetOne(t *testing.T) {
	t1 := time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)
	never := rec(75, nil)
	done := rec(75, ptr(t1))

	ranked := Rank([]*progress.Record{never, done})

	assert.Same(t, done, ranked[0])
}

func TestRankIsStableForFullTies(t *testing.T) {
	a, b, c := rec(0, nil), rec(0, nil), rec(0, nil)

	ranked := Rank([]*progress.Record{a, b, c})

	assert.Equal(t, []*progress.Record{a, b, c}, ranked)
}

func TestEntriesAreOneBased(t *testing.T) {
	r := Rank([]*progress.Record{rec(5, nil), rec(9, nil)})

	entries := Entries(r)

	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 9.0, entries[0].Points)
	assert.Equal(t, 2, entries[1].Rank)
}
