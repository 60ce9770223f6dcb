package points

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zealAPI/internal/apperr"
	"zealAPI/internal/types/challenge"
	"zealAPI/internal/types/progress"
	"zealAPI/internal/types/user"
)

func TestCommunityAwardsTripledDelta(t *testing.T) {
	rec := &progress.Record{ChallengeType: challenge.TypeCommunity}

	rec.TotalProgress = 16.67
	delta, err := Award(rec)
	require.NoError(t, err)
	assert.InDelta(t, 50.01, delta, 1e-9)
	assert.InDelta(t, 50.01, rec.Points, 1e-9)

	rec.TotalProgress = 50
	delta, err = Award(rec)
	require.NoError(t, err)
	assert.InDelta(t, (50-16.67)*3, delta, 1e-9)
	assert.InDelta(t, 150, rec.Points, 1e-9)
}

func TestCommunityRepeatedProgressAwardsNothing(t *testing.T) {
	rec := &progress.Record{ChallengeType: challenge.TypeCommunity, TotalProgress: 40}
	_, err := Award(rec)
	require.NoError(t, err)

	delta, err := Award(rec)
	require.NoError(t, err)
	assert.Zero(t, delta)
	assert.InDelta(t, 120, rec.Points, 1e-9)
}

func TestFriendsAwardsRawDelta(t *testing.T) {
	rec := &progress.Record{ChallengeType: challenge.TypeFriends, TotalProgress: 33.33}

	delta, err := Award(rec)
	require.NoError(t, err)
	assert.InDelta(t, 33.33, delta, 1e-9)

	rec.TotalProgress = 66.67
	delta, err = Award(rec)
	require.NoError(t, err)
	assert.InDelta(t, 33.34, delta, 1e-9)
	assert.InDelta(t, 66.67, rec.Points, 1e-9)
}

func TestZealNeverAwards(t *testing.T) {
	rec := &progress.Record{ChallengeType: challenge.TypeZeal, TotalProgress: 100}

	delta, err := Award(rec)

	require.NoError(t, err)
	assert.Zero(t, delta)
	assert.Zero(t, rec.Points)
}

func TestAwardNeverDecreases(t *testing.T) {
	for _, typ := range []challenge.Type{challenge.TypeCommunity, challenge.TypeFriends, challenge.TypeZeal} {
		rec := &progress.Record{ChallengeType: typ}
		var userPoints float64
		for _, p := range []float64{10, 25, 5, 25, 0, 60, 59.99, 100, 30} {
			before := rec.Points
			rec.TotalProgress = p
			delta, err := Award(rec)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, delta, 0.0, "type %s", typ)
			assert.GreaterOrEqual(t, rec.Points, before, "type %s", typ)
			userPoints += delta
		}
		assert.InDelta(t, rec.Points, userPoints, 1e-9, "type %s", typ)
	}
}

func TestUnknownTypeIsRejected(t *testing.T) {
	rec := &progress.Record{ChallengeType: "solo", TotalProgress: 10}

	_, err := Award(rec)

	assert.ErrorIs(t, err, apperr.ErrInvariantViolation)
	assert.Zero(t, rec.Points)
}

func TestLevelFor(t *testing.T) {
	cases := []struct {
		points float64
		want   user.Level
	}{
		{0, user.LevelBeginner},
		{999.99, user.LevelBeginner},
		{1000, user.LevelIntermediate},
		{1999, user.LevelIntermediate},
		{2000, user.LevelAdvanced},
		{3000, user.LevelExpert},
		{3999.5, user.LevelExpert},
		{4000, user.LevelMaster},
		{125000, user.LevelMaster},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, LevelFor(tc.points), "points %v", tc.points)
	}
}
