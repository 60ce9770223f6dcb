// Package points converts progress increases into point awards and maps
// accumulated points to levels.
package points

import (
	"fmt"

	"zealAPI/internal/apperr"
	"zealAPI/internal/types/challenge"
	"zealAPI/internal/types/progress"
)

// CommunityMultiplier scales community progress into stored points.
const CommunityMultiplier = 3

// rule updates rec.Points from rec.TotalProgress and returns the amount to add
// to the user's running total. It never lowers rec.Points.
type rule func(rec *progress.Record) float64

var rules = map[challenge.Type]rule{
	challenge.TypeCommunity: communityRule,
	challenge.TypeFriends:   friendsRule,
	challenge.TypeZeal:      zealRule,
}

// The stored value is 3x scaled; dividing it back recovers the progress
// already rewarded.
func communityRule(rec *progress.Record) float64 {
	pointsInDB := rec.Points / CommunityMultiplier
	newPoints := rec.TotalProgress - pointsInDB
	if newPoints <= 0 {
		return 0
	}
	rec.Points = rec.TotalProgress * CommunityMultiplier
	return newPoints * CommunityMultiplier
}

func friendsRule(rec *progress.Record) float64 {
	newPoints := rec.TotalProgress - rec.Points
	if newPoints <= 0 {
		return 0
	}
	rec.Points = rec.TotalProgress
	return newPoints
}

func zealRule(rec *progress.Record) float64 {
	return 0
}

// Award applies the rule for the record's snapshotted challenge type.
func Award(rec *progress.Record) (float64, error) {
	r, ok := rules[rec.ChallengeType]
	if !ok {
		return 0, fmt.Errorf("no points rule for challenge type %q: %w", rec.ChallengeType, apperr.ErrInvariantViolation)
	}
	return r(rec), nil
}
