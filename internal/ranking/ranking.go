// Package ranking orders a challenge's participants for the leaderboard.
package ranking

import (
	"slices"
	"time"

	"zealAPI/internal/types/leaderboard"
	"zealAPI/internal/types/progress"
)

// Rank returns a stably sorted copy: zero-point records last, then higher
// points first, then earlier finishedAt first. A missing finishedAt sorts
// after any set one.
func Rank(records []*progress.Record) []*progress.Record {
	ranked := slices.Clone(records)
	slices.SortStableFunc(ranked, compare)
	return ranked
}

func compare(a, b *progress.Record) int {
	aZero, bZero := a.Points == 0, b.Points == 0
	if aZero != bZero {
		if aZero {
			return 1
		}
		return -1
	}
	if a.Points != b.Points {
		if a.Points > b.Points {
			return -1
		}
		return 1
	}
	return compareFinished(a.FinishedAt, b.FinishedAt)
}

func compareFinished(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}

// Entries renders ranked records as 1-based leaderboard rows.
func Entries(ranked []*progress.Record) []*leaderboard.LeaderboardEntry {
	entries := make([]*leaderboard.LeaderboardEntry, 0, len(ranked))
	for i, r := range ranked {
		entries = append(entries, &leaderboard.LeaderboardEntry{
			UserID:        r.UserID,
			Username:      r.Username,
			ImageURL:      r.ImageURL,
			Points:        r.Points,
			TotalProgress: r.TotalProgress,
			FinishedAt:    r.FinishedAt,
			Rank:          i + 1,
		})
	}
	return entries
}
