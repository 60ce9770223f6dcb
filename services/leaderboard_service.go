package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"zealAPI/internal/ranking"
	"zealAPI/internal/types/challenge"
	"zealAPI/internal/types/leaderboard"
)

type LeaderboardService struct {
	db    *pgxpool.Pool
	cache *LeaderboardCache
}

func NewLeaderboardService(db *pgxpool.Pool, cache *LeaderboardCache) *LeaderboardService {
	return &LeaderboardService{db: db, cache: cache}
}

// GetLeaderboard ranks every participant of a challenge. Standings of a
// completed challenge no longer change, so those are served from cache.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, clerkID string, challengeID uuid.UUID) (*leaderboard.Leaderboard, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	c, err := getChallenge(ctx, s.db, challengeID, "")
	if err != nil {
		return nil, err
	}
	completed := c.Status == challenge.StatusCompleted

	entries, hit := s.cache.Get(ctx, challengeID)
	if !completed || !hit {
		records, err := recordsForChallenge(ctx, s.db, challengeID)
		if err != nil {
			return nil, err
		}
		entries = ranking.Entries(ranking.Rank(records))
		if completed {
			s.cache.Set(ctx, challengeID, entries)
		}
	}

	return buildLeaderboard(challengeID, entries, userID), nil
}

func buildLeaderboard(challengeID uuid.UUID, entries []*leaderboard.LeaderboardEntry, userID uuid.UUID) *leaderboard.Leaderboard {
	lb := &leaderboard.Leaderboard{
		ChallengeID: challengeID,
		Entries:     entries,
		TotalUsers:  len(entries),
	}
	for _, e := range entries {
		if e.UserID == userID {
			lb.UserPosition = e
			break
		}
	}
	return lb
}
