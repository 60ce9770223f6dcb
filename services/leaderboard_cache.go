package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"zealAPI/internal/types/leaderboard"
)

const leaderboardKeyPrefix = "leaderboard:"

// LeaderboardCache keeps final standings of completed challenges in Redis.
// A nil cache or an unreachable Redis degrades to a miss.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewLeaderboardCache returns nil when redisURL is empty.
func NewLeaderboardCache(redisURL string, ttl time.Duration, log *zap.Logger) (*LeaderboardCache, error) {
	if redisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	opts.DialTimeout = 3 * time.Second
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second

	if ttl <= 0 {
		ttl = time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &LeaderboardCache{client: redis.NewClient(opts), ttl: ttl, log: log}, nil
}

func NewLeaderboardCacheWithClient(client *redis.Client, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{client: client, ttl: ttl, log: zap.NewNop()}
}

func leaderboardKey(challengeID uuid.UUID) string {
	return leaderboardKeyPrefix + challengeID.String()
}

func (c *LeaderboardCache) Get(ctx context.Context, challengeID uuid.UUID) ([]*leaderboard.LeaderboardEntry, bool) {
	if c == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	b, err := c.client.Get(ctx, leaderboardKey(challengeID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("leaderboard cache get failed", zap.String("challenge_id", challengeID.String()), zap.Error(err))
		}
		return nil, false
	}

	var entries []*leaderboard.LeaderboardEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		c.log.Warn("leaderboard cache entry corrupt", zap.String("challenge_id", challengeID.String()), zap.Error(err))
		return nil, false
	}
	return entries, true
}

func (c *LeaderboardCache) Set(ctx context.Context, challengeID uuid.UUID, entries []*leaderboard.LeaderboardEntry) {
	if c == nil {
		return
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.client.Set(ctx, leaderboardKey(challengeID), b, c.ttl).Err(); err != nil {
		c.log.Warn("leaderboard cache set failed", zap.String("challenge_id", challengeID.String()), zap.Error(err))
	}
}

func (c *LeaderboardCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
