package leaderboard

import (
	"time"

	"github.com/google/uuid"
)

type LeaderboardEntry struct {
	UserID        uuid.UUID  `json:"user_id" db:"user_id"`
	Username      string     `json:"username" db:"username"`
	ImageURL      string     `json:"image_url" db:"image_url"`
	Points        float64    `json:"points" db:"points"`
	TotalProgress float64    `json:"total_progress" db:"total_progress"`
	FinishedAt    *time.Time `json:"finished_at,omitempty" db:"finished_at"`
	Rank          int        `json:"rank" db:"rank"`
}

type Leaderboard struct {
	ChallengeID  uuid.UUID           `json:"challenge_id"`
	Entries      []*LeaderboardEntry `json:"entries"`
	UserPosition *LeaderboardEntry   `json:"user_position"`
	TotalUsers   int                 `json:"total_users"`
}
