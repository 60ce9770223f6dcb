package progress

import (
	"time"

	"github.com/google/uuid"

	"zealAPI/internal/types/challenge"
)

type ExerciseStatus struct {
	ExerciseID    uuid.UUID `json:"exerciseId"`
	IsFinished    bool      `json:"isFinished"`
	TimeTaken     int       `json:"timeTaken"`
	CaloriesBurnt float64   `json:"caloriesBurnt"`
}

type DailyProgress struct {
	Day                 string           `json:"day"`
	Date                time.Time        `json:"date"`
	Exercises           []ExerciseStatus `json:"exercises"`
	CompletionInPercent float64          `json:"completionInPercent"`
	IsAttempted         bool             `json:"isAttempted"`
	AttemptedAt         *time.Time       `json:"attemptedAt,omitempty"`
}

type Record struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	ChallengeID   uuid.UUID       `json:"challenge_id" db:"challenge_id"`
	UserID        uuid.UUID       `json:"user_id" db:"user_id"`
	Username      string          `json:"username,omitempty" db:"username"`
	ImageURL      string          `json:"image_url,omitempty" db:"image_url"`
	FinishedAt    *time.Time      `json:"finished_at,omitempty" db:"finished_at"`
	DailyProgress []DailyProgress `json:"daily_progress" db:"daily_progress"`
	TotalProgress float64         `json:"total_progress" db:"total_progress"`
	Points        float64         `json:"points" db:"points"`
	TotalTime     string          `json:"total_time" db:"total_time"`
	ChallengeType challenge.Type  `json:"challenge_type" db:"challenge_type"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

type CompleteExerciseRequest struct {
	TimeTaken  int       `json:"time_taken" validate:"gte=0"`
	FinishedAt time.Time `json:"finished_at" validate:"required"`
}

// CompletionResult is what a completion call hands back to the caller.
type CompletionResult struct {
	Record        *Record `json:"record"`
	PointsAwarded float64 `json:"points_awarded"`
}
