package user

import (
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
	LevelExpert       Level = "Expert"
	LevelMaster       Level = "Master"
)

// UserBadge is one entry of a user's badge shelf. Repeat awards bump Quantity.
type UserBadge struct {
	BadgeID  uuid.UUID `json:"badgeId"`
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Image    string    `json:"image"`
	Quantity int       `json:"quantity"`
}

type User struct {
	ID                 uuid.UUID   `json:"id" db:"id"`
	ClerkID            string      `json:"clerkId" db:"clerk_id"`
	Email              string      `json:"email" db:"email"`
	Username           string      `json:"username" db:"username"`
	ImageURL           string      `json:"imageUrl,omitempty" db:"image_url"`
	Points             float64     `json:"points" db:"points"`
	Level              Level       `json:"level" db:"level"`
	TotalTimeInSeconds int64       `json:"totalTimeInSeconds" db:"total_time_in_seconds"`
	TotalCaloriesBurnt float64     `json:"totalCaloriesBurnt" db:"total_calories_burnt"`
	Badges             []UserBadge `json:"badges" db:"badges"`
	CreatedAt          time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time   `json:"updatedAt" db:"updated_at"`
}

type CreateUserRequest struct {
	ClerkID  string `json:"clerk_id" validate:"required"`
	Email    string `json:"email"`
	Username string `json:"username"`
	ImageURL string `json:"image_url"`
}

type UpdateProfileRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	ImageURL string `json:"image_url"`
}
