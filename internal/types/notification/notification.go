package notification

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	TypeChallengeJoined NotificationType = "challenge_joined"
	TypeNewChallenge    NotificationType = "new_challenge"
	TypeLevelUp         NotificationType = "level_up"
	TypeBadgeAwarded    NotificationType = "badge_awarded"
)

type NotificationStatus string

const (
	StatusPending NotificationStatus = "pending"
	StatusSent    NotificationStatus = "sent"
	StatusFailed  NotificationStatus = "failed"
)

type Notification struct {
	ID            uuid.UUID          `json:"id" db:"id"`
	UserID        uuid.UUID          `json:"user_id" db:"user_id"`
	Type          NotificationType   `json:"type" db:"type"`
	Status        NotificationStatus `json:"status" db:"status"`
	Title         string             `json:"title" db:"title"`
	Body          string             `json:"body" db:"body"`
	Data          map[string]any     `json:"data" db:"data"`
	SentAt        *time.Time         `json:"sent_at,omitempty" db:"sent_at"`
	FailureReason *string            `json:"failure_reason,omitempty" db:"failure_reason"`
	CreatedAt     time.Time          `json:"created_at" db:"created_at"`
}

type DeviceToken struct {
	Token    string `json:"token" db:"token"`
	Platform string `json:"platform" db:"platform"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"required,oneof=ios android web"`
}
