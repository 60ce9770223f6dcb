package challenge

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"zealAPI/internal/apperr"
)

type Type string

const (
	TypeZeal      Type = "zeal"
	TypeCommunity Type = "community"
	TypeFriends   Type = "friends"
)

func (t Type) Valid() bool {
	switch t {
	case TypeZeal, TypeCommunity, TypeFriends:
		return true
	}
	return false
}

type ExerciseType string

const (
	ExerciseTypeTime        ExerciseType = "time"
	ExerciseTypeReps        ExerciseType = "reps"
	ExerciseTypeTimeAndReps ExerciseType = "timeAndReps"
)

type Status string

const (
	StatusLive      Status = "Live"
	StatusCompleted Status = "Completed"
)

type BadgeCriteria string

const (
	BadgeCriteriaExclusive BadgeCriteria = "Exclusive"
	BadgeCriteriaInclusive BadgeCriteria = "Inclusive"
)

func (b BadgeCriteria) Valid() bool {
	return b == BadgeCriteriaExclusive || b == BadgeCriteriaInclusive
}

type Exercise struct {
	ID       uuid.UUID    `json:"id"`
	Name     string       `json:"name"`
	Reps     int          `json:"reps"`
	Sets     int          `json:"sets"`
	Duration int          `json:"duration"`
	Kind     ExerciseType `json:"kind"`
}

// WeekdayPattern is one entry of the weekly on/off pattern.
type WeekdayPattern struct {
	Day      string `json:"day" validate:"required"`
	IsActive bool   `json:"isActive"`
}

type ActiveDay struct {
	Day        string    `json:"day"`
	IsActive   bool      `json:"isActive"`
	Date       time.Time `json:"date"`
	WeekNumber int       `json:"weekNumber"`
}

type Challenge struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	CreatorID      uuid.UUID      `json:"creator_id" db:"creator_id"`
	Name           string         `json:"name" db:"name"`
	Image          string         `json:"image" db:"image"`
	BadgeCriteria  *BadgeCriteria `json:"badge_criteria,omitempty" db:"badge_criteria"`
	BadgeID        *uuid.UUID     `json:"badge_id,omitempty" db:"badge_id"`
	ChallengeStart time.Time      `json:"challenge_start" db:"challenge_start"`
	ChallengeEnd   time.Time      `json:"challenge_end" db:"challenge_end"`
	Type           Type           `json:"type" db:"type"`
	ExerciseType   ExerciseType   `json:"exercise_type" db:"exercise_type"`
	Status         Status         `json:"status" db:"status"`
	Exercises      []Exercise     `json:"exercises" db:"exercises"`
	ActiveDays     []ActiveDay    `json:"active_days" db:"active_days"`
	Users          []uuid.UUID    `json:"users" db:"users"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

type NewParams struct {
	CreatorID      uuid.UUID
	Name           string
	Image          string
	BadgeCriteria  *BadgeCriteria
	BadgeID        *uuid.UUID
	ChallengeStart time.Time
	ChallengeEnd   time.Time
	Type           Type
	Exercises      []Exercise
}

// New builds a Live challenge over an already derived schedule.
func New(p NewParams, days []ActiveDay, now time.Time) (*Challenge, error) {
	if !p.Type.Valid() {
		return nil, fmt.Errorf("unknown challenge type %q: %w", p.Type, apperr.ErrInvariantViolation)
	}
	if p.BadgeCriteria != nil {
		if !p.BadgeCriteria.Valid() {
			return nil, fmt.Errorf("unknown badge criteria %q: %w", *p.BadgeCriteria, apperr.ErrInvariantViolation)
		}
		if p.BadgeID == nil {
			return nil, fmt.Errorf("badge criteria set without a badge: %w", apperr.ErrInvariantViolation)
		}
	}

	exercises := make([]Exercise, len(p.Exercises))
	for i, e := range p.Exercises {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		exercises[i] = e
	}

	return &Challenge{
		ID:             uuid.New(),
		CreatorID:      p.CreatorID,
		Name:           p.Name,
		Image:          p.Image,
		BadgeCriteria:  p.BadgeCriteria,
		BadgeID:        p.BadgeID,
		ChallengeStart: p.ChallengeStart,
		ChallengeEnd:   p.ChallengeEnd,
		Type:           p.Type,
		ExerciseType:   DeriveExerciseType(exercises),
		Status:         StatusLive,
		Exercises:      exercises,
		ActiveDays:     days,
		Users:          []uuid.UUID{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// DeriveExerciseType collapses per-exercise kinds into the challenge tag.
func DeriveExerciseType(exercises []Exercise) ExerciseType {
	var hasTime, hasReps bool
	for _, e := range exercises {
		switch e.Kind {
		case ExerciseTypeTime:
			hasTime = true
		case ExerciseTypeReps:
			hasReps = true
		case ExerciseTypeTimeAndReps:
			hasTime, hasReps = true, true
		}
	}
	switch {
	case hasTime && hasReps:
		return ExerciseTypeTimeAndReps
	case hasTime:
		return ExerciseTypeTime
	default:
		return ExerciseTypeReps
	}
}

func (c *Challenge) HasParticipants() bool {
	return len(c.Users) > 0
}

func (c *Challenge) HasJoined(userID uuid.UUID) bool {
	for _, id := range c.Users {
		if id == userID {
			return true
		}
	}
	return false
}

// EnsureMutable rejects schedule changes and deletion once anybody joined.
func (c *Challenge) EnsureMutable() error {
	if c.HasParticipants() {
		return fmt.Errorf("challenge %s has %d joined users: %w", c.ID, len(c.Users), apperr.ErrInvariantViolation)
	}
	if c.Status == StatusCompleted {
		return fmt.Errorf("challenge %s is completed: %w", c.ID, apperr.ErrInvariantViolation)
	}
	return nil
}

func (c *Challenge) Reschedule(start, end time.Time, days []ActiveDay, now time.Time) error {
	if err := c.EnsureMutable(); err != nil {
		return err
	}
	c.ChallengeStart = start
	c.ChallengeEnd = end
	c.ActiveDays = days
	c.UpdatedAt = now
	return nil
}

// Join registers the user. The returned days are the active entries to seed progress from.
func (c *Challenge) Join(userID uuid.UUID, now time.Time) ([]ActiveDay, error) {
	if c.Status == StatusCompleted {
		return nil, fmt.Errorf("challenge %s is completed: %w", c.ID, apperr.ErrInvariantViolation)
	}
	if c.HasJoined(userID) {
		return nil, fmt.Errorf("user %s already joined challenge %s: %w", userID, c.ID, apperr.ErrInvariantViolation)
	}
	c.Users = append(c.Users, userID)
	c.UpdatedAt = now
	return c.ScheduledDays(), nil
}

// ScheduledDays returns only the days flagged active.
func (c *Challenge) ScheduledDays() []ActiveDay {
	var days []ActiveDay
	for _, d := range c.ActiveDays {
		if d.IsActive {
			days = append(days, d)
		}
	}
	return days
}

// IsDue reports whether a live challenge ended strictly before now.
func (c *Challenge) IsDue(now time.Time) bool {
	return c.Status == StatusLive && c.ChallengeEnd.Before(now)
}

func NormalizeDay(day string) string {
	return strings.ToLower(strings.TrimSpace(day))
}

type CreateChallengeRequest struct {
	Name           string           `json:"name" validate:"required"`
	Image          string           `json:"image"`
	BadgeCriteria  *BadgeCriteria   `json:"badge_criteria,omitempty" validate:"omitempty,oneof=Exclusive Inclusive"`
	BadgeID        *uuid.UUID       `json:"badge_id,omitempty"`
	ChallengeStart time.Time        `json:"challenge_start" validate:"required"`
	ChallengeEnd   time.Time        `json:"challenge_end" validate:"required"`
	Type           Type             `json:"type" validate:"required,oneof=zeal community friends"`
	Exercises      []Exercise       `json:"exercises" validate:"required,min=1"`
	Days           []WeekdayPattern `json:"days" validate:"required,min=1,max=7,dive"`
}

type UpdateScheduleRequest struct {
	ChallengeStart time.Time        `json:"challenge_start" validate:"required"`
	ChallengeEnd   time.Time        `json:"challenge_end" validate:"required"`
	Days           []WeekdayPattern `json:"days" validate:"required,min=1,max=7,dive"`
}
