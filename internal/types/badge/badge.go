package badge

import (
	"time"

	"github.com/google/uuid"
)

// TypeChallenge tags badges that challenges can hand out.
const TypeChallenge = "challenge"

type Badge struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Image       string    `json:"image" db:"image"`
	Category    string    `json:"category" db:"category"`
	Description string    `json:"description" db:"description"`
	Type        string    `json:"type" db:"type"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
