package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MoodEntry is one recorded mood per user per calendar day. The storage
// layer enforces uniqueness on (user_id, entry_date); recording twice on
// the same day replaces the earlier value.
type MoodEntry struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Score     int       `json:"score" db:"score"`
	Note      *string   `json:"note" db:"note"`
	EntryDate time.Time `json:"entry_date" db:"entry_date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ValidateMoodScore checks the 1..5 mood scale.
func ValidateMoodScore(score int) error {
	if score < 1 || score > 5 {
		return fmt.Errorf("mood score must be between 1 and 5")
	}
	return nil
}
