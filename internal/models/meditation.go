package models

import (
	"time"

	"github.com/google/uuid"
)

// MeditationSession is one entry of the guided-meditation catalog. The
// audio itself lives in object storage under ObjectKey; Premium sessions
// are listed to everyone but playable only through the plan gate.
type MeditationSession struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Category        string    `json:"category" db:"category"`
	DurationSeconds int       `json:"duration_seconds" db:"duration_seconds"`
	ObjectKey       string    `json:"-" db:"object_key"`
	Premium         bool      `json:"premium" db:"premium"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
