package models

import (
	"time"

	"github.com/google/uuid"
)

// Achievement codes awarded by the gamification layer.
const (
	AchievementFirstJournal    = "first_journal"
	AchievementFirstMeditation = "first_meditation"
	AchievementMoodStreak7     = "mood_streak_7"
	AchievementMoodStreak30    = "mood_streak_30"
)

type Achievement struct {
	Code        string `json:"code" db:"code"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

// UserAchievement is an awarded achievement. Awards are idempotent: the
// storage layer ignores a second award of the same code for the same user.
type UserAchievement struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Code      string    `json:"code" db:"code"`
	AwardedAt time.Time `json:"awarded_at" db:"awarded_at"`
}
