package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"mindhaven/internal/models"
	"mindhaven/internal/repositories"

	"github.com/google/uuid"
)

// Streak computation looks back at most this many days.
const streakLookbackDays = 60

type RecordMoodRequest struct {
	Score int     `json:"score"`
	Note  *string `json:"note"`
}

// MoodService records one mood per user per day and derives the
// consecutive-day streak that drives streak achievements.
type MoodService interface {
	Record(ctx context.Context, userID uuid.UUID, req *RecordMoodRequest) (*models.MoodEntry, error)
	History(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.MoodEntry, error)
	CurrentStreak(ctx context.Context, userID uuid.UUID) (int, error)
}

type moodService struct {
	moodRepo       repositories.MoodRepository
	achievementSvc AchievementService
}

func NewMoodService(moodRepo repositories.MoodRepository, achievementSvc AchievementService) MoodService {
	return &moodService{
		moodRepo:       moodRepo,
		achievementSvc: achievementSvc,
	}
}

func (s *moodService) Record(ctx context.Context, userID uuid.UUID, req *RecordMoodRequest) (*models.MoodEntry, error) {
	if err := models.ValidateMoodScore(req.Score); err != nil {
		return nil, err
	}

	entry := &models.MoodEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Score:     req.Score,
		Note:      req.Note,
		EntryDate: time.Now().UTC().Truncate(24 * time.Hour),
	}
	if err := s.moodRepo.Upsert(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record mood: %w", err)
	}

	streak, err := s.CurrentStreak(ctx, userID)
	if err != nil {
		log.Printf("Failed to compute streak for user %s: %v", userID, err)
		return entry, nil
	}
	if err := s.achievementSvc.AwardStreak(ctx, userID, streak); err != nil {
		log.Printf("Failed to award streak achievement for user %s: %v", userID, err)
	}

	return entry, nil
}

func (s *moodService) History(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.MoodEntry, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("range end precedes range start")
	}
	return s.moodRepo.ListRange(ctx, userID, from, to)
}

// CurrentStreak counts consecutive daily entries ending today or
// yesterday. A gap of more than one day before now means the streak is
// broken and the count is zero.
func (s *moodService) CurrentStreak(ctx context.Context, userID uuid.UUID) (int, error) {
	dates, err := s.moodRepo.ListRecentDates(ctx, userID, streakLookbackDays)
	if err != nil {
		return 0, err
	}
	if len(dates) == 0 {
		return 0, nil
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	latest := dates[0].UTC().Truncate(24 * time.Hour)
	if today.Sub(latest) > 24*time.Hour {
		return 0, nil
	}

	streak := 1
	prev := latest
	for _, d := range dates[1:] {
		day := d.UTC().Truncate(24 * time.Hour)
		if prev.Sub(day) != 24*time.Hour {
			break
		}
		streak++
		prev = day
	}
	return streak, nil
}
