package services

import (
	"context"
	"log"

	"mindhaven/internal/models"
	"mindhaven/internal/repositories"

	"github.com/google/uuid"
)

// AchievementService awards gamification badges. Awards are idempotent;
// calling Award for an already-held code is a no-op.
type AchievementService interface {
	Award(ctx context.Context, userID uuid.UUID, code string) error
	AwardStreak(ctx context.Context, userID uuid.UUID, streak int) error
	List(ctx context.Context, userID uuid.UUID) ([]*models.UserAchievement, error)
	Definitions(ctx context.Context) ([]*models.Achievement, error)
}

type achievementService struct {
	achievementRepo repositories.AchievementRepository
}

func NewAchievementService(achievementRepo repositories.AchievementRepository) AchievementService {
	return &achievementService{achievementRepo: achievementRepo}
}

func (s *achievementService) Award(ctx context.Context, userID uuid.UUID, code string) error {
	awarded, err := s.achievementRepo.Award(ctx, userID, code)
	if err != nil {
		return err
	}
	if awarded {
		log.Printf("Awarded achievement %s to user %s", code, userID)
	}
	return nil
}

// AwardStreak grants the streak badges the given streak length qualifies for.
func (s *achievementService) AwardStreak(ctx context.Context, userID uuid.UUID, streak int) error {
	if streak >= 7 {
		if err := s.Award(ctx, userID, models.AchievementMoodStreak7); err != nil {
			return err
		}
	}
	if streak >= 30 {
		if err := s.Award(ctx, userID, models.AchievementMoodStreak30); err != nil {
			return err
		}
	}
	return nil
}

func (s *achievementService) List(ctx context.Context, userID uuid.UUID) ([]*models.UserAchievement, error) {
	return s.achievementRepo.ListByUser(ctx, userID)
}

func (s *achievementService) Definitions(ctx context.Context) ([]*models.Achievement, error) {
	return s.achievementRepo.ListDefinitions(ctx)
}
