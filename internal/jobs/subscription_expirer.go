package jobs

import (
	"context"
	"log"
	"time"

	"mindhaven/internal/repositories"
	"mindhaven/internal/services"
)

// SubscriptionExpirer lapses subscriptions whose period has ended. It is
// the server-side counterpart of the immediate FREE downgrade: a row the
// user never cancels still stops granting access once its period is over.
type SubscriptionExpirer struct {
	subscriptionRepo repositories.SubscriptionRepository
	moodRepo         repositories.MoodRepository
	moodSvc          services.MoodService
	achievementSvc   services.AchievementService
}

func NewSubscriptionExpirer(
	subscriptionRepo repositories.SubscriptionRepository,
	moodRepo repositories.MoodRepository,
	moodSvc services.MoodService,
	achievementSvc services.AchievementService,
) *SubscriptionExpirer {
	return &SubscriptionExpirer{
		subscriptionRepo: subscriptionRepo,
		moodRepo:         moodRepo,
		moodSvc:          moodSvc,
		achievementSvc:   achievementSvc,
	}
}

// ExpireLapsed marks active rows past their period end as canceled.
func (e *SubscriptionExpirer) ExpireLapsed(ctx context.Context) {
	expired, err := e.subscriptionRepo.ExpireLapsed(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("Subscription expiry sweep failed: %v", err)
		return
	}
	if expired > 0 {
		log.Printf("Expired %d lapsed subscriptions", expired)
	}
}

// RefreshStreakAwards re-evaluates streak achievements for recently active
// users. Awards are idempotent so re-running is safe.
func (e *SubscriptionExpirer) RefreshStreakAwards(ctx context.Context) {
	since := time.Now().UTC().AddDate(0, 0, -2)
	userIDs, err := e.moodRepo.ActiveUserIDs(ctx, since)
	if err != nil {
		log.Printf("Streak refresh failed to list active users: %v", err)
		return
	}

	for _, userID := range userIDs {
		streak, err := e.moodSvc.CurrentStreak(ctx, userID)
		if err != nil {
			log.Printf("Streak refresh failed for user %s: %v", userID, err)
			continue
		}
		if err := e.achievementSvc.AwardStreak(ctx, userID, streak); err != nil {
			log.Printf("Streak award failed for user %s: %v", userID, err)
		}
	}
}
