package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"mindhaven/internal/models"
	"mindhaven/internal/repositories"

	"github.com/google/uuid"
)

// ErrJournalQuota reports that the free-plan daily entry limit is reached.
var ErrJournalQuota = errors.New("daily journal limit reached")

// Free-plan users get one entry per calendar day.
const freeJournalEntriesPerDay = 1

type CreateJournalRequest struct {
	Title   string  `json:"title"`
	Body    string  `json:"body"`
	MoodTag *string `json:"mood_tag"`
}

type JournalService interface {
	Create(ctx context.Context, userID uuid.UUID, req *CreateJournalRequest) (*models.JournalEntry, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.JournalEntry, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.JournalEntry, error)
	Update(ctx context.Context, userID, id uuid.UUID, req *CreateJournalRequest) (*models.JournalEntry, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type journalService struct {
	journalRepo     repositories.JournalRepository
	subscriptionSvc SubscriptionService
	achievementSvc  AchievementService
}

func NewJournalService(
	journalRepo repositories.JournalRepository,
	subscriptionSvc SubscriptionService,
	achievementSvc AchievementService,
) JournalService {
	return &journalService{
		journalRepo:     journalRepo,
		subscriptionSvc: subscriptionSvc,
		achievementSvc:  achievementSvc,
	}
}

func (s *journalService) Create(ctx context.Context, userID uuid.UUID, req *CreateJournalRequest) (*models.JournalEntry, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	plan, err := s.subscriptionSvc.EffectivePlan(ctx, userID)
	if err != nil {
		// Degraded subscription read resolves to FREE; quota still applies.
		log.Printf("Failed to resolve plan for user %s, treating as FREE: %v", userID, err)
	}
	if plan == models.PlanFree {
		midnight := time.Now().UTC().Truncate(24 * time.Hour)
		count, err := s.journalRepo.CountSince(ctx, userID, midnight)
		if err != nil {
			return nil, fmt.Errorf("failed to check journal quota: %w", err)
		}
		if count >= freeJournalEntriesPerDay {
			return nil, ErrJournalQuota
		}
	}

	entry := &models.JournalEntry{
		ID:      uuid.New(),
		UserID:  userID,
		Title:   req.Title,
		Body:    req.Body,
		MoodTag: req.MoodTag,
	}
	if err := s.journalRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create journal entry: %w", err)
	}

	if err := s.achievementSvc.Award(ctx, userID, models.AchievementFirstJournal); err != nil {
		log.Printf("Failed to award achievement for user %s: %v", userID, err)
	}

	return s.journalRepo.GetByID(ctx, userID, entry.ID)
}

func (s *journalService) Get(ctx context.Context, userID, id uuid.UUID) (*models.JournalEntry, error) {
	return s.journalRepo.GetByID(ctx, userID, id)
}

func (s *journalService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.JournalEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.journalRepo.List(ctx, userID, limit, offset)
}

func (s *journalService) Update(ctx context.Context, userID, id uuid.UUID, req *CreateJournalRequest) (*models.JournalEntry, error) {
	entry, err := s.journalRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	entry.Title = req.Title
	entry.Body = req.Body
	entry.MoodTag = req.MoodTag
	if err := s.journalRepo.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to update journal entry: %w", err)
	}
	return s.journalRepo.GetByID(ctx, userID, id)
}

func (s *journalService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.journalRepo.Delete(ctx, userID, id)
}
