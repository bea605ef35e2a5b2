package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"mindhaven/internal/models"
	"mindhaven/internal/repositories"

	"github.com/google/uuid"
)

// ErrPremiumContent reports a playback request for premium content from a
// user without a paid plan.
var ErrPremiumContent = errors.New("premium content requires a paid plan")

const playbackURLExpiry = 1 * time.Hour

// UploadMeditationRequest carries one new catalog entry and its audio.
type UploadMeditationRequest struct {
	Title           string
	Category        string
	DurationSeconds int
	Premium         bool
	Audio           io.Reader
	Size            int64
}

// MeditationService serves the guided-meditation catalog. Listing is open
// to every tier; playback of premium sessions is gated on the plan. Upload
// and Delete are reserved for the admin surface.
type MeditationService interface {
	List(ctx context.Context, category string) ([]*models.MeditationSession, error)
	Get(ctx context.Context, id uuid.UUID) (*models.MeditationSession, error)
	PlaybackURL(ctx context.Context, userID, sessionID uuid.UUID) (string, error)
	Upload(ctx context.Context, req *UploadMeditationRequest) (*models.MeditationSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type meditationService struct {
	meditationRepo  repositories.MeditationRepository
	subscriptionSvc SubscriptionService
	achievementSvc  AchievementService
	storage         MediaStorage
	audioBucket     string
}

func NewMeditationService(
	meditationRepo repositories.MeditationRepository,
	subscriptionSvc SubscriptionService,
	achievementSvc AchievementService,
	storage MediaStorage,
	audioBucket string,
) MeditationService {
	return &meditationService{
		meditationRepo:  meditationRepo,
		subscriptionSvc: subscriptionSvc,
		achievementSvc:  achievementSvc,
		storage:         storage,
		audioBucket:     audioBucket,
	}
}

func (s *meditationService) List(ctx context.Context, category string) ([]*models.MeditationSession, error) {
	return s.meditationRepo.List(ctx, category)
}

func (s *meditationService) Get(ctx context.Context, id uuid.UUID) (*models.MeditationSession, error) {
	return s.meditationRepo.GetByID(ctx, id)
}

// PlaybackURL returns a short-lived presigned URL for the session audio.
// Premium sessions require a paid effective plan.
func (s *meditationService) PlaybackURL(ctx context.Context, userID, sessionID uuid.UUID) (string, error) {
	session, err := s.meditationRepo.GetByID(ctx, sessionID)
	if err != nil {
		return "", err
	}

	if session.Premium {
		plan, err := s.subscriptionSvc.EffectivePlan(ctx, userID)
		if err != nil {
			log.Printf("Failed to resolve plan for user %s, treating as FREE: %v", userID, err)
		}
		if !plan.Paid() {
			return "", ErrPremiumContent
		}
	}

	url, err := s.storage.GetPresignedURL(ctx, s.audioBucket, session.ObjectKey, playbackURLExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign audio URL: %w", err)
	}

	if err := s.achievementSvc.Award(ctx, userID, models.AchievementFirstMeditation); err != nil {
		log.Printf("Failed to award achievement for user %s: %v", userID, err)
	}
	return url, nil
}

// Upload stores the audio in object storage and inserts the catalog row.
// The object is removed again if the insert fails, so storage does not
// accumulate orphans.
func (s *meditationService) Upload(ctx context.Context, req *UploadMeditationRequest) (*models.MeditationSession, error) {
	if req.Title == "" || req.Category == "" {
		return nil, fmt.Errorf("title and category are required")
	}
	if req.DurationSeconds <= 0 {
		return nil, fmt.Errorf("duration_seconds must be positive")
	}

	session := &models.MeditationSession{
		ID:              uuid.New(),
		Title:           req.Title,
		Category:        req.Category,
		DurationSeconds: req.DurationSeconds,
		Premium:         req.Premium,
	}
	session.ObjectKey = fmt.Sprintf("%s/%s.mp3", req.Category, session.ID)

	if err := s.storage.UploadAudio(ctx, s.audioBucket, session.ObjectKey, req.Audio, req.Size); err != nil {
		return nil, fmt.Errorf("failed to upload audio: %w", err)
	}

	if err := s.meditationRepo.Create(ctx, session); err != nil {
		if cleanupErr := s.storage.DeleteAudio(ctx, s.audioBucket, session.ObjectKey); cleanupErr != nil {
			log.Printf("Failed to remove orphaned audio %s: %v", session.ObjectKey, cleanupErr)
		}
		return nil, fmt.Errorf("failed to create meditation session: %w", err)
	}
	return session, nil
}

// Delete removes the catalog row and its audio object.
func (s *meditationService) Delete(ctx context.Context, id uuid.UUID) error {
	session, err := s.meditationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.meditationRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete meditation session: %w", err)
	}

	if err := s.storage.DeleteAudio(ctx, s.audioBucket, session.ObjectKey); err != nil {
		// The row is already gone; the object can be swept later.
		log.Printf("Failed to delete audio %s: %v", session.ObjectKey, err)
	}
	return nil
}
