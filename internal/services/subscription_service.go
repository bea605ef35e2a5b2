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
	"github.com/jackc/pgx/v5"
)

var (
	// ErrNoSubscription reports a cancel on a user with no subscription row.
	ErrNoSubscription = errors.New("no subscription for user")
	// ErrPaymentReplayed reports a gateway transaction that was already consumed.
	ErrPaymentReplayed = errors.New("payment already used for an activation")
	// ErrInvalidPlan reports a plan outside the purchasable tiers.
	ErrInvalidPlan = errors.New("plan cannot be activated")
	// ErrInvalidBillingCycle reports an unknown billing cycle.
	ErrInvalidBillingCycle = errors.New("invalid billing cycle")
)

const subscriptionCacheTTL = 5 * time.Minute

// SubscriptionCache is the cache surface the service needs; the Redis
// cache service implements it.
type SubscriptionCache interface {
	GetSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	SetSubscription(ctx context.Context, subscription *models.Subscription, ttl time.Duration) error
	DeleteSubscription(ctx context.Context, userID uuid.UUID) error
}

// SubscriptionService transitions a user's subscription state on verified
// payments and answers the read path that gates feature access.
type SubscriptionService interface {
	Activate(ctx context.Context, userID uuid.UUID, plan models.Plan, cycle models.BillingCycle, orderID, paymentID, signature string) (*models.Subscription, error)
	Cancel(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	GetCurrent(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	EffectivePlan(ctx context.Context, userID uuid.UUID) (models.Plan, error)
	CancelByOrderID(ctx context.Context, orderID string) error
}

type subscriptionService struct {
	subscriptionRepo repositories.SubscriptionRepository
	paymentRepo      repositories.ProcessedPaymentRepository
	cache            SubscriptionCache
}

// NewSubscriptionService creates a new SubscriptionService instance. cache
// may be nil when Redis is not configured.
func NewSubscriptionService(
	subscriptionRepo repositories.SubscriptionRepository,
	paymentRepo repositories.ProcessedPaymentRepository,
	cache SubscriptionCache,
) SubscriptionService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		paymentRepo:      paymentRepo,
		cache:            cache,
	}
}

// Activate upserts the user's subscription row for a verified payment. The
// caller must already hold a true verdict from the signature verifier; this
// method records the transaction before writing so a replayed callback
// cannot re-trigger an activation.
func (s *subscriptionService) Activate(ctx context.Context, userID uuid.UUID, plan models.Plan, cycle models.BillingCycle, orderID, paymentID, signature string) (*models.Subscription, error) {
	if !plan.Paid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPlan, plan)
	}
	switch cycle {
	case models.BillingMonthly, models.BillingYearly:
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidBillingCycle, cycle)
	}

	err := s.paymentRepo.MarkProcessed(ctx, &models.ProcessedPayment{
		ID:                uuid.New(),
		UserID:            userID,
		RazorpayOrderID:   orderID,
		RazorpayPaymentID: paymentID,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicatePayment) {
			return nil, ErrPaymentReplayed
		}
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	now := time.Now().UTC()
	subscription := &models.Subscription{
		ID:                 uuid.New(),
		UserID:             userID,
		Plan:               plan,
		Status:             models.SubscriptionActive,
		BillingCycle:       cycle,
		RazorpayOrderID:    orderID,
		RazorpayPaymentID:  paymentID,
		RazorpaySignature:  signature,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.Add(cycle.PeriodDuration()),
		CancelAtPeriodEnd:  false,
	}

	if err := s.subscriptionRepo.Upsert(ctx, subscription); err != nil {
		return nil, fmt.Errorf("failed to persist subscription: %w", err)
	}
	s.invalidate(ctx, userID)

	// Post-write read so the caller sees the stored row, ids included.
	stored, err := s.subscriptionRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read back subscription: %w", err)
	}
	return stored, nil
}

// Cancel flips the existing row to canceled. It is not an upsert.
func (s *subscriptionService) Cancel(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	if err := s.subscriptionRepo.Cancel(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSubscription
		}
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}
	s.invalidate(ctx, userID)

	return s.subscriptionRepo.GetByUserID(ctx, userID)
}

// GetCurrent returns the user's subscription row, or nil when none exists.
func (s *subscriptionService) GetCurrent(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetSubscription(ctx, userID); err == nil && cached != nil {
			return cached, nil
		}
	}

	subscription, err := s.subscriptionRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetSubscription(ctx, subscription, subscriptionCacheTTL); err != nil {
			log.Printf("Failed to cache subscription for user %s: %v", userID, err)
		}
	}
	return subscription, nil
}

// EffectivePlan resolves the plan that gates feature access. A read failure
// degrades to FREE with the error surfaced so callers can report a
// non-fatal indicator instead of blocking.
func (s *subscriptionService) EffectivePlan(ctx context.Context, userID uuid.UUID) (models.Plan, error) {
	subscription, err := s.GetCurrent(ctx, userID)
	if err != nil {
		return models.PlanFree, err
	}
	return subscription.EffectivePlan(), nil
}

// CancelByOrderID handles the gateway's server-to-server cancellation
// event, which identifies the subscription by order rather than by user.
func (s *subscriptionService) CancelByOrderID(ctx context.Context, orderID string) error {
	subscription, err := s.subscriptionRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNoSubscription
		}
		return err
	}
	if err := s.subscriptionRepo.SetStatusByOrderID(ctx, orderID, models.SubscriptionCanceled); err != nil {
		return err
	}
	s.invalidate(ctx, subscription.UserID)
	return nil
}

func (s *subscriptionService) invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteSubscription(ctx, userID); err != nil {
		log.Printf("Failed to invalidate subscription cache for user %s: %v", userID, err)
	}
}
