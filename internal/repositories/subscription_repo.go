package repositories

import (
	"context"
	"time"

	"mindhaven/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type SubscriptionRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	GetByOrderID(ctx context.Context, orderID string) (*models.Subscription, error)
	Upsert(ctx context.Context, subscription *models.Subscription) error
	Cancel(ctx context.Context, userID uuid.UUID) error
	SetStatusByOrderID(ctx context.Context, orderID string, status models.SubscriptionStatus) error
	ExpireLapsed(ctx context.Context, now time.Time) (int64, error)
}

type subscriptionRepo struct {
	db Database
}

func NewSubscriptionRepo(db Database) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

const subscriptionColumns = `id, user_id, plan, status, billing_cycle, razorpay_order_id, razorpay_payment_id, razorpay_signature, current_period_start, current_period_end, cancel_at_period_end, created_at, updated_at`

func scanSubscription(row pgx.Row) (*models.Subscription, error) {
	subscription := &models.Subscription{}
	err := row.Scan(
		&subscription.ID,
		&subscription.UserID,
		&subscription.Plan,
		&subscription.Status,
		&subscription.BillingCycle,
		&subscription.RazorpayOrderID,
		&subscription.RazorpayPaymentID,
		&subscription.RazorpaySignature,
		&subscription.CurrentPeriodStart,
		&subscription.CurrentPeriodEnd,
		&subscription.CancelAtPeriodEnd,
		&subscription.CreatedAt,
		&subscription.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return subscription, nil
}

func (r *subscriptionRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE user_id = $1
	`
	return scanSubscription(r.db.QueryRow(ctx, query, userID))
}

func (r *subscriptionRepo) GetByOrderID(ctx context.Context, orderID string) (*models.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE razorpay_order_id = $1
	`
	return scanSubscription(r.db.QueryRow(ctx, query, orderID))
}

// Upsert creates the single subscription row for the user or replaces its
// state in place. The unique constraint on user_id is what makes a second
// activation a replace instead of a second row.
func (r *subscriptionRepo) Upsert(ctx context.Context, subscription *models.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, user_id, plan, status, billing_cycle, razorpay_order_id, razorpay_payment_id, razorpay_signature, current_period_start, current_period_end, cancel_at_period_end, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			plan = EXCLUDED.plan,
			status = EXCLUDED.status,
			billing_cycle = EXCLUDED.billing_cycle,
			razorpay_order_id = EXCLUDED.razorpay_order_id,
			razorpay_payment_id = EXCLUDED.razorpay_payment_id,
			razorpay_signature = EXCLUDED.razorpay_signature,
			current_period_start = EXCLUDED.current_period_start,
			current_period_end = EXCLUDED.current_period_end,
			cancel_at_period_end = EXCLUDED.cancel_at_period_end,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query,
		subscription.ID,
		subscription.UserID,
		subscription.Plan,
		subscription.Status,
		subscription.BillingCycle,
		subscription.RazorpayOrderID,
		subscription.RazorpayPaymentID,
		subscription.RazorpaySignature,
		subscription.CurrentPeriodStart,
		subscription.CurrentPeriodEnd,
		subscription.CancelAtPeriodEnd,
	)
	return err
}

// Cancel flips the row to canceled. It is not an upsert: a user without a
// subscription row gets pgx.ErrNoRows.
func (r *subscriptionRepo) Cancel(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE subscriptions
		SET status = $1, cancel_at_period_end = TRUE, updated_at = NOW()
		WHERE user_id = $2
	`
	tag, err := r.db.Exec(ctx, query, models.SubscriptionCanceled, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *subscriptionRepo) SetStatusByOrderID(ctx context.Context, orderID string, status models.SubscriptionStatus) error {
	query := `
		UPDATE subscriptions
		SET status = $1, updated_at = NOW()
		WHERE razorpay_order_id = $2
	`
	tag, err := r.db.Exec(ctx, query, status, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ExpireLapsed cancels active rows whose billing period has ended.
func (r *subscriptionRepo) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE subscriptions
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND current_period_end < $3
	`
	tag, err := r.db.Exec(ctx, query, models.SubscriptionCanceled, models.SubscriptionActive, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
