package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus is the lifecycle state of a subscription row.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// BillingCycle is the recurrence basis of a paid subscription.
type BillingCycle string

const (
	BillingMonthly BillingCycle = "monthly"
	BillingYearly  BillingCycle = "yearly"
)

// ParseBillingCycle converts a wire string into a BillingCycle.
func ParseBillingCycle(s string) (BillingCycle, error) {
	switch BillingCycle(s) {
	case BillingMonthly, BillingYearly:
		return BillingCycle(s), nil
	}
	return "", fmt.Errorf("invalid billing cycle: %q", s)
}

// PeriodDuration returns the exact length of one billing period:
// 30 days for monthly, 365 days for yearly.
func (b BillingCycle) PeriodDuration() time.Duration {
	if b == BillingYearly {
		return 365 * 24 * time.Hour
	}
	return 30 * 24 * time.Hour
}

// Subscription is the single persisted subscription row per user. The
// storage layer enforces at most one row per user_id.
type Subscription struct {
	ID                 uuid.UUID          `json:"id" db:"id"`
	UserID             uuid.UUID          `json:"user_id" db:"user_id"`
	Plan               Plan               `json:"plan" db:"plan"`
	Status             SubscriptionStatus `json:"status" db:"status"`
	BillingCycle       BillingCycle       `json:"billing_cycle" db:"billing_cycle"`
	RazorpayOrderID    string             `json:"razorpay_order_id" db:"razorpay_order_id"`
	RazorpayPaymentID  string             `json:"razorpay_payment_id" db:"razorpay_payment_id"`
	RazorpaySignature  string             `json:"-" db:"razorpay_signature"`
	CurrentPeriodStart time.Time          `json:"current_period_start" db:"current_period_start"`
	CurrentPeriodEnd   time.Time          `json:"current_period_end" db:"current_period_end"`
	CancelAtPeriodEnd  bool               `json:"cancel_at_period_end" db:"cancel_at_period_end"`
	CreatedAt          time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" db:"updated_at"`
}

// EffectivePlan returns the plan the user is actually entitled to. Only an
// active row honors the stored plan; a missing or canceled row is FREE.
func (s *Subscription) EffectivePlan() Plan {
	if s == nil || s.Status != SubscriptionActive {
		return PlanFree
	}
	return s.Plan
}
