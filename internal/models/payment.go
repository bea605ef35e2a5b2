package models

import (
	"time"

	"github.com/google/uuid"
)

// ProcessedPayment records a gateway transaction that has already been
// consumed by the activation flow. The unique constraint on
// (razorpay_order_id, razorpay_payment_id) is what rejects replays.
type ProcessedPayment struct {
	ID                uuid.UUID `json:"id" db:"id"`
	UserID            uuid.UUID `json:"user_id" db:"user_id"`
	RazorpayOrderID   string    `json:"razorpay_order_id" db:"razorpay_order_id"`
	RazorpayPaymentID string    `json:"razorpay_payment_id" db:"razorpay_payment_id"`
	ProcessedAt       time.Time `json:"processed_at" db:"processed_at"`
}
