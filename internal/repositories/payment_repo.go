package repositories

import (
	"context"
	"errors"

	"mindhaven/internal/models"
)

// ErrDuplicatePayment is returned when a gateway transaction has already
// been consumed by a previous activation.
var ErrDuplicatePayment = errors.New("payment already processed")

type ProcessedPaymentRepository interface {
	MarkProcessed(ctx context.Context, payment *models.ProcessedPayment) error
}

type processedPaymentRepo struct {
	db Database
}

func NewProcessedPaymentRepo(db Database) ProcessedPaymentRepository {
	return &processedPaymentRepo{db: db}
}

// MarkProcessed records the (order_id, payment_id) pair. The unique
// constraint on the pair turns a replayed callback into ErrDuplicatePayment
// instead of a second activation.
func (r *processedPaymentRepo) MarkProcessed(ctx context.Context, payment *models.ProcessedPayment) error {
	query := `
		INSERT INTO processed_payments (id, user_id, razorpay_order_id, razorpay_payment_id, processed_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (razorpay_order_id, razorpay_payment_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, payment.ID, payment.UserID, payment.RazorpayOrderID, payment.RazorpayPaymentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicatePayment
	}
	return nil
}
