package repositories

import (
	"context"
	"testing"

	"mindhaven/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
)

func TestMarkProcessed_FirstUse(t *testing.T) {
	mock, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mock.Close()

	repo := NewProcessedPaymentRepo(mock)
	payment := &models.ProcessedPayment{
		ID:                uuid.New(),
		UserID:            uuid.New(),
		RazorpayOrderID:   "order_1",
		RazorpayPaymentID: "pay_1",
	}

	mock.ExpectExec(`(?s)INSERT INTO processed_payments .+ ON CONFLICT \(razorpay_order_id, razorpay_payment_id\) DO NOTHING`).
		WithArgs(payment.ID, payment.UserID, payment.RazorpayOrderID, payment.RazorpayPaymentID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.MarkProcessed(context.Background(), payment))
}

func TestMarkProcessed_ReplayReturnsDuplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mock.Close()

	repo := NewProcessedPaymentRepo(mock)
	payment := &models.ProcessedPayment{
		ID:                uuid.New(),
		UserID:            uuid.New(),
		RazorpayOrderID:   "order_1",
		RazorpayPaymentID: "pay_1",
	}

	mock.ExpectExec(`(?s)INSERT INTO processed_payments .+ ON CONFLICT \(razorpay_order_id, razorpay_payment_id\) DO NOTHING`).
		WithArgs(payment.ID, payment.UserID, payment.RazorpayOrderID, payment.RazorpayPaymentID).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err = repo.MarkProcessed(context.Background(), payment)
	assert.ErrorIs(t, err, ErrDuplicatePayment)
}
