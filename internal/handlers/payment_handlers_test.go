package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mindhaven/internal/common"
	"mindhaven/internal/models"
	"mindhaven/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) Activate(ctx context.Context, userID uuid.UUID, plan models.Plan, cycle models.BillingCycle, orderID, paymentID, signature string) (*models.Subscription, error) {
	args := m.Called(ctx, userID, plan, cycle, orderID, paymentID, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) Cancel(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) GetCurrent(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) EffectivePlan(ctx context.Context, userID uuid.UUID) (models.Plan, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.Plan), args.Error(1)
}

func (m *MockSubscriptionService) CancelByOrderID(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockRateLimiter) IncrementRateLimit(ctx context.Context, key string, window time.Duration) error {
	args := m.Called(ctx, key, window)
	return args.Error(0)
}

func newOpenLimiter() *MockRateLimiter {
	limiter := new(MockRateLimiter)
	limiter.On("IsRateLimited", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	limiter.On("IncrementRateLimit", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return limiter
}

const testKeySecret = "test_secret"

func signPayment(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testKeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// newTestServer wires the verify route the way main does, with a stub auth
// middleware injecting a fixed user.
func newTestServer(subscriptionSvc services.SubscriptionService, userID uuid.UUID, secret string, limiter RateLimiter) *echo.Echo {
	razorpaySvc := services.NewRazorpayService(services.RazorpayConfig{
		KeyID:     "rzp_test_key",
		KeySecret: secret,
	})
	h := NewPaymentHandlers(razorpaySvc, subscriptionSvc, nil, limiter)

	e := echo.New()
	withUser := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
	e.POST("/v1/payments/verify", h.VerifyPayment, withUser)
	return e
}

func verifyBody(orderID, paymentID, signature string) string {
	return fmt.Sprintf(`{
		"razorpayOrderId": %q,
		"razorpayPaymentId": %q,
		"razorpaySignature": %q,
		"plan": "PREMIUM",
		"billingCycle": "monthly"
	}`, orderID, paymentID, signature)
}

func TestVerifyPayment_ValidSignature(t *testing.T) {
	userID := uuid.New()
	subscriptionSvc := new(MockSubscriptionService)
	subscriptionSvc.On("Activate", mock.Anything, userID, models.PlanPremium, models.BillingMonthly, "order_1", "pay_1", mock.AnythingOfType("string")).
		Return(&models.Subscription{UserID: userID, Plan: models.PlanPremium, Status: models.SubscriptionActive}, nil)

	e := newTestServer(subscriptionSvc, userID, testKeySecret, newOpenLimiter())

	body := verifyBody("order_1", "pay_1", signPayment("order_1", "pay_1"))
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/verify", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Payment verified successfully", resp["message"])
	subscriptionSvc.AssertExpectations(t)
}

func TestVerifyPayment_BogusSignature(t *testing.T) {
	userID := uuid.New()
	subscriptionSvc := new(MockSubscriptionService)

	e := newTestServer(subscriptionSvc, userID, testKeySecret, newOpenLimiter())

	body := verifyBody("order_1", "pay_1", "bogus")
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/verify", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid signature", resp["error"])
	subscriptionSvc.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyPayment_GetMethodNotAllowed(t *testing.T) {
	e := newTestServer(new(MockSubscriptionService), uuid.New(), testKeySecret, newOpenLimiter())

	req := httptest.NewRequest(http.MethodGet, "/v1/payments/verify", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestVerifyPayment_MissingFields(t *testing.T) {
	e := newTestServer(new(MockSubscriptionService), uuid.New(), testKeySecret, newOpenLimiter())

	req := httptest.NewRequest(http.MethodPost, "/v1/payments/verify", strings.NewReader(`{"razorpayOrderId":"order_1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyPayment_MissingSecretFailsClosed(t *testing.T) {
	subscriptionSvc := new(MockSubscriptionService)
	e := newTestServer(subscriptionSvc, uuid.New(), "", newOpenLimiter())

	// A digest generated with an empty key must not be accepted.
	mac := hmac.New(sha256.New, []byte(""))
	mac.Write([]byte("order_1|pay_1"))
	signature := hex.EncodeToString(mac.Sum(nil))

	body := verifyBody("order_1", "pay_1", signature)
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/verify", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	subscriptionSvc.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyPayment_ReplayedPaymentConflicts(t *testing.T) {
	userID := uuid.New()
	subscriptionSvc := new(MockSubscriptionService)
	subscriptionSvc.On("Activate", mock.Anything, userID, models.PlanPremium, models.BillingMonthly, "order_1", "pay_1", mock.AnythingOfType("string")).
		Return(nil, services.ErrPaymentReplayed)

	e := newTestServer(subscriptionSvc, userID, testKeySecret, newOpenLimiter())

	body := verifyBody("order_1", "pay_1", signPayment("order_1", "pay_1"))
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/verify", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestVerifyPayment_RateLimited(t *testing.T) {
	subscriptionSvc := new(MockSubscriptionService)
	limiter := new(MockRateLimiter)
	limiter.On("IsRateLimited", mock.Anything, mock.Anything, verifyAttemptLimit, verifyAttemptWindow).Return(true, nil)

	e := newTestServer(subscriptionSvc, uuid.New(), testKeySecret, limiter)

	body := verifyBody("order_1", "pay_1", signPayment("order_1", "pay_1"))
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/verify", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	limiter.AssertNotCalled(t, "IncrementRateLimit", mock.Anything, mock.Anything, mock.Anything)
	subscriptionSvc.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyPayment_LimiterOutageDoesNotBlock(t *testing.T) {
	userID := uuid.New()
	subscriptionSvc := new(MockSubscriptionService)
	subscriptionSvc.On("Activate", mock.Anything, userID, models.PlanPremium, models.BillingMonthly, "order_1", "pay_1", mock.AnythingOfType("string")).
		Return(&models.Subscription{UserID: userID, Plan: models.PlanPremium, Status: models.SubscriptionActive}, nil)
	limiter := new(MockRateLimiter)
	limiter.On("IsRateLimited", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, assert.AnError)
	limiter.On("IncrementRateLimit", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	e := newTestServer(subscriptionSvc, userID, testKeySecret, limiter)

	body := verifyBody("order_1", "pay_1", signPayment("order_1", "pay_1"))
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/verify", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	subscriptionSvc.AssertExpectations(t)
}
