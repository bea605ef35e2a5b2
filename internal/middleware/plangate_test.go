package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"mindhaven/internal/common"
	"mindhaven/internal/models"

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

func gateRequest(t *testing.T, plan models.Plan, planErr error, required models.Plan, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()

	subscriptionSvc := new(MockSubscriptionService)
	userID := uuid.New()
	if authenticated {
		subscriptionSvc.On("EffectivePlan", mock.Anything, userID).Return(plan, planErr)
	}

	gate := NewPlanGateMiddleware(subscriptionSvc)

	e := echo.New()
	handler := func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
	withUser := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if authenticated {
				ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	}
	e.GET("/gated", handler, withUser, gate.RequirePlan(required))

	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequirePlan_FamilyCoversPremium(t *testing.T) {
	rec := gateRequest(t, models.PlanFamily, nil, models.PlanPremium, true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequirePlan_ExactMatch(t *testing.T) {
	rec := gateRequest(t, models.PlanPremium, nil, models.PlanPremium, true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequirePlan_FreeBlocked(t *testing.T) {
	rec := gateRequest(t, models.PlanFree, nil, models.PlanPremium, true)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequirePlan_DegradedReadBlocksAsFree(t *testing.T) {
	rec := gateRequest(t, models.PlanFree, assert.AnError, models.PlanPremium, true)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("X-Plan-Degraded"))
}

func TestRequirePlan_Unauthenticated(t *testing.T) {
	rec := gateRequest(t, models.PlanFree, nil, models.PlanPremium, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
