package handlers

import (
	"errors"
	"log"
	"net/http"

	"mindhaven/internal/common"
	"mindhaven/internal/config"
	"mindhaven/internal/models"
	"mindhaven/internal/services"

	"github.com/labstack/echo/v4"
)

// SubscriptionHandlers exposes the subscription read and cancel paths.
type SubscriptionHandlers struct {
	subscriptionService services.SubscriptionService
	planCatalog         *config.PlanCatalog
}

// NewSubscriptionHandlers creates a new subscription handlers instance
func NewSubscriptionHandlers(subscriptionService services.SubscriptionService, planCatalog *config.PlanCatalog) *SubscriptionHandlers {
	return &SubscriptionHandlers{
		subscriptionService: subscriptionService,
		planCatalog:         planCatalog,
	}
}

// CurrentSubscriptionResponse reports the stored row (when present) and
// the plan that actually gates features right now.
type CurrentSubscriptionResponse struct {
	Subscription  *models.Subscription `json:"subscription"`
	EffectivePlan models.Plan          `json:"effective_plan"`
	Degraded      bool                 `json:"degraded,omitempty"`
}

// GetCurrent handles GET /v1/subscriptions/current. A persistence failure
// degrades to FREE with a non-fatal indicator instead of an error status.
func (h *SubscriptionHandlers) GetCurrent(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	subscription, err := h.subscriptionService.GetCurrent(ctx, userID)
	if err != nil {
		log.Printf("Failed to read subscription for user %s: %v", userID, err)
		return c.JSON(http.StatusOK, &CurrentSubscriptionResponse{
			Subscription:  nil,
			EffectivePlan: models.PlanFree,
			Degraded:      true,
		})
	}

	return c.JSON(http.StatusOK, &CurrentSubscriptionResponse{
		Subscription:  subscription,
		EffectivePlan: subscription.EffectivePlan(),
	})
}

// Cancel handles POST /v1/subscriptions/cancel. The downgrade to FREE is
// immediate; the row is kept for provenance.
func (h *SubscriptionHandlers) Cancel(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	subscription, err := h.subscriptionService.Cancel(ctx, userID)
	if err != nil {
		if errors.Is(err, services.ErrNoSubscription) {
			return common.SendNotFoundError(c, "Subscription")
		}
		log.Printf("Failed to cancel subscription for user %s: %v", userID, err)
		return common.SendServerError(c, "Failed to cancel subscription")
	}

	return c.JSON(http.StatusOK, subscription)
}

// ListPlans handles GET /v1/plans. The catalog is public so the paywall
// screen can render without authentication.
func (h *SubscriptionHandlers) ListPlans(c echo.Context) error {
	return c.JSON(http.StatusOK, h.planCatalog)
}
