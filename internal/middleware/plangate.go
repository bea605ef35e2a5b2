package middleware

import (
	"net/http"

	"mindhaven/internal/common"
	"mindhaven/internal/models"
	"mindhaven/internal/services"

	"github.com/labstack/echo/v4"
)

type PlanGateMiddleware struct {
	subscriptionService services.SubscriptionService
}

func NewPlanGateMiddleware(subscriptionService services.SubscriptionService) *PlanGateMiddleware {
	return &PlanGateMiddleware{
		subscriptionService: subscriptionService,
	}
}

// RequirePlan blocks the route unless the authenticated user's effective
// plan grants access to the required tier.
func (m *PlanGateMiddleware) RequirePlan(required models.Plan) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			userID, ok := common.GetUserIDFromContext(ctx)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}

			plan, err := m.subscriptionService.EffectivePlan(ctx, userID)
			if err != nil {
				// Degraded read resolved to FREE; fall through to the
				// access check rather than blocking the request outright.
				c.Response().Header().Set("X-Plan-Degraded", "true")
			}
			if !plan.HasAccess(required) {
				return echo.NewHTTPError(http.StatusForbidden, "Plan does not include this feature")
			}

			return next(c)
		}
	}
}
