package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"mindhaven/internal/common"
	"mindhaven/internal/config"
	"mindhaven/internal/models"
	"mindhaven/internal/services"

	"github.com/labstack/echo/v4"
)

// The verifier is an HMAC oracle: each attempt confirms or denies one
// guessed signature. Per-IP throttling keeps brute forcing impractical.
const (
	verifyAttemptLimit  = 10
	verifyAttemptWindow = time.Minute
)

// RateLimiter throttles repeated requests from one client.
type RateLimiter interface {
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) error
}

// PaymentHandlers handles the browser-side payment flow: checkout order
// creation and the post-payment verification callback.
type PaymentHandlers struct {
	razorpayService     services.RazorpayService
	subscriptionService services.SubscriptionService
	planCatalog         *config.PlanCatalog
	limiter             RateLimiter
}

// NewPaymentHandlers creates a new payment handlers instance
func NewPaymentHandlers(
	razorpayService services.RazorpayService,
	subscriptionService services.SubscriptionService,
	planCatalog *config.PlanCatalog,
	limiter RateLimiter,
) *PaymentHandlers {
	return &PaymentHandlers{
		razorpayService:     razorpayService,
		subscriptionService: subscriptionService,
		planCatalog:         planCatalog,
		limiter:             limiter,
	}
}

// VerifyPaymentRequest mirrors the gateway's browser callback fields.
type VerifyPaymentRequest struct {
	RazorpayPaymentID string `json:"razorpayPaymentId"`
	RazorpayOrderID   string `json:"razorpayOrderId"`
	RazorpaySignature string `json:"razorpaySignature"`
	Plan              string `json:"plan"`
	BillingCycle      string `json:"billingCycle"`
}

// VerifyPayment handles POST /v1/payments/verify. The response bodies are
// part of the browser contract and must not change shape.
func (h *PaymentHandlers) VerifyPayment(c echo.Context) error {
	ctx := c.Request().Context()

	limiterKey := "payments:verify:" + c.RealIP()
	limited, err := h.limiter.IsRateLimited(ctx, limiterKey, verifyAttemptLimit, verifyAttemptWindow)
	if err != nil {
		// A limiter outage must not take the payment flow down with it.
		log.Printf("Rate limit check failed for %s: %v", c.RealIP(), err)
	}
	if limited {
		return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
			"error": "Too many verification attempts",
		})
	}
	if err := h.limiter.IncrementRateLimit(ctx, limiterKey, verifyAttemptWindow); err != nil {
		log.Printf("Rate limit increment failed for %s: %v", c.RealIP(), err)
	}

	var req VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid request format",
		})
	}

	if req.RazorpayPaymentID == "" || req.RazorpayOrderID == "" || req.RazorpaySignature == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "razorpayPaymentId, razorpayOrderId and razorpaySignature are required",
		})
	}

	valid, err := h.razorpayService.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	if err != nil {
		if errors.Is(err, services.ErrMissingSecret) {
			// Fail closed: without a secret nothing can be verified.
			log.Printf("Payment verification unavailable: %v", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"error": "Payment verification is not configured",
			})
		}
		log.Printf("Payment verification failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to verify payment",
		})
	}
	if !valid {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid signature",
		})
	}

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	plan, err := models.ParsePlan(req.Plan)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Unknown plan",
		})
	}
	cycle, err := models.ParseBillingCycle(req.BillingCycle)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Unknown billing cycle",
		})
	}

	_, err = h.subscriptionService.Activate(ctx, userID, plan, cycle, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentReplayed):
			return c.JSON(http.StatusConflict, map[string]interface{}{
				"error": "Payment already processed",
			})
		case errors.Is(err, services.ErrInvalidPlan), errors.Is(err, services.ErrInvalidBillingCycle):
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error": err.Error(),
			})
		default:
			log.Printf("Subscription activation failed for user %s: %v", userID, err)
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"error": "Failed to verify payment",
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Payment verified successfully",
	})
}

// CheckoutRequest selects the plan and cycle to purchase.
type CheckoutRequest struct {
	Plan         string `json:"plan"`
	BillingCycle string `json:"billing_cycle"`
}

// CheckoutResponse carries the gateway order the browser SDK opens.
type CheckoutResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

// CreateCheckout handles POST /v1/payments/checkout. It prices the plan
// from the catalog and creates a gateway order for the browser flow.
func (h *PaymentHandlers) CreateCheckout(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	plan, err := models.ParsePlan(req.Plan)
	if err != nil || !plan.Paid() {
		return echo.NewHTTPError(http.StatusBadRequest, "Plan must be PREMIUM or FAMILY")
	}
	cycle, err := models.ParseBillingCycle(req.BillingCycle)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Billing cycle must be monthly or yearly")
	}

	amount, currency, err := h.planCatalog.Amount(plan, cycle)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	order, err := h.razorpayService.CreateOrder(ctx, amount, currency, userID.String())
	if err != nil {
		log.Printf("Failed to create checkout order for user %s: %v", userID, err)
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to create payment order")
	}

	return c.JSON(http.StatusOK, &CheckoutResponse{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    h.razorpayService.KeyID(),
	})
}
