package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"mindhaven/internal/services"

	"github.com/labstack/echo/v4"
)

// WebhookHandlers handles the gateway's server-to-server notifications.
type WebhookHandlers struct {
	razorpayService     services.RazorpayService
	subscriptionService services.SubscriptionService
}

// NewWebhookHandlers creates a new webhook handlers instance
func NewWebhookHandlers(
	razorpayService services.RazorpayService,
	subscriptionService services.SubscriptionService,
) *WebhookHandlers {
	return &WebhookHandlers{
		razorpayService:     razorpayService,
		subscriptionService: subscriptionService,
	}
}

// WebhookEvent is the slice of the gateway payload this service consumes.
type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// RazorpayWebhook handles POST /webhooks/razorpay. The signature covers
// the raw body, so it is read before any decoding.
func (h *WebhookHandlers) RazorpayWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read request body")
	}

	signature := c.Request().Header.Get("X-Razorpay-Signature")
	if signature == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing Razorpay signature")
	}

	valid, err := h.razorpayService.VerifyWebhookSignature(body, signature)
	if err != nil {
		if errors.Is(err, services.ErrMissingSecret) {
			log.Printf("Webhook verification unavailable: %v", err)
			return echo.NewHTTPError(http.StatusServiceUnavailable, "Webhook verification is not configured")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to verify webhook")
	}
	if !valid {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid webhook signature")
	}

	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid webhook payload")
	}

	if err := h.processRazorpayEvent(c, &event); err != nil {
		log.Printf("Failed to process webhook event %q: %v", event.Event, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process webhook")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "success",
		"event":  event.Event,
	})
}

func (h *WebhookHandlers) processRazorpayEvent(c echo.Context, event *WebhookEvent) error {
	ctx := c.Request().Context()

	switch event.Event {
	case "payment.failed":
		orderID := event.Payload.Payment.Entity.OrderID
		if orderID == "" {
			return nil
		}
		err := h.subscriptionService.CancelByOrderID(ctx, orderID)
		if errors.Is(err, services.ErrNoSubscription) {
			// The order never produced a subscription; nothing to undo.
			return nil
		}
		return err
	case "payment.captured":
		// Activation happens through the browser callback; the capture
		// event is informational here.
		return nil
	default:
		// Unknown events are acknowledged, not failed, so the gateway
		// does not retry them forever.
		return nil
	}
}
