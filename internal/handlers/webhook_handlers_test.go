package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mindhaven/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testWebhookSecret = "hook_secret"

func signWebhook(body string) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func newWebhookServer(subscriptionSvc services.SubscriptionService) http.Handler {
	razorpaySvc := services.NewRazorpayService(services.RazorpayConfig{
		WebhookSecret: testWebhookSecret,
	})
	h := NewWebhookHandlers(razorpaySvc, subscriptionSvc)

	e := echo.New()
	e.POST("/webhooks/razorpay", h.RazorpayWebhook)
	return e
}

func TestRazorpayWebhook_PaymentFailedCancels(t *testing.T) {
	subscriptionSvc := new(MockSubscriptionService)
	subscriptionSvc.On("CancelByOrderID", mock.Anything, "order_1").Return(nil)

	body := `{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1"}}}}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", strings.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", signWebhook(body))
	rec := httptest.NewRecorder()
	newWebhookServer(subscriptionSvc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	subscriptionSvc.AssertExpectations(t)
}

func TestRazorpayWebhook_InvalidSignature(t *testing.T) {
	subscriptionSvc := new(MockSubscriptionService)

	body := `{"event":"payment.failed"}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", strings.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", "deadbeef")
	rec := httptest.NewRecorder()
	newWebhookServer(subscriptionSvc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	subscriptionSvc.AssertNotCalled(t, "CancelByOrderID", mock.Anything, mock.Anything)
}

func TestRazorpayWebhook_MissingSignature(t *testing.T) {
	body := `{"event":"payment.captured"}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newWebhookServer(new(MockSubscriptionService)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRazorpayWebhook_UnknownEventAcknowledged(t *testing.T) {
	body := `{"event":"invoice.expired"}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", strings.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", signWebhook(body))
	rec := httptest.NewRecorder()
	newWebhookServer(new(MockSubscriptionService)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
