package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrMissingSecret reports an absent gateway secret. Verification fails
// closed on it: an empty key must never produce a comparable digest.
var ErrMissingSecret = errors.New("razorpay secret is not configured")

// RazorpayConfig carries the gateway credentials. It is injected at
// construction so verification never reads ambient process state.
type RazorpayConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
}

// RazorpayService talks to the payment gateway and verifies its signatures.
type RazorpayService interface {
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*OrderResponse, error)
	VerifyPaymentSignature(orderID, paymentID, providedSignature string) (bool, error)
	VerifyWebhookSignature(body []byte, providedSignature string) (bool, error)
	KeyID() string
}

type razorpayService struct {
	cfg     RazorpayConfig
	baseURL string
	http    *http.Client
}

type orderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// OrderResponse is the gateway's order entity, returned to the client to
// bootstrap the browser checkout.
type OrderResponse struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// NewRazorpayService creates a new Razorpay service instance.
func NewRazorpayService(cfg RazorpayConfig) RazorpayService {
	return &razorpayService{
		cfg:     cfg,
		baseURL: "https://api.razorpay.com/v1",
		http:    &http.Client{},
	}
}

// CreateOrder creates an order via the Razorpay API.
func (s *razorpayService) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*OrderResponse, error) {
	if s.cfg.KeyID == "" || s.cfg.KeySecret == "" {
		return nil, ErrMissingSecret
	}

	body, err := s.makeRequest(ctx, http.MethodPost, "/orders", orderRequest{
		Amount:   amountPaise,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	var order OrderResponse
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("failed to parse order response: %w", err)
	}
	return &order, nil
}

// VerifyPaymentSignature checks the checkout callback signature. The
// canonical message is orderID + "|" + paymentID, exactly as the gateway
// constructs it; the digest is HMAC-SHA256 under the key secret, rendered
// as lowercase hex.
func (s *razorpayService) VerifyPaymentSignature(orderID, paymentID, providedSignature string) (bool, error) {
	return verifySignature([]byte(orderID+"|"+paymentID), providedSignature, s.cfg.KeySecret)
}

// VerifyWebhookSignature checks the X-Razorpay-Signature of a webhook
// delivery against the raw request body.
func (s *razorpayService) VerifyWebhookSignature(body []byte, providedSignature string) (bool, error) {
	return verifySignature(body, providedSignature, s.cfg.WebhookSecret)
}

// KeyID exposes the public key identifier the browser SDK needs.
func (s *razorpayService) KeyID() string {
	return s.cfg.KeyID
}

func verifySignature(message []byte, providedSignature, secret string) (bool, error) {
	if secret == "" {
		return false, ErrMissingSecret
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	expected := hex.EncodeToString(mac.Sum(nil))

	// Constant time comparison to prevent timing attacks.
	return hmac.Equal([]byte(expected), []byte(providedSignature)), nil
}

func (s *razorpayService) makeRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewBuffer(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, err
	}

	req.SetBasicAuth(s.cfg.KeyID, s.cfg.KeySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("razorpay returned status %d", resp.StatusCode)
	}
	return respBody, nil
}
