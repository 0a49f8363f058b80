package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	domain "github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
)

const (
	razorpayDefaultBaseURL = "https://api.razorpay.com/v1"
	razorpayDefaultTimeout = 10 * time.Second
)

// RazorpayAdapter implements the payment.Gateway interface against the
// Razorpay Orders and Payments APIs
type RazorpayAdapter struct {
	config     *RazorpayConfig
	httpClient *http.Client
}

// NewRazorpayAdapter creates a new Razorpay adapter
func NewRazorpayAdapter(config *RazorpayConfig, timeout time.Duration) (*RazorpayAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.BaseURL == "" {
		config.BaseURL = razorpayDefaultBaseURL
	}
	if timeout == 0 {
		timeout = razorpayDefaultTimeout
	}

	return &RazorpayAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// KeyID returns the public key identifier for checkout parameters
func (a *RazorpayAdapter) KeyID() string {
	return a.config.KeyID
}

// CreateSession opens a gateway order and returns its id
func (a *RazorpayAdapter) CreateSession(ctx context.Context, req domain.SessionRequest) (string, error) {
	body := razorpayOrderRequest{
		Amount:   req.AmountMinorUnits,
		Currency: req.Currency,
		Receipt:  req.ReceiptRef,
		Notes:    req.Metadata,
	}

	var resp razorpayOrderResponse
	if err := a.post(ctx, "/orders", body, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", shared.ErrUpstreamFailure
	}
	return resp.ID, nil
}

// FetchPaymentDetails retrieves a payment's authoritative state
func (a *RazorpayAdapter) FetchPaymentDetails(ctx context.Context, paymentID string) (*domain.PaymentDetails, error) {
	raw, err := a.get(ctx, "/payments/"+paymentID)
	if err != nil {
		return nil, err
	}

	var resp razorpayPaymentResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("razorpay: decode payment: %w", err)
	}

	return &domain.PaymentDetails{
		PaymentID:        resp.ID,
		Status:           resp.Status,
		Method:           resp.Method,
		AmountMinorUnits: resp.Amount,
		Currency:         resp.Currency,
		RawResponse:      string(raw),
	}, nil
}

// VerifySignature checks the checkout callback signature. The expected
// value is HMAC-SHA256 over "<order_id>|<payment_id>" with the key
// secret, hex encoded. The comparison is constant time.
func (a *RazorpayAdapter) VerifySignature(sessionID, paymentID, signature string) bool {
	if sessionID == "" || paymentID == "" || signature == "" {
		return false
	}
	expected := signPayload([]byte(sessionID+"|"+paymentID), a.config.KeySecret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature checks the vendor signature header over the
// raw webhook body in constant time
func (a *RazorpayAdapter) VerifyWebhookSignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	expected := signPayload(body, a.config.WebhookSecret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func signPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func (a *RazorpayAdapter) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("razorpay: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("razorpay: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := a.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("razorpay: decode response: %w", err)
	}
	return nil
}

func (a *RazorpayAdapter) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.config.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay: build request: %w", err)
	}
	return a.do(req)
}

// do executes one authenticated API call. Timeouts and transport errors
// surface as shared.ErrUpstreamFailure so callers treat the gateway as
// unavailable rather than the payment as failed.
func (a *RazorpayAdapter) do(req *http.Request) ([]byte, error) {
	req.SetBasicAuth(a.config.KeyID, a.config.KeySecret)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, shared.ErrUpstreamFailure
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, shared.ErrUpstreamFailure
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr razorpayErrorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Description != "" {
			return nil, shared.NewDomainError("GATEWAY_ERROR", apiErr.Error.Description)
		}
		return nil, shared.ErrUpstreamFailure
	}

	return raw, nil
}

var _ domain.Gateway = (*RazorpayAdapter)(nil)
