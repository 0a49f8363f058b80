package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domain "github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *RazorpayConfig {
	return &RazorpayConfig{
		KeyID:         "rzp_test_key",
		KeySecret:     "test_secret",
		WebhookSecret: "webhook_secret",
		BaseURL:       baseURL,
	}
}

func TestNewRazorpayAdapter_Validation(t *testing.T) {
	_, err := NewRazorpayAdapter(&RazorpayConfig{}, 0)
	assert.ErrorIs(t, err, ErrRazorpayMissingKeyID)

	_, err = NewRazorpayAdapter(&RazorpayConfig{KeyID: "k"}, 0)
	assert.ErrorIs(t, err, ErrRazorpayMissingKeySecret)

	_, err = NewRazorpayAdapter(&RazorpayConfig{KeyID: "k", KeySecret: "s"}, 0)
	assert.ErrorIs(t, err, ErrRazorpayMissingWebhookSecret)
}

func TestRazorpayAdapter_CreateSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)

		username, password, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "rzp_test_key", username)
		assert.Equal(t, "test_secret", password)

		var req razorpayOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(2500), req.Amount)
		assert.Equal(t, "INR", req.Currency)
		assert.Equal(t, "order_rcpt_42", req.Receipt)

		json.NewEncoder(w).Encode(razorpayOrderResponse{
			ID:       "order_Nxy123",
			Entity:   "order",
			Amount:   req.Amount,
			Currency: req.Currency,
			Status:   "created",
		})
	}))
	defer server.Close()

	adapter, err := NewRazorpayAdapter(testConfig(server.URL), 0)
	require.NoError(t, err)

	sessionID, err := adapter.CreateSession(context.Background(), domain.SessionRequest{
		AmountMinorUnits: 2500,
		Currency:         "INR",
		ReceiptRef:       "order_rcpt_42",
	})
	require.NoError(t, err)
	assert.Equal(t, "order_Nxy123", sessionID)
}

func TestRazorpayAdapter_CreateSession_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount must be at least 100"}}`))
	}))
	defer server.Close()

	adapter, err := NewRazorpayAdapter(testConfig(server.URL), 0)
	require.NoError(t, err)

	_, err = adapter.CreateSession(context.Background(), domain.SessionRequest{
		AmountMinorUnits: 1,
		Currency:         "INR",
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "GATEWAY_ERROR", domainErr.Code)
}

func TestRazorpayAdapter_CreateSession_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	adapter, err := NewRazorpayAdapter(testConfig(server.URL), 20*time.Millisecond)
	require.NoError(t, err)

	_, err = adapter.CreateSession(context.Background(), domain.SessionRequest{
		AmountMinorUnits: 2500,
		Currency:         "INR",
	})
	assert.ErrorIs(t, err, shared.ErrUpstreamFailure)
}

func TestRazorpayAdapter_FetchPaymentDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/pay_Abc456", r.URL.Path)
		json.NewEncoder(w).Encode(razorpayPaymentResponse{
			ID:       "pay_Abc456",
			Entity:   "payment",
			Amount:   2500,
			Currency: "INR",
			Status:   "captured",
			OrderID:  "order_Nxy123",
			Method:   "upi",
		})
	}))
	defer server.Close()

	adapter, err := NewRazorpayAdapter(testConfig(server.URL), 0)
	require.NoError(t, err)

	details, err := adapter.FetchPaymentDetails(context.Background(), "pay_Abc456")
	require.NoError(t, err)
	assert.Equal(t, "pay_Abc456", details.PaymentID)
	assert.Equal(t, "captured", details.Status)
	assert.Equal(t, "upi", details.Method)
	assert.Equal(t, int64(2500), details.AmountMinorUnits)
	assert.NotEmpty(t, details.RawResponse)
}

func TestRazorpayAdapter_VerifySignature(t *testing.T) {
	adapter, err := NewRazorpayAdapter(testConfig("http://unused"), 0)
	require.NoError(t, err)

	// HMAC-SHA256("order_Nxy123|pay_Abc456", "test_secret")
	valid := signPayload([]byte("order_Nxy123|pay_Abc456"), "test_secret")

	assert.True(t, adapter.VerifySignature("order_Nxy123", "pay_Abc456", valid))
	assert.False(t, adapter.VerifySignature("order_Nxy123", "pay_Abc456", "deadbeef"))
	assert.False(t, adapter.VerifySignature("order_other", "pay_Abc456", valid))
	assert.False(t, adapter.VerifySignature("order_Nxy123", "pay_Abc456", ""))
}

func TestRazorpayAdapter_VerifyWebhookSignature(t *testing.T) {
	adapter, err := NewRazorpayAdapter(testConfig("http://unused"), 0)
	require.NoError(t, err)

	body := []byte(`{"event":"payment.captured"}`)
	valid := signPayload(body, "webhook_secret")

	assert.True(t, adapter.VerifyWebhookSignature(body, valid))
	assert.False(t, adapter.VerifyWebhookSignature(body, signPayload(body, "wrong_secret")))
	assert.False(t, adapter.VerifyWebhookSignature([]byte(`{"event":"tampered"}`), valid))
	assert.False(t, adapter.VerifyWebhookSignature(body, ""))
}
