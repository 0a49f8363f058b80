package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	paymentapp "github.com/storefront/backend/internal/application/payment"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// Vendor signature headers on inbound webhook deliveries
const (
	WebhookEventIDHeader   = "X-Razorpay-Event-Id"
	WebhookSignatureHeader = "X-Razorpay-Signature"
)

// PaymentHandler handles hosted-checkout payment endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *paymentapp.PaymentService
	webhookService *paymentapp.WebhookService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *paymentapp.PaymentService, webhookService *paymentapp.WebhookService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		webhookService: webhookService,
	}
}

// VerifyPaymentRequest is the browser-driven checkout callback
type VerifyPaymentRequest struct {
	SessionID string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}

// MarkFailedRequest reports a failed or abandoned checkout attempt
type MarkFailedRequest struct {
	SessionID string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id"`
	Reason    string `json:"reason" binding:"max=500"`
}

// CheckoutParamsResponse is what the storefront needs to open the
// hosted checkout form
type CheckoutParamsResponse struct {
	KeyID            string `json:"key_id"`
	SessionID        string `json:"razorpay_order_id"`
	AmountMinorUnits int64  `json:"amount"`
	Currency         string `json:"currency"`
	OrderID          string `json:"order_id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Contact          string `json:"contact"`
}

// PaymentStatusResponse is the read-only payment projection
type PaymentStatusResponse struct {
	State         string `json:"state"`
	PaymentStatus string `json:"payment_status,omitempty"`
	SessionID     string `json:"razorpay_order_id,omitempty"`
	PaymentID     string `json:"razorpay_payment_id,omitempty"`
	Amount        string `json:"amount,omitempty"`
	Currency      string `json:"currency,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

// Initiate godoc
// @Summary      Open a hosted payment session for an order
// @Description  Idempotency-guarded: a paid order cannot be re-initiated
// @Tags         payments
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=CheckoutParamsResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/payment/initiate [post]
func (h *PaymentHandler) Initiate(c *gin.Context) {
	orderID, err := bindID(c)
	if err != nil {
		h.BadRequest(c, "Invalid order id")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	params, err := h.paymentService.Initiate(c.Request.Context(), paymentapp.InitiateInput{
		OrderID: orderID,
		UserID:  userID,
		IsAdmin: middleware.IsAdmin(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, CheckoutParamsResponse{
		KeyID:            params.KeyID,
		SessionID:        params.SessionID,
		AmountMinorUnits: params.AmountMinorUnits,
		Currency:         params.Currency,
		OrderID:          params.OrderID.String(),
		Name:             params.Name,
		Email:            params.Email,
		Contact:          params.Contact,
	})
}

// Verify godoc
// @Summary      Verify a completed checkout
// @Description  Checks the gateway signature, re-fetches authoritative
// @Description  payment details and settles the order on capture.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body VerifyPaymentRequest true "Checkout callback"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments/verify [post]
func (h *PaymentHandler) Verify(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.paymentService.Verify(c.Request.Context(), paymentapp.VerifyInput{
		UserID:    userID,
		SessionID: req.SessionID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{
		"order_id":       result.OrderID.String(),
		"status":         string(result.Status),
		"payment_status": string(result.PaymentStatus),
	})
}

// MarkFailed records a failed checkout attempt. The order stays pending
// so the user can retry.
func (h *PaymentHandler) MarkFailed(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req MarkFailedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	err := h.paymentService.MarkFailed(c.Request.Context(), paymentapp.MarkFailedInput{
		SessionID: req.SessionID,
		PaymentID: req.PaymentID,
		Reason:    req.Reason,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Payment marked failed"})
}

// Status returns the payment projection for one order, with a
// not_initiated sentinel when no payment record exists yet
func (h *PaymentHandler) Status(c *gin.Context) {
	orderID, err := bindID(c)
	if err != nil {
		h.BadRequest(c, "Invalid order id")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	status, err := h.paymentService.Status(c.Request.Context(), orderID, userID, middleware.IsAdmin(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := PaymentStatusResponse{
		State:         status.State,
		PaymentStatus: string(status.PaymentStatus),
		SessionID:     status.SessionID,
		PaymentID:     status.PaymentID,
		Currency:      status.Currency,
	}
	if status.State != paymentapp.StatusNotInitiated {
		resp.Amount = status.Amount.String()
		resp.UpdatedAt = status.UpdatedAt.Format(time.RFC3339)
	}
	h.Success(c, resp)
}

// Webhook receives asynchronous gateway notifications. The raw body is
// needed intact for the header signature check, so binding is bypassed.
// Always answers 200 for retained-but-rejected events; the gateway
// retries on anything else and the event is already persisted.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "Unreadable body")
		return
	}

	eventID := c.GetHeader(WebhookEventIDHeader)
	signature := c.GetHeader(WebhookSignatureHeader)

	if err := h.webhookService.Handle(c.Request.Context(), eventID, body, signature); err != nil {
		// The event row is persisted with its failure cause. Answer 200
		// so the gateway does not redeliver what we cannot process.
		c.JSON(http.StatusOK, gin.H{"status": "rejected"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
