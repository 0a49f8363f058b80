package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// StockConfirmer applies the deferred stock decrement once a hosted
// gateway payment is confirmed. The checkout service implements it.
type StockConfirmer interface {
	ConfirmStock(ctx context.Context, orderID uuid.UUID) error
}

// PaymentService orchestrates the lifecycle of paying for one order
// through the hosted gateway. Two independent writers feed it: the
// browser-driven verify callback and the gateway's webhook. Both funnel
// through apply, which never regresses a terminal status and never logs
// a duplicate delivery twice.
type PaymentService struct {
	paymentRepo     payment.PaymentRepository
	logRepo         payment.PaymentLogRepository
	orderRepo       order.OrderRepository
	gateway         payment.Gateway
	stock           StockConfirmer
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	paymentRepo payment.PaymentRepository,
	logRepo payment.PaymentLogRepository,
	orderRepo order.OrderRepository,
	gateway payment.Gateway,
	stock StockConfirmer,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		logRepo:     logRepo,
		orderRepo:   orderRepo,
		gateway:     gateway,
		stock:       stock,
		logger:      logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *PaymentService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Initiate opens a remote payment session for the order and returns the
// checkout parameters. An order that already has a captured payment is
// never re-initiated.
func (s *PaymentService) Initiate(ctx context.Context, input InitiateInput) (*CheckoutParams, error) {
	o, err := s.orderRepo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if !input.IsAdmin && o.UserID != input.UserID {
		return nil, shared.ErrNotFound
	}
	if o.PaymentMethod != order.PaymentMethodRazorpay {
		return nil, shared.NewDomainError("WRONG_PAYMENT_METHOD", "Order is not payable through the gateway")
	}

	captured, err := s.paymentRepo.ExistsCapturedForOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	if captured || o.IsPaid() {
		return nil, shared.NewDomainError("ALREADY_PAID", "Order has already been paid")
	}

	minor, err := amountMinorUnits(o)
	if err != nil {
		return nil, err
	}

	sessionID, err := s.gateway.CreateSession(ctx, payment.SessionRequest{
		AmountMinorUnits: minor,
		Currency:         "INR",
		ReceiptRef:       o.ID.String(),
		Metadata:         map[string]string{"order_id": o.ID.String()},
	})
	if err != nil {
		return nil, err
	}

	record, err := payment.NewPayment(o.ID, sessionID, o.TotalAmount, "INR")
	if err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	o.SetRazorpayOrderID(sessionID)
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("payment session opened",
		zap.String("order_id", o.ID.String()),
		zap.String("session_id", sessionID),
		zap.Int64("amount_minor", minor))

	return &CheckoutParams{
		KeyID:            s.gateway.KeyID(),
		SessionID:        sessionID,
		AmountMinorUnits: minor,
		Amount:           o.TotalAmount,
		Currency:         "INR",
		OrderID:          o.ID,
		Name:             o.FirstName + " " + o.LastName,
		Email:            o.Email,
		Contact:          o.Phone,
	}, nil
}

// Verify handles the browser's checkout callback. The signature gate is
// the only thing the client is trusted for; everything else comes from
// an authoritative fetch against the gateway. This is the only path
// that marks a gateway order paid besides the webhook.
func (s *PaymentService) Verify(ctx context.Context, input VerifyInput) (*VerifyResult, error) {
	if !s.gateway.VerifySignature(input.SessionID, input.PaymentID, input.Signature) {
		s.logger.Warn("payment signature rejected",
			zap.String("session_id", input.SessionID),
			zap.String("payment_id", input.PaymentID))
		return nil, shared.ErrSignatureInvalid
	}

	record, err := s.paymentRepo.FindBySessionID(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	record.RecordAttempt(input.PaymentID, input.Signature)

	details, err := s.gateway.FetchPaymentDetails(ctx, input.PaymentID)
	if err != nil {
		return nil, err
	}
	record.RecordGatewayDetails(details.Method, details.RawResponse)

	target, ok := mapGatewayStatus(details.Status)
	if !ok {
		return nil, shared.NewDomainError("UNKNOWN_GATEWAY_STATUS",
			fmt.Sprintf("Gateway reported unknown payment status %q", details.Status))
	}

	if _, err := s.apply(ctx, record, target, "verify", "", input.IPAddress, input.UserAgent); err != nil {
		return nil, err
	}

	o, err := s.orderRepo.FindByID(ctx, record.OrderID)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{
		OrderID:       o.ID,
		Status:        record.Status,
		PaymentStatus: o.PaymentStatus,
	}, nil
}

// MarkFailed records a failed checkout attempt reported by the browser.
// The order's fulfilment status is left alone so a retry or a human can
// decide what happens next.
func (s *PaymentService) MarkFailed(ctx context.Context, input MarkFailedInput) error {
	record, err := s.paymentRepo.FindBySessionID(ctx, input.SessionID)
	if err != nil {
		return err
	}
	if input.PaymentID != "" {
		record.RecordAttempt(input.PaymentID, record.RazorpaySignature)
	}

	reason := input.Reason
	if reason == "" {
		reason = "reported failed by client"
	}
	_, err = s.apply(ctx, record, payment.StatusFailed, "client", reason, input.IPAddress, input.UserAgent)
	return err
}

// Status returns the payment projection for one order. Orders without a
// payment record report the not_initiated sentinel.
func (s *PaymentService) Status(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (*StatusResult, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.UserID != userID {
		return nil, shared.ErrNotFound
	}

	record, err := s.paymentRepo.FindLatestByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return &StatusResult{
				State:         StatusNotInitiated,
				PaymentStatus: o.PaymentStatus,
			}, nil
		}
		return nil, err
	}

	return &StatusResult{
		State:         string(record.Status),
		PaymentStatus: o.PaymentStatus,
		SessionID:     record.RazorpayOrderID,
		PaymentID:     record.RazorpayPaymentID,
		Amount:        record.Amount,
		Currency:      record.Currency,
		UpdatedAt:     record.UpdatedAt,
	}, nil
}

// apply moves the payment record to the target status and mirrors the
// outcome onto the order's coarse payment summary. A repeat delivery of
// the current status is a no-op with no extra log row; a stale delivery
// against a terminal status returns shared.ErrInvalidState untouched.
func (s *PaymentService) apply(ctx context.Context, record *payment.Payment, target payment.Status, source, reason, ip, userAgent string) (bool, error) {
	from := record.Status
	changed, err := record.Transition(target)
	if err != nil {
		return false, err
	}
	if !changed {
		if err := s.paymentRepo.Update(ctx, record); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := s.paymentRepo.Update(ctx, record); err != nil {
		return false, err
	}

	entry := payment.NewPaymentLog(record.ID, record.OrderID, from, target, source, reason).
		WithRequestContext(ip, userAgent)
	if err := s.logRepo.Create(ctx, entry); err != nil {
		return false, err
	}

	switch target {
	case payment.StatusCaptured:
		if err := s.settleOrder(ctx, record.OrderID); err != nil {
			return false, err
		}
		s.recordOutcome(ctx, record, telemetry.PaymentOutcomeSuccess)
	case payment.StatusFailed:
		if err := s.failOrder(ctx, record.OrderID); err != nil {
			return false, err
		}
		s.recordOutcome(ctx, record, telemetry.PaymentOutcomeFailed)
	}

	s.logger.Info("payment status applied",
		zap.String("payment_id", record.ID.String()),
		zap.String("order_id", record.OrderID.String()),
		zap.String("status", string(target)),
		zap.String("source", source))

	return true, nil
}

func (s *PaymentService) recordOutcome(ctx context.Context, record *payment.Payment, outcome telemetry.PaymentOutcome) {
	if s.businessMetrics == nil {
		return
	}
	method := record.PaymentMethod
	if method == "" {
		method = "razorpay"
	}
	s.businessMetrics.RecordPayment(ctx, method, outcome)
}

func (s *PaymentService) settleOrder(ctx context.Context, orderID uuid.UUID) error {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	o.MarkPaid()
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return err
	}
	if err := s.stock.ConfirmStock(ctx, orderID); err != nil {
		// The payment stands; stock reconciliation is a back-office task.
		s.logger.Error("deferred stock decrement failed",
			zap.String("order_id", orderID.String()), zap.Error(err))
	}
	return nil
}

func (s *PaymentService) failOrder(ctx context.Context, orderID uuid.UUID) error {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	o.MarkPaymentFailed()
	return s.orderRepo.Update(ctx, o)
}

// amountMinorUnits converts the frozen total to the gateway's minor
// currency unit. The conversion must be exact; a total that does not
// land on a whole number of paise is refused.
func amountMinorUnits(o *order.Order) (int64, error) {
	minor := o.TotalAmount.Shift(2)
	if !minor.IsInteger() {
		return 0, shared.NewDomainError("AMOUNT_PRECISION",
			"Order total cannot be represented exactly in minor currency units")
	}
	return minor.IntPart(), nil
}

// mapGatewayStatus translates the gateway's reported status into the
// payment record's state machine
func mapGatewayStatus(s string) (payment.Status, bool) {
	switch s {
	case "created":
		return payment.StatusCreated, true
	case "authorized":
		return payment.StatusPending, true
	case "captured":
		return payment.StatusCaptured, true
	case "failed":
		return payment.StatusFailed, true
	case "refunded":
		return payment.StatusRefunded, true
	default:
		return "", false
	}
}
