package payment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Webhook event types the service acts on. Anything else is persisted
// and acknowledged without a state change.
const (
	eventPaymentCaptured = "payment.captured"
	eventPaymentFailed   = "payment.failed"
)

// webhookEnvelope is the subset of the gateway's notification body the
// service needs. The full raw payload is persisted separately.
type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
				Method  string `json:"method"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// WebhookService processes asynchronous gateway notifications. Every
// raw event is persisted before any processing so a malformed or
// unprocessable delivery is still retained for audit. Events are keyed
// by the gateway's own payment id, never by client-supplied data, and
// funnel into the same status-update path as the synchronous callback.
type WebhookService struct {
	eventRepo       payment.WebhookEventRepository
	paymentRepo     payment.PaymentRepository
	payments        *PaymentService
	gateway         payment.Gateway
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewWebhookService creates a new webhook service
func NewWebhookService(
	eventRepo payment.WebhookEventRepository,
	paymentRepo payment.PaymentRepository,
	payments *PaymentService,
	gateway payment.Gateway,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		eventRepo:   eventRepo,
		paymentRepo: paymentRepo,
		payments:    payments,
		gateway:     gateway,
		logger:      logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *WebhookService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

func (s *WebhookService) recordResult(ctx context.Context, eventType, result string) {
	if s.businessMetrics != nil {
		s.businessMetrics.RecordWebhook(ctx, eventType, result)
	}
}

// Handle ingests one raw webhook delivery. eventID comes from the
// vendor's event id header and may be empty; the body hash stands in
// for it so duplicate deliveries still collapse onto one stored event.
// A redelivery of an already stored event acknowledges without
// reprocessing.
func (s *WebhookService) Handle(ctx context.Context, eventID string, body []byte, signature string) error {
	var envelope webhookEnvelope
	parseErr := json.Unmarshal(body, &envelope)

	if eventID == "" {
		sum := sha256.Sum256(body)
		eventID = hex.EncodeToString(sum[:])
	}

	event := payment.NewWebhookEvent(eventID, envelope.Event, string(body), signature)
	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			s.logger.Info("duplicate webhook delivery ignored", zap.String("event_id", eventID))
			s.recordResult(ctx, envelope.Event, "duplicate")
			return nil
		}
		return err
	}

	if !s.gateway.VerifyWebhookSignature(body, signature) {
		return s.reject(ctx, event, shared.ErrSignatureInvalid)
	}
	if parseErr != nil {
		return s.reject(ctx, event, shared.NewDomainError("MALFORMED_EVENT", "Webhook body is not valid JSON"))
	}

	if err := s.process(ctx, &envelope); err != nil {
		return s.reject(ctx, event, err)
	}

	event.MarkProcessed()
	s.recordResult(ctx, envelope.Event, "processed")
	return s.eventRepo.Update(ctx, event)
}

// process dispatches a parsed event. Deliveries for payments the
// synchronous callback has not touched yet are resolved through the
// session id carried in the event entity.
func (s *WebhookService) process(ctx context.Context, envelope *webhookEnvelope) error {
	var target payment.Status
	switch envelope.Event {
	case eventPaymentCaptured:
		target = payment.StatusCaptured
	case eventPaymentFailed:
		target = payment.StatusFailed
	default:
		s.logger.Info("webhook event type ignored", zap.String("event", envelope.Event))
		return nil
	}

	entity := envelope.Payload.Payment.Entity
	if entity.ID == "" {
		return shared.NewDomainError("MALFORMED_EVENT", "Webhook event carries no payment id")
	}

	record, err := s.paymentRepo.FindByPaymentID(ctx, entity.ID)
	if errors.Is(err, shared.ErrNotFound) && entity.OrderID != "" {
		// The webhook raced ahead of the browser callback.
		record, err = s.paymentRepo.FindBySessionID(ctx, entity.OrderID)
		if err == nil {
			record.RecordAttempt(entity.ID, record.RazorpaySignature)
		}
	}
	if err != nil {
		return err
	}
	record.RecordGatewayDetails(entity.Method, "")

	_, err = s.payments.apply(ctx, record, target, "webhook", envelope.Event, "", "")
	if errors.Is(err, shared.ErrInvalidState) {
		// Stale delivery against a terminal status. The event is
		// acknowledged; the record is left exactly as it was.
		s.logger.Info("stale webhook delivery skipped",
			zap.String("payment_id", entity.ID),
			zap.String("target", string(target)))
		return nil
	}
	return err
}

func (s *WebhookService) reject(ctx context.Context, event *payment.WebhookEvent, cause error) error {
	event.MarkFailed(cause.Error())
	s.recordResult(ctx, event.EventType, "rejected")
	if err := s.eventRepo.Update(ctx, event); err != nil {
		s.logger.Error("failed to record webhook outcome",
			zap.String("event_id", event.EventID), zap.Error(err))
	}
	return cause
}
