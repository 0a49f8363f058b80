package payment

import (
	"context"

	"github.com/google/uuid"
)

// PaymentRepository defines the interface for payment record persistence
type PaymentRepository interface {
	// Create creates a new payment record
	Create(ctx context.Context, p *Payment) error

	// Update updates an existing payment record
	Update(ctx context.Context, p *Payment) error

	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindBySessionID finds a payment by its gateway session id
	FindBySessionID(ctx context.Context, sessionID string) (*Payment, error)

	// FindByPaymentID finds a payment by the gateway's own payment id
	FindByPaymentID(ctx context.Context, paymentID string) (*Payment, error)

	// FindLatestByOrderID returns the newest payment record for an order,
	// or shared.ErrNotFound when the order has none
	FindLatestByOrderID(ctx context.Context, orderID uuid.UUID) (*Payment, error)

	// ExistsCapturedForOrder reports whether the order already has a
	// captured payment, for the re-initiation idempotency guard
	ExistsCapturedForOrder(ctx context.Context, orderID uuid.UUID) (bool, error)
}

// PaymentLogRepository persists the transition audit trail
type PaymentLogRepository interface {
	// Create appends a log row
	Create(ctx context.Context, log *PaymentLog) error

	// FindByPaymentID returns a payment's trail, oldest first
	FindByPaymentID(ctx context.Context, paymentID uuid.UUID) ([]*PaymentLog, error)

	// FindByOrderID returns an order's trail, oldest first
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*PaymentLog, error)
}

// WebhookEventRepository persists raw gateway notifications
type WebhookEventRepository interface {
	// Create persists a raw event; called before any processing
	Create(ctx context.Context, event *WebhookEvent) error

	// Update records the processing outcome
	Update(ctx context.Context, event *WebhookEvent) error

	// FindByEventID finds a stored event by the gateway's event id
	FindByEventID(ctx context.Context, eventID string) (*WebhookEvent, error)
}
