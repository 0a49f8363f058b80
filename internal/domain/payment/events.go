package payment

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Event types for the payment domain
const (
	EventTypePaymentInitiated     = "payment.initiated"
	EventTypePaymentStatusChanged = "payment.status_changed"
)

// PaymentInitiatedEvent fires when a gateway session is opened for an order
type PaymentInitiatedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID       `json:"order_id"`
	Amount  decimal.Decimal `json:"amount"`
}

// NewPaymentInitiatedEvent creates a PaymentInitiatedEvent
func NewPaymentInitiatedEvent(p *Payment) *PaymentInitiatedEvent {
	return &PaymentInitiatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentInitiated, "Payment", p.ID),
		OrderID:         p.OrderID,
		Amount:          p.Amount,
	}
}

// PaymentStatusChangedEvent fires on every applied status transition
type PaymentStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID   uuid.UUID `json:"order_id"`
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
}

// NewPaymentStatusChangedEvent creates a PaymentStatusChangedEvent
func NewPaymentStatusChangedEvent(p *Payment, oldStatus Status) *PaymentStatusChangedEvent {
	return &PaymentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentStatusChanged, "Payment", p.ID),
		OrderID:         p.OrderID,
		OldStatus:       oldStatus,
		NewStatus:       p.Status,
	}
}
