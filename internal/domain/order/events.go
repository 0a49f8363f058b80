package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Event types for the order domain
const (
	EventTypeOrderPlaced        = "order.placed"
	EventTypeOrderStatusChanged = "order.status_changed"
	EventTypeOrderPaid          = "order.paid"
)

// OrderPlacedEvent fires when checkout creates an order
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	UserID        uuid.UUID       `json:"user_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
}

// NewOrderPlacedEvent creates an OrderPlacedEvent
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, "Order", o.ID),
		UserID:          o.UserID,
		TotalAmount:     o.TotalAmount,
		PaymentMethod:   o.PaymentMethod,
	}
}

// OrderStatusChangedEvent fires on a fulfilment status transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OldStatus OrderStatus `json:"old_status"`
	NewStatus OrderStatus `json:"new_status"`
}

// NewOrderStatusChangedEvent creates an OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, oldStatus OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, "Order", o.ID),
		OldStatus:       oldStatus,
		NewStatus:       o.Status,
	}
}

// OrderPaidEvent fires when the coarse payment summary becomes paid
type OrderPaidEvent struct {
	shared.BaseDomainEvent
	UserID      uuid.UUID       `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewOrderPaidEvent creates an OrderPaidEvent
func NewOrderPaidEvent(o *Order) *OrderPaidEvent {
	return &OrderPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaid, "Order", o.ID),
		UserID:          o.UserID,
		TotalAmount:     o.TotalAmount,
	}
}
