package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
)

// QuoteResult is the checkout page's display quote. Only the subtotal
// is stored on the order; tax and shipping are presentation figures.
type QuoteResult struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// PlaceOrderInput contains the input for order placement
type PlaceOrderInput struct {
	UserID          uuid.UUID
	ShippingAddress string
	PaymentMethod   string
	FirstName       string
	LastName        string
	Email           string
	Phone           string
}

// ItemInfo is one order line returned to callers
type ItemInfo struct {
	ProductID uuid.UUID
	Name      string
	Quantity  int
	Price     decimal.Decimal
	LineTotal decimal.Decimal
}

// OrderInfo is the order view returned to callers
type OrderInfo struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	TotalAmount     decimal.Decimal
	Status          order.OrderStatus
	PaymentMethod   string
	PaymentStatus   order.PaymentStatus
	ShippingAddress string
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Items           []ItemInfo
	CreatedAt       time.Time
}

// ListOrdersInput contains filter options for order listings
type ListOrdersInput struct {
	Status        *order.OrderStatus
	PaymentStatus *order.PaymentStatus
	Page          int
	PageSize      int
}

// ListOrdersResult contains a page of orders
type ListOrdersResult struct {
	Orders   []OrderInfo
	Total    int64
	Page     int
	PageSize int
}

// UpdateStatusInput contains the input for an admin status update
type UpdateStatusInput struct {
	OrderID uuid.UUID
	Status  order.OrderStatus
}
