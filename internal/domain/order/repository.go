package order

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence.
// CreateWithItems and the cart clear run in one transaction at the
// persistence layer; an order is never visible without its line items.
type OrderRepository interface {
	// CreateWithItems inserts the order header and all line items, then
	// clears the owning user's cart, atomically
	CreateWithItems(ctx context.Context, o *Order) error

	// Update updates an existing order header
	Update(ctx context.Context, o *Order) error

	// FindByID finds an order with its line items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByRazorpayOrderID finds an order by its gateway session id
	FindByRazorpayOrderID(ctx context.Context, sessionID string) (*Order, error)

	// FindByUser returns a user's orders, newest first
	FindByUser(ctx context.Context, userID uuid.UUID, filter OrderFilter) ([]*Order, int64, error)

	// FindAll returns all orders for the back office
	FindAll(ctx context.Context, filter OrderFilter) ([]*Order, int64, error)

	// Count returns the total number of orders
	Count(ctx context.Context) (int64, error)
}

// OrderFilter contains filter options for querying orders
type OrderFilter struct {
	// Filter by fulfilment status
	Status *OrderStatus

	// Filter by payment status
	PaymentStatus *PaymentStatus

	// Pagination
	Page     int
	PageSize int
}

// NewOrderFilter creates an OrderFilter with default values
func NewOrderFilter() OrderFilter {
	return OrderFilter{
		Page:     1,
		PageSize: 20,
	}
}

// WithStatus sets the fulfilment status filter
func (f OrderFilter) WithStatus(status OrderStatus) OrderFilter {
	f.Status = &status
	return f
}

// WithPaymentStatus sets the payment status filter
func (f OrderFilter) WithPaymentStatus(status PaymentStatus) OrderFilter {
	f.PaymentStatus = &status
	return f
}

// WithPagination sets pagination parameters
func (f OrderFilter) WithPagination(page, pageSize int) OrderFilter {
	f.Page = page
	f.PageSize = pageSize
	return f
}

// Offset returns the offset for pagination
func (f OrderFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit returns the limit for pagination
func (f OrderFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
