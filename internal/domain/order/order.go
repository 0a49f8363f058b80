package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// OrderStatus represents the fulfilment status of an order.
// The enumeration is flat: administrators may move an order between any
// two statuses unless a stricter TransitionPolicy is configured.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// PaymentStatus is the coarse payment summary carried on the order.
// The detailed audit trail lives on the payment record.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// TransitionPolicy decides whether an order may move between two
// fulfilment statuses. A nil policy allows every transition.
type TransitionPolicy func(from, to OrderStatus) bool

// PaymentMethod tags for orders
const (
	PaymentMethodCOD      = "cod"
	PaymentMethodRazorpay = "razorpay"
)

// Order represents a placed order. The total and line items are frozen
// at creation time; later catalog price changes never touch them.
type Order struct {
	shared.BaseAggregateRoot
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;default:'pending'"`
	ShippingAddress string          `gorm:"type:text;not null"`
	PaymentMethod   string          `gorm:"type:varchar(20);not null"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending'"`
	RazorpayOrderID string          `gorm:"type:varchar(100);index"`

	// Contact details captured at checkout, independent of the profile.
	FirstName string `gorm:"type:varchar(100)"`
	LastName  string `gorm:"type:varchar(100)"`
	Email     string `gorm:"type:varchar(255)"`
	Phone     string `gorm:"type:varchar(50)"`

	Items []*OrderItem `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// OrderItem is a frozen (product, quantity, price) snapshot attached to
// a placed order
type OrderItem struct {
	shared.BaseEntity
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// OrderLine is the caller's description of one cart entry at checkout
type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice valueobject.Money
}

// NewOrder creates a pending order from the supplied lines. The total is
// computed once, as the sum of (unit price x quantity), and stored as a
// snapshot.
func NewOrder(userID uuid.UUID, shippingAddress, paymentMethod string, lines []OrderLine) (*Order, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if strings.TrimSpace(shippingAddress) == "" {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Shipping address cannot be empty")
	}
	if paymentMethod != PaymentMethodCOD && paymentMethod != PaymentMethodRazorpay {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unsupported payment method")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Status:            OrderStatusPending,
		ShippingAddress:   strings.TrimSpace(shippingAddress),
		PaymentMethod:     paymentMethod,
		PaymentStatus:     PaymentStatusPending,
	}

	total := decimal.Zero
	for _, line := range lines {
		item, err := newOrderItem(order.ID, line)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	order.TotalAmount = total

	order.AddDomainEvent(NewOrderPlacedEvent(order))

	return order, nil
}

func newOrderItem(orderID uuid.UUID, line OrderLine) (*OrderItem, error) {
	if line.ProductID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if line.Quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if line.UnitPrice.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &OrderItem{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    orderID,
		ProductID:  line.ProductID,
		Quantity:   line.Quantity,
		Price:      line.UnitPrice.Amount(),
	}, nil
}

// SetContact records the checkout contact details
func (o *Order) SetContact(firstName, lastName, email, phone string) {
	o.FirstName = strings.TrimSpace(firstName)
	o.LastName = strings.TrimSpace(lastName)
	o.Email = strings.TrimSpace(email)
	o.Phone = strings.TrimSpace(phone)
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// SetRazorpayOrderID stores the gateway session id for cross-referencing
func (o *Order) SetRazorpayOrderID(sessionID string) {
	o.RazorpayOrderID = sessionID
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// SetStatus moves the order to the target fulfilment status. The policy
// decides which transitions are admissible; nil allows all of them.
func (o *Order) SetStatus(target OrderStatus, policy TransitionPolicy) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}
	if policy != nil && !policy(o.Status, target) {
		return shared.NewDomainError("TRANSITION_REJECTED", "Status transition is not allowed")
	}

	oldStatus := o.Status
	o.Status = target
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	if oldStatus != target {
		o.AddDomainEvent(NewOrderStatusChangedEvent(o, oldStatus))
	}

	return nil
}

// MarkPaid sets the coarse payment summary to paid
func (o *Order) MarkPaid() {
	if o.PaymentStatus == PaymentStatusPaid {
		return
	}
	o.PaymentStatus = PaymentStatusPaid
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderPaidEvent(o))
}

// MarkPaymentFailed records a failed payment attempt. A paid order never
// regresses; the fulfilment status is left alone in both cases.
func (o *Order) MarkPaymentFailed() {
	if o.PaymentStatus == PaymentStatusPaid {
		return
	}
	o.PaymentStatus = PaymentStatusFailed
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// IsPaid reports whether the order's coarse payment summary is paid
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// ItemCount returns the total quantity across all line items
func (o *Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

// Total returns the frozen order total as a Money value
func (o *Order) Total() valueobject.Money {
	return valueobject.NewMoneyINR(o.TotalAmount)
}
