package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Status represents the state of a payment record
type Status string

const (
	StatusCreated   Status = "created"
	StatusPending   Status = "pending"
	StatusCaptured  Status = "captured"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
	StatusCancelled Status = "cancelled"
)

// IsValid checks if the status is a valid payment Status
func (s Status) IsValid() bool {
	switch s {
	case StatusCreated, StatusPending, StatusCaptured, StatusFailed, StatusRefunded, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status ends the payment attempt.
// Refunded is reachable from captured only; everything else is final.
func (s Status) IsTerminal() bool {
	return s == StatusCaptured || s == StatusFailed || s == StatusRefunded || s == StatusCancelled
}

// CanTransitionTo checks whether a status change is admissible.
// verify and webhook race on the same record, so every admissible
// transition must also be safe when applied twice or out of order.
func (s Status) CanTransitionTo(target Status) bool {
	if s == target {
		// Duplicate delivery of the same state is absorbed, not rejected.
		return true
	}
	switch s {
	case StatusCreated:
		return target == StatusPending || target == StatusCaptured || target == StatusFailed || target == StatusCancelled
	case StatusPending:
		return target == StatusCaptured || target == StatusFailed || target == StatusCancelled
	case StatusCaptured:
		return target == StatusRefunded
	case StatusFailed, StatusRefunded, StatusCancelled:
		return false
	}
	return false
}

// Payment is the detailed audit record of one gateway payment attempt.
// It references its order; the order's coarse payment_status is updated
// separately by the orchestrating service.
type Payment struct {
	shared.BaseAggregateRoot
	OrderID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	RazorpayOrderID   string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	RazorpayPaymentID string          `gorm:"type:varchar(100);index"`
	RazorpaySignature string          `gorm:"type:varchar(255)"`
	Amount            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency          string          `gorm:"type:varchar(3);not null"`
	Status            Status          `gorm:"type:varchar(20);not null;default:'created'"`
	PaymentMethod     string          `gorm:"type:varchar(50)"`
	GatewayResponse   string          `gorm:"type:jsonb"`
	Notes             string          `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a payment record for a freshly opened gateway session
func NewPayment(orderID uuid.UUID, sessionID string, amount decimal.Decimal, currency string) (*Payment, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if sessionID == "" {
		return nil, shared.NewDomainError("INVALID_SESSION", "Gateway session ID cannot be empty")
	}
	if amount.IsNegative() || amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if len(currency) != 3 {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter code")
	}

	p := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		RazorpayOrderID:   sessionID,
		Amount:            amount,
		Currency:          currency,
		Status:            StatusCreated,
		GatewayResponse:   "{}",
		Notes:             "{}",
	}

	p.AddDomainEvent(NewPaymentInitiatedEvent(p))

	return p, nil
}

// Transition moves the payment to the target status.
// A terminal status never regresses: stale or duplicate deliveries of an
// earlier state return shared.ErrInvalidState instead of mutating. A
// repeat delivery of the current state reports changed=false so callers
// can skip duplicate logging.
func (p *Payment) Transition(target Status) (changed bool, err error) {
	if !target.IsValid() {
		return false, shared.NewDomainError("INVALID_STATUS", "Unknown payment status")
	}
	if target == p.Status {
		return false, nil
	}
	if !p.Status.CanTransitionTo(target) {
		return false, shared.ErrInvalidState
	}

	oldStatus := p.Status
	p.Status = target
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentStatusChangedEvent(p, oldStatus))

	return true, nil
}

// RecordAttempt stores the gateway's payment id and signature from a
// completed checkout callback
func (p *Payment) RecordAttempt(paymentID, signature string) {
	p.RazorpayPaymentID = paymentID
	p.RazorpaySignature = signature
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// RecordGatewayDetails stores the authoritative details fetched from the
// gateway after signature verification
func (p *Payment) RecordGatewayDetails(method, rawResponse string) {
	if method != "" {
		p.PaymentMethod = method
	}
	if rawResponse != "" {
		p.GatewayResponse = rawResponse
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetNotes attaches free-form JSON notes
func (p *Payment) SetNotes(notes string) {
	if notes == "" {
		notes = "{}"
	}
	p.Notes = notes
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}
