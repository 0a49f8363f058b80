package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/payment"
)

// StatusNotInitiated is the sentinel state reported for orders that have
// no payment record yet. It is a normal answer, not an error.
const StatusNotInitiated = "not_initiated"

// InitiateInput contains the input for opening a gateway session
type InitiateInput struct {
	OrderID uuid.UUID
	UserID  uuid.UUID
	IsAdmin bool
}

// CheckoutParams is what the storefront needs to open the hosted
// checkout: the public key, the session id and the exact amount
type CheckoutParams struct {
	KeyID            string
	SessionID        string
	AmountMinorUnits int64
	Amount           decimal.Decimal
	Currency         string
	OrderID          uuid.UUID
	Name             string
	Email            string
	Contact          string
}

// VerifyInput is the browser-driven checkout callback
type VerifyInput struct {
	UserID    uuid.UUID
	SessionID string
	PaymentID string
	Signature string
	IPAddress string
	UserAgent string
}

// VerifyResult reports the post-verification state
type VerifyResult struct {
	OrderID       uuid.UUID
	Status        payment.Status
	PaymentStatus order.PaymentStatus
}

// MarkFailedInput is the browser-driven failure callback
type MarkFailedInput struct {
	SessionID string
	PaymentID string
	Reason    string
	IPAddress string
	UserAgent string
}

// StatusResult is the read-only payment projection for one order
type StatusResult struct {
	State         string
	PaymentStatus order.PaymentStatus
	SessionID     string
	PaymentID     string
	Amount        decimal.Decimal
	Currency      string
	UpdatedAt     time.Time
}
