package payment

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// PaymentLog is an append-only trail of payment state changes, one row
// per applied transition. Duplicate deliveries that do not change state
// must not produce a row.
type PaymentLog struct {
	shared.BaseEntity
	PaymentID  uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;index"`
	FromStatus Status    `gorm:"type:varchar(20);not null"`
	ToStatus   Status    `gorm:"type:varchar(20);not null"`
	Source     string    `gorm:"type:varchar(20);not null"` // "verify", "webhook", "manual"
	Reason     string    `gorm:"type:text"`
	IPAddress  string    `gorm:"type:varchar(45)"`
	UserAgent  string    `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (PaymentLog) TableName() string {
	return "payment_logs"
}

// NewPaymentLog creates a log row for one applied transition
func NewPaymentLog(paymentID, orderID uuid.UUID, from, to Status, source, reason string) *PaymentLog {
	return &PaymentLog{
		BaseEntity: shared.NewBaseEntity(),
		PaymentID:  paymentID,
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
		Source:     source,
		Reason:     reason,
	}
}

// WithRequestContext attaches the caller's network details
func (l *PaymentLog) WithRequestContext(ipAddress, userAgent string) *PaymentLog {
	l.IPAddress = ipAddress
	if len(userAgent) > 255 {
		userAgent = userAgent[:255]
	}
	l.UserAgent = userAgent
	return l
}
