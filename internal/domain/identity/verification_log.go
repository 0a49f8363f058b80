package identity

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// VerificationAction enumerates the audited OTP lifecycle actions
type VerificationAction string

const (
	VerificationActionSent     VerificationAction = "sent"
	VerificationActionVerified VerificationAction = "verified"
	VerificationActionExpired  VerificationAction = "expired"
	VerificationActionFailed   VerificationAction = "failed"
)

// VerificationLog is an append-only audit record of OTP activity.
// The OTP code is recorded as issued so support staff can correlate
// customer reports with what was actually sent.
type VerificationLog struct {
	shared.BaseEntity
	UserID  uuid.UUID          `gorm:"type:uuid;not null;index"`
	Email   string             `gorm:"type:varchar(255);not null"`
	OTPCode string             `gorm:"type:varchar(6)"`
	Action  VerificationAction `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (VerificationLog) TableName() string {
	return "verification_logs"
}

// NewVerificationLog creates an audit record for an OTP lifecycle action
func NewVerificationLog(userID uuid.UUID, email, otpCode string, action VerificationAction) *VerificationLog {
	return &VerificationLog{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Email:      email,
		OTPCode:    otpCode,
		Action:     action,
	}
}
