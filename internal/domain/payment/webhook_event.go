package payment

import (
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

// WebhookEvent is the raw inbound gateway notification. It is persisted
// before any processing so a malformed or unprocessable event is still
// retained for audit.
type WebhookEvent struct {
	shared.BaseEntity
	EventID     string     `gorm:"type:varchar(100);uniqueIndex"`
	EventType   string     `gorm:"type:varchar(100);index"`
	Payload     string     `gorm:"type:jsonb;not null"`
	Signature   string     `gorm:"type:varchar(255)"`
	Processed   bool       `gorm:"not null;default:false"`
	ProcessedAt *time.Time `gorm:""`
	Error       string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (WebhookEvent) TableName() string {
	return "webhook_events"
}

// NewWebhookEvent stores a raw event as received, before dispatch
func NewWebhookEvent(eventID, eventType, payload, signature string) *WebhookEvent {
	return &WebhookEvent{
		BaseEntity: shared.NewBaseEntity(),
		EventID:    eventID,
		EventType:  eventType,
		Payload:    payload,
		Signature:  signature,
	}
}

// MarkProcessed records a successful dispatch
func (e *WebhookEvent) MarkProcessed() {
	now := time.Now()
	e.Processed = true
	e.ProcessedAt = &now
	e.Error = ""
	e.UpdatedAt = now
}

// MarkFailed records a dispatch failure; the raw payload stays retained
func (e *WebhookEvent) MarkFailed(reason string) {
	now := time.Now()
	e.Processed = false
	e.ProcessedAt = &now
	e.Error = reason
	e.UpdatedAt = now
}
