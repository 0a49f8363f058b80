package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormPaymentRepository implements payment.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create creates a new payment record
func (r *GormPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update updates an existing payment record
func (r *GormPaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindBySessionID finds a payment by its gateway session id
func (r *GormPaymentRepository) FindBySessionID(ctx context.Context, sessionID string) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.WithContext(ctx).
		Where("razorpay_order_id = ?", sessionID).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByPaymentID finds a payment by the gateway's own payment id
func (r *GormPaymentRepository) FindByPaymentID(ctx context.Context, paymentID string) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.WithContext(ctx).
		Where("razorpay_payment_id = ?", paymentID).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindLatestByOrderID returns the newest payment record for an order
func (r *GormPaymentRepository) FindLatestByOrderID(ctx context.Context, orderID uuid.UUID) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ExistsCapturedForOrder reports whether the order already has a
// captured payment
func (r *GormPaymentRepository) ExistsCapturedForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&payment.Payment{}).
		Where("order_id = ? AND status = ?", orderID, payment.StatusCaptured).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GormPaymentLogRepository implements payment.PaymentLogRepository using GORM
type GormPaymentLogRepository struct {
	db *gorm.DB
}

// NewGormPaymentLogRepository creates a new GormPaymentLogRepository
func NewGormPaymentLogRepository(db *gorm.DB) *GormPaymentLogRepository {
	return &GormPaymentLogRepository{db: db}
}

// Create appends a log row
func (r *GormPaymentLogRepository) Create(ctx context.Context, log *payment.PaymentLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// FindByPaymentID returns a payment's trail, oldest first
func (r *GormPaymentLogRepository) FindByPaymentID(ctx context.Context, paymentID uuid.UUID) ([]*payment.PaymentLog, error) {
	var logs []*payment.PaymentLog
	if err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("created_at ASC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// FindByOrderID returns an order's trail, oldest first
func (r *GormPaymentLogRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*payment.PaymentLog, error) {
	var logs []*payment.PaymentLog
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// GormWebhookEventRepository implements payment.WebhookEventRepository using GORM
type GormWebhookEventRepository struct {
	db *gorm.DB
}

// NewGormWebhookEventRepository creates a new GormWebhookEventRepository
func NewGormWebhookEventRepository(db *gorm.DB) *GormWebhookEventRepository {
	return &GormWebhookEventRepository{db: db}
}

// Create persists a raw event before any processing. A duplicate event
// id maps to shared.ErrAlreadyExists so callers can acknowledge
// redeliveries without reprocessing.
func (r *GormWebhookEventRepository) Create(ctx context.Context, event *payment.WebhookEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update records the processing outcome
func (r *GormWebhookEventRepository) Update(ctx context.Context, event *payment.WebhookEvent) error {
	return r.db.WithContext(ctx).Save(event).Error
}

// FindByEventID finds a stored event by the gateway's event id
func (r *GormWebhookEventRepository) FindByEventID(ctx context.Context, eventID string) (*payment.WebhookEvent, error) {
	var event payment.WebhookEvent
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// Interface guards
var (
	_ payment.PaymentRepository      = (*GormPaymentRepository)(nil)
	_ payment.PaymentLogRepository   = (*GormPaymentLogRepository)(nil)
	_ payment.WebhookEventRepository = (*GormWebhookEventRepository)(nil)
)
