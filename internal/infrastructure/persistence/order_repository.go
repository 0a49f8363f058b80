package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// CreateWithItems inserts the order header with its line items and
// clears the owning user's cart in one transaction. Either everything
// lands or nothing does.
func (r *GormOrderRepository) CreateWithItems(ctx context.Context, o *order.Order) error {
	if len(o.Items) == 0 {
		return shared.NewDomainError("EMPTY_ORDER", "Order has no line items")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Gorm persists the Items association together with the header.
		if err := tx.Create(o).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", o.UserID).Delete(&cart.CartItem{}).Error
	})
}

// Update updates an existing order header
func (r *GormOrderRepository) Update(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Omit("Items").Save(o).Error
}

// FindByID finds an order with its line items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByRazorpayOrderID finds an order by its gateway session id
func (r *GormOrderRepository) FindByRazorpayOrderID(ctx context.Context, sessionID string) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("razorpay_order_id = ?", sessionID).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByUser returns a user's orders, newest first
func (r *GormOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter order.OrderFilter) ([]*order.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&order.Order{}).Where("user_id = ?", userID)
	return r.findPage(query, filter)
}

// FindAll returns all orders for the back office
func (r *GormOrderRepository) FindAll(ctx context.Context, filter order.OrderFilter) ([]*order.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&order.Order{})
	return r.findPage(query, filter)
}

func (r *GormOrderRepository) findPage(query *gorm.DB, filter order.OrderFilter) ([]*order.Order, int64, error) {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filter.PaymentStatus)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []*order.Order
	if err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// Count returns the total number of orders
func (r *GormOrderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&order.Order{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ order.OrderRepository = (*GormOrderRepository)(nil)
