package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCartRepository implements cart.CartRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// AddQuantity inserts the row or increments its quantity in a single
// upsert, so two concurrent adds for the same pair both land.
func (r *GormCartRepository) AddQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return r.Remove(ctx, userID, productID)
	}
	item, err := cart.NewCartItem(userID, productID, quantity)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
			"updated_at": gorm.Expr("excluded.updated_at"),
		}),
	}).Create(item).Error
}

// SetQuantity overwrites the quantity of an existing row. A quantity at
// or below zero removes the row instead.
func (r *GormCartRepository) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return r.Remove(ctx, userID, productID)
	}
	result := r.db.WithContext(ctx).Model(&cart.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Remove deletes one (user, product) row. Removing an absent row is not
// an error.
func (r *GormCartRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&cart.CartItem{}).Error
}

// Clear deletes all rows for a user
func (r *GormCartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&cart.CartItem{}).Error
}

// FindByUser returns all cart rows for a user, oldest first so the cart
// page keeps a stable ordering
func (r *GormCartRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*cart.CartItem, error) {
	var items []*cart.CartItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindItem returns one (user, product) row
func (r *GormCartRepository) FindItem(ctx context.Context, userID, productID uuid.UUID) (*cart.CartItem, error) {
	var item cart.CartItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// CountItems returns the sum of quantities across the user's cart
func (r *GormCartRepository) CountItems(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&cart.CartItem{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ cart.CartRepository = (*GormCartRepository)(nil)
