package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// CartItem is one (user, product) row in a customer's cart. At most one
// row exists per pair; repeated adds accumulate into the same row.
type CartItem struct {
	shared.BaseEntity
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product,priority:1"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product,priority:2"`
	Quantity  int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CartItem) TableName() string {
	return "cart_items"
}

// NewCartItem creates a cart row for the first add of a product
func NewCartItem(userID, productID uuid.UUID, quantity int) (*CartItem, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}

	return &CartItem{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		ProductID:  productID,
		Quantity:   quantity,
	}, nil
}

// AddQuantity accumulates a subsequent add into the existing row
func (c *CartItem) AddQuantity(quantity int) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}

	c.Quantity += quantity
	c.UpdatedAt = time.Now()
	return nil
}

// SetQuantity overwrites the stored quantity. Unlike AddQuantity this is
// set-to semantics; callers route quantity <= 0 to removal instead.
func (c *CartItem) SetQuantity(quantity int) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}

	c.Quantity = quantity
	c.UpdatedAt = time.Now()
	return nil
}

func validateQuantity(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be a positive integer")
	}
	return nil
}
