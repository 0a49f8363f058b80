package cart

import (
	"context"

	"github.com/google/uuid"
)

// CartRepository defines the interface for cart persistence.
// AddQuantity must be implemented as a single atomic upsert so concurrent
// adds for the same (user, product) pair cannot lose updates.
type CartRepository interface {
	// AddQuantity inserts the row or increments its quantity atomically
	AddQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error

	// SetQuantity overwrites the quantity of an existing row
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error

	// Remove deletes one (user, product) row
	Remove(ctx context.Context, userID, productID uuid.UUID) error

	// Clear deletes all rows for a user
	Clear(ctx context.Context, userID uuid.UUID) error

	// FindByUser returns all cart rows for a user
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*CartItem, error)

	// FindItem returns one (user, product) row
	FindItem(ctx context.Context, userID, productID uuid.UUID) (*CartItem, error)

	// CountItems returns the sum of quantities across the user's cart.
	// An empty cart counts as zero, never negative.
	CountItems(ctx context.Context, userID uuid.UUID) (int64, error)
}
