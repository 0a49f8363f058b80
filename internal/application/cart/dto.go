package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemInput identifies one (user, product) cart mutation
type ItemInput struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
}

// ItemView is one cart row joined with its product
type ItemView struct {
	ProductID uuid.UUID
	Name      string
	ImageURL  string
	UnitPrice decimal.Decimal
	Quantity  int
	LineTotal decimal.Decimal
	InStock   bool
}

// CartView is the user's full cart
type CartView struct {
	Items     []ItemView
	ItemCount int64
	Subtotal  decimal.Decimal
}
