package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CartService handles the authenticated user's shopping cart
type CartService struct {
	cartRepo    cart.CartRepository
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(
	cartRepo cart.CartRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// Add puts quantity more of a product into the cart. Adding to an
// existing row accumulates. The combined quantity must be coverable by
// current stock.
func (s *CartService) Add(ctx context.Context, input ItemInput) error {
	if input.Quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	product, err := s.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		return err
	}
	if !product.IsActive {
		return shared.ErrNotFound
	}

	requested := input.Quantity
	existing, err := s.cartRepo.FindItem(ctx, input.UserID, input.ProductID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	if existing != nil {
		requested += existing.Quantity
	}
	if !product.HasStock(requested) {
		return shared.ErrInsufficientStock
	}

	return s.cartRepo.AddQuantity(ctx, input.UserID, input.ProductID, input.Quantity)
}

// Update overwrites the quantity of a cart row. A quantity at or below
// zero removes the row.
func (s *CartService) Update(ctx context.Context, input ItemInput) error {
	if input.Quantity <= 0 {
		return s.cartRepo.Remove(ctx, input.UserID, input.ProductID)
	}

	product, err := s.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		return err
	}
	if !product.HasStock(input.Quantity) {
		return shared.ErrInsufficientStock
	}

	return s.cartRepo.SetQuantity(ctx, input.UserID, input.ProductID, input.Quantity)
}

// Remove deletes one product from the cart
func (s *CartService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	return s.cartRepo.Remove(ctx, userID, productID)
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.cartRepo.Clear(ctx, userID)
}

// Count returns the total quantity across the cart, zero when empty
func (s *CartService) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.cartRepo.CountItems(ctx, userID)
}

// View returns the cart joined with current product data. Rows whose
// product has since been retired stay visible but are flagged out of
// stock so checkout can reject them.
func (s *CartService) View(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	items, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &CartView{
		Items:    make([]ItemView, 0, len(items)),
		Subtotal: decimal.Zero,
	}

	for _, item := range items {
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return nil, err
		}

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		view.Items = append(view.Items, ItemView{
			ProductID: product.ID,
			Name:      product.Name,
			ImageURL:  product.ImageURL,
			UnitPrice: product.Price,
			Quantity:  item.Quantity,
			LineTotal: lineTotal,
			InStock:   product.IsActive && product.HasStock(item.Quantity),
		})
		view.ItemCount += int64(item.Quantity)
		view.Subtotal = view.Subtotal.Add(lineTotal)
	}

	return view, nil
}
