package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CheckoutService turns a cart into an order
type CheckoutService struct {
	orderRepo       order.OrderRepository
	cartRepo        cart.CartRepository
	productRepo     catalog.ProductRepository
	taxRate         decimal.Decimal
	shippingFee     decimal.Decimal
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	orderRepo order.OrderRepository,
	cartRepo cart.CartRepository,
	productRepo catalog.ProductRepository,
	cfg config.CheckoutConfig,
	logger *zap.Logger,
) (*CheckoutService, error) {
	taxRate, err := decimal.NewFromString(cfg.TaxRate)
	if err != nil {
		return nil, fmt.Errorf("checkout: parse tax rate: %w", err)
	}
	shippingFee, err := decimal.NewFromString(cfg.ShippingFee)
	if err != nil {
		return nil, fmt.Errorf("checkout: parse shipping fee: %w", err)
	}

	return &CheckoutService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		taxRate:     taxRate,
		shippingFee: shippingFee,
		logger:      logger,
	}, nil
}

// SetBusinessMetrics sets the business metrics collector
func (s *CheckoutService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Quote prices the current cart for the checkout page. Tax and shipping
// are display figures only; the stored order total stays the line-item
// sum.
func (s *CheckoutService) Quote(ctx context.Context, userID uuid.UUID) (*QuoteResult, error) {
	lines, err := s.loadLines(ctx, userID)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.UnitPrice.Amount().Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	tax := subtotal.Mul(s.taxRate).Round(2)
	return &QuoteResult{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: s.shippingFee,
		Total:    subtotal.Add(tax).Add(s.shippingFee),
	}, nil
}

// PlaceOrder snapshots the cart into an order. The order header, its
// items, and the cart clear commit in one transaction. COD orders
// decrement stock immediately; gateway orders defer the decrement to
// payment confirmation.
func (s *CheckoutService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderInfo, error) {
	if input.PaymentMethod != order.PaymentMethodCOD && input.PaymentMethod != order.PaymentMethodRazorpay {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unsupported payment method")
	}

	lines, err := s.loadLines(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(input.UserID, input.ShippingAddress, input.PaymentMethod, lines)
	if err != nil {
		return nil, err
	}
	o.SetContact(input.FirstName, input.LastName, input.Email, input.Phone)

	if err := s.orderRepo.CreateWithItems(ctx, o); err != nil {
		return nil, err
	}

	if input.PaymentMethod == order.PaymentMethodCOD {
		s.decrementStock(ctx, o)
	}

	if s.businessMetrics != nil {
		s.businessMetrics.RecordOrderWithAmount(ctx, input.PaymentMethod, o.TotalAmount)
	}

	s.logger.Info("order placed",
		zap.String("order_id", o.ID.String()),
		zap.String("user_id", input.UserID.String()),
		zap.String("payment_method", input.PaymentMethod),
		zap.String("total", o.TotalAmount.String()))

	return s.toOrderInfo(ctx, o), nil
}

// ConfirmStock applies the deferred stock decrement for a
// gateway-paid order
func (s *CheckoutService) ConfirmStock(ctx context.Context, orderID uuid.UUID) error {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	s.decrementStock(ctx, o)
	return nil
}

// loadLines reads the cart and snapshots current prices, validating
// that every row is backed by an active product with enough stock
func (s *CheckoutService) loadLines(ctx context.Context, userID uuid.UUID) ([]order.OrderLine, error) {
	items, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("CART_EMPTY", "Cart is empty")
	}

	lines := make([]order.OrderLine, 0, len(items))
	for _, item := range items {
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.IsActive {
			return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE", fmt.Sprintf("%s is no longer available", product.Name))
		}
		if !product.HasStock(item.Quantity) {
			return nil, shared.ErrInsufficientStock
		}
		lines = append(lines, order.OrderLine{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			UnitPrice: product.UnitPrice(),
		})
	}
	return lines, nil
}

// decrementStock applies the atomic per-product decrement for each
// line. A failed line is logged and skipped; the order stands and the
// back office reconciles from the low-stock report.
func (s *CheckoutService) decrementStock(ctx context.Context, o *order.Order) {
	for _, item := range o.Items {
		if err := s.productRepo.AdjustStock(ctx, item.ProductID, -item.Quantity); err != nil {
			s.logger.Error("stock decrement failed after order placement",
				zap.String("order_id", o.ID.String()),
				zap.String("product_id", item.ProductID.String()),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
		}
	}
}

func (s *CheckoutService) toOrderInfo(ctx context.Context, o *order.Order) *OrderInfo {
	return toOrderInfo(ctx, o, s.productRepo)
}

// toOrderInfo joins an order with product names. Retired products keep
// their snapshot price but fall back to an empty name.
func toOrderInfo(ctx context.Context, o *order.Order, productRepo catalog.ProductRepository) *OrderInfo {
	info := &OrderInfo{
		ID:              o.ID,
		UserID:          o.UserID,
		TotalAmount:     o.TotalAmount,
		Status:          o.Status,
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   o.PaymentStatus,
		ShippingAddress: o.ShippingAddress,
		FirstName:       o.FirstName,
		LastName:        o.LastName,
		Email:           o.Email,
		Phone:           o.Phone,
		Items:           make([]ItemInfo, 0, len(o.Items)),
		CreatedAt:       o.CreatedAt,
	}
	for _, item := range o.Items {
		name := ""
		if product, err := productRepo.FindByID(ctx, item.ProductID); err == nil {
			name = product.Name
		}
		info.Items = append(info.Items, ItemInfo{
			ProductID: item.ProductID,
			Name:      name,
			Quantity:  item.Quantity,
			Price:     item.Price,
			LineTotal: item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	return info
}
