package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrderService handles order reads and back-office status management
type OrderService struct {
	orderRepo   order.OrderRepository
	productRepo catalog.ProductRepository
	policy      order.TransitionPolicy
	logger      *zap.Logger
}

// NewOrderService creates a new order service. A nil policy permits
// every fulfilment status transition, which is the back-office default.
func NewOrderService(
	orderRepo order.OrderRepository,
	productRepo catalog.ProductRepository,
	policy order.TransitionPolicy,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		policy:      policy,
		logger:      logger,
	}
}

// Get returns one order. Non-admin callers only see their own orders.
func (s *OrderService) Get(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (*OrderInfo, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.UserID != userID {
		// Hide the order's existence from other users.
		return nil, shared.ErrNotFound
	}
	return toOrderInfo(ctx, o, s.productRepo), nil
}

// ListByUser returns the authenticated user's orders, newest first
func (s *OrderService) ListByUser(ctx context.Context, userID uuid.UUID, input ListOrdersInput) (*ListOrdersResult, error) {
	filter := s.buildFilter(input)
	orders, total, err := s.orderRepo.FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return s.toPage(ctx, orders, total, filter), nil
}

// ListAll returns all orders for the back office
func (s *OrderService) ListAll(ctx context.Context, input ListOrdersInput) (*ListOrdersResult, error) {
	filter := s.buildFilter(input)
	orders, total, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.toPage(ctx, orders, total, filter), nil
}

// UpdateStatus sets a new fulfilment status, subject to the configured
// transition policy
func (s *OrderService) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderInfo, error) {
	o, err := s.orderRepo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	from := o.Status
	if err := o.SetStatus(input.Status, s.policy); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("order status updated",
		zap.String("order_id", o.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(input.Status)))

	return toOrderInfo(ctx, o, s.productRepo), nil
}

func (s *OrderService) buildFilter(input ListOrdersInput) order.OrderFilter {
	filter := order.NewOrderFilter().WithPagination(input.Page, input.PageSize)
	if input.Status != nil {
		filter = filter.WithStatus(*input.Status)
	}
	if input.PaymentStatus != nil {
		filter = filter.WithPaymentStatus(*input.PaymentStatus)
	}
	return filter
}

func (s *OrderService) toPage(ctx context.Context, orders []*order.Order, total int64, filter order.OrderFilter) *ListOrdersResult {
	infos := make([]OrderInfo, 0, len(orders))
	for _, o := range orders {
		infos = append(infos, *toOrderInfo(ctx, o, s.productRepo))
	}
	return &ListOrdersResult{
		Orders:   infos,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.Limit(),
	}
}
