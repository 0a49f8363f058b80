package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// OrderHandler handles checkout and order endpoints
type OrderHandler struct {
	BaseHandler
	checkoutService *orderapp.CheckoutService
	orderService    *orderapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(checkoutService *orderapp.CheckoutService, orderService *orderapp.OrderService) *OrderHandler {
	return &OrderHandler{
		checkoutService: checkoutService,
		orderService:    orderService,
	}
}

// PlaceOrderRequest represents a checkout submission
type PlaceOrderRequest struct {
	ShippingAddress string `json:"shipping_address" binding:"required,min=10,max=500"`
	PaymentMethod   string `json:"payment_method" binding:"required,oneof=cod razorpay"`
	FirstName       string `json:"first_name" binding:"required,max=100"`
	LastName        string `json:"last_name" binding:"max=100"`
	Email           string `json:"email" binding:"required,email"`
	Phone           string `json:"phone" binding:"required,max=20"`
}

// UpdateOrderStatusRequest represents a back-office status change
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending processing shipped delivered cancelled"`
}

// ListOrdersRequest represents order listing query parameters
type ListOrdersRequest struct {
	Page          int    `form:"page"`
	PageSize      int    `form:"page_size" binding:"omitempty,max=100"`
	Status        string `form:"status" binding:"omitempty,oneof=pending processing shipped delivered cancelled"`
	PaymentStatus string `form:"payment_status" binding:"omitempty,oneof=pending paid failed refunded"`
}

// QuoteResponse is the checkout page display quote
type QuoteResponse struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Shipping string `json:"shipping"`
	Total    string `json:"total"`
}

// OrderItemResponse is one frozen order line
type OrderItemResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	LineTotal string `json:"line_total"`
}

// OrderResponse is the order view returned to callers
type OrderResponse struct {
	ID              string              `json:"id"`
	UserID          string              `json:"user_id"`
	TotalAmount     string              `json:"total_amount"`
	Status          string              `json:"status"`
	PaymentMethod   string              `json:"payment_method"`
	PaymentStatus   string              `json:"payment_status"`
	ShippingAddress string              `json:"shipping_address"`
	FirstName       string              `json:"first_name"`
	LastName        string              `json:"last_name"`
	Email           string              `json:"email"`
	Phone           string              `json:"phone"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       string              `json:"created_at"`
}

func toOrderResponse(o orderapp.OrderInfo) OrderResponse {
	resp := OrderResponse{
		ID:              o.ID.String(),
		UserID:          o.UserID.String(),
		TotalAmount:     o.TotalAmount.String(),
		Status:          o.Status.String(),
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   string(o.PaymentStatus),
		ShippingAddress: o.ShippingAddress,
		FirstName:       o.FirstName,
		LastName:        o.LastName,
		Email:           o.Email,
		Phone:           o.Phone,
		Items:           make([]OrderItemResponse, 0, len(o.Items)),
		CreatedAt:       o.CreatedAt.Format(time.RFC3339),
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ProductID: item.ProductID.String(),
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price.String(),
			LineTotal: item.LineTotal.String(),
		})
	}
	return resp
}

func toOrderResponses(orders []orderapp.OrderInfo) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

func (h *OrderHandler) bindListInput(c *gin.Context) (orderapp.ListOrdersInput, bool) {
	var req ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return orderapp.ListOrdersInput{}, false
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}

	input := orderapp.ListOrdersInput{Page: req.Page, PageSize: req.PageSize}
	if req.Status != "" {
		status := order.OrderStatus(req.Status)
		input.Status = &status
	}
	if req.PaymentStatus != "" {
		paymentStatus := order.PaymentStatus(req.PaymentStatus)
		input.PaymentStatus = &paymentStatus
	}
	return input, true
}

// Quote godoc
// @Summary      Checkout quote
// @Description  Display figures for the checkout page. Only the subtotal
// @Description  is stored on a placed order.
// @Tags         checkout
// @Produce      json
// @Success      200 {object} dto.Response{data=QuoteResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /checkout/quote [get]
func (h *OrderHandler) Quote(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	quote, err := h.checkoutService.Quote(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, QuoteResponse{
		Subtotal: quote.Subtotal.String(),
		Tax:      quote.Tax.String(),
		Shipping: quote.Shipping.String(),
		Total:    quote.Total.String(),
	})
}

// PlaceOrder godoc
// @Summary      Place an order from the cart
// @Description  Snapshots prices, creates the order and empties the cart
// @Description  in one transaction. COD decrements stock immediately; the
// @Description  gateway path defers decrement to payment confirmation.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request body PlaceOrderRequest true "Checkout submission"
// @Success      201 {object} dto.Response{data=OrderResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /checkout [post]
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	placed, err := h.checkoutService.PlaceOrder(c.Request.Context(), orderapp.PlaceOrderInput{
		UserID:          userID,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toOrderResponse(*placed))
}

// List returns the authenticated user's orders
func (h *OrderHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	input, ok := h.bindListInput(c)
	if !ok {
		return
	}

	result, err := h.orderService.ListByUser(c.Request.Context(), userID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, toOrderResponses(result.Orders), result.Total, result.Page, result.PageSize)
}

// Get returns one order. Users see only their own; admins see all.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, err := bindID(c)
	if err != nil {
		h.BadRequest(c, "Invalid order id")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	info, err := h.orderService.Get(c.Request.Context(), orderID, userID, middleware.IsAdmin(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponse(*info))
}

// AdminList returns all orders for the back office
func (h *OrderHandler) AdminList(c *gin.Context) {
	input, ok := h.bindListInput(c)
	if !ok {
		return
	}

	result, err := h.orderService.ListAll(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, toOrderResponses(result.Orders), result.Total, result.Page, result.PageSize)
}

// UpdateStatus sets an order's fulfilment status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := bindID(c)
	if err != nil {
		h.BadRequest(c, "Invalid order id")
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	info, err := h.orderService.UpdateStatus(c.Request.Context(), orderapp.UpdateStatusInput{
		OrderID: orderID,
		Status:  order.OrderStatus(req.Status),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponse(*info))
}
