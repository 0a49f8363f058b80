package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	cartapp "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// CartHandler handles the authenticated user's cart
type CartHandler struct {
	BaseHandler
	cartService *cartapp.CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *cartapp.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// AddItemRequest adds quantity of a product to the cart. Repeated adds
// accumulate.
type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// UpdateItemRequest overwrites the stored quantity. Zero or negative
// removes the row.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartItemResponse is one cart row joined with its product
type CartItemResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	ImageURL  string `json:"image_url"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
	InStock   bool   `json:"in_stock"`
}

// CartResponse is the user's full cart
type CartResponse struct {
	Items     []CartItemResponse `json:"items"`
	ItemCount int64              `json:"item_count"`
	Subtotal  string             `json:"subtotal"`
}

// View returns the user's cart with product details
func (h *CartHandler) View(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	view, err := h.cartService.View(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := CartResponse{
		Items:     make([]CartItemResponse, 0, len(view.Items)),
		ItemCount: view.ItemCount,
		Subtotal:  view.Subtotal.String(),
	}
	for _, item := range view.Items {
		resp.Items = append(resp.Items, CartItemResponse{
			ProductID: item.ProductID.String(),
			Name:      item.Name,
			ImageURL:  item.ImageURL,
			UnitPrice: item.UnitPrice.String(),
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal.String(),
			InStock:   item.InStock,
		})
	}
	h.Success(c, resp)
}

// Count returns the total quantity across all cart rows. Always a
// non-negative integer, zero for an empty cart.
func (h *CartHandler) Count(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	count, err := h.cartService.Count(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"count": count})
}

// Add upserts a cart row, accumulating quantity
func (h *CartHandler) Add(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product id")
		return
	}

	err = h.cartService.Add(c.Request.Context(), cartapp.ItemInput{
		UserID:    userID,
		ProductID: productID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Added to cart"})
}

// Update overwrites a cart row's quantity
func (h *CartHandler) Update(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	productID, err := bindID(c)
	if err != nil {
		h.BadRequest(c, "Invalid product id")
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	err = h.cartService.Update(c.Request.Context(), cartapp.ItemInput{
		UserID:    userID,
		ProductID: productID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Cart updated"})
}

// Remove deletes one cart row
func (h *CartHandler) Remove(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	productID, err := bindID(c)
	if err != nil {
		h.BadRequest(c, "Invalid product id")
		return
	}

	if err := h.cartService.Remove(c.Request.Context(), userID, productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Clear empties the user's cart
func (h *CartHandler) Clear(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.cartService.Clear(c.Request.Context(), userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
