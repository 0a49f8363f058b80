package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// ProductHandler handles product endpoints for the storefront and the
// back office
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
	imageService   *catalogapp.ImageService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService, imageService *catalogapp.ImageService) *ProductHandler {
	return &ProductHandler{productService: productService, imageService: imageService}
}

// ListProductsRequest represents product listing query parameters
type ListProductsRequest struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size" binding:"omitempty,max=100"`
	Search    string `form:"search"`
	Category  string `form:"category" binding:"omitempty,uuid"`
	Featured  *bool  `form:"featured"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=name price created_at"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// CreateProductRequest represents a back-office product creation request
type CreateProductRequest struct {
	Name          string  `json:"name" binding:"required,min=1,max=200"`
	Description   string  `json:"description" binding:"max=5000"`
	Price         string  `json:"price" binding:"required"`
	StockQuantity int     `json:"stock_quantity" binding:"gte=0"`
	CategoryID    *string `json:"category_id" binding:"omitempty,uuid"`
	ImageURL      string  `json:"image_url" binding:"omitempty,max=500"`
	IsFeatured    bool    `json:"is_featured"`
}

// UpdateProductRequest represents a back-office product update request
type UpdateProductRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=200"`
	Description string  `json:"description" binding:"max=5000"`
	Price       string  `json:"price" binding:"required"`
	CategoryID  *string `json:"category_id" binding:"omitempty,uuid"`
	ImageURL    string  `json:"image_url" binding:"omitempty,max=500"`
	IsFeatured  bool    `json:"is_featured"`
	IsActive    bool    `json:"is_active"`
}

// SetStockRequest represents an absolute stock write
type SetStockRequest struct {
	Quantity int `json:"quantity" binding:"gte=0"`
}

// ProductResponse is the product view returned to callers
type ProductResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         string  `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
	CategoryID    *string `json:"category_id"`
	CategoryName  string  `json:"category_name,omitempty"`
	ImageURL      string  `json:"image_url"`
	IsActive      bool    `json:"is_active"`
	IsFeatured    bool    `json:"is_featured"`
	CreatedAt     string  `json:"created_at"`
}

func toProductResponse(p catalogapp.ProductInfo) ProductResponse {
	resp := ProductResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price.String(),
		StockQuantity: p.StockQuantity,
		CategoryName:  p.CategoryName,
		ImageURL:      p.ImageURL,
		IsActive:      p.IsActive,
		IsFeatured:    p.IsFeatured,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
	if p.CategoryID != nil {
		id := p.CategoryID.String()
		resp.CategoryID = &id
	}
	return resp
}

func toProductResponses(products []catalogapp.ProductInfo) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

func (h *ProductHandler) list(c *gin.Context, includeInactive bool) {
	var req ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}

	input := catalogapp.ListProductsInput{
		Keyword:         req.Search,
		Featured:        req.Featured,
		IncludeInactive: includeInactive,
		Page:            req.Page,
		PageSize:        req.PageSize,
		SortBy:          req.SortBy,
		SortOrder:       req.SortOrder,
	}
	if req.Category != "" {
		categoryID, err := uuid.Parse(req.Category)
		if err != nil {
			h.BadRequest(c, "Invalid category id")
			return
		}
		input.CategoryID = &categoryID
	}

	result, err := h.productService.List(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, toProductResponses(result.Products), result.Total, result.Page, result.PageSize)
}

// List godoc
// @Summary      List active products
// @Description  Storefront product listing with substring search,
// @Description  category filter and pagination
// @Tags         catalog
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size (max 100)"
// @Param        search query string false "Substring search on name"
// @Param        category query string false "Category ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]ProductResponse}
// @Router       /catalog/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	h.list(c, false)
}

// AdminList lists products including deactivated ones
func (h *ProductHandler) AdminList(c *gin.Context) {
	h.list(c, true)
}

// Featured returns the newest active products with stock
func (h *ProductHandler) Featured(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "8"))
	products, err := h.productService.Featured(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponses(products))
}

// Get returns one product by id
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := bindID(c)
	if err != nil {
		h.BadRequest(c, "Invalid product id")
		return
	}

	product, err := h.productService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(*product))
}

// Create creates a product
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	input := catalogapp.CreateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		ImageURL:      req.ImageURL,
		IsFeatured:    req.IsFeatured,
	}
	if req.CategoryID != nil && *req.CategoryID != "" {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			h.BadRequest(c, "Invalid category id")
			return
		}
		input.CategoryID = &categoryID
	}

	product, err := h.productService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toProductResponse(*product))
}

// Update updates a product
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := bindID(c)
	if err != nil {
		h.BadRequest(c, "Invalid product id")
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	input := catalogapp.UpdateProductInput{
		ProductID:   id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		IsFeatured:  req.IsFeatured,
		IsActive:    req.IsActive,
	}
	if req.CategoryID != nil && *req.CategoryID != "" {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			h.BadRequest(c, "Invalid category id")
			return
		}
		input.CategoryID = &categoryID
	}

	product, err := h.productService.Update(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(*product))
}

// SetStock writes an absolute stock quantity
func (h *ProductHandler) SetStock(c *gin.Context) {
	id, err := bindID(c)
	if err != nil {
		h.BadRequest(c, "Invalid product id")
		return
	}

	var req SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	err = h.productService.SetStock(c.Request.Context(), catalogapp.SetStockInput{
		ProductID: id,
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Stock updated"})
}

// LowStock lists active products at or below the given threshold
func (h *ProductHandler) LowStock(c *gin.Context) {
	threshold, _ := strconv.Atoi(c.DefaultQuery("threshold", "5"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	products, err := h.productService.LowStock(c.Request.Context(), catalogapp.LowStockInput{
		Threshold: threshold,
		Limit:     limit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponses(products))
}

// Delete soft-deletes a product by clearing its active flag
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := bindID(c)
	if err != nil {
		h.BadRequest(c, "Invalid product id")
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// InitiateImageUploadRequest starts a presigned image upload
type InitiateImageUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required"`
}

// ConfirmImageUploadRequest attaches an uploaded object to the product
type ConfirmImageUploadRequest struct {
	StorageKey string `json:"storage_key" binding:"required,max=500"`
}

// ImageUploadTicketResponse carries the presigned upload URL
type ImageUploadTicketResponse struct {
	StorageKey string `json:"storage_key"`
	UploadURL  string `json:"upload_url"`
	ExpiresAt  string `json:"expires_at"`
}

// ImageDownloadResponse carries the presigned download URL
type ImageDownloadResponse struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expires_at"`
}

// InitiateImageUpload issues a presigned PUT URL for a product image.
// The client uploads the bytes directly to object storage and then
// confirms with the returned storage key.
func (h *ProductHandler) InitiateImageUpload(c *gin.Context) {
	id, err := bindID(c)
	if err != nil {
		h.BadRequest(c, "Invalid product id")
		return
	}

	var req InitiateImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	ticket, err := h.imageService.InitiateImageUpload(c.Request.Context(), catalogapp.InitiateImageUploadInput{
		ProductID:   id,
		FileName:    req.FileName,
		ContentType: req.ContentType,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ImageUploadTicketResponse{
		StorageKey: ticket.StorageKey,
		UploadURL:  ticket.UploadURL,
		ExpiresAt:  ticket.ExpiresAt.Format(time.RFC3339),
	})
}

// ConfirmImageUpload verifies the uploaded object and attaches it
func (h *ProductHandler) ConfirmImageUpload(c *gin.Context) {
	id, err := bindID(c)
	if err != nil {
		h.BadRequest(c, "Invalid product id")
		return
	}

	var req ConfirmImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	product, err := h.imageService.ConfirmImageUpload(c.Request.Context(), catalogapp.ConfirmImageUploadInput{
		ProductID:  id,
		StorageKey: req.StorageKey,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(*product))
}

// ImageURL returns a presigned download URL for the product image
func (h *ProductHandler) ImageURL(c *gin.Context) {
	id, err := bindID(c)
	if err != nil {
		h.BadRequest(c, "Invalid product id")
		return
	}

	info, err := h.imageService.ImageDownloadURL(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ImageDownloadResponse{
		URL:       info.URL,
		ExpiresAt: info.ExpiresAt.Format(time.RFC3339),
	})
}

// RemoveImage detaches and deletes the product image
func (h *ProductHandler) RemoveImage(c *gin.Context) {
	id, err := bindID(c)
	if err != nil {
		h.BadRequest(c, "Invalid product id")
		return
	}

	if err := h.imageService.RemoveImage(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
