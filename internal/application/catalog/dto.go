package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductInfo is the product view returned to callers
type ProductInfo struct {
	ID            uuid.UUID
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	CategoryID    *uuid.UUID
	CategoryName  string
	ImageURL      string
	IsActive      bool
	IsFeatured    bool
	CreatedAt     time.Time
}

// CategoryInfo is the category view returned to callers
type CategoryInfo struct {
	ID           uuid.UUID
	Name         string
	Description  string
	ProductCount int64
}

// ListProductsInput contains filter options for product listings
type ListProductsInput struct {
	Keyword         string
	CategoryID      *uuid.UUID
	Featured        *bool
	IncludeInactive bool // admin only
	Page            int
	PageSize        int
	SortBy          string
	SortOrder       string
}

// ListProductsResult contains a page of products
type ListProductsResult struct {
	Products []ProductInfo
	Total    int64
	Page     int
	PageSize int
}

// CreateProductInput contains the input for product creation
type CreateProductInput struct {
	Name          string
	Description   string
	Price         string // decimal string
	StockQuantity int
	CategoryID    *uuid.UUID
	ImageURL      string
	IsFeatured    bool
}

// UpdateProductInput contains the input for product updates
type UpdateProductInput struct {
	ProductID   uuid.UUID
	Name        string
	Description string
	Price       string
	CategoryID  *uuid.UUID
	ImageURL    string
	IsFeatured  bool
	IsActive    bool
}

// SetStockInput contains the input for an absolute stock write
type SetStockInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateCategoryInput contains the input for category creation
type CreateCategoryInput struct {
	Name        string
	Description string
}

// UpdateCategoryInput contains the input for category updates
type UpdateCategoryInput struct {
	CategoryID  uuid.UUID
	Name        string
	Description string
}

// LowStockInput contains the input for the low-stock listing
type LowStockInput struct {
	Threshold int
	Limit     int
}

// InitiateImageUploadInput contains the input for starting an image upload
type InitiateImageUploadInput struct {
	ProductID   uuid.UUID
	FileName    string
	ContentType string
}

// ImageUploadTicket is handed to the client so it can PUT the image bytes
// and confirm the upload afterwards
type ImageUploadTicket struct {
	StorageKey string
	UploadURL  string
	ExpiresAt  time.Time
}

// ConfirmImageUploadInput contains the input for confirming an image upload
type ConfirmImageUploadInput struct {
	ProductID  uuid.UUID
	StorageKey string
}

// ImageDownloadInfo carries a presigned download URL
type ImageDownloadInfo struct {
	URL       string
	ExpiresAt time.Time
}
