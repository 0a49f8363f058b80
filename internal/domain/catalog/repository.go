package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// Create creates a new product
	Create(ctx context.Context, product *Product) error

	// Update updates an existing product
	Update(ctx context.Context, product *Product) error

	// Delete deletes a product by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds a product by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAll returns products matching the filter with pagination
	FindAll(ctx context.Context, filter ProductFilter) ([]*Product, int64, error)

	// FindFeatured returns active featured products for the storefront
	FindFeatured(ctx context.Context, limit int) ([]*Product, error)

	// AdjustStock applies a relative stock change in one atomic statement.
	// A delta that would drive the quantity below zero fails with
	// shared.ErrInsufficientStock and leaves the row unchanged.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error

	// CountByCategory returns how many products reference a category
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)

	// FindLowStock returns active products at or below the threshold,
	// lowest stock first
	FindLowStock(ctx context.Context, threshold, limit int) ([]*Product, error)
}

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	// Create creates a new category
	Create(ctx context.Context, category *Category) error

	// Update updates an existing category
	Update(ctx context.Context, category *Category) error

	// Delete deletes a category by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds a category by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// FindByName finds a category by name
	FindByName(ctx context.Context, name string) (*Category, error)

	// FindAll returns all categories
	FindAll(ctx context.Context) ([]*Category, error)
}

// ProductFilter contains filter options for querying products
type ProductFilter struct {
	// Search keyword matched as a substring of the product name
	Keyword string

	// Filter by category
	CategoryID *uuid.UUID

	// Filter by active flag; nil returns all (admin view)
	Active *bool

	// Filter by featured flag
	Featured *bool

	// Pagination
	Page     int
	PageSize int

	// Sorting
	SortBy    string
	SortOrder string // "asc" or "desc"
}

// NewProductFilter creates a ProductFilter with storefront defaults:
// active products only, newest first.
func NewProductFilter() ProductFilter {
	active := true
	return ProductFilter{
		Active:    &active,
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}

// WithKeyword sets the search keyword
func (f ProductFilter) WithKeyword(keyword string) ProductFilter {
	f.Keyword = keyword
	return f
}

// WithCategory sets the category filter
func (f ProductFilter) WithCategory(categoryID uuid.UUID) ProductFilter {
	f.CategoryID = &categoryID
	return f
}

// WithActive sets the active flag filter
func (f ProductFilter) WithActive(active bool) ProductFilter {
	f.Active = &active
	return f
}

// IncludeInactive clears the active flag filter for admin listings
func (f ProductFilter) IncludeInactive() ProductFilter {
	f.Active = nil
	return f
}

// WithFeatured sets the featured flag filter
func (f ProductFilter) WithFeatured(featured bool) ProductFilter {
	f.Featured = &featured
	return f
}

// WithPagination sets pagination parameters
func (f ProductFilter) WithPagination(page, pageSize int) ProductFilter {
	f.Page = page
	f.PageSize = pageSize
	return f
}

// Offset returns the offset for pagination
func (f ProductFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit returns the limit for pagination
func (f ProductFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
