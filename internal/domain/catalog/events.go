package catalog

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Event types for the catalog domain
const (
	EventTypeProductCreated      = "catalog.product_created"
	EventTypeProductUpdated      = "catalog.product_updated"
	EventTypeProductPriceChanged = "catalog.product_price_changed"
	EventTypeCategoryCreated     = "catalog.category_created"
)

// ProductCreatedEvent fires when a product is added to the catalog
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// NewProductCreatedEvent creates a ProductCreatedEvent
func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, "Product", product.ID),
		Name:            product.Name,
		Price:           product.Price,
	}
}

// ProductUpdatedEvent fires when a product's details or lifecycle change
type ProductUpdatedEvent struct {
	shared.BaseDomainEvent
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// NewProductUpdatedEvent creates a ProductUpdatedEvent
func NewProductUpdatedEvent(product *Product) *ProductUpdatedEvent {
	return &ProductUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductUpdated, "Product", product.ID),
		Name:            product.Name,
		IsActive:        product.IsActive,
	}
}

// ProductPriceChangedEvent fires when the live price changes
type ProductPriceChangedEvent struct {
	shared.BaseDomainEvent
	OldPrice decimal.Decimal `json:"old_price"`
	NewPrice decimal.Decimal `json:"new_price"`
}

// NewProductPriceChangedEvent creates a ProductPriceChangedEvent
func NewProductPriceChangedEvent(product *Product, oldPrice decimal.Decimal) *ProductPriceChangedEvent {
	return &ProductPriceChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductPriceChanged, "Product", product.ID),
		OldPrice:        oldPrice,
		NewPrice:        product.Price,
	}
}

// CategoryCreatedEvent fires when a category is created
type CategoryCreatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewCategoryCreatedEvent creates a CategoryCreatedEvent
func NewCategoryCreatedEvent(category *Category) *CategoryCreatedEvent {
	return &CategoryCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCategoryCreated, "Category", category.ID),
		Name:            category.Name,
	}
}
