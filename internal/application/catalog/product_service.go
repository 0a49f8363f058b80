package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// ProductService handles catalog read and back-office write operations
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	logger       *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// List returns a page of products. Storefront callers only see active
// products; the admin flag widens the view.
func (s *ProductService) List(ctx context.Context, input ListProductsInput) (*ListProductsResult, error) {
	filter := catalog.NewProductFilter().
		WithKeyword(input.Keyword).
		WithPagination(input.Page, input.PageSize)
	if input.CategoryID != nil {
		filter = filter.WithCategory(*input.CategoryID)
	}
	if input.Featured != nil {
		filter = filter.WithFeatured(*input.Featured)
	}
	if input.IncludeInactive {
		filter = filter.IncludeInactive()
	}
	if input.SortBy != "" {
		filter.SortBy = input.SortBy
		filter.SortOrder = input.SortOrder
	}

	products, total, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &ListProductsResult{
		Products: s.toProductInfos(ctx, products),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.Limit(),
	}, nil
}

// Get returns one product by id
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*ProductInfo, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	info := s.toProductInfo(ctx, product)
	return &info, nil
}

// Featured returns the storefront's featured products
func (s *ProductService) Featured(ctx context.Context, limit int) ([]ProductInfo, error) {
	products, err := s.productRepo.FindFeatured(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.toProductInfos(ctx, products), nil
}

// LowStock returns active products at or below the threshold for the
// back-office dashboard
func (s *ProductService) LowStock(ctx context.Context, input LowStockInput) ([]ProductInfo, error) {
	products, err := s.productRepo.FindLowStock(ctx, input.Threshold, input.Limit)
	if err != nil {
		return nil, err
	}
	return s.toProductInfos(ctx, products), nil
}

// Create adds a product to the catalog
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*ProductInfo, error) {
	price, err := valueobject.NewMoneyINRFromString(input.Price)
	if err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(input.Name, input.Description, price, input.StockQuantity)
	if err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		product.SetCategory(input.CategoryID)
	}
	if input.ImageURL != "" {
		if err := product.SetImageURL(input.ImageURL); err != nil {
			return nil, err
		}
	}
	product.SetFeatured(input.IsFeatured)

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name))

	info := s.toProductInfo(ctx, product)
	return &info, nil
}

// Update mutates a product's catalog fields. Stock is not written here;
// use SetStock or the checkout's atomic adjustment.
func (s *ProductService) Update(ctx context.Context, input UpdateProductInput) (*ProductInfo, error) {
	product, err := s.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	price, err := valueobject.NewMoneyINRFromString(input.Price)
	if err != nil {
		return nil, err
	}

	if err := product.Update(input.Name, input.Description); err != nil {
		return nil, err
	}
	if err := product.UpdatePrice(price); err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
	}
	product.SetCategory(input.CategoryID)
	if err := product.SetImageURL(input.ImageURL); err != nil {
		return nil, err
	}
	product.SetFeatured(input.IsFeatured)

	if input.IsActive != product.IsActive {
		if input.IsActive {
			if err := product.Activate(); err != nil {
				return nil, err
			}
		} else {
			if err := product.Deactivate(); err != nil {
				return nil, err
			}
		}
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	info := s.toProductInfo(ctx, product)
	return &info, nil
}

// SetStock performs an absolute stock write for the back office
func (s *ProductService) SetStock(ctx context.Context, input SetStockInput) error {
	product, err := s.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		return err
	}
	if err := product.SetStock(input.Quantity); err != nil {
		return err
	}
	return s.productRepo.Update(ctx, product)
}

// Delete retires a product from the storefront. Products are never hard
// deleted so order history keeps valid references.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !product.IsActive {
		return nil
	}
	if err := product.Deactivate(); err != nil {
		return err
	}
	if err := s.productRepo.Update(ctx, product); err != nil {
		return err
	}

	s.logger.Info("product deactivated", zap.String("product_id", id.String()))
	return nil
}

func (s *ProductService) toProductInfos(ctx context.Context, products []*catalog.Product) []ProductInfo {
	infos := make([]ProductInfo, 0, len(products))
	for _, p := range products {
		infos = append(infos, s.toProductInfo(ctx, p))
	}
	return infos
}

func (s *ProductService) toProductInfo(ctx context.Context, p *catalog.Product) ProductInfo {
	info := ProductInfo{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		CategoryID:    p.CategoryID,
		ImageURL:      p.ImageURL,
		IsActive:      p.IsActive,
		IsFeatured:    p.IsFeatured,
		CreatedAt:     p.CreatedAt,
	}
	if p.CategoryID != nil {
		if category, err := s.categoryRepo.FindByID(ctx, *p.CategoryID); err == nil {
			info.CategoryName = category.Name
		}
	}
	return info
}
