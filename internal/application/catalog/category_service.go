package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CategoryService handles category management
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
	logger       *zap.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// List returns all categories with their product counts
func (s *CategoryService) List(ctx context.Context) ([]CategoryInfo, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]CategoryInfo, 0, len(categories))
	for _, c := range categories {
		count, err := s.productRepo.CountByCategory(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		infos = append(infos, CategoryInfo{
			ID:           c.ID,
			Name:         c.Name,
			Description:  c.Description,
			ProductCount: count,
		})
	}
	return infos, nil
}

// Get returns one category by id
func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*CategoryInfo, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CategoryInfo{
		ID:           category.ID,
		Name:         category.Name,
		Description:  category.Description,
		ProductCount: count,
	}, nil
}

// Create adds a new category. Names are unique.
func (s *CategoryService) Create(ctx context.Context, input CreateCategoryInput) (*CategoryInfo, error) {
	if _, err := s.categoryRepo.FindByName(ctx, input.Name); err == nil {
		return nil, shared.NewDomainError("CATEGORY_EXISTS", "A category with this name already exists")
	}

	category, err := catalog.NewCategory(input.Name, input.Description)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info("category created", zap.String("name", category.Name))

	return &CategoryInfo{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
	}, nil
}

// Update mutates a category
func (s *CategoryService) Update(ctx context.Context, input UpdateCategoryInput) (*CategoryInfo, error) {
	category, err := s.categoryRepo.FindByID(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.categoryRepo.FindByName(ctx, input.Name); err == nil && existing.ID != category.ID {
		return nil, shared.NewDomainError("CATEGORY_EXISTS", "A category with this name already exists")
	}

	if err := category.Update(input.Name, input.Description); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	return &CategoryInfo{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
	}, nil
}

// Delete removes a category. Deletion is blocked while products still
// reference it.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		return err
	}

	count, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("CATEGORY_IN_USE", "Category still has products assigned to it")
	}

	return s.categoryRepo.Delete(ctx, id)
}
