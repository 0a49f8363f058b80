package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(&catalog.Product{}, &catalog.Category{})
	require.NoError(t, err)

	return db
}

func mustProduct(t *testing.T, name string, price string, stock int) *catalog.Product {
	t.Helper()
	money, err := valueobject.NewMoneyINRFromString(price)
	require.NoError(t, err)
	product, err := catalog.NewProduct(name, "test product", money, stock)
	require.NoError(t, err)
	return product
}

func TestGormProductRepository_AdjustStock(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	product := mustProduct(t, "Ceramic Mug", "12.50", 5)
	require.NoError(t, repo.Create(ctx, product))

	t.Run("decrements within the balance", func(t *testing.T) {
		err := repo.AdjustStock(ctx, product.ID, -3)
		require.NoError(t, err)

		got, err := repo.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.StockQuantity)
	})

	t.Run("rejects a delta that would go negative", func(t *testing.T) {
		err := repo.AdjustStock(ctx, product.ID, -3)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		got, err := repo.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.StockQuantity, "failed adjust must leave the row unchanged")
	})

	t.Run("drains to exactly zero", func(t *testing.T) {
		err := repo.AdjustStock(ctx, product.ID, -2)
		require.NoError(t, err)

		got, err := repo.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.StockQuantity)
	})

	t.Run("restock increments", func(t *testing.T) {
		err := repo.AdjustStock(ctx, product.ID, 10)
		require.NoError(t, err)

		got, err := repo.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, got.StockQuantity)
	})

	t.Run("missing product returns not found", func(t *testing.T) {
		err := repo.AdjustStock(ctx, uuid.New(), -1)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormProductRepository_FindAll(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	active := mustProduct(t, "Walnut Desk", "250.00", 3)
	require.NoError(t, repo.Create(ctx, active))

	hidden := mustProduct(t, "Walnut Shelf", "90.00", 1)
	hidden.Deactivate()
	require.NoError(t, repo.Create(ctx, hidden))

	other := mustProduct(t, "Steel Lamp", "40.00", 7)
	require.NoError(t, repo.Create(ctx, other))

	t.Run("storefront default hides inactive products", func(t *testing.T) {
		products, total, err := repo.FindAll(ctx, catalog.NewProductFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		for _, p := range products {
			assert.True(t, p.IsActive)
		}
	})

	t.Run("keyword matches a name substring", func(t *testing.T) {
		filter := catalog.NewProductFilter().WithKeyword("Walnut")
		products, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, products, 1)
		assert.Equal(t, "Walnut Desk", products[0].Name)
	})

	t.Run("admin view includes inactive", func(t *testing.T) {
		filter := catalog.NewProductFilter().IncludeInactive()
		_, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})

	t.Run("category filter", func(t *testing.T) {
		category, err := catalog.NewCategory("Lighting", "")
		require.NoError(t, err)
		catRepo := NewGormCategoryRepository(db)
		require.NoError(t, catRepo.Create(ctx, category))

		other.SetCategory(&category.ID)
		require.NoError(t, repo.Update(ctx, other))

		filter := catalog.NewProductFilter().WithCategory(category.ID)
		products, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, products, 1)
		assert.Equal(t, "Steel Lamp", products[0].Name)
	})
}

func TestGormProductRepository_FindFeatured(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	featured := mustProduct(t, "Oak Chair", "120.00", 4)
	featured.SetFeatured(true)
	require.NoError(t, repo.Create(ctx, featured))

	featuredButInactive := mustProduct(t, "Pine Chair", "60.00", 4)
	featuredButInactive.SetFeatured(true)
	featuredButInactive.Deactivate()
	require.NoError(t, repo.Create(ctx, featuredButInactive))

	plain := mustProduct(t, "Birch Chair", "80.00", 4)
	require.NoError(t, repo.Create(ctx, plain))

	products, err := repo.FindFeatured(ctx, 8)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Oak Chair", products[0].Name)
}

func TestGormProductRepository_RoundTrip(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	product := mustProduct(t, "Ceramic Mug", "12.50", 5)
	require.NoError(t, repo.Create(ctx, product))

	got, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, product.Name, got.Name)

	require.NoError(t, repo.Delete(ctx, product.ID))

	_, err = repo.FindByID(ctx, product.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, product.ID), shared.ErrNotFound)
}

func TestGormCategoryRepository(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormCategoryRepository(db)
	productRepo := NewGormProductRepository(db)
	ctx := context.Background()

	category, err := catalog.NewCategory("Furniture", "Desks and chairs")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, category))

	t.Run("find by name", func(t *testing.T) {
		got, err := repo.FindByName(ctx, "Furniture")
		require.NoError(t, err)
		assert.Equal(t, category.ID, got.ID)
	})

	t.Run("count products referencing the category", func(t *testing.T) {
		product := mustProduct(t, "Walnut Desk", "250.00", 3)
		product.SetCategory(&category.ID)
		require.NoError(t, productRepo.Create(ctx, product))

		count, err := productRepo.CountByCategory(ctx, category.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("find all ordered by name", func(t *testing.T) {
		second, err := catalog.NewCategory("Accessories", "")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, second))

		categories, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, categories, 2)
		assert.Equal(t, "Accessories", categories[0].Name)
	})
}
