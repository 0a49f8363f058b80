package catalog

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(t *testing.T, amount string) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoneyINRFromString(amount)
	require.NoError(t, err)
	return m
}

func TestNewProduct(t *testing.T) {
	t.Run("creates active product", func(t *testing.T) {
		product, err := NewProduct("Ceramic Mug", "Stoneware, 300ml", money(t, "249.00"), 50)

		require.NoError(t, err)
		assert.Equal(t, "Ceramic Mug", product.Name)
		assert.True(t, product.Price.Equal(decimal.RequireFromString("249.00")))
		assert.Equal(t, 50, product.StockQuantity)
		assert.True(t, product.IsActive)
		assert.False(t, product.IsFeatured)

		events := product.GetDomainEvents()
		assert.Len(t, events, 1)
		_, ok := events[0].(*ProductCreatedEvent)
		assert.True(t, ok)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewProduct("", "", money(t, "10.00"), 1)
		assert.Error(t, err)
	})

	t.Run("fails with negative stock", func(t *testing.T) {
		_, err := NewProduct("Mug", "", money(t, "10.00"), -1)
		assert.Error(t, err)
	})
}

func TestProductAdjustStock(t *testing.T) {
	t.Run("decrements available stock", func(t *testing.T) {
		product, err := NewProduct("Mug", "", money(t, "10.00"), 5)
		require.NoError(t, err)

		require.NoError(t, product.AdjustStock(-3))
		assert.Equal(t, 2, product.StockQuantity)
	})

	t.Run("rejects going below zero and leaves stock unchanged", func(t *testing.T) {
		product, err := NewProduct("Mug", "", money(t, "10.00"), 2)
		require.NoError(t, err)

		err = product.AdjustStock(-3)

		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
		assert.Equal(t, 2, product.StockQuantity)
	})

	t.Run("allows decrementing to exactly zero", func(t *testing.T) {
		product, err := NewProduct("Mug", "", money(t, "10.00"), 2)
		require.NoError(t, err)

		require.NoError(t, product.AdjustStock(-2))
		assert.Equal(t, 0, product.StockQuantity)
	})

	t.Run("restock increments", func(t *testing.T) {
		product, err := NewProduct("Mug", "", money(t, "10.00"), 0)
		require.NoError(t, err)

		require.NoError(t, product.AdjustStock(10))
		assert.Equal(t, 10, product.StockQuantity)
	})
}

func TestProductHasStock(t *testing.T) {
	product, err := NewProduct("Mug", "", money(t, "10.00"), 3)
	require.NoError(t, err)

	assert.True(t, product.HasStock(3))
	assert.False(t, product.HasStock(4))
	assert.False(t, product.HasStock(0))
	assert.False(t, product.HasStock(-1))
}

func TestProductUpdatePrice(t *testing.T) {
	t.Run("changes price and records old value", func(t *testing.T) {
		product, err := NewProduct("Mug", "", money(t, "10.00"), 3)
		require.NoError(t, err)
		product.ClearDomainEvents()

		require.NoError(t, product.UpdatePrice(money(t, "12.50")))

		assert.True(t, product.Price.Equal(decimal.RequireFromString("12.50")))
		events := product.GetDomainEvents()
		require.Len(t, events, 1)
		ev, ok := events[0].(*ProductPriceChangedEvent)
		require.True(t, ok)
		assert.True(t, ev.OldPrice.Equal(decimal.RequireFromString("10.00")))
	})

	t.Run("rejects negative price", func(t *testing.T) {
		product, err := NewProduct("Mug", "", money(t, "10.00"), 3)
		require.NoError(t, err)

		negative := valueobject.NewMoneyINR(decimal.RequireFromString("-1"))
		assert.Error(t, product.UpdatePrice(negative))
	})
}

func TestProductLifecycle(t *testing.T) {
	product, err := NewProduct("Mug", "", money(t, "10.00"), 3)
	require.NoError(t, err)

	assert.Error(t, product.Activate())

	require.NoError(t, product.Deactivate())
	assert.False(t, product.IsActive)
	assert.Error(t, product.Deactivate())

	require.NoError(t, product.Activate())
	assert.True(t, product.IsActive)
}

func TestNewCategory(t *testing.T) {
	t.Run("creates category", func(t *testing.T) {
		category, err := NewCategory("Kitchen", "Mugs, plates, and cookware")

		require.NoError(t, err)
		assert.Equal(t, "Kitchen", category.Name)

		events := category.GetDomainEvents()
		assert.Len(t, events, 1)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewCategory("  ", "")
		assert.Error(t, err)
	})

	t.Run("update renames", func(t *testing.T) {
		category, err := NewCategory("Kitchen", "")
		require.NoError(t, err)

		require.NoError(t, category.Update("Kitchenware", "Updated"))
		assert.Equal(t, "Kitchenware", category.Name)
	})
}
