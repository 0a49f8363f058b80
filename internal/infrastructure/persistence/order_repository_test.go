package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOrderTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(&order.Order{}, &order.OrderItem{}, &cart.CartItem{})
	require.NoError(t, err)

	return db
}

func mustOrder(t *testing.T, userID uuid.UUID) *order.Order {
	t.Helper()
	price, err := valueobject.NewMoneyINRFromString("12.50")
	require.NoError(t, err)
	o, err := order.NewOrder(userID, "12 Hill Road, Mumbai", order.PaymentMethodCOD, []order.OrderLine{
		{ProductID: uuid.New(), Quantity: 2, UnitPrice: price},
	})
	require.NoError(t, err)
	return o
}

func TestGormOrderRepository_CreateWithItems(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	cartRepo := NewGormCartRepository(db)
	ctx := context.Background()

	userID := uuid.New()

	require.NoError(t, cartRepo.AddQuantity(ctx, userID, uuid.New(), 2))
	require.NoError(t, cartRepo.AddQuantity(ctx, userID, uuid.New(), 1))

	o := mustOrder(t, userID)
	require.NoError(t, repo.CreateWithItems(ctx, o))

	t.Run("order and items land together", func(t *testing.T) {
		got, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, 2, got.Items[0].Quantity)
		assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("25.00")))
	})

	t.Run("cart is cleared in the same transaction", func(t *testing.T) {
		count, err := cartRepo.CountItems(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("empty order is rejected", func(t *testing.T) {
		bad := mustOrder(t, userID)
		bad.Items = nil
		err := repo.CreateWithItems(ctx, bad)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EMPTY_ORDER", domainErr.Code)
	})
}

func TestGormOrderRepository_FindByRazorpayOrderID(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	o := mustOrder(t, uuid.New())
	o.SetRazorpayOrderID("order_Nxy123")
	require.NoError(t, repo.CreateWithItems(ctx, o))

	got, err := repo.FindByRazorpayOrderID(ctx, "order_Nxy123")
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.Len(t, got.Items, 1)

	_, err = repo.FindByRazorpayOrderID(ctx, "order_unknown")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_FindByUser(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.CreateWithItems(ctx, mustOrder(t, userID)))
	}
	require.NoError(t, repo.CreateWithItems(ctx, mustOrder(t, uuid.New())))

	t.Run("scoped to the owning user", func(t *testing.T) {
		orders, total, err := repo.FindByUser(ctx, userID, order.NewOrderFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, orders, 3)
	})

	t.Run("payment status filter", func(t *testing.T) {
		orders, _, err := repo.FindByUser(ctx, userID, order.NewOrderFilter())
		require.NoError(t, err)
		require.NotEmpty(t, orders)

		paid := orders[0]
		paid.MarkPaid()
		require.NoError(t, repo.Update(ctx, paid))

		filtered, total, err := repo.FindByUser(ctx, userID,
			order.NewOrderFilter().WithPaymentStatus(order.PaymentStatusPaid))
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, filtered, 1)
		assert.Equal(t, paid.ID, filtered[0].ID)
	})

	t.Run("back office sees everything", func(t *testing.T) {
		_, total, err := repo.FindAll(ctx, order.NewOrderFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
	})
}
