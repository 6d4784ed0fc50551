package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCheckoutService(testDB *TestDB) *orderapp.OrderService {
	orderRepo := persistence.NewGormOrderRepository(testDB.DB)
	scope := persistence.NewGormCheckoutScope(testDB.DB)
	return orderapp.NewOrderService(orderRepo, scope, zap.NewNop())
}

func seedProduct(t *testing.T, testDB *TestDB, categoryID uuid.UUID, name string, price float64, stock int) *catalog.Product {
	t.Helper()

	product, err := catalog.NewProduct(categoryID, name, "", decimal.NewFromFloat(price), stock)
	require.NoError(t, err)
	repo := persistence.NewGormProductRepository(testDB.DB)
	require.NoError(t, repo.Save(context.Background(), product))
	return product
}

// TestCheckout_Integration exercises the full checkout transaction against
// a real PostgreSQL database.
func TestCheckout_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	ctx := context.Background()
	service := newCheckoutService(testDB)
	productRepo := persistence.NewGormProductRepository(testDB.DB)

	category, err := catalog.NewCategory("Checkout Goods", "")
	require.NoError(t, err)
	testDB.CreateTestCategory(category.ID, category.Name, category.Slug)

	userID := uuid.New()

	t.Run("successful checkout decrements stock and snapshots prices", func(t *testing.T) {
		headphones := seedProduct(t, testDB, category.ID, "Checkout Headphones", 149.99, 10)
		speaker := seedProduct(t, testDB, category.ID, "Checkout Speaker", 79.99, 5)

		resp, err := service.Checkout(ctx, orderapp.CheckoutInput{
			Address: "1 Test Street",
			Items: []orderapp.CheckoutItemInput{
				{ProductID: headphones.ID, Quantity: 2},
				{ProductID: speaker.ID, Quantity: 1},
			},
			UserID:    userID,
			UserName:  "Checkout Tester",
			UserEmail: "checkout@example.com",
		})
		require.NoError(t, err)
		require.Len(t, resp.Items, 2)
		assert.True(t, resp.Total.Equal(decimal.NewFromFloat(379.97)),
			"expected 2*149.99+79.99, got %s", resp.Total)

		// Raising the catalog price afterwards must not touch the order
		require.NoError(t, headphones.Update(category.ID, headphones.Name, "",
			decimal.NewFromFloat(999.99), 8))
		require.NoError(t, productRepo.Save(ctx, headphones))

		stored, err := service.GetByID(ctx, resp.ID)
		require.NoError(t, err)
		assert.True(t, stored.Total.Equal(decimal.NewFromFloat(379.97)))

		remaining, err := productRepo.FindByID(ctx, speaker.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, remaining.Stock)
	})

	t.Run("insufficient stock rolls back the whole order", func(t *testing.T) {
		plenty := seedProduct(t, testDB, category.ID, "Plenty In Stock", 10.00, 100)
		scarce := seedProduct(t, testDB, category.ID, "Nearly Sold Out", 20.00, 1)

		ordersBefore := testDB.CountRows("orders", "")

		_, err := service.Checkout(ctx, orderapp.CheckoutInput{
			Address: "1 Test Street",
			Items: []orderapp.CheckoutItemInput{
				{ProductID: plenty.ID, Quantity: 5},
				{ProductID: scarce.ID, Quantity: 2},
			},
			UserID:    userID,
			UserName:  "Checkout Tester",
			UserEmail: "checkout@example.com",
		})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.ErrInsufficientStock.Code, domainErr.Code)
		assert.Contains(t, domainErr.Message, "Nearly Sold Out")

		// No order row and no stock consumed, not even for the first line
		assert.Equal(t, ordersBefore, testDB.CountRows("orders", ""))

		p, err := productRepo.FindByID(ctx, plenty.ID)
		require.NoError(t, err)
		assert.Equal(t, 100, p.Stock)
	})

	t.Run("unknown product fails the checkout", func(t *testing.T) {
		_, err := service.Checkout(ctx, orderapp.CheckoutInput{
			Address: "1 Test Street",
			Items: []orderapp.CheckoutItemInput{
				{ProductID: uuid.New(), Quantity: 1},
			},
			UserID:    userID,
			UserName:  "Checkout Tester",
			UserEmail: "checkout@example.com",
		})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.ErrNotFound.Code, domainErr.Code)
	})

	t.Run("duplicate cart lines are merged before stock checks", func(t *testing.T) {
		product := seedProduct(t, testDB, category.ID, "Merge Target", 15.00, 10)

		resp, err := service.Checkout(ctx, orderapp.CheckoutInput{
			Address: "1 Test Street",
			Items: []orderapp.CheckoutItemInput{
				{ProductID: product.ID, Quantity: 2},
				{ProductID: product.ID, Quantity: 3},
			},
			UserID:    userID,
			UserName:  "Checkout Tester",
			UserEmail: "checkout@example.com",
		})
		require.NoError(t, err)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, 5, resp.Items[0].Quantity)

		remaining, err := productRepo.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, remaining.Stock)
	})
}

// TestCheckout_ConcurrentLastUnit races two checkouts for the last unit of
// a product. Exactly one must win; stock must never go negative.
func TestCheckout_ConcurrentLastUnit(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	ctx := context.Background()
	service := newCheckoutService(testDB)
	productRepo := persistence.NewGormProductRepository(testDB.DB)

	category, err := catalog.NewCategory("Scarce Goods", "")
	require.NoError(t, err)
	testDB.CreateTestCategory(category.ID, category.Name, category.Slug)

	product := seedProduct(t, testDB, category.ID, "Last Unit", 42.00, 1)

	input := func() orderapp.CheckoutInput {
		return orderapp.CheckoutInput{
			Address: "1 Race Street",
			Items: []orderapp.CheckoutItemInput{
				{ProductID: product.ID, Quantity: 1},
			},
			UserID:    uuid.New(),
			UserName:  "Racer",
			UserEmail: "racer@example.com",
		}
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	start := make(chan struct{})

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = service.Checkout(ctx, input())
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.ErrInsufficientStock.Code, domainErr.Code)
	}
	assert.Equal(t, 1, succeeded, "exactly one of the racing checkouts must win")

	remaining, err := productRepo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining.Stock)

	assert.Equal(t, int64(1), testDB.CountRows("orders", ""))
	assert.Equal(t, int64(1), testDB.CountRows("order_items", "product_id = ?", product.ID))
}
