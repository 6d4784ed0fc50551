package order

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCheckoutFixture(t *testing.T) (*OrderService, *MockProductRepository, *MockOrderRepository) {
	t.Helper()
	productRepo := new(MockProductRepository)
	orderRepo := new(MockOrderRepository)
	scope := NewNoOpTransactionScope(productRepo, orderRepo)
	svc := NewOrderService(orderRepo, scope, zap.NewNop())
	return svc, productRepo, orderRepo
}

func newCatalogProduct(t *testing.T, name, price string, stock int) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(uuid.New(), name, "", decimal.RequireFromString(price), stock)
	require.NoError(t, err)
	return product
}

func TestOrderService_Checkout(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	baseInput := func(items ...CheckoutItemInput) CheckoutInput {
		return CheckoutInput{
			Address:   "1 Commerce St",
			Items:     items,
			UserID:    userID,
			UserName:  "Test Shopper",
			UserEmail: "shopper@example.com",
		}
	}

	t.Run("places order with snapshot prices and computed total", func(t *testing.T) {
		svc, productRepo, orderRepo := newCheckoutFixture(t)

		headphones := newCatalogProduct(t, "Wireless Bluetooth Headphones", "149.99", 50)
		lamp := newCatalogProduct(t, "Desk Lamp", "29.99", 10)

		productRepo.On("FindByID", mock.Anything, headphones.ID).Return(headphones, nil)
		productRepo.On("DecrementStock", mock.Anything, headphones.ID, 1).Return(nil)
		productRepo.On("FindByID", mock.Anything, lamp.ID).Return(lamp, nil)
		productRepo.On("DecrementStock", mock.Anything, lamp.ID, 2).Return(nil)
		orderRepo.On("Create", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)

		resp, err := svc.Checkout(ctx, baseInput(
			CheckoutItemInput{ProductID: headphones.ID, Quantity: 1},
			CheckoutItemInput{ProductID: lamp.ID, Quantity: 2},
		))

		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("209.97").Equal(resp.Total))
		require.Len(t, resp.Items, 2)
		assert.True(t, decimal.RequireFromString("149.99").Equal(resp.Items[0].Price))
		assert.Equal(t, userID, *resp.UserID)
		orderRepo.AssertExpectations(t)
	})

	t.Run("insufficient stock names the first offending product", func(t *testing.T) {
		svc, productRepo, orderRepo := newCheckoutFixture(t)

		headphones := newCatalogProduct(t, "Wireless Bluetooth Headphones", "149.99", 1)

		productRepo.On("FindByID", mock.Anything, headphones.ID).Return(headphones, nil)
		productRepo.On("DecrementStock", mock.Anything, headphones.ID, 3).Return(shared.ErrInsufficientStock)

		resp, err := svc.Checkout(ctx, baseInput(
			CheckoutItemInput{ProductID: headphones.ID, Quantity: 3},
		))

		assert.Nil(t, resp)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
		assert.Equal(t, "Insufficient stock for product: Wireless Bluetooth Headphones", domainErr.Message)
		orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown product aborts the checkout", func(t *testing.T) {
		svc, productRepo, orderRepo := newCheckoutFixture(t)

		ghostID := uuid.New()
		productRepo.On("FindByID", mock.Anything, ghostID).Return(nil, shared.ErrNotFound)

		resp, err := svc.Checkout(ctx, baseInput(
			CheckoutItemInput{ProductID: ghostID, Quantity: 1},
		))

		assert.Nil(t, resp)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
		orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		productRepo.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("duplicate lines merge before the stock check", func(t *testing.T) {
		svc, productRepo, orderRepo := newCheckoutFixture(t)

		lamp := newCatalogProduct(t, "Desk Lamp", "19.99", 10)

		productRepo.On("FindByID", mock.Anything, lamp.ID).Return(lamp, nil).Once()
		productRepo.On("DecrementStock", mock.Anything, lamp.ID, 3).Return(nil).Once()
		orderRepo.On("Create", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)

		resp, err := svc.Checkout(ctx, baseInput(
			CheckoutItemInput{ProductID: lamp.ID, Quantity: 1},
			CheckoutItemInput{ProductID: lamp.ID, Quantity: 2},
		))

		require.NoError(t, err)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, 3, resp.Items[0].Quantity)
		assert.True(t, decimal.RequireFromString("59.97").Equal(resp.Total))
		productRepo.AssertExpectations(t)
	})

	t.Run("missing address is rejected", func(t *testing.T) {
		svc, productRepo, orderRepo := newCheckoutFixture(t)

		lamp := newCatalogProduct(t, "Desk Lamp", "19.99", 10)
		productRepo.On("FindByID", mock.Anything, lamp.ID).Return(lamp, nil)
		productRepo.On("DecrementStock", mock.Anything, lamp.ID, 1).Return(nil)

		input := baseInput(CheckoutItemInput{ProductID: lamp.ID, Quantity: 1})
		input.Address = ""

		resp, err := svc.Checkout(ctx, input)

		assert.Nil(t, resp)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_ADDRESS", domainErr.Code)
		orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestOrderService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("propagates not found", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		svc := NewOrderService(orderRepo, NewNoOpTransactionScope(new(MockProductRepository), orderRepo), zap.NewNop())

		id := uuid.New()
		orderRepo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		resp, err := svc.GetByID(ctx, id)

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
