package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	categoryID := uuid.New()

	t.Run("creates product with derived slug", func(t *testing.T) {
		price := decimal.NewFromFloat(149.99)
		product, err := NewProduct(categoryID, "Wireless Bluetooth Headphones", "Over-ear, 30h battery", price, 50)

		require.NoError(t, err)
		assert.Equal(t, categoryID, product.CategoryID)
		assert.Equal(t, "wireless-bluetooth-headphones", product.Slug)
		assert.True(t, price.Equal(product.Price))
		assert.Equal(t, 50, product.Stock)
		assert.Len(t, product.GetDomainEvents(), 1)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := NewProduct(categoryID, "Gadget", "", decimal.NewFromInt(-1), 1)
		assert.Error(t, err)
	})

	t.Run("rejects negative stock", func(t *testing.T) {
		_, err := NewProduct(categoryID, "Gadget", "", decimal.NewFromInt(1), -1)
		assert.Error(t, err)
	})

	t.Run("rejects missing category", func(t *testing.T) {
		_, err := NewProduct(uuid.Nil, "Gadget", "", decimal.NewFromInt(1), 1)
		assert.Error(t, err)
	})
}

func TestProductCanFulfill(t *testing.T) {
	product, err := NewProduct(uuid.New(), "Desk Lamp", "", decimal.NewFromFloat(19.99), 5)
	require.NoError(t, err)

	assert.True(t, product.CanFulfill(1))
	assert.True(t, product.CanFulfill(5))
	assert.False(t, product.CanFulfill(6))
	assert.False(t, product.CanFulfill(0))
	assert.False(t, product.CanFulfill(-2))
}

func TestProductInsufficientStockError(t *testing.T) {
	product, err := NewProduct(uuid.New(), "Desk Lamp", "", decimal.NewFromFloat(19.99), 5)
	require.NoError(t, err)

	derr := product.InsufficientStockError()
	assert.Equal(t, "INSUFFICIENT_STOCK", derr.Code)
	assert.Equal(t, "Insufficient stock for product: Desk Lamp", derr.Message)
}

func TestProductUpdate(t *testing.T) {
	product, err := NewProduct(uuid.New(), "Desk Lamp", "", decimal.NewFromFloat(19.99), 5)
	require.NoError(t, err)
	product.ClearDomainEvents()

	newCategory := uuid.New()
	err = product.Update(newCategory, "LED Desk Lamp", "dimmable", decimal.NewFromFloat(24.99), 8)

	require.NoError(t, err)
	assert.Equal(t, newCategory, product.CategoryID)
	assert.Equal(t, "led-desk-lamp", product.Slug)
	assert.Equal(t, 8, product.Stock)
	assert.Equal(t, 2, product.Version)
}

func TestProductSetImage(t *testing.T) {
	product, err := NewProduct(uuid.New(), "Desk Lamp", "", decimal.NewFromFloat(19.99), 5)
	require.NoError(t, err)

	require.NoError(t, product.SetImage("products/desk-lamp.jpg"))
	assert.Equal(t, "products/desk-lamp.jpg", product.Image)

	long := make([]byte, 501)
	for i := range long {
		long[i] = 'x'
	}
	assert.Error(t, product.SetImage(string(long)))
}
