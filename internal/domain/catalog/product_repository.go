package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID with its category loaded
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAll finds all products matching the filter with categories loaded.
	// Recognized filter keys: category_id (uuid), min_price, max_price (decimal).
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// Delete deletes a product
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// DecrementStock atomically decrements stock by quantity.
	// The decrement applies only when the remaining stock would stay
	// non-negative; otherwise shared.ErrInsufficientStock is returned and
	// no row is touched. This is the serialization point for concurrent
	// checkouts against the same product.
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error
}
