package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderRepository defines the interface for order persistence.
// Orders are append-only: there is no update or delete.
type OrderRepository interface {
	// Create persists an order together with its items
	Create(ctx context.Context, o *Order) error

	// FindByID finds an order by its ID with items loaded
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindAll finds all orders matching the filter with items loaded
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
