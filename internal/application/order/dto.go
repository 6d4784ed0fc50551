package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
)

// CheckoutItemInput is one cart line of a checkout request.
// Clients send product and quantity only; prices come from the catalog.
type CheckoutItemInput struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// CheckoutInput contains input for placing an order
type CheckoutInput struct {
	Address string              `json:"address" binding:"required"`
	Items   []CheckoutItemInput `json:"items" binding:"required,min=1,dive"`

	// Filled from the authenticated user, never from the request body
	UserID    uuid.UUID `json:"-"`
	UserName  string    `json:"-"`
	UserEmail string    `json:"-"`
}

// OrderItemResponse is the API representation of an order line
type OrderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderResponse is the API representation of an order
type OrderResponse struct {
	ID        uuid.UUID           `json:"id"`
	UserID    *uuid.UUID          `json:"user_id"`
	UserName  string              `json:"user_name"`
	UserEmail string              `json:"user_email"`
	Address   string              `json:"address"`
	Total     decimal.Decimal     `json:"total"`
	Items     []OrderItemResponse `json:"items"`
	CreatedAt time.Time           `json:"created_at"`
}

// ToOrderResponse converts an order to its API representation
func ToOrderResponse(o *order.Order) *OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Subtotal:  item.Subtotal(),
		}
	}

	return &OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		UserName:  o.UserName,
		UserEmail: o.UserEmail,
		Address:   o.Address,
		Total:     o.Total,
		Items:     items,
		CreatedAt: o.CreatedAt,
	}
}

// ListOrdersQuery carries the browse parameters of the admin order list
type ListOrdersQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
}
