package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderItem is a purchased line within an order.
// Price is a snapshot of the product price at purchase time and is never
// rewritten, so historical orders stay accurate when catalog prices change.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// Subtotal returns this line's contribution to the order total
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Line is a priced cart line used to build an order.
// The price must come from the authoritative product record, never the client.
type Line struct {
	ProductID uuid.UUID
	Quantity  int
	Price     decimal.Decimal
}

// Order is the immutable record of a completed checkout.
// It is created exactly once and never updated afterwards.
type Order struct {
	shared.BaseAggregateRoot
	UserID    *uuid.UUID      `gorm:"type:uuid;index"`
	UserName  string          `gorm:"type:varchar(100);not null"`
	UserEmail string          `gorm:"type:varchar(255);not null"`
	Address   string          `gorm:"type:text;not null"`
	Total     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Items     []OrderItem     `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder builds an order from priced cart lines.
// The total is always computed here as the sum of quantity times the
// snapshot price; callers cannot supply it.
func NewOrder(userID *uuid.UUID, userName, userEmail, address string, lines []Line) (*Order, error) {
	if userName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if userEmail == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_EMAIL", "Customer email cannot be empty")
	}
	if address == "" {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Shipping address cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_CART", "Order must contain at least one item")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		UserName:          userName,
		UserEmail:         userEmail,
		Address:           address,
		Total:             decimal.Zero,
		Items:             make([]OrderItem, 0, len(lines)),
	}

	now := time.Now()
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
		}
		if line.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
		}
		if line.Price.IsNegative() {
			return nil, shared.NewDomainError("INVALID_PRICE", "Item price cannot be negative")
		}

		item := OrderItem{
			ID:        uuid.New(),
			OrderID:   o.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Price,
			CreatedAt: now,
			UpdatedAt: now,
		}
		o.Items = append(o.Items, item)
		o.Total = o.Total.Add(item.Subtotal())
	}

	o.AddDomainEvent(NewOrderPlacedEvent(o))

	return o, nil
}

// ItemCount returns the number of lines in the order
func (o *Order) ItemCount() int {
	return len(o.Items)
}
