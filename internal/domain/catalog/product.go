package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Product is a sellable item in the catalog.
// Its price is authoritative: checkout always re-derives line totals from it.
// Stock is mutated by admin updates and by the checkout decrement only.
type Product struct {
	shared.BaseAggregateRoot
	CategoryID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Category    *Category       `gorm:"foreignKey:CategoryID"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Slug        string          `gorm:"type:varchar(220);not null;index"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Image       string          `gorm:"type:varchar(500)"`
	Stock       int             `gorm:"not null;default:0;check:stock >= 0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product, deriving the slug from the name
func NewProduct(categoryID uuid.UUID, name, description string, price decimal.Decimal, stock int) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	if err := validateStock(stock); err != nil {
		return nil, err
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Product category is required")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CategoryID:        categoryID,
		Name:              name,
		Slug:              shared.Slugify(name),
		Description:       description,
		Price:             price,
		Stock:             stock,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update changes the product's descriptive fields, price and stock.
// Renaming re-derives the slug.
func (p *Product) Update(categoryID uuid.UUID, name, description string, price decimal.Decimal, stock int) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	if err := validatePrice(price); err != nil {
		return err
	}
	if err := validateStock(stock); err != nil {
		return err
	}
	if categoryID == uuid.Nil {
		return shared.NewDomainError("INVALID_CATEGORY", "Product category is required")
	}

	p.CategoryID = categoryID
	p.Name = name
	p.Slug = shared.Slugify(name)
	p.Description = description
	p.Price = price
	p.Stock = stock
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetImage records the storage location of the product image
func (p *Product) SetImage(image string) error {
	if len(image) > 500 {
		return shared.NewDomainError("INVALID_IMAGE", "Image path cannot exceed 500 characters")
	}

	p.Image = image
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// CanFulfill reports whether the requested quantity is available
func (p *Product) CanFulfill(quantity int) bool {
	return quantity > 0 && quantity <= p.Stock
}

// InsufficientStockError builds the checkout failure for this product
func (p *Product) InsufficientStockError() *shared.DomainError {
	return shared.NewDomainError(
		shared.ErrInsufficientStock.Code,
		fmt.Sprintf("Insufficient stock for product: %s", p.Name),
	)
}

// validateProductName validates the product name
func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

// validatePrice validates the product price
func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return nil
}

// validateStock validates the stock level
func validateStock(stock int) error {
	if stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	return nil
}
