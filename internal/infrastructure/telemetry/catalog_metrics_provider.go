package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormCatalogMetricsProvider reads stock levels straight from the products
// table. It implements CatalogMetricsProvider for the gauge collection loop.
type GormCatalogMetricsProvider struct {
	db *gorm.DB
}

// NewGormCatalogMetricsProvider creates a provider backed by GORM.
func NewGormCatalogMetricsProvider(db *gorm.DB) *GormCatalogMetricsProvider {
	return &GormCatalogMetricsProvider{db: db}
}

// CountLowStock counts products whose stock is positive but at or below
// the threshold.
func (p *GormCatalogMetricsProvider) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("products").
		Where("stock > 0 AND stock <= ?", threshold).
		Count(&count).Error
	return count, err
}

// CountOutOfStock counts products with zero stock.
func (p *GormCatalogMetricsProvider) CountOutOfStock(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("products").
		Where("stock = 0").
		Count(&count).Error
	return count, err
}

var _ CatalogMetricsProvider = (*GormCatalogMetricsProvider)(nil)
