package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrMeterNil is returned when business metrics are constructed without a meter.
var ErrMeterNil = errors.New("meter must not be nil")

// MetricsError wraps an error that occurred while creating a specific metric.
type MetricsError struct {
	Metric string
	Err    error
}

func (e *MetricsError) Error() string {
	return fmt.Sprintf("failed to create metric %s: %v", e.Metric, e.Err)
}

func (e *MetricsError) Unwrap() error {
	return e.Err
}

// CatalogMetricsProvider supplies point-in-time stock levels from the catalog.
// Implemented by the persistence layer.
type CatalogMetricsProvider interface {
	// CountLowStock counts products whose stock is at or below threshold
	// but not zero.
	CountLowStock(ctx context.Context, threshold int) (int64, error)
	// CountOutOfStock counts products with zero stock.
	CountOutOfStock(ctx context.Context) (int64, error)
}

// BusinessMetricsConfig configures storefront business metrics.
type BusinessMetricsConfig struct {
	Provider *MeterProvider
	Logger   *zap.Logger

	// Catalog is optional. When set, stock gauges are collected periodically.
	Catalog CatalogMetricsProvider

	// LowStockThreshold marks products as low-stock at or below this level.
	// Default: 5.
	LowStockThreshold int

	// CollectInterval controls how often stock gauges are refreshed.
	// Default: 60s.
	CollectInterval time.Duration
}

// BusinessMetrics records storefront-level metrics: orders placed, order
// value, rejected checkouts, login throttling, and stock health gauges.
//
// Counters are recorded by the application layer at the moment the event
// happens; the stock gauges are collected on a timer from the catalog.
type BusinessMetrics struct {
	logger *zap.Logger

	orderCreated     *Counter
	orderItems       *Counter
	orderValue       *Histogram
	checkoutRejected *Counter
	loginFailures    *Counter
	loginThrottled   *Counter

	lowStock   *Gauge
	outOfStock *Gauge

	catalog           CatalogMetricsProvider
	lowStockThreshold int
	collectInterval   time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewBusinessMetrics creates the storefront business metrics.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Provider == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	meter := cfg.Provider.Meter("storefront.business")

	bm := &BusinessMetrics{
		logger:            logger,
		catalog:           cfg.Catalog,
		lowStockThreshold: cfg.LowStockThreshold,
		collectInterval:   cfg.CollectInterval,
		stopCh:            make(chan struct{}),
		doneCh:            make(chan struct{}),
	}
	if bm.lowStockThreshold <= 0 {
		bm.lowStockThreshold = 5
	}
	if bm.collectInterval <= 0 {
		bm.collectInterval = 60 * time.Second
	}

	var err error

	bm.orderCreated, err = NewCounter(meter,
		"storefront_order_created_total",
		"Total number of orders placed",
		"{order}")
	if err != nil {
		return nil, &MetricsError{Metric: "storefront_order_created_total", Err: err}
	}

	bm.orderItems, err = NewCounter(meter,
		"storefront_order_items_total",
		"Total number of order line units sold",
		"{item}")
	if err != nil {
		return nil, &MetricsError{Metric: "storefront_order_items_total", Err: err}
	}

	bm.orderValue, err = NewHistogram(meter, HistogramOpts{
		Name:        "storefront_order_value",
		Description: "Distribution of order totals",
		Unit:        "{currency}",
		Boundaries:  []float64{10, 25, 50, 100, 250, 500, 1000, 2500},
	})
	if err != nil {
		return nil, &MetricsError{Metric: "storefront_order_value", Err: err}
	}

	bm.checkoutRejected, err = NewCounter(meter,
		"storefront_checkout_rejected_total",
		"Total number of checkouts rejected before an order was created",
		"{checkout}")
	if err != nil {
		return nil, &MetricsError{Metric: "storefront_checkout_rejected_total", Err: err}
	}

	bm.loginFailures, err = NewCounter(meter,
		"storefront_login_failure_total",
		"Total number of failed login attempts",
		"{attempt}")
	if err != nil {
		return nil, &MetricsError{Metric: "storefront_login_failure_total", Err: err}
	}

	bm.loginThrottled, err = NewCounter(meter,
		"storefront_login_throttled_total",
		"Total number of login attempts rejected by the rate limiter",
		"{attempt}")
	if err != nil {
		return nil, &MetricsError{Metric: "storefront_login_throttled_total", Err: err}
	}

	bm.lowStock, err = NewGauge(meter,
		"storefront_products_low_stock",
		"Number of products at or below the low-stock threshold",
		"{product}")
	if err != nil {
		return nil, &MetricsError{Metric: "storefront_products_low_stock", Err: err}
	}

	bm.outOfStock, err = NewGauge(meter,
		"storefront_products_out_of_stock",
		"Number of products with zero stock",
		"{product}")
	if err != nil {
		return nil, &MetricsError{Metric: "storefront_products_out_of_stock", Err: err}
	}

	return bm, nil
}

// RecordOrderPlaced records a successfully placed order.
func (bm *BusinessMetrics) RecordOrderPlaced(ctx context.Context, itemCount int, total float64) {
	if bm == nil {
		return
	}
	bm.orderCreated.Inc(ctx)
	bm.orderItems.Add(ctx, int64(itemCount))
	bm.orderValue.Record(ctx, total)
}

// RecordCheckoutRejected records a checkout that failed before an order
// was created. The reason is a bounded set of error codes, not free text.
func (bm *BusinessMetrics) RecordCheckoutRejected(ctx context.Context, reason string) {
	if bm == nil {
		return
	}
	bm.checkoutRejected.Inc(ctx, AttrRejectReason.String(reason))
}

// RecordLoginFailure records a login attempt with bad credentials.
func (bm *BusinessMetrics) RecordLoginFailure(ctx context.Context) {
	if bm == nil {
		return
	}
	bm.loginFailures.Inc(ctx)
}

// RecordLoginThrottled records a login attempt rejected by the limiter.
func (bm *BusinessMetrics) RecordLoginThrottled(ctx context.Context) {
	if bm == nil {
		return
	}
	bm.loginThrottled.Inc(ctx)
}

// StartCollection starts the periodic stock gauge collection loop.
// It is a no-op when no catalog provider was configured.
func (bm *BusinessMetrics) StartCollection(ctx context.Context) {
	if bm == nil || bm.catalog == nil {
		return
	}

	go func() {
		defer close(bm.doneCh)

		ticker := time.NewTicker(bm.collectInterval)
		defer ticker.Stop()

		// One immediate collection so gauges are populated on startup
		bm.collectStockGauges(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-bm.stopCh:
				return
			case <-ticker.C:
				bm.collectStockGauges(ctx)
			}
		}
	}()
}

// Stop terminates the collection loop and waits for it to finish.
func (bm *BusinessMetrics) Stop() {
	if bm == nil || bm.catalog == nil {
		return
	}
	bm.stopOnce.Do(func() {
		close(bm.stopCh)
	})
	<-bm.doneCh
}

func (bm *BusinessMetrics) collectStockGauges(ctx context.Context) {
	collectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	low, err := bm.catalog.CountLowStock(collectCtx, bm.lowStockThreshold)
	if err != nil {
		bm.logger.Warn("Failed to collect low-stock gauge", zap.Error(err))
	} else {
		bm.lowStock.Record(collectCtx, low)
	}

	out, err := bm.catalog.CountOutOfStock(collectCtx)
	if err != nil {
		bm.logger.Warn("Failed to collect out-of-stock gauge", zap.Error(err))
	} else {
		bm.outOfStock.Record(collectCtx, out)
	}
}
