package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

// counterValue sums the datapoints of a counter, optionally filtered by one
// attribute.
func counterValue(rm metricdata.ResourceMetrics, name string, attrs ...attribute.KeyValue) int64 {
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
		points:
			for _, dp := range sum.DataPoints {
				for _, want := range attrs {
					if v, ok := dp.Attributes.Value(want.Key); !ok || v != want.Value {
						continue points
					}
				}
				total += dp.Value
			}
		}
	}
	return total
}

func hasMetric(rm metricdata.ResourceMetrics, name string) bool {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return true
			}
		}
	}
	return false
}

func TestDefaultDBMetricsConfig(t *testing.T) {
	cfg := DefaultDBMetricsConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThreshold)
	assert.Equal(t, 15*time.Second, cfg.PoolStatsInterval)
}

func TestDBMetrics_RecordQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("counts queries by operation and records latency", func(t *testing.T) {
		reader, provider := newTestMeter(t)
		metrics, err := NewDBMetrics(provider.Meter("db.client"), DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)

		metrics.RecordQuery(ctx, "SELECT", "products", 5*time.Millisecond, nil)
		metrics.RecordQuery(ctx, "select", "products", 5*time.Millisecond, nil)
		metrics.RecordQuery(ctx, "INSERT", "orders", 5*time.Millisecond, nil)

		rm := collect(t, reader)
		assert.Equal(t, int64(2), counterValue(rm, "db_query_total", AttrDBOperation.String("SELECT")),
			"lowercase operations normalize to uppercase")
		assert.Equal(t, int64(1), counterValue(rm, "db_query_total", AttrDBOperation.String("INSERT")))
		assert.True(t, hasMetric(rm, "db_query_duration_seconds"))
	})

	t.Run("flags only queries over the slow threshold", func(t *testing.T) {
		reader, provider := newTestMeter(t)
		metrics, err := NewDBMetrics(provider.Meter("db.client"), DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: 100 * time.Millisecond,
		}, zap.NewNop())
		require.NoError(t, err)

		metrics.RecordQuery(ctx, "SELECT", "products", 20*time.Millisecond, nil)
		metrics.RecordQuery(ctx, "SELECT", "orders", 250*time.Millisecond, nil)
		metrics.RecordQuery(ctx, "SELECT", "", 250*time.Millisecond, nil)

		rm := collect(t, reader)
		assert.Equal(t, int64(1), counterValue(rm, "db_slow_query_total", AttrDBTable.String("orders")))
		assert.Equal(t, int64(0), counterValue(rm, "db_slow_query_total", AttrDBTable.String("products")))
		assert.Equal(t, int64(1), counterValue(rm, "db_slow_query_total", AttrDBTable.String("unknown")),
			"missing table names land under unknown")
	})

	t.Run("empty operation counts as UNKNOWN", func(t *testing.T) {
		reader, provider := newTestMeter(t)
		metrics, err := NewDBMetrics(provider.Meter("db.client"), DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)

		metrics.RecordQuery(ctx, "", "products", time.Millisecond, nil)

		rm := collect(t, reader)
		assert.Equal(t, int64(1), counterValue(rm, "db_query_total", AttrDBOperation.String("UNKNOWN")))
	})
}

func TestDBMetrics_PoolStats(t *testing.T) {
	t.Run("samples pool gauges", func(t *testing.T) {
		reader, provider := newTestMeter(t)

		mockDB, _, err := sqlmock.New()
		require.NoError(t, err)
		defer mockDB.Close()

		metrics, err := NewDBMetrics(provider.Meter("db.client"), DBMetricsConfig{
			Enabled:           true,
			PoolStatsInterval: 50 * time.Millisecond,
		}, zap.NewNop())
		require.NoError(t, err)
		metrics.SetSQLDB(mockDB)

		metrics.StartPoolStatsCollection(context.Background())
		time.Sleep(100 * time.Millisecond)
		metrics.Stop()

		rm := collect(t, reader)
		assert.True(t, hasMetric(rm, "db_pool_connections"))
		assert.True(t, hasMetric(rm, "db_pool_connections_max"))
	})

	t.Run("refuses to start without a sql.DB", func(t *testing.T) {
		_, provider := newTestMeter(t)
		metrics, err := NewDBMetrics(provider.Meter("db.client"), DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)

		metrics.StartPoolStatsCollection(context.Background())
		metrics.Stop()
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		_, provider := newTestMeter(t)

		mockDB, _, err := sqlmock.New()
		require.NoError(t, err)
		defer mockDB.Close()

		metrics, err := NewDBMetrics(provider.Meter("db.client"), DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)
		metrics.SetSQLDB(mockDB)
		metrics.StartPoolStatsCollection(context.Background())

		metrics.Stop()
		assert.NotPanics(t, func() { metrics.Stop() })
	})
}

// The plugin is exercised against a real in-memory database so the GORM
// callbacks fire exactly as they do in production.
func TestDBMetricsPlugin(t *testing.T) {
	type productRow struct {
		ID   int `gorm:"primarykey"`
		Name string
	}

	newPluggedDB := func(t *testing.T) (*gorm.DB, *sdkmetric.ManualReader) {
		t.Helper()
		reader, provider := newTestMeter(t)

		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		require.NoError(t, err)
		require.NoError(t, db.AutoMigrate(&productRow{}))

		metrics, err := NewDBMetrics(provider.Meter("db.client"), DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)
		require.NoError(t, db.Use(NewDBMetricsPlugin(metrics, zap.NewNop())))
		return db, reader
	}

	t.Run("plugin name", func(t *testing.T) {
		_, provider := newTestMeter(t)
		metrics, err := NewDBMetrics(provider.Meter("db.client"), DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)

		assert.Equal(t, "db_metrics", NewDBMetricsPlugin(metrics, nil).Name())
	})

	t.Run("counts statements issued through GORM", func(t *testing.T) {
		db, reader := newPluggedDB(t)

		require.NoError(t, db.Create(&productRow{Name: "Wool Scarf"}).Error)
		var rows []productRow
		require.NoError(t, db.Find(&rows).Error)
		require.NoError(t, db.Model(&productRow{}).Where("id = ?", 1).Update("name", "Silk Scarf").Error)
		require.NoError(t, db.Delete(&productRow{}, 1).Error)

		rm := collect(t, reader)
		assert.GreaterOrEqual(t, counterValue(rm, "db_query_total", AttrDBOperation.String("INSERT")), int64(1))
		assert.GreaterOrEqual(t, counterValue(rm, "db_query_total", AttrDBOperation.String("SELECT")), int64(1))
		assert.GreaterOrEqual(t, counterValue(rm, "db_query_total", AttrDBOperation.String("UPDATE")), int64(1))
		assert.GreaterOrEqual(t, counterValue(rm, "db_query_total", AttrDBOperation.String("DELETE")), int64(1))
	})

	t.Run("raw statements sniff the operation from the SQL", func(t *testing.T) {
		db, reader := newPluggedDB(t)

		var n int64
		require.NoError(t, db.Raw("SELECT COUNT(*) FROM product_rows").Scan(&n).Error)

		rm := collect(t, reader)
		assert.GreaterOrEqual(t, counterValue(rm, "db_query_total", AttrDBOperation.String("SELECT")), int64(1))
	})
}

func TestDetectOperationType(t *testing.T) {
	tests := []struct {
		sql      string
		expected string
	}{
		{"SELECT * FROM products", "SELECT"},
		{"  select id from categories", "SELECT"},
		{"INSERT INTO orders (id) VALUES (1)", "INSERT"},
		{"UPDATE products SET stock = stock - 1", "UPDATE"},
		{"delete from order_items", "DELETE"},
		{"CREATE TABLE archive", "OTHER"},
		{"", "OTHER"},
	}

	for _, tc := range tests {
		t.Run(tc.sql, func(t *testing.T) {
			assert.Equal(t, tc.expected, detectOperationType(tc.sql))
		})
	}
}
