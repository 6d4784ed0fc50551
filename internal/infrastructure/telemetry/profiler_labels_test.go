package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithProfilingLabels(t *testing.T) {
	t.Run("runs the function without labels", func(t *testing.T) {
		called := false
		WithProfilingLabels(context.Background(), nil, func(context.Context) { called = true })
		assert.True(t, called)

		called = false
		WithProfilingLabels(context.Background(), map[string]string{}, func(context.Context) { called = true })
		assert.True(t, called)
	})

	t.Run("attaches labels to the pprof context", func(t *testing.T) {
		labels := map[string]string{
			"controller": "products",
			"method":     "GET",
			"route":      "/api/v1/products",
		}

		var route string
		var hasRoute bool
		WithProfilingLabels(context.Background(), labels, func(ctx context.Context) {
			route, hasRoute = pprof.Label(ctx, "route")
		})

		require.True(t, hasRoute)
		assert.Equal(t, "/api/v1/products", route)
	})

	t.Run("drops high-cardinality labels", func(t *testing.T) {
		labels := map[string]string{
			"controller": "orders",
			"user_id":    "user-123",
			"order_id":   "order-456",
		}

		WithProfilingLabels(context.Background(), labels, func(ctx context.Context) {
			_, hasUser := pprof.Label(ctx, "user_id")
			_, hasOrder := pprof.Label(ctx, "order_id")
			controller, hasController := pprof.Label(ctx, "controller")

			assert.False(t, hasUser)
			assert.False(t, hasOrder)
			require.True(t, hasController)
			assert.Equal(t, "orders", controller)
		})
	})

	t.Run("runs plain when every label is dropped", func(t *testing.T) {
		called := false
		WithProfilingLabels(context.Background(), map[string]string{"user_id": "u1"}, func(context.Context) {
			called = true
		})
		assert.True(t, called)
	})

	t.Run("caller may reuse the labels map", func(t *testing.T) {
		labels := map[string]string{"controller": "checkout"}
		WithProfilingLabels(context.Background(), labels, func(context.Context) {})

		labels["controller"] = "mutated"
		assert.Equal(t, "mutated", labels["controller"])
	})
}

func TestSanitizeLabels(t *testing.T) {
	t.Run("sorted deterministic pairs", func(t *testing.T) {
		pairs := sanitizeLabels(map[string]string{
			"route":      "/api/v1/checkout",
			"controller": "checkout",
			"method":     "POST",
		})

		assert.Equal(t, []string{
			"controller", "checkout",
			"method", "POST",
			"route", "/api/v1/checkout",
		}, pairs)
	})

	t.Run("skips empty keys and values", func(t *testing.T) {
		pairs := sanitizeLabels(map[string]string{
			"":       "ignored",
			"route":  "",
			"method": "GET",
		})
		assert.Equal(t, []string{"method", "GET"}, pairs)
	})

	t.Run("truncates oversized values", func(t *testing.T) {
		pairs := sanitizeLabels(map[string]string{
			"route": strings.Repeat("x", 300),
		})
		require.Len(t, pairs, 2)
		assert.Len(t, pairs[1], maxLabelValueLength)
	})

	t.Run("nil for empty input", func(t *testing.T) {
		assert.Nil(t, sanitizeLabels(nil))
	})
}

func TestSanitizeLabelKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"controller", "controller"},
		{"Product Handler", "product_handler"},
		{"shop-region", "shop_region"},
		{"Route2", "route2"},
		{"bad!key?", "badkey"},
		{"!!!", ""},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, sanitizeLabelKey(tc.input))
		})
	}
}
