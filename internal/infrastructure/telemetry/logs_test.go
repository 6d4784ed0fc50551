package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerProvider_Disabled(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), LogsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, lp)

	assert.False(t, lp.IsEnabled())
	assert.Nil(t, lp.GetLoggerProvider())

	// Lifecycle calls degrade to no-ops.
	assert.NoError(t, lp.Shutdown(context.Background()))
	assert.NoError(t, lp.ForceFlush(context.Background()))
}

func TestNewZapOTELCore_DisabledProvider(t *testing.T) {
	t.Run("nil provider yields a nop core", func(t *testing.T) {
		core := NewZapOTELCore(ZapBridgeConfig{ServiceName: "storefront-backend"})
		assert.False(t, core.Enabled(zapcore.ErrorLevel))
	})

	t.Run("disabled provider yields a nop core", func(t *testing.T) {
		lp, err := NewLoggerProvider(context.Background(), LogsConfig{Enabled: false}, zap.NewNop())
		require.NoError(t, err)

		core := NewZapOTELCore(ZapBridgeConfig{
			ServiceName:    "storefront-backend",
			LoggerProvider: lp,
			Level:          zapcore.InfoLevel,
		})
		assert.False(t, core.Enabled(zapcore.ErrorLevel))
	})
}

func TestLevelFilterCore(t *testing.T) {
	observed, logs := observer.New(zapcore.DebugLevel)
	filtered := &levelFilterCore{Core: observed, minLevel: zapcore.WarnLevel}
	logger := zap.New(filtered)

	logger.Debug("browsing catalog")
	logger.Info("placing order")
	logger.Warn("stock running low")
	logger.Error("checkout failed")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "stock running low", entries[0].Message)
	assert.Equal(t, "checkout failed", entries[1].Message)

	t.Run("With preserves the level floor", func(t *testing.T) {
		child := filtered.With([]zapcore.Field{zap.String("order_id", "42")})
		assert.False(t, child.Enabled(zapcore.InfoLevel))
		assert.True(t, child.Enabled(zapcore.ErrorLevel))
	})
}

func TestNewBridgedLogger(t *testing.T) {
	baseCore, baseLogs := observer.New(zapcore.InfoLevel)
	otelCore, otelLogs := observer.New(zapcore.InfoLevel)

	logger := NewBridgedLogger(baseCore, otelCore)
	logger.Info("order placed", zap.String("order_id", "42"))

	require.Equal(t, 1, baseLogs.Len())
	require.Equal(t, 1, otelLogs.Len())
	assert.Equal(t, "order placed", baseLogs.All()[0].Message)
	assert.Equal(t, "order placed", otelLogs.All()[0].Message)
}

func TestCreateBridgedLoggerFromConfig(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), LogsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	logger, err := CreateBridgedLoggerFromConfig(DefaultBaseLoggerConfig(), lp, "storefront-backend")
	require.NoError(t, err)
	require.NotNil(t, logger)

	// Safe to use even though the OTEL side is a nop.
	logger.Info("catalog warmed up")
}

func TestDefaultBaseLoggerConfig(t *testing.T) {
	cfg := DefaultBaseLoggerConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"verbose", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, parseLogLevel(tc.input))
		})
	}
}

func TestCreateBaseCore(t *testing.T) {
	t.Run("json encoder honors the level", func(t *testing.T) {
		core := createBaseCore(&BaseLoggerConfig{
			Level:      "info",
			Format:     "json",
			Output:     "stdout",
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		})
		assert.True(t, core.Enabled(zapcore.InfoLevel))
		assert.False(t, core.Enabled(zapcore.DebugLevel))
	})

	t.Run("unknown output falls back to stdout", func(t *testing.T) {
		core := createBaseCore(&BaseLoggerConfig{
			Level:      "error",
			Format:     "console",
			Output:     "syslog",
			TimeFormat: "15:04:05",
		})
		assert.True(t, core.Enabled(zapcore.ErrorLevel))
	})
}
