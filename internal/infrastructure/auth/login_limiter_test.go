package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoginAttemptLimiter(t *testing.T) {
	t.Run("allows attempts under the budget", func(t *testing.T) {
		limiter := NewLoginAttemptLimiter(5, time.Minute)
		key := Key("10.0.0.1", "shopper@example.com")

		for i := 0; i < 4; i++ {
			limiter.RecordFailure(key)
		}

		blocked, _ := limiter.TooManyAttempts(key)
		assert.False(t, blocked)
	})

	t.Run("blocks after max failures with retry hint", func(t *testing.T) {
		limiter := NewLoginAttemptLimiter(5, time.Minute)
		key := Key("10.0.0.1", "shopper@example.com")

		for i := 0; i < 5; i++ {
			limiter.RecordFailure(key)
		}

		blocked, retryAfter := limiter.TooManyAttempts(key)
		assert.True(t, blocked)
		assert.Greater(t, retryAfter, time.Duration(0))
		assert.LessOrEqual(t, retryAfter, time.Minute)
	})

	t.Run("keys are scoped per client and email", func(t *testing.T) {
		limiter := NewLoginAttemptLimiter(5, time.Minute)

		for i := 0; i < 5; i++ {
			limiter.RecordFailure(Key("10.0.0.1", "shopper@example.com"))
		}

		blocked, _ := limiter.TooManyAttempts(Key("10.0.0.2", "shopper@example.com"))
		assert.False(t, blocked)

		blocked, _ = limiter.TooManyAttempts(Key("10.0.0.1", "other@example.com"))
		assert.False(t, blocked)
	})

	t.Run("reset clears the budget on successful login", func(t *testing.T) {
		limiter := NewLoginAttemptLimiter(5, time.Minute)
		key := Key("10.0.0.1", "shopper@example.com")

		for i := 0; i < 5; i++ {
			limiter.RecordFailure(key)
		}
		limiter.Reset(key)

		blocked, _ := limiter.TooManyAttempts(key)
		assert.False(t, blocked)
	})

	t.Run("email casing shares a budget", func(t *testing.T) {
		assert.Equal(t, Key("10.0.0.1", "Shopper@Example.com"), Key("10.0.0.1", "shopper@example.com"))
	})

	t.Run("window expiry restores the budget", func(t *testing.T) {
		limiter := NewLoginAttemptLimiter(5, 10*time.Millisecond)
		key := Key("10.0.0.1", "shopper@example.com")

		for i := 0; i < 5; i++ {
			limiter.RecordFailure(key)
		}

		time.Sleep(20 * time.Millisecond)

		blocked, _ := limiter.TooManyAttempts(key)
		assert.False(t, blocked)
	})
}
