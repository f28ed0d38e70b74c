// internal/ratelimit/owner_limits_test.go
package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwnerLimiter(t *testing.T) {
	t.Run("enforces the default budget", func(t *testing.T) {
		limiter := NewOwnerLimiter(Config{RatePerSecond: 1, Burst: 3})

		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow("owner-1"))
		}
		assert.False(t, limiter.Allow("owner-1"), "burst exhausted")
	})

	t.Run("owners do not share budgets", func(t *testing.T) {
		limiter := NewOwnerLimiter(Config{RatePerSecond: 1, Burst: 1})

		assert.True(t, limiter.Allow("owner-1"))
		assert.False(t, limiter.Allow("owner-1"))
		assert.True(t, limiter.Allow("owner-2"))
	})

	t.Run("applies owner-specific overrides", func(t *testing.T) {
		limiter := NewOwnerLimiter(Config{RatePerSecond: 1, Burst: 1})
		limiter.SetOwnerLimit("premium", 100, 100)

		for i := 0; i < 50; i++ {
			assert.True(t, limiter.Allow("premium"))
		}

		assert.True(t, limiter.Allow("regular"))
		assert.False(t, limiter.Allow("regular"))
	})

	t.Run("zero config falls back to defaults", func(t *testing.T) {
		limiter := NewOwnerLimiter(Config{})
		assert.True(t, limiter.Allow("owner-1"))
	})
}
