// internal/ratelimit/owner_limits.go
package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"
)

// Config holds the default per-owner request budget.
type Config struct {
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
}

// ApplyDefaults fills in default values.
func (c *Config) ApplyDefaults() {
	if c.RatePerSecond == 0 {
		c.RatePerSecond = 10
	}
	if c.Burst == 0 {
		c.Burst = 20
	}
}

// OwnerLimiter applies a per-owner rate limit with optional per-owner
// overrides.
type OwnerLimiter struct {
	mu        sync.Mutex
	def       Config
	overrides map[string]Config
	limiters  map[string]*rate.Limiter
}

// NewOwnerLimiter creates a limiter with the given default budget.
func NewOwnerLimiter(def Config) *OwnerLimiter {
	def.ApplyDefaults()
	return &OwnerLimiter{
		def:       def,
		overrides: make(map[string]Config),
		limiters:  make(map[string]*rate.Limiter),
	}
}

// SetOwnerLimit sets a custom budget for a specific owner.
func (ol *OwnerLimiter) SetOwnerLimit(ownerID string, ratePerSecond float64, burst int) {
	ol.mu.Lock()
	defer ol.mu.Unlock()

	ol.overrides[ownerID] = Config{RatePerSecond: ratePerSecond, Burst: burst}
	delete(ol.limiters, ownerID)
}

// Allow checks if an owner may perform a request now.
func (ol *OwnerLimiter) Allow(ownerID string) bool {
	ol.mu.Lock()
	defer ol.mu.Unlock()

	limiter, ok := ol.limiters[ownerID]
	if !ok {
		cfg := ol.def
		if override, exists := ol.overrides[ownerID]; exists {
			cfg = override
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst)
		ol.limiters[ownerID] = limiter
	}

	return limiter.Allow()
}
