package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadRateLimitConfigDefaults(t *testing.T) {
	cfg := LoadRateLimitConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 10, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 30*time.Second, cfg.RefillInterval)
	assert.Equal(t, 10*time.Minute, cfg.TTL)
	assert.Equal(t, "rl:login", cfg.Prefix)
}

func TestLoadRateLimitConfigOverrides(t *testing.T) {
	t.Setenv("LOGIN_RATE_LIMIT_ENABLED", "false")
	t.Setenv("LOGIN_RATE_LIMIT_CAPACITY", "3")
	t.Setenv("LOGIN_RATE_LIMIT_REFILL_INTERVAL", "1m")

	cfg := LoadRateLimitConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 3, cfg.Capacity)
	assert.Equal(t, time.Minute, cfg.RefillInterval)
}

func TestLoadRateLimitConfigClampsNonsense(t *testing.T) {
	t.Setenv("LOGIN_RATE_LIMIT_CAPACITY", "0")
	t.Setenv("LOGIN_RATE_LIMIT_REFILL_TOKENS", "-2")
	t.Setenv("LOGIN_RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity, "capacity is clamped to at least 1")
	assert.Equal(t, 1, cfg.RefillTokens, "refill tokens are clamped to at least 1")
	assert.GreaterOrEqual(t, cfg.TTL, 5*cfg.RefillInterval, "ttl covers several refill intervals")
}
