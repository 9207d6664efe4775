package config

import "time"

// RateLimitConfig drives the Redis token bucket placed in front of the
// booking endpoint.
type RateLimitConfig struct {
	Enabled        bool          `env:"RATE_LIMIT_ENABLED" env-default:"true"`
	Capacity       int           `env:"RATE_LIMIT_CAPACITY" env-default:"20"`
	RefillTokens   int           `env:"RATE_LIMIT_REFILL_TOKENS" env-default:"1"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" env-default:"1s"`
	TTL            time.Duration `env:"RATE_LIMIT_TTL" env-default:"10m"`
	KeyStrategy    string        `env:"RATE_LIMIT_KEY_STRATEGY" env-default:"ip_user_route"`
	Prefix         string        `env:"RATE_LIMIT_PREFIX" env-default:"rl"`
}

func (c *RateLimitConfig) normalize() {
	if c.Capacity < 1 {
		c.Capacity = 1
	}
	if c.RefillTokens < 1 {
		c.RefillTokens = 1
	}
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	if minTTL := 5 * c.RefillInterval; c.TTL < minTTL {
		c.TTL = minTTL
	}
}
