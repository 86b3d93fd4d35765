package config

import (
	"time"

	"github.com/spf13/viper"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// RequestsPerSecond is the number of requests allowed per second
	RequestsPerSecond float64
	// MaxRetries is the maximum number of retries before giving up
	MaxRetries int
	// BaseDelay is the initial delay duration for backoff
	BaseDelay time.Duration
	// MaxDelay is the maximum delay duration for backoff
	MaxDelay time.Duration
}

// DefaultRateLimitConfig provides default values for rate limiting
var DefaultRateLimitConfig = RateLimitConfig{
	RequestsPerSecond: 5.0,
	MaxRetries:        10,
	BaseDelay:         time.Second,
	MaxDelay:          2 * time.Minute,
}

// LoadRateLimitConfig reads ratelimit.* from viper, falling back to the defaults
// for anything unset or non-positive.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := DefaultRateLimitConfig
	if v := viper.GetFloat64("ratelimit.requests_per_second"); v > 0 {
		cfg.RequestsPerSecond = v
	}
	if v := viper.GetInt("ratelimit.max_retries"); v > 0 {
		cfg.MaxRetries = v
	}
	if v := viper.GetDuration("ratelimit.base_delay"); v > 0 {
		cfg.BaseDelay = v
	}
	if v := viper.GetDuration("ratelimit.max_delay"); v > 0 {
		cfg.MaxDelay = v
	}
	return cfg
}
