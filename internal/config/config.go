package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/roach88/symcore/internal/cache"
	"github.com/roach88/symcore/internal/intern"
	"github.com/roach88/symcore/internal/simplify"
)

// Config is the complete engine configuration.
type Config struct {
	Cache    CacheConfig    `yaml:"cache" json:"cache"`
	Memory   MemoryConfig   `yaml:"memory" json:"memory"`
	Simplify SimplifyConfig `yaml:"simplify" json:"simplify"`
}

// CacheConfig configures the three compute cache tiers.
type CacheConfig struct {
	Enabled           bool   `yaml:"enabled" json:"enabled"`
	FastCacheSize     int    `yaml:"fast_cache_size" json:"fast_cache_size"`
	ExactCacheSize    int    `yaml:"exact_cache_size" json:"exact_cache_size"`
	SymbolicCacheSize int    `yaml:"symbolic_cache_size" json:"symbolic_cache_size"`
	CacheTTL          string `yaml:"cache_ttl" json:"cache_ttl"`
}

// MemoryConfig configures expression sharing.
type MemoryConfig struct {
	EnableSharing   bool   `yaml:"enable_sharing" json:"enable_sharing"`
	MaxPoolSize     int    `yaml:"max_pool_size" json:"max_pool_size"`
	CleanupInterval string `yaml:"cleanup_interval" json:"cleanup_interval"`
}

// SimplifyConfig bounds the simplifier.
type SimplifyConfig struct {
	MaxIterations int `yaml:"max_iterations" json:"max_iterations"`
}

// Default returns the built-in configuration. It matches the defaults in
// the embedded CUE schema.
func Default() Config {
	return Config{
		Cache: CacheConfig{
			Enabled:           true,
			FastCacheSize:     cache.DefaultFastCacheSize,
			ExactCacheSize:    cache.DefaultExactCacheSize,
			SymbolicCacheSize: cache.DefaultSymbolicCacheSize,
			CacheTTL:          "1h",
		},
		Memory: MemoryConfig{
			EnableSharing:   true,
			MaxPoolSize:     intern.DefaultMaxPoolSize,
			CleanupInterval: "5m",
		},
		Simplify: SimplifyConfig{
			MaxIterations: simplify.DefaultMaxIterations,
		},
	}
}

// Validate reports every problem in c, joined into one error.
func (c Config) Validate() error {
	var errs []error
	nonNegative := func(name string, v int) {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %d", name, v))
		}
	}
	nonNegative("cache.fast_cache_size", c.Cache.FastCacheSize)
	nonNegative("cache.exact_cache_size", c.Cache.ExactCacheSize)
	nonNegative("cache.symbolic_cache_size", c.Cache.SymbolicCacheSize)
	nonNegative("memory.max_pool_size", c.Memory.MaxPoolSize)

	if _, err := c.Cache.TTL(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Memory.Interval(); err != nil {
		errs = append(errs, err)
	}
	if c.Simplify.MaxIterations <= 0 {
		errs = append(errs, fmt.Errorf("simplify.max_iterations must be positive, got %d", c.Simplify.MaxIterations))
	}
	return errors.Join(errs...)
}

// TTL parses cache_ttl. An empty string means entries never expire.
func (c CacheConfig) TTL() (time.Duration, error) {
	if c.CacheTTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 0, fmt.Errorf("cache.cache_ttl: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("cache.cache_ttl must not be negative, got %s", c.CacheTTL)
	}
	return d, nil
}

// Interval parses cleanup_interval. An empty string selects the default
// sweep interval.
func (c MemoryConfig) Interval() (time.Duration, error) {
	if c.CleanupInterval == "" {
		return cache.DefaultSweepInterval, nil
	}
	d, err := time.ParseDuration(c.CleanupInterval)
	if err != nil {
		return 0, fmt.Errorf("memory.cleanup_interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("memory.cleanup_interval must be positive, got %s", c.CleanupInterval)
	}
	return d, nil
}

// CacheSettings converts the cache section. Call Validate first; an
// unparsable TTL is returned as an error here too.
func (c Config) CacheSettings() (cache.Config, error) {
	ttl, err := c.Cache.TTL()
	if err != nil {
		return cache.Config{}, err
	}
	return cache.Config{
		Enabled:           c.Cache.Enabled,
		FastCacheSize:     c.Cache.FastCacheSize,
		ExactCacheSize:    c.Cache.ExactCacheSize,
		SymbolicCacheSize: c.Cache.SymbolicCacheSize,
		TTL:               ttl,
	}, nil
}

// PoolSettings converts the memory section.
func (c Config) PoolSettings() intern.Config {
	return intern.Config{
		EnableSharing: c.Memory.EnableSharing,
		MaxPoolSize:   c.Memory.MaxPoolSize,
	}
}
