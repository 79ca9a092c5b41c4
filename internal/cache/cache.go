/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cache provides a Redis-backed cache for the analyzed show list,
// stored catalogs and rendered channel descriptions. The cache is strictly
// optional: when Redis is unreachable every accessor reports a miss and the
// caller recomputes.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/friendsincode/vidar_tv/internal/grid"
)

// Default TTL values per cache type.
const (
	DefaultShowsTTL       = 1 * time.Hour
	DefaultCatalogTTL     = 5 * time.Minute
	DefaultDescriptionTTL = 30 * time.Minute
)

// Key prefixes on a shared Redis instance.
const (
	keyShows       = "vidartv:cache:shows"
	keyCatalog     = "vidartv:cache:catalog:"     // + storage key
	keyDescription = "vidartv:cache:description:" // + channel name
)

// Config contains cache configuration.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ShowsTTL       time.Duration
	CatalogTTL     time.Duration
	DescriptionTTL time.Duration

	// DisableOnError flips the cache off after the first Redis error
	// instead of retrying on every call.
	DisableOnError bool
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		RedisAddr:      "localhost:6379",
		ShowsTTL:       DefaultShowsTTL,
		CatalogTTL:     DefaultCatalogTTL,
		DescriptionTTL: DefaultDescriptionTTL,
		DisableOnError: true,
	}
}

// Cache provides Redis-backed caching with graceful fallback.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
	config Config

	mu       sync.RWMutex
	disabled bool
}

// New creates a cache. An unreachable Redis yields a disabled cache, not an
// error: the service runs without caching.
func New(cfg Config, logger zerolog.Logger) *Cache {
	componentLogger := logger.With().Str("component", "cache").Logger()

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		componentLogger.Warn().Err(err).Msg("Redis cache unavailable, running without caching")
		_ = client.Close()
		return &Cache{logger: componentLogger, config: cfg, disabled: true}
	}

	componentLogger.Info().Str("addr", cfg.RedisAddr).Msg("Redis cache initialized")
	return &Cache{client: client, logger: componentLogger, config: cfg}
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Available reports whether the cache is operational.
func (c *Cache) Available() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.disabled && c.client != nil
}

// handleError applies the circuit breaker on Redis errors.
func (c *Cache) handleError(err error, operation string) {
	if err == nil || err == redis.Nil {
		return
	}

	c.logger.Debug().Err(err).Str("operation", operation).Msg("cache operation failed")

	if c.config.DisableOnError {
		c.mu.Lock()
		c.disabled = true
		c.mu.Unlock()
		c.logger.Warn().Msg("disabling cache due to Redis error")
	}
}

// get reads and unmarshals a key. The bool reports a hit.
func (c *Cache) get(ctx context.Context, key string, dest any) bool {
	if !c.Available() {
		return false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		c.handleError(err, "get")
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("corrupt cache entry, ignoring")
		return false
	}
	return true
}

// set marshals and stores a value. Failures only degrade the cache.
func (c *Cache) set(ctx context.Context, key string, value any, ttl time.Duration) {
	if !c.Available() {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.handleError(err, "set")
	}
}

// Shows returns the cached show list, if present.
func (c *Cache) Shows(ctx context.Context) ([]grid.Show, bool) {
	var shows []grid.Show
	if !c.get(ctx, keyShows, &shows) {
		return nil, false
	}
	return shows, true
}

// SetShows caches the show list.
func (c *Cache) SetShows(ctx context.Context, shows []grid.Show) {
	c.set(ctx, keyShows, shows, c.config.ShowsTTL)
}

// InvalidateShows drops the cached show list, e.g. after a refresh fetch.
func (c *Cache) InvalidateShows(ctx context.Context) {
	if !c.Available() {
		return
	}
	if err := c.client.Del(ctx, keyShows).Err(); err != nil {
		c.handleError(err, "del")
	}
}

// Catalog returns a cached catalog by its storage key.
func (c *Cache) Catalog(ctx context.Context, key string) (*grid.Catalog, bool) {
	var cat grid.Catalog
	if !c.get(ctx, keyCatalog+key, &cat) {
		return nil, false
	}
	return &cat, true
}

// SetCatalog caches a catalog under its storage key.
func (c *Cache) SetCatalog(ctx context.Context, key string, cat *grid.Catalog) {
	c.set(ctx, keyCatalog+key, cat, c.config.CatalogTTL)
}

// Description returns a cached channel description.
func (c *Cache) Description(ctx context.Context, channel string) (string, bool) {
	var text string
	if !c.get(ctx, keyDescription+channel, &text) {
		return "", false
	}
	return text, true
}

// SetDescription caches a rendered channel description.
func (c *Cache) SetDescription(ctx context.Context, channel, text string) {
	c.set(ctx, keyDescription+channel, text, c.config.DescriptionTTL)
}
