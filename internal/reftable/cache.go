package reftable

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lvonguyen/tagforge/internal/alias"
)

// ResolveCacheConfig holds Redis cache settings for alias resolution.
type ResolveCacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Addr      string        `yaml:"addr"`
	DB        int           `yaml:"db"`
	TTL       time.Duration `yaml:"ttl"`
	KeyPrefix string        `yaml:"key_prefix"`
}

// DefaultResolveCacheConfig returns sensible defaults.
func DefaultResolveCacheConfig() ResolveCacheConfig {
	return ResolveCacheConfig{
		Addr:      "localhost:6379",
		TTL:       1 * time.Hour,
		KeyPrefix: "tagforge:resolve",
	}
}

// cachedResolution is the stored value; misses are cached too so a
// surface form that resolves to nothing is scored only once.
type cachedResolution struct {
	Found      bool              `json:"found"`
	Resolution *alias.Resolution `json:"resolution,omitempty"`
}

// ResolveCache fronts an EntityResolver with Redis. Fuzzy scoring
// walks the whole alias table per query, and CTI documents repeat the
// same surface forms heavily, so caching pays off across runs. Any
// Redis failure degrades to direct resolution.
type ResolveCache struct {
	client *redis.Client
	inner  alias.EntityResolver
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

// NewResolveCache wraps inner with a Redis cache.
func NewResolveCache(cfg ResolveCacheConfig, inner alias.EntityResolver, logger *zap.Logger) *ResolveCache {
	if cfg.TTL == 0 {
		cfg.TTL = 1 * time.Hour
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "tagforge:resolve"
	}
	return &ResolveCache{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, DB: cfg.DB}),
		inner:  inner,
		ttl:    cfg.TTL,
		prefix: cfg.KeyPrefix,
		logger: logger,
	}
}

// Resolve checks Redis first and falls through to the inner resolver,
// storing both hits and misses.
func (c *ResolveCache) Resolve(ctx context.Context, query string) (*alias.Resolution, bool) {
	key := c.cacheKey(query)

	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var cached cachedResolution
		if json.Unmarshal(data, &cached) == nil {
			return cached.Resolution, cached.Found
		}
	} else if err != redis.Nil {
		c.logger.Debug("Resolve cache read failed", zap.Error(err))
	}

	res, ok := c.inner.Resolve(ctx, query)

	data, err := json.Marshal(cachedResolution{Found: ok, Resolution: res})
	if err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Debug("Resolve cache write failed", zap.Error(err))
		}
	}

	return res, ok
}

// Close releases the Redis connection.
func (c *ResolveCache) Close() error {
	return c.client.Close()
}

func (c *ResolveCache) cacheKey(query string) string {
	return c.prefix + ":" + strings.ToLower(query)
}
