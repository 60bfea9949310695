package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/omorfo/backend/internal/domain/catalog"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "catalog:product:"

// RedisProductCache implements ProductCache using Redis. Suitable for
// distributed deployments where multiple instances share the snapshot
// cache.
type RedisProductCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisProductCache creates a Redis-based product cache
func NewRedisProductCache(cfg RedisConfig) (*RedisProductCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisProductCache{
		client:    client,
		keyPrefix: defaultKeyPrefix,
	}, nil
}

// NewRedisProductCacheWithClient creates a cache with an existing Redis
// client. Useful for testing or when sharing a client across components.
func NewRedisProductCacheWithClient(client *redis.Client, keyPrefix string) *RedisProductCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisProductCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached product or ErrCacheMiss
func (c *RedisProductCache) Get(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+id.String()).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read product from cache: %w", err)
	}

	var product catalog.Product
	if err := json.Unmarshal(data, &product); err != nil {
		// A snapshot we cannot decode is as good as absent
		return nil, ErrCacheMiss
	}
	return &product, nil
}

// Set stores a product with the given TTL
func (c *RedisProductCache) Set(ctx context.Context, product *catalog.Product, ttl time.Duration) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to encode product: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+product.ID.String(), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write product to cache: %w", err)
	}
	return nil
}

// Invalidate drops a product from the cache
func (c *RedisProductCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, c.keyPrefix+id.String()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate product: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client
func (c *RedisProductCache) Close() error {
	return c.client.Close()
}

// Ensure RedisProductCache implements ProductCache
var _ ProductCache = (*RedisProductCache)(nil)
