package cache

import (
	"fmt"

	"github.com/omorfo/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewProductCache creates the product cache selected by configuration.
// Unknown backends fail loudly rather than silently degrading; a Redis
// connection failure falls back to the in-memory cache so the storefront
// keeps serving.
func NewProductCache(cfg *config.Config, logger *zap.Logger) (ProductCache, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return NewInMemoryProductCache(), nil
	case "redis":
		store, err := NewRedisProductCache(RedisConfig{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Warn("redis unavailable, using in-memory product cache", zap.Error(err))
			return NewInMemoryProductCache(), nil
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
