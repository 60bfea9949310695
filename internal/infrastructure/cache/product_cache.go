package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/omorfo/backend/internal/domain/catalog"
	"github.com/omorfo/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductCache stores catalog product snapshots with a TTL. It replaces
// the storefront's old process-wide cache map: instances are explicitly
// constructed and injected, never ambient.
type ProductCache interface {
	Get(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	Set(ctx context.Context, product *catalog.Product, ttl time.Duration) error
	Invalidate(ctx context.Context, id uuid.UUID) error
	Close() error
}

// ErrCacheMiss is returned by Get when the product is not cached
var ErrCacheMiss = errors.New("product not in cache")

// CachedProductProvider resolves products through the cache, falling
// back to the repository and back-filling on a miss. Cache failures are
// logged and bypassed; pricing must not depend on cache availability.
type CachedProductProvider struct {
	repo   catalog.ProductRepository
	cache  ProductCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedProductProvider creates a caching product provider
func NewCachedProductProvider(repo catalog.ProductRepository, cache ProductCache, ttl time.Duration, logger *zap.Logger) *CachedProductProvider {
	return &CachedProductProvider{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the product with the given id
func (p *CachedProductProvider) Get(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := p.cache.Get(ctx, id)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		p.logger.Warn("product cache read failed", zap.String("product_id", id.String()), zap.Error(err))
	}

	product, err = p.repo.FindByID(ctx, id)
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			return nil, domainErr
		}
		return nil, err
	}

	if err := p.cache.Set(ctx, product, p.ttl); err != nil {
		p.logger.Warn("product cache write failed", zap.String("product_id", id.String()), zap.Error(err))
	}

	return product, nil
}
