package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/omorfo/backend/internal/domain/catalog"
	"github.com/omorfo/backend/internal/domain/shared"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func testProduct(t *testing.T) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("aurora-print", "Aurora Print", "", decimal.NewFromFloat(29.99))
	require.NoError(t, err)
	return p
}

func TestInMemoryProductCache_SetGet(t *testing.T) {
	c := NewInMemoryProductCache()
	defer c.Close()

	product := testProduct(t)
	require.NoError(t, c.Set(context.Background(), product, time.Minute))

	got, err := c.Get(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, got.ID)
	assert.Equal(t, 1, c.Size())
}

func TestInMemoryProductCache_MissAndExpiry(t *testing.T) {
	c := NewInMemoryProductCache()
	defer c.Close()

	_, err := c.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrCacheMiss)

	product := testProduct(t)
	require.NoError(t, c.Set(context.Background(), product, time.Nanosecond))
	time.Sleep(5 * time.Millisecond)

	_, err = c.Get(context.Background(), product.ID)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestInMemoryProductCache_Invalidate(t *testing.T) {
	c := NewInMemoryProductCache()
	defer c.Close()

	product := testProduct(t)
	require.NoError(t, c.Set(context.Background(), product, time.Minute))
	require.NoError(t, c.Invalidate(context.Background(), product.ID))

	_, err := c.Get(context.Background(), product.ID)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCachedProductProvider_BackfillsOnMiss(t *testing.T) {
	c := NewInMemoryProductCache()
	defer c.Close()

	repo := &MockProductRepository{}
	product := testProduct(t)
	repo.On("FindByID", mock.Anything, product.ID).Return(product, nil).Once()

	provider := NewCachedProductProvider(repo, c, time.Minute, zap.NewNop())

	// First call hits the repository and back-fills
	got, err := provider.Get(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, got.ID)

	// Second call is served from the cache; the mock allows one call only
	got, err = provider.Get(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, got.ID)
	repo.AssertExpectations(t)
}

func TestCachedProductProvider_NotFoundPassesThrough(t *testing.T) {
	c := NewInMemoryProductCache()
	defer c.Close()

	repo := &MockProductRepository{}
	productID := uuid.New()
	repo.On("FindByID", mock.Anything, productID).Return(nil, shared.ErrNotFound).Once()

	provider := NewCachedProductProvider(repo, c, time.Minute, zap.NewNop())

	_, err := provider.Get(context.Background(), productID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

// failingCache always errors, standing in for an unreachable redis
type failingCache struct{}

func (failingCache) Get(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return nil, errors.New("connection refused")
}
func (failingCache) Set(ctx context.Context, product *catalog.Product, ttl time.Duration) error {
	return errors.New("connection refused")
}
func (failingCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	return errors.New("connection refused")
}
func (failingCache) Close() error { return nil }

func TestCachedProductProvider_CacheFailureBypassed(t *testing.T) {
	repo := &MockProductRepository{}
	product := testProduct(t)
	repo.On("FindByID", mock.Anything, product.ID).Return(product, nil).Once()

	provider := NewCachedProductProvider(repo, failingCache{}, time.Minute, zap.NewNop())

	got, err := provider.Get(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, got.ID)
}
