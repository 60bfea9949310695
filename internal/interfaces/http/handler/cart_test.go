package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appcart "github.com/omorfo/backend/internal/application/cart"
	"github.com/omorfo/backend/internal/domain/cart"
	"github.com/omorfo/backend/internal/domain/catalog"
	"github.com/omorfo/backend/internal/domain/shared"
	"github.com/omorfo/backend/internal/interfaces/http/dto"
	"github.com/omorfo/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// MockCartRepository mocks cart.Repository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]cart.LineItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cart.LineItem), args.Error(1)
}

func (m *MockCartRepository) FindByID(ctx context.Context, lineID, userID uuid.UUID) (*cart.LineItem, error) {
	args := m.Called(ctx, lineID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.LineItem), args.Error(1)
}

func (m *MockCartRepository) FindByVariant(ctx context.Context, userID uuid.UUID, key cart.VariantKey) (*cart.LineItem, error) {
	args := m.Called(ctx, userID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.LineItem), args.Error(1)
}

func (m *MockCartRepository) Insert(ctx context.Context, item *cart.LineItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockCartRepository) Update(ctx context.Context, item *cart.LineItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockCartRepository) Delete(ctx context.Context, lineID, userID uuid.UUID) error {
	args := m.Called(ctx, lineID, userID)
	return args.Error(0)
}

func (m *MockCartRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockProductProvider mocks the catalog lookup used by the cart service
type MockProductProvider struct {
	mock.Mock
}

func (m *MockProductProvider) Get(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

// setUser injects an authenticated user the way the JWT middleware does
func setUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.JWTUserIDKey, userID.String())
		c.Next()
	}
}

type cartTestEnv struct {
	router   *gin.Engine
	repo     *MockCartRepository
	products *MockProductProvider
}

func newCartTestEnv(t *testing.T, userID uuid.UUID, authed bool) *cartTestEnv {
	t.Helper()
	repo := new(MockCartRepository)
	products := new(MockProductProvider)
	service := appcart.NewService(repo, products, nil, zap.NewNop())
	h := NewCartHandler(service, 100)

	router := gin.New()
	group := router.Group("/api/v1")
	if authed {
		group.Use(setUser(userID))
	}
	h.RegisterRoutes(group)

	return &cartTestEnv{router: router, repo: repo, products: products}
}

func (e *cartTestEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func testCatalogProduct(t *testing.T) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("aurora-print", "Aurora Print", "https://cdn.example.com/aurora.jpg", decimal.NewFromFloat(29.99))
	require.NoError(t, err)
	return p
}

func TestCartHandler_Get_ReturnsCart(t *testing.T) {
	userID := uuid.New()
	env := newCartTestEnv(t, userID, true)

	line, err := cart.NewLineItem(uuid.New(), "Aurora Print", decimal.NewFromFloat(29.99), "", 2, cart.SizeA4, cart.FrameNone)
	require.NoError(t, err)
	line.ClearDomainEvents()
	env.repo.On("ListByUser", mock.Anything, userID).Return([]cart.LineItem{*line}, nil)

	rec := env.do(http.MethodGet, "/api/v1/cart", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(2), data["item_count"])
	assert.Equal(t, "59.98", data["total"])
	env.repo.AssertExpectations(t)
}

func TestCartHandler_Get_RequiresAuth(t *testing.T) {
	env := newCartTestEnv(t, uuid.Nil, false)

	rec := env.do(http.MethodGet, "/api/v1/cart", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCartHandler_AddItem_Success(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	env := newCartTestEnv(t, userID, true)

	env.products.On("Get", mock.Anything, productID).Return(testCatalogProduct(t), nil)
	env.repo.On("FindByVariant", mock.Anything, userID, mock.Anything).Return(nil, shared.ErrNotFound)
	env.repo.On("Insert", mock.Anything, mock.AnythingOfType("*cart.LineItem")).Return(nil)

	rec := env.do(http.MethodPost, "/api/v1/cart/items", gin.H{
		"product_id": productID.String(),
		"quantity":   2,
		"size":       "A4",
		"frame":      "none",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data := resp.Data.(map[string]any)
	assert.Equal(t, "29.99", data["unit_price"])
	assert.Equal(t, float64(2), data["quantity"])
	env.repo.AssertExpectations(t)
	env.products.AssertExpectations(t)
}

func TestCartHandler_AddItem_ValidationErrors(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing product", gin.H{"quantity": 1, "size": "A4", "frame": "none"}},
		{"zero quantity", gin.H{"product_id": uuid.NewString(), "quantity": 0, "size": "A4", "frame": "none"}},
		{"unknown size", gin.H{"product_id": uuid.NewString(), "quantity": 1, "size": "A5", "frame": "none"}},
		{"unknown frame", gin.H{"product_id": uuid.NewString(), "quantity": 1, "size": "A4", "frame": "gold"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newCartTestEnv(t, userID, true)

			rec := env.do(http.MethodPost, "/api/v1/cart/items", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCartHandler_AddItem_UnknownProduct(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	env := newCartTestEnv(t, userID, true)

	env.products.On("Get", mock.Anything, productID).Return(nil, shared.ErrNotFound)

	rec := env.do(http.MethodPost, "/api/v1/cart/items", gin.H{
		"product_id": productID.String(),
		"quantity":   1,
		"size":       "A4",
		"frame":      "none",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestCartHandler_UpdateItem_Success(t *testing.T) {
	userID := uuid.New()
	env := newCartTestEnv(t, userID, true)

	line, err := cart.NewLineItem(uuid.New(), "Aurora Print", decimal.NewFromFloat(29.99), "", 2, cart.SizeA4, cart.FrameNone)
	require.NoError(t, err)
	line.ClearDomainEvents()

	env.repo.On("FindByID", mock.Anything, line.ID, userID).Return(line, nil)
	env.repo.On("Update", mock.Anything, mock.AnythingOfType("*cart.LineItem")).Return(nil)

	rec := env.do(http.MethodPatch, "/api/v1/cart/items/"+line.ID.String(), gin.H{"quantity": 5})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(5), data["quantity"])
	env.repo.AssertExpectations(t)
}

func TestCartHandler_UpdateItem_BadLineID(t *testing.T) {
	env := newCartTestEnv(t, uuid.New(), true)

	rec := env.do(http.MethodPatch, "/api/v1/cart/items/not-a-uuid", gin.H{"quantity": 5})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartHandler_UpdateItem_NotFound(t *testing.T) {
	userID := uuid.New()
	lineID := uuid.New()
	env := newCartTestEnv(t, userID, true)

	env.repo.On("FindByID", mock.Anything, lineID, userID).Return(nil, shared.ErrNotFound)

	rec := env.do(http.MethodPatch, "/api/v1/cart/items/"+lineID.String(), gin.H{"quantity": 5})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartHandler_RemoveItem_NoContent(t *testing.T) {
	userID := uuid.New()
	lineID := uuid.New()
	env := newCartTestEnv(t, userID, true)

	env.repo.On("Delete", mock.Anything, lineID, userID).Return(nil)

	rec := env.do(http.MethodDelete, "/api/v1/cart/items/"+lineID.String(), nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	env.repo.AssertExpectations(t)
}

func TestCartHandler_Clear_NoContent(t *testing.T) {
	userID := uuid.New()
	env := newCartTestEnv(t, userID, true)

	env.repo.On("DeleteAllForUser", mock.Anything, userID).Return(nil)

	rec := env.do(http.MethodDelete, "/api/v1/cart", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	env.repo.AssertExpectations(t)
}

func TestCartHandler_Merge_Success(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	env := newCartTestEnv(t, userID, true)

	env.repo.On("ListByUser", mock.Anything, userID).Return([]cart.LineItem{}, nil).Once()
	env.products.On("Get", mock.Anything, productID).Return(testCatalogProduct(t), nil)
	env.repo.On("FindByVariant", mock.Anything, userID, mock.Anything).Return(nil, shared.ErrNotFound)
	env.repo.On("Insert", mock.Anything, mock.AnythingOfType("*cart.LineItem")).Return(nil)

	merged, err := cart.NewLineItem(productID, "Aurora Print", decimal.NewFromFloat(29.99), "", 2, cart.SizeA4, cart.FrameNone)
	require.NoError(t, err)
	merged.ClearDomainEvents()
	env.repo.On("ListByUser", mock.Anything, userID).Return([]cart.LineItem{*merged}, nil).Once()

	rec := env.do(http.MethodPost, "/api/v1/cart/merge", gin.H{
		"items": []gin.H{
			{
				"product_id": productID.String(),
				"name":       "Aurora Print",
				"unit_price": "29.99",
				"quantity":   2,
				"size":       "A4",
				"frame":      "none",
			},
		},
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(1), data["planned"])
	assert.Equal(t, float64(1), data["succeeded"])
	assert.Equal(t, float64(0), data["failed"])
	env.repo.AssertExpectations(t)
}

func TestCartHandler_Merge_TooManyLines(t *testing.T) {
	userID := uuid.New()
	repo := new(MockCartRepository)
	products := new(MockProductProvider)
	service := appcart.NewService(repo, products, nil, zap.NewNop())
	h := NewCartHandler(service, 2)

	router := gin.New()
	group := router.Group("/api/v1")
	group.Use(setUser(userID))
	h.RegisterRoutes(group)

	items := make([]gin.H, 3)
	for i := range items {
		items[i] = gin.H{
			"product_id": uuid.NewString(),
			"name":       fmt.Sprintf("Print %d", i),
			"unit_price": "29.99",
			"quantity":   1,
			"size":       "A4",
			"frame":      "none",
		}
	}
	raw, _ := json.Marshal(gin.H{"items": items})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/merge", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Too many lines")
}
