package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omorfo/backend/internal/domain/shared"
)

func TestNewLineItem_Success(t *testing.T) {
	productID := uuid.New()
	price := decimal.NewFromFloat(29.99)

	item, err := NewLineItem(productID, "Aurora Print", price, "https://cdn.example.com/aurora.jpg", 2, SizeA3, FrameBlack)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, item.ID)
	assert.Equal(t, productID, item.ProductID)
	assert.Equal(t, "Aurora Print", item.Name)
	assert.True(t, price.Equal(item.UnitPrice))
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, SizeA3, item.Size)
	assert.Equal(t, FrameBlack, item.Frame)
	assert.Len(t, item.GetDomainEvents(), 1)
}

func TestNewLineItem_InvalidQuantity(t *testing.T) {
	_, err := NewLineItem(uuid.New(), "Aurora Print", decimal.NewFromInt(10), "", 0, SizeA4, FrameNone)

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_QUANTITY", domainErr.Code)
}

func TestNewLineItem_MissingProduct(t *testing.T) {
	_, err := NewLineItem(uuid.Nil, "Aurora Print", decimal.NewFromInt(10), "", 1, SizeA4, FrameNone)

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_INPUT", domainErr.Code)
}

func TestNewLineItem_UnknownSize(t *testing.T) {
	_, err := NewLineItem(uuid.New(), "Aurora Print", decimal.NewFromInt(10), "", 1, PosterSize("A5"), FrameNone)
	assert.Error(t, err)
}

func TestNewLineItem_UnknownFrame(t *testing.T) {
	_, err := NewLineItem(uuid.New(), "Aurora Print", decimal.NewFromInt(10), "", 1, SizeA4, FrameStyle("silver"))
	assert.Error(t, err)
}

func TestNewLineItem_NegativePrice(t *testing.T) {
	_, err := NewLineItem(uuid.New(), "Aurora Print", decimal.NewFromInt(-1), "", 1, SizeA4, FrameNone)
	assert.Error(t, err)
}

func TestLineItem_SetQuantity(t *testing.T) {
	item, err := NewLineItem(uuid.New(), "Aurora Print", decimal.NewFromInt(10), "", 1, SizeA4, FrameNone)
	require.NoError(t, err)

	require.NoError(t, item.SetQuantity(5))
	assert.Equal(t, 5, item.Quantity)

	err = item.SetQuantity(0)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_QUANTITY", domainErr.Code)
	assert.Equal(t, 5, item.Quantity)
}

func TestLineItem_AddQuantity(t *testing.T) {
	item, err := NewLineItem(uuid.New(), "Aurora Print", decimal.NewFromInt(10), "", 2, SizeA4, FrameNone)
	require.NoError(t, err)

	require.NoError(t, item.AddQuantity(3))
	assert.Equal(t, 5, item.Quantity)

	assert.Error(t, item.AddQuantity(0))
}

func TestLineItem_Subtotal(t *testing.T) {
	item, err := NewLineItem(uuid.New(), "Aurora Print", decimal.NewFromFloat(29.99), "", 3, SizeA4, FrameNone)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromFloat(89.97).Equal(item.Subtotal()))
}

func TestLineItem_SameVariant(t *testing.T) {
	productID := uuid.New()
	a, err := NewLineItem(productID, "Aurora Print", decimal.NewFromInt(10), "", 1, SizeA3, FrameOak)
	require.NoError(t, err)
	b, err := NewLineItem(productID, "Aurora Print", decimal.NewFromInt(10), "", 4, SizeA3, FrameOak)
	require.NoError(t, err)
	c, err := NewLineItem(productID, "Aurora Print", decimal.NewFromInt(10), "", 1, SizeA3, FrameNone)
	require.NoError(t, err)

	assert.True(t, a.SameVariant(b))
	assert.False(t, a.SameVariant(c))
}

func TestParseSize(t *testing.T) {
	size, err := ParseSize(" A2 ")
	require.NoError(t, err)
	assert.Equal(t, SizeA2, size)

	_, err = ParseSize("A1")
	assert.Error(t, err)
}

func TestParseFrame(t *testing.T) {
	frame, err := ParseFrame("Oak")
	require.NoError(t, err)
	assert.Equal(t, FrameOak, frame)

	_, err = ParseFrame("chrome")
	assert.Error(t, err)
}
