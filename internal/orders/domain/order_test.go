package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/pkg/errors"
)

func product(price string, stock int) ProductStock {
	return ProductStock{
		ID:            uuid.New(),
		Name:          "widget",
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		IsActive:      true,
	}
}

func TestNewOrder(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	order, err := NewOrder(userID, now)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, order.ID)
	assert.Equal(t, userID, order.UserID)
	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, now, order.OrderDate)
	assert.Equal(t, now, order.CreatedAt)
	assert.True(t, order.TotalAmount.IsZero())

	_, err = NewOrder(uuid.Nil, now)
	assert.Equal(t, ErrUserIDRequired, err)
}

func TestAddLine_TotalsExactly(t *testing.T) {
	order, err := NewOrder(uuid.New(), time.Now())
	require.NoError(t, err)

	a := product("10.00", 5)
	b := product("5.00", 5)

	_, err = order.AddLine(a, 2)
	require.NoError(t, err)
	_, err = order.AddLine(b, 1)
	require.NoError(t, err)

	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("25.00")), "total %s", order.TotalAmount)
	assert.True(t, order.Reconciles())
	assert.Equal(t, 0, order.Lines[0].Position)
	assert.Equal(t, 1, order.Lines[1].Position)
	assert.Equal(t, order.ID, order.Lines[1].OrderID)
}

func TestAddLine_NoFloatDrift(t *testing.T) {
	order, err := NewOrder(uuid.New(), time.Now())
	require.NoError(t, err)

	p := product("0.10", 100)
	for i := 0; i < 3; i++ {
		_, err := order.AddLine(p, 1)
		require.NoError(t, err)
	}

	assert.Equal(t, "0.30", order.TotalAmount.StringFixed(2))
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("0.3")))
}

func TestAddLine_SnapshotsPrice(t *testing.T) {
	order, err := NewOrder(uuid.New(), time.Now())
	require.NoError(t, err)

	p := product("10.00", 5)
	line, err := order.AddLine(p, 1)
	require.NoError(t, err)

	p.Price = decimal.RequireFromString("99.00")
	assert.True(t, line.UnitPrice.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, order.Lines[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
}

func TestAddLine_Rejections(t *testing.T) {
	order, err := NewOrder(uuid.New(), time.Now())
	require.NoError(t, err)

	inactive := product("1.00", 1)
	inactive.IsActive = false
	_, err = order.AddLine(inactive, 1)
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = order.AddLine(product("1.00", 1), 0)
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = order.AddLine(product("-1.00", 1), 1)
	assert.True(t, errors.Is(err, errors.CodeValidation))

	assert.Empty(t, order.Lines)
	assert.True(t, order.TotalAmount.IsZero())
}

func TestQuantitiesByProduct(t *testing.T) {
	order, err := NewOrder(uuid.New(), time.Now())
	require.NoError(t, err)

	a := product("1.00", 10)
	b := product("2.00", 10)
	_, _ = order.AddLine(a, 2)
	_, _ = order.AddLine(b, 1)
	_, _ = order.AddLine(a, 3)

	assert.Equal(t, map[uuid.UUID]int{a.ID: 5, b.ID: 1}, order.QuantitiesByProduct())
}

func TestValidateLineRequests(t *testing.T) {
	assert.Equal(t, ErrEmptyOrder, ValidateLineRequests(nil))
	assert.Equal(t, ErrProductIDRequired, ValidateLineRequests([]LineRequest{{Quantity: 1}}))

	err := ValidateLineRequests([]LineRequest{{ProductID: uuid.New(), Quantity: -1}})
	assert.True(t, errors.Is(err, errors.CodeValidation))

	assert.NoError(t, ValidateLineRequests([]LineRequest{{ProductID: uuid.New(), Quantity: 1}}))
}
