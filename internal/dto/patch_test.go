package dto

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waybill-io/waybill/internal/entity"
)

func TestOrderPatchApply(t *testing.T) {
	order := &entity.Order{
		ID:         3,
		CustomerID: 10,
		OrderDate:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:     entity.StatusPending,
	}

	patch := OrderPatch{
		CustomerID:     int64p(20),
		Status:         strp("delivered"),
		DiscountAmount: float64p(2.75),
	}
	require.NoError(t, patch.Apply(order))

	assert.Equal(t, int64(20), order.CustomerID)
	assert.Equal(t, entity.StatusDelivered, order.Status)
	assert.Equal(t, 2.75, order.DiscountAmount)
	// untouched fields stay put
	assert.Equal(t, int64(3), order.ID)
	assert.Equal(t, 2026, order.OrderDate.Year())
}

func TestOrderPatchApplyRejectsBadValues(t *testing.T) {
	order := &entity.Order{Status: entity.StatusPending}

	err := OrderPatch{Status: strp("launched")}.Apply(order)
	require.Error(t, err)
	assert.Equal(t, entity.StatusPending, order.Status)

	err = OrderPatch{OrderDate: strp("yesterday")}.Apply(order)
	require.Error(t, err)
}

func TestItemPatchApply(t *testing.T) {
	item := &entity.OrderItem{ID: 1, OrderID: 2, ProductID: 3, Quantity: 4, Price: 5}

	ItemPatch{Quantity: int64p(9), Price: float64p(1.25)}.Apply(item)

	assert.Equal(t, int64(9), item.Quantity)
	assert.Equal(t, 1.25, item.Price)
	assert.Equal(t, int64(3), item.ProductID)
	assert.Equal(t, int64(2), item.OrderID)
}

func TestDecodeStrictRejectsUnknownKeys(t *testing.T) {
	var patch OrderPatch

	err := DecodeStrict(strings.NewReader(`{"status":"shipped","order_id":99}`), &patch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order_id")

	err = DecodeStrict(strings.NewReader(`{"status":"shipped"}`), &patch)
	require.NoError(t, err)
	require.NotNil(t, patch.Status)
	assert.Equal(t, "shipped", *patch.Status)
}
