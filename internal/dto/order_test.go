package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waybill-io/waybill/internal/entity"
)

func int64p(v int64) *int64       { return &v }
func strp(v string) *string       { return &v }
func float64p(v float64) *float64 { return &v }

func TestCreateOrderRequestToEntityDefaults(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	order, err := CreateOrderRequest{CustomerID: int64p(42)}.ToEntity(now)
	require.NoError(t, err)

	assert.Equal(t, int64(42), order.CustomerID)
	assert.Equal(t, entity.StatusPending, order.Status)
	assert.Equal(t, now, order.OrderDate)
	assert.Nil(t, order.TrackingNumber)
	assert.Zero(t, order.DiscountAmount)
}

func TestCreateOrderRequestToEntityValidation(t *testing.T) {
	now := time.Now().UTC()

	_, err := CreateOrderRequest{}.ToEntity(now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "customer_id")

	_, err = CreateOrderRequest{CustomerID: int64p(1), Status: strp("teleported")}.ToEntity(now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status")

	_, err = CreateOrderRequest{CustomerID: int64p(1), OrderDate: strp("not-a-date")}.ToEntity(now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid order_date")
}

func TestCreateOrderRequestToEntityExplicitFields(t *testing.T) {
	now := time.Now().UTC()

	order, err := CreateOrderRequest{
		CustomerID:     int64p(7),
		OrderDate:      strp("2026-01-15"),
		Status:         strp("processing"),
		TrackingNumber: strp("TRK-1"),
		DiscountAmount: float64p(3.5),
	}.ToEntity(now)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusProcessing, order.Status)
	assert.Equal(t, 2026, order.OrderDate.Year())
	assert.Equal(t, time.January, order.OrderDate.Month())
	require.NotNil(t, order.TrackingNumber)
	assert.Equal(t, "TRK-1", *order.TrackingNumber)
	assert.Equal(t, 3.5, order.DiscountAmount)
}

func TestCreateItemRequestToEntity(t *testing.T) {
	item, err := CreateItemRequest{ProductID: int64p(9), Quantity: int64p(2), Price: float64p(19.99)}.ToEntity(55)
	require.NoError(t, err)
	assert.Equal(t, int64(55), item.OrderID)
	assert.Equal(t, int64(9), item.ProductID)

	cases := []CreateItemRequest{
		{Quantity: int64p(1), Price: float64p(1)},
		{ProductID: int64p(1), Price: float64p(1)},
		{ProductID: int64p(1), Quantity: int64p(1)},
	}
	for _, c := range cases {
		_, err := c.ToEntity(1)
		assert.Error(t, err)
	}
}

func TestParseOrderDateLayouts(t *testing.T) {
	accepted := []string{
		"2026-03-14T09:30:00Z",
		"2026-03-14T09:30:00.123456Z",
		"2026-03-14T09:30:00",
		"2026-03-14 09:30:00",
		"2026-03-14",
	}
	for _, raw := range accepted {
		parsed, err := ParseOrderDate(raw)
		require.NoError(t, err, "expected %q to parse", raw)
		assert.Equal(t, 2026, parsed.Year())
	}

	_, err := ParseOrderDate("14/03/2026")
	assert.Error(t, err)
}

func TestFromOrdersNeverNil(t *testing.T) {
	assert.NotNil(t, FromOrders(nil))
	assert.Empty(t, FromOrders(nil))
	assert.NotNil(t, FromItems(nil))
}
