package order

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"go.uber.org/zap"

	"github.com/waybill-io/waybill/internal/database"
	itemrepo "github.com/waybill-io/waybill/internal/repository/item"
	orderrepo "github.com/waybill-io/waybill/internal/repository/order"
	itemsvc "github.com/waybill-io/waybill/internal/service/item"
	ordersvc "github.com/waybill-io/waybill/internal/service/order"
)

var dbSeq int64

const testSchema = `
CREATE TABLE orders (
    order_id        INTEGER PRIMARY KEY AUTOINCREMENT,
    customer_id     INTEGER NOT NULL,
    order_date      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    status          VARCHAR(32) NOT NULL DEFAULT 'pending',
    tracking_number VARCHAR(255),
    discount_amount REAL NOT NULL DEFAULT 0
);
CREATE TABLE order_items (
    order_item_id INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id      INTEGER NOT NULL REFERENCES orders (order_id) ON DELETE CASCADE,
    product_id    INTEGER NOT NULL,
    quantity      INTEGER NOT NULL,
    price         REAL NOT NULL
);
`

// newTestServer spins up the full HTTP surface over an isolated in-memory
// sqlite database. The single-connection pool keeps the memory DB alive for
// the duration of the test.
func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	dsn := fmt.Sprintf("file:handler_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	sqldb, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	conns := &database.Connections{Writer: db, Reader: db}
	logger := zap.NewNop()

	orders := ordersvc.NewService(ordersvc.Params{
		Repository: orderrepo.NewRepository(conns),
		Logger:     logger,
	})
	items := itemsvc.NewService(itemsvc.Params{
		Repository: itemrepo.NewRepository(conns),
		Logger:     logger,
	})

	e := echo.New()
	Register(e, NewHandler(orders, items))
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body=%s", rec.Body.String())
	return out
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body=%s", rec.Body.String())
	return out
}

func createOrder(t *testing.T, e *echo.Echo, body string) map[string]any {
	t.Helper()
	rec := doJSON(t, e, http.MethodPost, "/orders", body)
	require.Equal(t, http.StatusCreated, rec.Code, "body=%s", rec.Body.String())
	return decodeMap(t, rec)
}

func TestIndex(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(t, e, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeMap(t, rec)
	assert.Equal(t, "Orders Service REST API", body["name"])
	assert.Equal(t, "1.0", body["version"])
}

func TestHealth(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(t, e, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeMap(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(0), body["order_amount"])

	createOrder(t, e, `{"customer_id": 1}`)

	rec = doJSON(t, e, http.MethodGet, "/health", "")
	body = decodeMap(t, rec)
	assert.Equal(t, float64(1), body["order_amount"])
}

func TestCreateOrderDefaults(t *testing.T) {
	e := newTestServer(t)

	body := createOrder(t, e, `{"customer_id": 42}`)

	assert.Equal(t, float64(42), body["customer_id"])
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, float64(0), body["discount_amount"])
	assert.Nil(t, body["tracking_number"])
	assert.Greater(t, body["order_id"].(float64), float64(0))
	assert.NotEmpty(t, body["order_date"])
}

func TestCreateOrderExplicitFields(t *testing.T) {
	e := newTestServer(t)

	body := createOrder(t, e, `{"customer_id": 7, "status": "processing", "order_date": "2026-02-01", "tracking_number": "TRK-9", "discount_amount": 4.5}`)

	assert.Equal(t, "processing", body["status"])
	assert.Equal(t, "TRK-9", body["tracking_number"])
	assert.Equal(t, 4.5, body["discount_amount"])
	assert.Contains(t, body["order_date"], "2026-02-01")
}

func TestCreateOrderValidation(t *testing.T) {
	e := newTestServer(t)

	cases := map[string]string{
		"missing customer_id":  `{"status": "pending"}`,
		"mistyped customer_id": `{"customer_id": "abc"}`,
		"invalid status":       `{"customer_id": 1, "status": "levitating"}`,
		"mistyped discount":    `{"customer_id": 1, "discount_amount": "free"}`,
		"bad order_date":       `{"customer_id": 1, "order_date": "tomorrow"}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			rec := doJSON(t, e, http.MethodPost, "/orders", payload)
			assert.Equal(t, http.StatusBadRequest, rec.Code, "body=%s", rec.Body.String())
		})
	}
}

func TestGetOrder(t *testing.T) {
	e := newTestServer(t)

	created := createOrder(t, e, `{"customer_id": 5}`)
	id := int64(created["order_id"].(float64))

	rec := doJSON(t, e, http.MethodGet, fmt.Sprintf("/orders/%d", id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(5), decodeMap(t, rec)["customer_id"])

	rec = doJSON(t, e, http.MethodGet, "/orders/99999", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Order not found", decodeMap(t, rec)["message"])

	rec = doJSON(t, e, http.MethodGet, "/orders/not-a-number", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOrders(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(t, e, http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeList(t, rec))

	createOrder(t, e, `{"customer_id": 1}`)
	createOrder(t, e, `{"customer_id": 2, "status": "shipped", "tracking_number": "TRK-1"}`)
	createOrder(t, e, `{"customer_id": 2, "discount_amount": 9.99}`)

	rec = doJSON(t, e, http.MethodGet, "/orders", "")
	list := decodeList(t, rec)
	require.Len(t, list, 3)
	// insertion order, ascending ids
	assert.Less(t, list[0]["order_id"].(float64), list[1]["order_id"].(float64))
}

func TestListOrdersFilters(t *testing.T) {
	e := newTestServer(t)

	createOrder(t, e, `{"customer_id": 1}`)
	createOrder(t, e, `{"customer_id": 2, "status": "shipped", "tracking_number": "TRK-1"}`)
	createOrder(t, e, `{"customer_id": 2, "discount_amount": 9.99}`)

	t.Run("by customer", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodGet, "/orders?customer_id=2", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeList(t, rec), 2)
	})

	t.Run("status is lowercased", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodGet, "/orders?status=SHIPPED", "")
		require.Equal(t, http.StatusOK, rec.Code)
		list := decodeList(t, rec)
		require.Len(t, list, 1)
		assert.Equal(t, "shipped", list[0]["status"])
	})

	t.Run("by tracking number", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodGet, "/orders?tracking_number=TRK-1", "")
		assert.Len(t, decodeList(t, rec), 1)
	})

	t.Run("by discount amount", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodGet, "/orders?discount_amount=9.99", "")
		assert.Len(t, decodeList(t, rec), 1)
	})

	t.Run("unparsable customer_id falls through", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodGet, "/orders?customer_id=abc", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeList(t, rec), 3)
	})

	t.Run("unparsable customer_id falls through to status", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodGet, "/orders?customer_id=abc&status=shipped", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeList(t, rec), 1)
	})

	t.Run("malformed order_date is rejected", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodGet, "/orders?order_date=someday", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("customer filter wins over status", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodGet, "/orders?customer_id=1&status=shipped", "")
		list := decodeList(t, rec)
		require.Len(t, list, 1)
		assert.Equal(t, float64(1), list[0]["customer_id"])
	})
}

func TestUpdateOrder(t *testing.T) {
	e := newTestServer(t)

	created := createOrder(t, e, `{"customer_id": 3}`)
	id := int64(created["order_id"].(float64))

	rec := doJSON(t, e, http.MethodPut, fmt.Sprintf("/orders/%d", id), `{"status": "delivered", "discount_amount": 1.5}`)
	require.Equal(t, http.StatusOK, rec.Code, "body=%s", rec.Body.String())
	body := decodeMap(t, rec)
	assert.Equal(t, "delivered", body["status"])
	assert.Equal(t, 1.5, body["discount_amount"])

	t.Run("unknown keys are rejected", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPut, fmt.Sprintf("/orders/%d", id), `{"order_id": 999}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid status is rejected", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPut, fmt.Sprintf("/orders/%d", id), `{"status": "launched"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing order", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPut, "/orders/99999", `{"status": "delivered"}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Order not found", decodeMap(t, rec)["message"])
	})
}

func TestDeleteOrderCascades(t *testing.T) {
	e := newTestServer(t)

	created := createOrder(t, e, `{"customer_id": 4}`)
	id := int64(created["order_id"].(float64))

	rec := doJSON(t, e, http.MethodPost, fmt.Sprintf("/orders/%d/items", id), `{"product_id": 100, "quantity": 1, "price": 10}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, e, http.MethodDelete, fmt.Sprintf("/orders/%d", id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Order successfully deleted", decodeMap(t, rec)["message"])

	rec = doJSON(t, e, http.MethodGet, fmt.Sprintf("/orders/%d", id), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, e, http.MethodGet, fmt.Sprintf("/orders/%d/items", id), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	t.Run("missing order", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodDelete, "/orders/99999", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Order not found", decodeMap(t, rec)["message"])
	})
}

func TestShipOrder(t *testing.T) {
	e := newTestServer(t)

	created := createOrder(t, e, `{"customer_id": 6}`)
	id := int64(created["order_id"].(float64))

	t.Run("requires tracking number", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPut, fmt.Sprintf("/orders/%d/ship", id), `{}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Tracking number is required to ship an order", decodeMap(t, rec)["message"])
	})

	t.Run("missing order wins over missing tracking", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPut, "/orders/99999/ship", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Order not found", decodeMap(t, rec)["message"])
	})

	t.Run("ships with tracking number", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPut, fmt.Sprintf("/orders/%d/ship", id), `{"tracking_number": "1Z999"}`)
		require.Equal(t, http.StatusOK, rec.Code, "body=%s", rec.Body.String())
		body := decodeMap(t, rec)
		assert.Equal(t, "shipped", body["status"])
		assert.Equal(t, "1Z999", body["tracking_number"])
	})
}

func TestOrderItems(t *testing.T) {
	e := newTestServer(t)

	created := createOrder(t, e, `{"customer_id": 8}`)
	orderID := int64(created["order_id"].(float64))

	// An order with zero items and a missing order are indistinguishable on
	// this endpoint; both report 404.
	t.Run("list with no items reports not found", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodGet, fmt.Sprintf("/orders/%d/items", orderID), "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "No items found for this order", decodeMap(t, rec)["message"])
	})

	// Unlike every other missing-order path, item creation reports 400.
	t.Run("create on missing order is a bad request", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/orders/99999/items", `{"product_id": 1, "quantity": 1, "price": 1}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "order does not exist", decodeMap(t, rec)["message"])
	})

	t.Run("create requires all fields", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, fmt.Sprintf("/orders/%d/items", orderID), `{"product_id": 1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	rec := doJSON(t, e, http.MethodPost, fmt.Sprintf("/orders/%d/items", orderID), `{"product_id": 100, "quantity": 2, "price": 19.99}`)
	require.Equal(t, http.StatusCreated, rec.Code, "body=%s", rec.Body.String())
	item := decodeMap(t, rec)
	itemID := int64(item["order_item_id"].(float64))
	assert.Equal(t, float64(orderID), item["order_id"])
	assert.Equal(t, float64(100), item["product_id"])

	t.Run("list returns items", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodGet, fmt.Sprintf("/orders/%d/items", orderID), "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeList(t, rec), 1)
	})

	t.Run("get item", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodGet, fmt.Sprintf("/orders/%d/items/%d", orderID, itemID), "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(2), decodeMap(t, rec)["quantity"])
	})

	t.Run("get item under wrong order", func(t *testing.T) {
		other := createOrder(t, e, `{"customer_id": 9}`)
		otherID := int64(other["order_id"].(float64))
		rec := doJSON(t, e, http.MethodGet, fmt.Sprintf("/orders/%d/items/%d", otherID, itemID), "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Item not found", decodeMap(t, rec)["message"])
	})

	t.Run("update item", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPut, fmt.Sprintf("/orders/%d/items/%d", orderID, itemID), `{"quantity": 5}`)
		require.Equal(t, http.StatusOK, rec.Code, "body=%s", rec.Body.String())
		body := decodeMap(t, rec)
		assert.Equal(t, float64(5), body["quantity"])
		assert.Equal(t, 19.99, body["price"])
	})

	t.Run("update rejects unknown keys", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPut, fmt.Sprintf("/orders/%d/items/%d", orderID, itemID), `{"order_item_id": 12}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("update missing item", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPut, fmt.Sprintf("/orders/%d/items/99999", orderID), `{"quantity": 5}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Item not found in order", decodeMap(t, rec)["message"])
	})

	t.Run("delete item", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodDelete, fmt.Sprintf("/orders/%d/items/%d", orderID, itemID), "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Item successfully deleted", decodeMap(t, rec)["message"])

		rec = doJSON(t, e, http.MethodDelete, fmt.Sprintf("/orders/%d/items/%d", orderID, itemID), "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Item not found in order", decodeMap(t, rec)["message"])
	})
}
