package order

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/waybill-io/waybill/internal/dto"
	"github.com/waybill-io/waybill/internal/entity"
	"github.com/waybill-io/waybill/internal/presentation/http/response"
	orderrepo "github.com/waybill-io/waybill/internal/repository/order"
	itemservice "github.com/waybill-io/waybill/internal/service/item"
	service "github.com/waybill-io/waybill/internal/service/order"
	"github.com/waybill-io/waybill/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/waybill-io/waybill/transport/http/order")

// Handler exposes the orders REST surface over HTTP.
type Handler struct {
	orders *service.Service
	items  *itemservice.Service
}

// NewHandler constructs an order Handler.
func NewHandler(orders *service.Service, items *itemservice.Service) *Handler {
	return &Handler{orders: orders, items: items}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.GET("/", h.index)
	e.GET("/health", h.health)

	g := e.Group("/orders")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.getByID)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.remove)
	g.PUT("/:id/ship", h.ship)

	g.POST("/:id/items", h.createItem)
	g.GET("/:id/items", h.listItems)
	g.GET("/:id/items/:item_id", h.getItem)
	g.PUT("/:id/items/:item_id", h.updateItem)
	g.DELETE("/:id/items/:item_id", h.removeItem)
}

func (h *Handler) index(c echo.Context) error {
	return response.New(c).WithData(map[string]any{
		"name":    "Orders Service REST API",
		"version": "1.0",
		"paths":   []string{"/health", "/orders"},
	}).Build()
}

// health performs a trivial read against the store. This is the only endpoint
// that reports infrastructure failure directly to the caller.
func (h *Handler) health(c echo.Context) error {
	count, err := h.orders.Count(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":       "healthy",
		"order_amount": count,
	})
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload dto.CreateOrderRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.create")
	defer span.End()

	order, err := h.orders.Create(ctx, payload)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(dto.FromOrder(order)).Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	filter, err := buildFilter(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	orders, err := h.orders.List(c.Request().Context(), filter)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromOrders(orders)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.orders.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromOrder(order)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return b.WithError(err).Build()
	}

	var patch dto.OrderPatch
	if err := dto.DecodeStrict(c.Request().Body, &patch); err != nil {
		return b.WithError(errorbank.BadRequest(err.Error())).Build()
	}

	order, err := h.orders.Update(c.Request().Context(), id, patch)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromOrder(order)).Build()
}

func (h *Handler) remove(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return b.WithError(err).Build()
	}

	if _, err := h.orders.Delete(c.Request().Context(), id); err != nil {
		return b.WithError(err).Build()
	}

	return b.WithMessage("Order successfully deleted").Build()
}

func (h *Handler) ship(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.ship", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	// A missing order reports 404 before the tracking number is inspected,
	// so an unreadable body is treated as an absent tracking number.
	var payload struct {
		TrackingNumber *string `json:"tracking_number"`
	}
	_ = c.Bind(&payload)

	order, err := h.orders.Ship(ctx, id, payload.TrackingNumber)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromOrder(order)).Build()
}

// buildFilter parses the list query parameters. Exactly one filter applies,
// consulted in priority order; unparsable numeric values fall through to the
// next candidate rather than failing the request.
func buildFilter(c echo.Context) (orderrepo.Filter, error) {
	var filter orderrepo.Filter

	if raw := c.QueryParam("customer_id"); raw != "" {
		if customerID, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.CustomerID = &customerID
			return filter, nil
		}
	}
	if raw := c.QueryParam("order_date"); raw != "" {
		orderDate, err := dto.ParseOrderDate(raw)
		if err != nil {
			return filter, errorbank.BadRequest(err.Error())
		}
		filter.OrderDate = &orderDate
		return filter, nil
	}
	if raw := c.QueryParam("status"); raw != "" {
		status := entity.OrderStatus(strings.ToLower(raw))
		filter.Status = &status
		return filter, nil
	}
	if raw := c.QueryParam("tracking_number"); raw != "" {
		filter.TrackingNumber = &raw
		return filter, nil
	}
	if raw := c.QueryParam("discount_amount"); raw != "" {
		if discount, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.DiscountAmount = &discount
			return filter, nil
		}
	}

	return filter, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errorbank.BadRequest("invalid id", errorbank.WithCause(err))
	}
	return id, nil
}
