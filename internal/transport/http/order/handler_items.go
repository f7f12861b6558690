package order

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/waybill-io/waybill/internal/dto"
	"github.com/waybill-io/waybill/internal/presentation/http/response"
	"github.com/waybill-io/waybill/pkg/errorbank"
)

func (h *Handler) createItem(c echo.Context) error {
	b := response.New(c)

	orderID, err := parseID(c.Param("id"))
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload dto.CreateItemRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.createItem", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	item, err := h.items.Create(ctx, orderID, payload)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(dto.FromItem(item)).Build()
}

// listItems reports 404 when the order has no items; callers cannot tell an
// absent order from an empty one on this endpoint.
func (h *Handler) listItems(c echo.Context) error {
	b := response.New(c)

	orderID, err := parseID(c.Param("id"))
	if err != nil {
		return b.WithError(err).Build()
	}

	items, err := h.items.ListInOrder(c.Request().Context(), orderID)
	if err != nil {
		return b.WithError(err).Build()
	}
	if len(items) == 0 {
		return b.WithError(errorbank.NotFound("No items found for this order")).Build()
	}

	return b.WithData(dto.FromItems(items)).Build()
}

func (h *Handler) getItem(c echo.Context) error {
	b := response.New(c)

	orderID, err := parseID(c.Param("id"))
	if err != nil {
		return b.WithError(err).Build()
	}
	itemID, err := parseID(c.Param("item_id"))
	if err != nil {
		return b.WithError(err).Build()
	}

	item, err := h.items.Get(c.Request().Context(), orderID, itemID)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromItem(item)).Build()
}

func (h *Handler) updateItem(c echo.Context) error {
	b := response.New(c)

	orderID, err := parseID(c.Param("id"))
	if err != nil {
		return b.WithError(err).Build()
	}
	itemID, err := parseID(c.Param("item_id"))
	if err != nil {
		return b.WithError(err).Build()
	}

	var patch dto.ItemPatch
	if err := dto.DecodeStrict(c.Request().Body, &patch); err != nil {
		return b.WithError(errorbank.BadRequest(err.Error())).Build()
	}

	item, err := h.items.Update(c.Request().Context(), orderID, itemID, patch)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromItem(item)).Build()
}

func (h *Handler) removeItem(c echo.Context) error {
	b := response.New(c)

	orderID, err := parseID(c.Param("id"))
	if err != nil {
		return b.WithError(err).Build()
	}
	itemID, err := parseID(c.Param("item_id"))
	if err != nil {
		return b.WithError(err).Build()
	}

	if _, err := h.items.Delete(c.Request().Context(), orderID, itemID); err != nil {
		return b.WithError(err).Build()
	}

	return b.WithMessage("Item successfully deleted").Build()
}
