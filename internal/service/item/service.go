package item

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/waybill-io/waybill/internal/dto"
	"github.com/waybill-io/waybill/internal/entity"
	repo "github.com/waybill-io/waybill/internal/repository/item"
	"github.com/waybill-io/waybill/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/waybill-io/waybill/service/item")

// Service encapsulates business logic around order items.
type Service struct {
	repo   *repo.Repository
	logger *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{repo: p.Repository, logger: p.Logger}
}

// ListInOrder returns all items belonging to an order, empty when none exist.
func (s *Service) ListInOrder(ctx context.Context, orderID int64) ([]*entity.OrderItem, error) {
	ctx, span := serviceTracer.Start(ctx, "ItemService.ListInOrder", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	items, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list items", errorbank.WithCause(err))
	}
	return items, nil
}

// Create validates the payload and adds an item to the order. A missing parent
// order is a validation failure, not a lookup miss.
func (s *Service) Create(ctx context.Context, orderID int64, req dto.CreateItemRequest) (*entity.OrderItem, error) {
	ctx, span := serviceTracer.Start(ctx, "ItemService.Create", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	item, err := req.ToEntity(orderID)
	if err != nil {
		return nil, errorbank.BadRequest(err.Error())
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if errors.Is(err, repo.ErrOrderMissing) {
			return nil, errorbank.BadRequest("order does not exist", errorbank.WithCause(err))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.BadRequest("failed to create item", errorbank.WithCause(err))
	}
	return item, nil
}

// Get retrieves a single item matching both the order and item ids.
func (s *Service) Get(ctx context.Context, orderID, itemID int64) (*entity.OrderItem, error) {
	ctx, span := serviceTracer.Start(ctx, "ItemService.Get", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.Int64("item.id", itemID),
	))
	defer span.End()

	item, err := s.repo.GetInOrder(ctx, orderID, itemID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("Item not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load item", errorbank.WithCause(err))
	}
	return item, nil
}

// Update applies a partial update to an item within an order.
func (s *Service) Update(ctx context.Context, orderID, itemID int64, patch dto.ItemPatch) (*entity.OrderItem, error) {
	ctx, span := serviceTracer.Start(ctx, "ItemService.Update", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.Int64("item.id", itemID),
	))
	defer span.End()

	item, err := s.repo.GetInOrder(ctx, orderID, itemID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("Item not found in order")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load item", errorbank.WithCause(err))
	}

	patch.Apply(item)

	if err := s.repo.Update(ctx, item); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("Item not found in order")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.BadRequest("failed to update item", errorbank.WithCause(err))
	}
	return item, nil
}

// Delete removes a single item from an order.
func (s *Service) Delete(ctx context.Context, orderID, itemID int64) (*entity.OrderItem, error) {
	ctx, span := serviceTracer.Start(ctx, "ItemService.Delete", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.Int64("item.id", itemID),
	))
	defer span.End()

	item, err := s.repo.DeleteInOrder(ctx, orderID, itemID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("Item not found in order")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.BadRequest("failed to delete item", errorbank.WithCause(err))
	}
	return item, nil
}
