package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/waybill-io/waybill/internal/config"
	"github.com/waybill-io/waybill/internal/dto"
	"github.com/waybill-io/waybill/internal/entity"
	"github.com/waybill-io/waybill/internal/messaging"
	repo "github.com/waybill-io/waybill/internal/repository/order"
	"github.com/waybill-io/waybill/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/waybill-io/waybill/service/order")

// Event types published on the order lifecycle topic.
const (
	EventOrderCreated = "order.created"
	EventOrderShipped = "order.shipped"
	EventOrderDeleted = "order.deleted"
)

// OrderEvent is emitted when an order is created, shipped, or deleted.
type OrderEvent struct {
	Type           string    `json:"type"`
	OrderID        int64     `json:"order_id"`
	CustomerID     int64     `json:"customer_id"`
	Status         string    `json:"status"`
	TrackingNumber *string   `json:"tracking_number,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Service encapsulates business logic around orders.
type Service struct {
	repo             *repo.Repository
	logger           *zap.Logger
	publisher        messaging.Client
	publishingEnable bool
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Config     config.Config
	Logger     *zap.Logger
	Publisher  messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		repo:             p.Repository,
		logger:           p.Logger,
		publisher:        p.Publisher,
		publishingEnable: p.Config.Messaging.Enabled,
	}
}

// Create validates the payload, applies defaults, and persists a new order.
// Persistence failures surface as validation errors with the cause attached;
// the store has already rolled the write back.
func (s *Service) Create(ctx context.Context, req dto.CreateOrderRequest) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Create")
	defer span.End()

	order, err := req.ToEntity(time.Now().UTC())
	if err != nil {
		return nil, errorbank.BadRequest(err.Error())
	}

	if err := s.repo.Create(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.BadRequest("failed to create order", errorbank.WithCause(err))
	}

	s.publish(ctx, EventOrderCreated, order)
	return order, nil
}

// Get retrieves an order by id.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("Order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}
	return order, nil
}

// List returns the orders matching the filter, all orders when it is empty.
func (s *Service) List(ctx context.Context, filter repo.Filter) ([]*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.List")
	defer span.End()

	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// Update applies a partial update to an existing order.
func (s *Service) Update(ctx context.Context, id int64, patch dto.OrderPatch) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Update", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("Order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	if err := patch.Apply(order); err != nil {
		return nil, errorbank.BadRequest(err.Error())
	}

	if err := s.repo.Update(ctx, order); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("Order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.BadRequest("failed to update order", errorbank.WithCause(err))
	}
	return order, nil
}

// Delete removes an order together with all of its items.
func (s *Service) Delete(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Delete", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("Order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.BadRequest("failed to delete order", errorbank.WithCause(err))
	}

	s.publish(ctx, EventOrderDeleted, order)
	return order, nil
}

// Ship transitions an order to shipped and records its tracking number.
// Absence of the order wins over a missing tracking number.
func (s *Service) Ship(ctx context.Context, id int64, trackingNumber *string) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Ship", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("Order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	if trackingNumber == nil {
		return nil, errorbank.BadRequest("Tracking number is required to ship an order")
	}

	order.Status = entity.StatusShipped
	order.TrackingNumber = trackingNumber

	if err := s.repo.Update(ctx, order); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("Order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.BadRequest("failed to ship order", errorbank.WithCause(err))
	}

	s.publish(ctx, EventOrderShipped, order)
	return order, nil
}

// Count reports how many orders are stored. Errors propagate unwrapped so the
// health endpoint can surface the infrastructure failure directly.
func (s *Service) Count(ctx context.Context) (int, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Count")
	defer span.End()

	return s.repo.Count(ctx)
}

func (s *Service) publish(ctx context.Context, eventType string, order *entity.Order) {
	if !s.publishingEnable || s.publisher == nil {
		return
	}
	event := OrderEvent{
		Type:           eventType,
		OrderID:        order.ID,
		CustomerID:     order.CustomerID,
		Status:         string(order.Status),
		TrackingNumber: order.TrackingNumber,
		OccurredAt:     time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("marshal order event", zap.String("type", eventType), zap.Error(err))
		}
		return
	}
	if err := s.publisher.Publish(ctx, []byte(fmt.Sprintf("order-%d", order.ID)), payload); err != nil {
		if s.logger != nil {
			s.logger.Error("publish order event", zap.String("type", eventType), zap.Error(err))
		}
	}
}
