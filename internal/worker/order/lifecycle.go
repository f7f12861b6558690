package order

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/waybill-io/waybill/internal/config"
	"github.com/waybill-io/waybill/internal/messaging"
	ordersvc "github.com/waybill-io/waybill/internal/service/order"
	"github.com/waybill-io/waybill/internal/worker"
)

var workerTracer = otel.Tracer("github.com/waybill-io/waybill/worker/order")

// Module registers order-related worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewLifecycleHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewLifecycleHandler sets up a worker handler that logs order lifecycle events.
func NewLifecycleHandler(logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.orders.process", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var event ordersvc.OrderEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode order event", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}

		span.SetAttributes(attribute.String("order.event", event.Type))

		fields := []zap.Field{
			zap.String("type", event.Type),
			zap.Int64("order_id", event.OrderID),
			zap.Int64("customer_id", event.CustomerID),
			zap.String("status", event.Status),
		}
		if event.TrackingNumber != nil {
			fields = append(fields, zap.String("tracking_number", *event.TrackingNumber))
		}
		logger.Info("order event processed", fields...)

		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
