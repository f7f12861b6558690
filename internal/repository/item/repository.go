package item

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/waybill-io/waybill/internal/database"
	"github.com/waybill-io/waybill/internal/entity"
)

var repoTracer = otel.Tracer("github.com/waybill-io/waybill/repository/item")

// ErrNotFound is the sentinel returned when no item matches both keys.
var ErrNotFound = errors.New("item not found")

// ErrOrderMissing is returned when an item targets a nonexistent parent order.
var ErrOrderMissing = errors.New("order does not exist")

// Repository encapsulates read/write access for order items.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// ListByOrder returns every item belonging to the order, empty when none exist.
func (r *Repository) ListByOrder(ctx context.Context, orderID int64) ([]*entity.OrderItem, error) {
	ctx, span := repoTracer.Start(ctx, "ItemRepository.ListByOrder", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	items := make([]*entity.OrderItem, 0)
	err := r.reader.NewSelect().Model(&items).
		Where("order_id = ?", orderID).
		Order("order_item_id ASC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return items, nil
}

// Create persists a new item after confirming the parent order exists inside
// the same transaction. A missing parent yields ErrOrderMissing, matching the
// foreign key the schema also enforces.
func (r *Repository) Create(ctx context.Context, item *entity.OrderItem) error {
	if item == nil {
		return errors.New("nil item")
	}
	item.ID = 0

	ctx, span := repoTracer.Start(ctx, "ItemRepository.Create", trace.WithAttributes(attribute.Int64("order.id", item.OrderID)))
	defer span.End()

	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*entity.Order)(nil)).
			Where("order_id = ?", item.OrderID).
			Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return ErrOrderMissing
		}
		_, err = tx.NewInsert().Model(item).Exec(ctx)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrOrderMissing) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "insert failed")
		}
		return err
	}
	return nil
}

// GetInOrder fetches an item matching both the order and item ids.
func (r *Repository) GetInOrder(ctx context.Context, orderID, itemID int64) (*entity.OrderItem, error) {
	ctx, span := repoTracer.Start(ctx, "ItemRepository.GetInOrder", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.Int64("item.id", itemID),
	))
	defer span.End()

	item := new(entity.OrderItem)
	err := r.reader.NewSelect().Model(item).
		Where("order_id = ?", orderID).
		Where("order_item_id = ?", itemID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return item, nil
}

// Update persists the full item row; ErrNotFound when the row vanished.
func (r *Repository) Update(ctx context.Context, item *entity.OrderItem) error {
	if item == nil {
		return errors.New("nil item")
	}
	ctx, span := repoTracer.Start(ctx, "ItemRepository.Update", trace.WithAttributes(attribute.Int64("item.id", item.ID)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model(item).WherePK().Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}
	return nil
}

// DeleteInOrder removes a single item, returning the deleted row for
// confirmation; the parent order is untouched.
func (r *Repository) DeleteInOrder(ctx context.Context, orderID, itemID int64) (*entity.OrderItem, error) {
	ctx, span := repoTracer.Start(ctx, "ItemRepository.DeleteInOrder", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.Int64("item.id", itemID),
	))
	defer span.End()

	item := new(entity.OrderItem)
	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().Model(item).
			Where("order_id = ?", orderID).
			Where("order_item_id = ?", itemID).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		_, err = tx.NewDelete().Model((*entity.OrderItem)(nil)).
			Where("order_item_id = ?", itemID).
			Exec(ctx)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "delete failed")
		}
		return nil, err
	}
	return item, nil
}
