package seeder

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/waybill-io/waybill/internal/database"
	"github.com/waybill-io/waybill/internal/entity"
)

// Module wires the seeder for CLI use.
var Module = fx.Provide(New)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, logger: logger}
}

// Orders seeds example orders with items if the table is empty.
func (s *Seeder) Orders(ctx context.Context) error {
	count, err := s.db.NewSelect().Model((*entity.Order)(nil)).Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		if s.logger != nil {
			s.logger.Info("orders already present; skipping seed", zap.Int("count", count))
		}
		return nil
	}

	now := time.Now().UTC()
	tracking := "1Z999AA10123456784"
	samples := []struct {
		order entity.Order
		items []entity.OrderItem
	}{
		{
			order: entity.Order{CustomerID: 101, OrderDate: now, Status: entity.StatusPending, DiscountAmount: 0},
			items: []entity.OrderItem{
				{ProductID: 5001, Quantity: 2, Price: 19.99},
				{ProductID: 5002, Quantity: 1, Price: 149.50},
			},
		},
		{
			order: entity.Order{CustomerID: 102, OrderDate: now.Add(-48 * time.Hour), Status: entity.StatusShipped, TrackingNumber: &tracking, DiscountAmount: 5.25},
			items: []entity.OrderItem{
				{ProductID: 5003, Quantity: 3, Price: 7.40},
			},
		},
	}

	err = s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, sample := range samples {
			order := sample.order
			if _, err := tx.NewInsert().Model(&order).Exec(ctx); err != nil {
				return err
			}
			for _, item := range sample.items {
				row := item
				row.OrderID = order.ID
				if _, err := tx.NewInsert().Model(&row).Exec(ctx); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("seeded orders", zap.Int("count", len(samples)))
	}
	return nil
}
