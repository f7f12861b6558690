package entity

import "github.com/uptrace/bun"

// OrderItem is a line item belonging to exactly one order.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items"`

	ID        int64   `bun:"order_item_id,pk,autoincrement"`
	OrderID   int64   `bun:"order_id,notnull"`
	ProductID int64   `bun:"product_id,notnull"`
	Quantity  int64   `bun:"quantity,notnull"`
	Price     float64 `bun:"price,notnull"`
}
