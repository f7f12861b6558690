package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// OrderStatus is the canonical order state enumeration. The same set of values
// backs request validation and the CHECK constraint in db/migrations/sql.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusReturned   OrderStatus = "returned"
	StatusRefunded   OrderStatus = "refunded"
)

// Statuses returns every accepted order status.
func Statuses() []OrderStatus {
	return []OrderStatus{
		StatusPending,
		StatusProcessing,
		StatusShipped,
		StatusDelivered,
		StatusCancelled,
		StatusReturned,
		StatusRefunded,
	}
}

// Valid reports whether the status is one of the enumerated values.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered,
		StatusCancelled, StatusReturned, StatusRefunded:
		return true
	}
	return false
}

// Order represents a purchase order stored in the relational database.
// It owns its items; deleting an order removes them as well.
type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID             int64       `bun:"order_id,pk,autoincrement"`
	CustomerID     int64       `bun:"customer_id,notnull"`
	OrderDate      time.Time   `bun:"order_date,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	Status         OrderStatus `bun:"status"`
	TrackingNumber *string     `bun:"tracking_number"`
	DiscountAmount float64     `bun:"discount_amount"`

	Items []*OrderItem `bun:"rel:has-many,join:order_id=order_id"`
}
