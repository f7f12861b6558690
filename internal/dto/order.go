package dto

import (
	"fmt"
	"time"

	"github.com/waybill-io/waybill/internal/entity"
)

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	OrderID        int64   `json:"order_id"`
	CustomerID     int64   `json:"customer_id"`
	OrderDate      string  `json:"order_date"`
	Status         string  `json:"status"`
	TrackingNumber *string `json:"tracking_number"`
	DiscountAmount float64 `json:"discount_amount"`
}

// OrderItemResponse represents a line item as exposed via transport layers.
type OrderItemResponse struct {
	OrderItemID int64   `json:"order_item_id"`
	OrderID     int64   `json:"order_id"`
	ProductID   int64   `json:"product_id"`
	Quantity    int64   `json:"quantity"`
	Price       float64 `json:"price"`
}

// FromOrder maps an order entity onto its response shape.
func FromOrder(order *entity.Order) OrderResponse {
	return OrderResponse{
		OrderID:        order.ID,
		CustomerID:     order.CustomerID,
		OrderDate:      order.OrderDate.Format(time.RFC3339),
		Status:         string(order.Status),
		TrackingNumber: order.TrackingNumber,
		DiscountAmount: order.DiscountAmount,
	}
}

// FromOrders maps a slice of orders; the result is never nil.
func FromOrders(orders []*entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, FromOrder(order))
	}
	return out
}

// FromItem maps an item entity onto its response shape.
func FromItem(item *entity.OrderItem) OrderItemResponse {
	return OrderItemResponse{
		OrderItemID: item.ID,
		OrderID:     item.OrderID,
		ProductID:   item.ProductID,
		Quantity:    item.Quantity,
		Price:       item.Price,
	}
}

// FromItems maps a slice of items; the result is never nil.
func FromItems(items []*entity.OrderItem) []OrderItemResponse {
	out := make([]OrderItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, FromItem(item))
	}
	return out
}

// CreateOrderRequest carries the fields accepted when creating an order.
// customer_id is mandatory; everything else falls back to documented defaults.
type CreateOrderRequest struct {
	CustomerID     *int64   `json:"customer_id"`
	OrderDate      *string  `json:"order_date"`
	Status         *string  `json:"status"`
	TrackingNumber *string  `json:"tracking_number"`
	DiscountAmount *float64 `json:"discount_amount"`
}

// ToEntity validates the request and builds an order with defaults applied.
// Identifiers are never accepted from the client; the store assigns them.
func (r CreateOrderRequest) ToEntity(now time.Time) (*entity.Order, error) {
	if r.CustomerID == nil {
		return nil, fmt.Errorf("missing customer_id")
	}

	order := &entity.Order{
		CustomerID:     *r.CustomerID,
		OrderDate:      now,
		Status:         entity.StatusPending,
		TrackingNumber: r.TrackingNumber,
	}

	if r.OrderDate != nil {
		parsed, err := ParseOrderDate(*r.OrderDate)
		if err != nil {
			return nil, err
		}
		order.OrderDate = parsed
	}
	if r.Status != nil {
		status := entity.OrderStatus(*r.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("invalid status: %s", *r.Status)
		}
		order.Status = status
	}
	if r.DiscountAmount != nil {
		order.DiscountAmount = *r.DiscountAmount
	}

	return order, nil
}

// CreateItemRequest carries the fields accepted when adding an item to an order.
type CreateItemRequest struct {
	ProductID *int64   `json:"product_id"`
	Quantity  *int64   `json:"quantity"`
	Price     *float64 `json:"price"`
}

// ToEntity validates the request and builds an item owned by orderID.
func (r CreateItemRequest) ToEntity(orderID int64) (*entity.OrderItem, error) {
	if r.ProductID == nil {
		return nil, fmt.Errorf("missing product_id")
	}
	if r.Quantity == nil {
		return nil, fmt.Errorf("missing quantity")
	}
	if r.Price == nil {
		return nil, fmt.Errorf("missing price")
	}

	return &entity.OrderItem{
		OrderID:   orderID,
		ProductID: *r.ProductID,
		Quantity:  *r.Quantity,
		Price:     *r.Price,
	}, nil
}

var orderDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseOrderDate parses the ISO timestamp formats accepted on the wire.
func ParseOrderDate(value string) (time.Time, error) {
	for _, layout := range orderDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid order_date: %s", value)
}
