package dto

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/waybill-io/waybill/internal/entity"
)

// OrderPatch enumerates the mutable order fields for partial updates.
// Unknown keys (including order_id) are rejected at decode time; the store is
// never relied on to reject them.
type OrderPatch struct {
	CustomerID     *int64   `json:"customer_id"`
	OrderDate      *string  `json:"order_date"`
	Status         *string  `json:"status"`
	TrackingNumber *string  `json:"tracking_number"`
	DiscountAmount *float64 `json:"discount_amount"`
}

// Apply overwrites the supplied fields on the order.
func (p OrderPatch) Apply(order *entity.Order) error {
	if p.CustomerID != nil {
		order.CustomerID = *p.CustomerID
	}
	if p.OrderDate != nil {
		parsed, err := ParseOrderDate(*p.OrderDate)
		if err != nil {
			return err
		}
		order.OrderDate = parsed
	}
	if p.Status != nil {
		status := entity.OrderStatus(*p.Status)
		if !status.Valid() {
			return fmt.Errorf("invalid status: %s", *p.Status)
		}
		order.Status = status
	}
	if p.TrackingNumber != nil {
		order.TrackingNumber = p.TrackingNumber
	}
	if p.DiscountAmount != nil {
		order.DiscountAmount = *p.DiscountAmount
	}
	return nil
}

// ItemPatch enumerates the mutable item fields for partial updates.
type ItemPatch struct {
	ProductID *int64   `json:"product_id"`
	Quantity  *int64   `json:"quantity"`
	Price     *float64 `json:"price"`
}

// Apply overwrites the supplied fields on the item.
func (p ItemPatch) Apply(item *entity.OrderItem) {
	if p.ProductID != nil {
		item.ProductID = *p.ProductID
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
}

// DecodeStrict unmarshals a JSON body into v, failing on unknown keys.
func DecodeStrict(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}
