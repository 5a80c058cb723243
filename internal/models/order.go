package models

import "time"

// Order represents a customer order. Total is in minor currency units.
type Order struct {
	ID           uint        `gorm:"primary_key" json:"id"`
	RestaurantID uint        `gorm:"index" json:"restaurant_id"`
	Status       OrderStatus `gorm:"type:varchar(20)" json:"status"`
	Type         OrderType   `gorm:"column:order_type;type:varchar(20)" json:"order_type"`
	TableNumber  *int        `json:"table_number,omitempty"`
	Total        int64       `json:"total"`
	CreatedAt    time.Time   `gorm:"index" json:"created_at"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
	Items        []OrderItem `gorm:"foreignkey:OrderID" json:"items"`
}

// OrderItem represents a line on an order. UnitPrice is a snapshot taken when the order was placed.
type OrderItem struct {
	ID         uint  `gorm:"primary_key" json:"id"`
	OrderID    uint  `gorm:"index" json:"order_id"`
	MenuItemID uint  `gorm:"index" json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
	UnitPrice  int64 `json:"unit_price"`
}

// LineTotal returns quantity times the snapshot price
func (oi *OrderItem) LineTotal() int64 {
	return int64(oi.Quantity) * oi.UnitPrice
}

// OrderStatus represents the possible states of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPrep      OrderStatus = "prep"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusServed    OrderStatus = "served"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderType represents how an order is fulfilled
type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine_in"
	OrderTypeTakeout  OrderType = "takeout"
	OrderTypeDelivery OrderType = "delivery"
)

// IsCancelled reports whether the order was cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}

// IsCompleted reports whether the kitchen finished the order
func (o *Order) IsCompleted() bool {
	return o.Status == OrderStatusServed || o.Status == OrderStatusReady
}

// IsOpen reports whether the order is still waiting on the kitchen
func (o *Order) IsOpen() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusPrep
}

// ItemCount returns the total quantity across all lines
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}
