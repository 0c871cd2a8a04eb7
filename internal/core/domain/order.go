package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const OrderStatusCreated OrderStatus = "created"

// ShippingInfo is captured verbatim on the order row at checkout time.
type ShippingInfo struct {
	FullName string
	Phone    string
	Email    string
	Address  string
	City     string
	Comment  string
}

// Order is immutable once created. TotalPrice and every item's PricePerUnit
// are frozen at checkout; later catalog price changes must not affect them.
type Order struct {
	ID         string
	UserID     int64
	Status     OrderStatus
	TotalPrice decimal.Decimal
	Shipping   ShippingInfo
	CreatedAt  time.Time
	Items      []OrderItem
}

// OrderItem is a frozen copy of a cart line's configuration plus the unit
// price computed when the order was created.
type OrderItem struct {
	ID      int64
	OrderID string
	Selection
	Quantity     int
	PricePerUnit decimal.Decimal
}
