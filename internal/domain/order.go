package domain

import "time"

// OrderStatus tracks fulfilment.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem is one product line of an order.
type OrderItem struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

// Order is placed by a user. TotalPrice is computed server-side from product
// prices at placement time.
type Order struct {
	ID               string      `json:"id"`
	OrderItems       []OrderItem `json:"orderItems"`
	ShippingAddress1 string      `json:"shippingAddress1"`
	ShippingAddress2 string      `json:"shippingAddress2"`
	City             string      `json:"city"`
	Zip              string      `json:"zip"`
	Country          string      `json:"country"`
	Phone            string      `json:"phone"`
	Status           OrderStatus `json:"status"`
	TotalPrice       float64     `json:"totalPrice"`
	UserID           string      `json:"user"`
	DateOrdered      time.Time   `json:"dateOrdered"`
}
