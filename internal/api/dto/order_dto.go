package dto

import (
	"github.com/spec-kit/eshop-service/internal/domain"
	"github.com/spec-kit/eshop-service/internal/service"
)

// OrderItemRequest is one order line.
type OrderItemRequest struct {
	Product  string `json:"product" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderRequest places an order for the caller. Totals and ownership
// are derived server-side.
type CreateOrderRequest struct {
	OrderItems       []OrderItemRequest `json:"orderItems" validate:"required,min=1,dive"`
	ShippingAddress1 string             `json:"shippingAddress1" validate:"required"`
	ShippingAddress2 string             `json:"shippingAddress2"`
	City             string             `json:"city" validate:"required"`
	Zip              string             `json:"zip" validate:"required"`
	Country          string             `json:"country" validate:"required"`
	Phone            string             `json:"phone" validate:"required"`
}

// UpdateOrderStatusRequest changes an order's status.
type UpdateOrderStatusRequest struct {
	Status domain.OrderStatus `json:"status" validate:"required,oneof=Pending Shipped Delivered Cancelled"`
}

// TotalSalesResponse reports revenue across all orders.
type TotalSalesResponse struct {
	TotalSales float64 `json:"totalsales"`
}

func (r CreateOrderRequest) ToInput() service.OrderInput {
	items := make([]domain.OrderItem, 0, len(r.OrderItems))
	for _, item := range r.OrderItems {
		items = append(items, domain.OrderItem{ProductID: item.Product, Quantity: item.Quantity})
	}
	return service.OrderInput{
		Items:            items,
		ShippingAddress1: r.ShippingAddress1,
		ShippingAddress2: r.ShippingAddress2,
		City:             r.City,
		Zip:              r.Zip,
		Country:          r.Country,
		Phone:            r.Phone,
	}
}
