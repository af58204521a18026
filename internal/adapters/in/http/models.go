package http

import (
	"github.com/shopspring/decimal"
)

// CreateOrderRequest is the body of POST /api/v1/orders.
type CreateOrderRequest struct {
	CustomerID   string             `json:"customerId" validate:"required,uuid"`
	RestaurantID string             `json:"restaurantId" validate:"required,uuid"`
	Address      AddressRequest     `json:"address" validate:"required"`
	Price        decimal.Decimal    `json:"price"`
	Items        []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type AddressRequest struct {
	Street     string `json:"street" validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=10"`
	City       string `json:"city" validate:"required,max=50"`
}

type OrderItemRequest struct {
	ProductID string          `json:"productId" validate:"required,uuid"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CreateOrderResponse struct {
	OrderTrackingID string `json:"orderTrackingId"`
	OrderStatus     string `json:"orderStatus"`
	Message         string `json:"message"`
}

type TrackOrderResponse struct {
	OrderTrackingID string   `json:"orderTrackingId"`
	OrderStatus     string   `json:"orderStatus"`
	FailureMessages []string `json:"failureMessages"`
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
