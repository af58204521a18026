// Package messaging translates order events to and from the JSON messages
// exchanged with the payment and restaurant services, and publishes the
// outbound ones through a broker.Producer.
package messaging

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	PaymentOrderStatusPending   = "PENDING"
	PaymentOrderStatusCancelled = "CANCELLED"

	RestaurantOrderStatusPaid = "PAID"
)

// PaymentRequestMessage asks the payment service to charge or refund an order.
type PaymentRequestMessage struct {
	ID                 string    `json:"id" validate:"required,uuid"`
	SagaID             string    `json:"sagaId" validate:"required,uuid"`
	CustomerID         string    `json:"customerId" validate:"required,uuid"`
	OrderID            string    `json:"orderId" validate:"required,uuid"`
	Price              string    `json:"price" validate:"required,numeric"`
	CreatedAt          time.Time `json:"createdAt" validate:"required"`
	PaymentOrderStatus string    `json:"paymentOrderStatus" validate:"required,oneof=PENDING CANCELLED"`
}

// RestaurantApprovalRequestMessage asks the restaurant to accept a paid order.
type RestaurantApprovalRequestMessage struct {
	ID                    string           `json:"id" validate:"required,uuid"`
	SagaID                string           `json:"sagaId" validate:"required,uuid"`
	OrderID               string           `json:"orderId" validate:"required,uuid"`
	RestaurantID          string           `json:"restaurantId" validate:"required,uuid"`
	RestaurantOrderStatus string           `json:"restaurantOrderStatus" validate:"required,eq=PAID"`
	Products              []ProductMessage `json:"products" validate:"required,min=1,dive"`
	Price                 string           `json:"price" validate:"required,numeric"`
	CreatedAt             time.Time        `json:"createdAt" validate:"required"`
}

type ProductMessage struct {
	ID       string `json:"id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

// PaymentResponseMessage is the payment service's reply.
type PaymentResponseMessage struct {
	ID              string    `json:"id" validate:"required,uuid"`
	SagaID          string    `json:"sagaId" validate:"required,uuid"`
	PaymentID       string    `json:"paymentId" validate:"required,uuid"`
	CustomerID      string    `json:"customerId" validate:"required,uuid"`
	OrderID         string    `json:"orderId" validate:"required,uuid"`
	Price           string    `json:"price" validate:"required,numeric"`
	CreatedAt       time.Time `json:"createdAt" validate:"required"`
	PaymentStatus   string    `json:"paymentStatus" validate:"required,oneof=COMPLETED CANCELLED FAILED"`
	FailureMessages []string  `json:"failureMessages"`
}

// RestaurantApprovalResponseMessage is the restaurant service's reply.
type RestaurantApprovalResponseMessage struct {
	ID                  string    `json:"id" validate:"required,uuid"`
	SagaID              string    `json:"sagaId" validate:"required,uuid"`
	RestaurantID        string    `json:"restaurantId" validate:"required,uuid"`
	OrderID             string    `json:"orderId" validate:"required,uuid"`
	CreatedAt           time.Time `json:"createdAt" validate:"required"`
	OrderApprovalStatus string    `json:"orderApprovalStatus" validate:"required,oneof=APPROVED REJECTED"`
	FailureMessages     []string  `json:"failureMessages"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode unmarshals data into v and validates the result.
func Decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	return validate.Struct(v)
}
