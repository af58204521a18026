package sagas

import (
	"time"

	"ordering/internal/core/domain/model/kernel"
)

// PaymentStatus is the outcome reported by the payment service.
type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentCancelled PaymentStatus = "CANCELLED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// PaymentResponse is the payment service's answer to a payment or payment-cancel request.
type PaymentResponse struct {
	ID              kernel.UUID
	SagaID          kernel.UUID
	PaymentID       kernel.UUID
	CustomerID      kernel.UUID
	OrderID         kernel.UUID
	Price           kernel.Money
	CreatedAt       time.Time
	Status          PaymentStatus
	FailureMessages []string
}

// IsSuccess reports a captured payment.
func (r PaymentResponse) IsSuccess() bool {
	return r.Status == PaymentCompleted
}

// IsFailure reports a refused payment or a confirmed refund.
func (r PaymentResponse) IsFailure() bool {
	return r.Status == PaymentCancelled || r.Status == PaymentFailed
}

// ApprovalStatus is the restaurant's decision.
type ApprovalStatus string

const (
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// RestaurantApprovalResponse is the restaurant service's answer to an approval request.
type RestaurantApprovalResponse struct {
	ID              kernel.UUID
	SagaID          kernel.UUID
	RestaurantID    kernel.UUID
	OrderID         kernel.UUID
	CreatedAt       time.Time
	Status          ApprovalStatus
	FailureMessages []string
}

func (r RestaurantApprovalResponse) IsSuccess() bool {
	return r.Status == ApprovalApproved
}

func (r RestaurantApprovalResponse) IsFailure() bool {
	return r.Status == ApprovalRejected
}
