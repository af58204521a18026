package messaging

import (
	"errors"
	"fmt"

	"ordering/internal/core/application/sagas"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/pkg/errs"
)

// PaymentRequestFromCreated maps a new order to a charge request.
func PaymentRequestFromCreated(event order.OrderCreatedEvent) PaymentRequestMessage {
	return paymentRequest(event.Order(), event, PaymentOrderStatusPending)
}

// PaymentRequestFromCancelled maps a cancelling order to a refund request.
func PaymentRequestFromCancelled(event order.OrderCancelledEvent) PaymentRequestMessage {
	return paymentRequest(event.Order(), event, PaymentOrderStatusCancelled)
}

func paymentRequest(o *order.Order, event order.Event, status string) PaymentRequestMessage {
	return PaymentRequestMessage{
		ID:                 kernel.NewUUID().String(),
		SagaID:             o.SagaID().String(),
		CustomerID:         o.CustomerID().String(),
		OrderID:            o.ID().String(),
		Price:              o.Price().String(),
		CreatedAt:          event.CreatedAt(),
		PaymentOrderStatus: status,
	}
}

// RestaurantApprovalRequestFromPaid maps a paid order to an approval request.
func RestaurantApprovalRequestFromPaid(event order.OrderPaidEvent) RestaurantApprovalRequestMessage {
	o := event.Order()

	products := make([]ProductMessage, 0, len(o.Items()))
	for _, item := range o.Items() {
		products = append(products, ProductMessage{
			ID:       item.Product().ID().String(),
			Quantity: item.Quantity(),
		})
	}

	return RestaurantApprovalRequestMessage{
		ID:                    kernel.NewUUID().String(),
		SagaID:                o.SagaID().String(),
		OrderID:               o.ID().String(),
		RestaurantID:          o.RestaurantID().String(),
		RestaurantOrderStatus: RestaurantOrderStatusPaid,
		Products:              products,
		Price:                 o.Price().String(),
		CreatedAt:             event.CreatedAt(),
	}
}

// PaymentResponseFromMessage maps a decoded reply to the saga's response type.
func PaymentResponseFromMessage(m PaymentResponseMessage) (sagas.PaymentResponse, error) {
	ids, err := parseUUIDs(map[string]string{
		"id":         m.ID,
		"sagaId":     m.SagaID,
		"paymentId":  m.PaymentID,
		"customerId": m.CustomerID,
		"orderId":    m.OrderID,
	})
	price, priceErr := kernel.NewMoneyFromString(m.Price)
	if err = errors.Join(err, priceErr); err != nil {
		return sagas.PaymentResponse{}, err
	}

	return sagas.PaymentResponse{
		ID:              ids["id"],
		SagaID:          ids["sagaId"],
		PaymentID:       ids["paymentId"],
		CustomerID:      ids["customerId"],
		OrderID:         ids["orderId"],
		Price:           price,
		CreatedAt:       m.CreatedAt,
		Status:          sagas.PaymentStatus(m.PaymentStatus),
		FailureMessages: m.FailureMessages,
	}, nil
}

// RestaurantApprovalResponseFromMessage maps a decoded reply to the saga's response type.
func RestaurantApprovalResponseFromMessage(m RestaurantApprovalResponseMessage) (sagas.RestaurantApprovalResponse, error) {
	ids, err := parseUUIDs(map[string]string{
		"id":           m.ID,
		"sagaId":       m.SagaID,
		"restaurantId": m.RestaurantID,
		"orderId":      m.OrderID,
	})
	if err != nil {
		return sagas.RestaurantApprovalResponse{}, err
	}

	return sagas.RestaurantApprovalResponse{
		ID:              ids["id"],
		SagaID:          ids["sagaId"],
		RestaurantID:    ids["restaurantId"],
		OrderID:         ids["orderId"],
		CreatedAt:       m.CreatedAt,
		Status:          sagas.ApprovalStatus(m.OrderApprovalStatus),
		FailureMessages: m.FailureMessages,
	}, nil
}

func parseUUIDs(raw map[string]string) (map[string]kernel.UUID, error) {
	ids := make(map[string]kernel.UUID, len(raw))
	var errList []error
	for name, value := range raw {
		id, err := kernel.UUIDFromString(value)
		if err != nil {
			errList = append(errList, errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%q: %w", value, err)))
			continue
		}
		ids[name] = id
	}
	return ids, errors.Join(errList...)
}
