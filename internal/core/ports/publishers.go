package ports

import (
	"context"

	"ordering/internal/core/domain/model/order"
)

// Publishers are fire-and-forget: they hand the message to the transport and
// return. Delivery failures are logged and parked in the outbox by the
// adapter; they never undo the committed transition that produced the event.

// OrderCreatedPaymentRequestPublisher asks the payment service to charge a new order.
type OrderCreatedPaymentRequestPublisher interface {
	Publish(ctx context.Context, event order.OrderCreatedEvent)
}

// OrderCancelledPaymentRequestPublisher asks the payment service to refund a paid order.
type OrderCancelledPaymentRequestPublisher interface {
	Publish(ctx context.Context, event order.OrderCancelledEvent)
}

// OrderPaidRestaurantRequestPublisher asks the restaurant to approve a paid order.
type OrderPaidRestaurantRequestPublisher interface {
	Publish(ctx context.Context, event order.OrderPaidEvent)
}
