package order

import (
	"time"
)

// Event is a fact produced by a successful order transition. Events are only
// returned by Order methods; each carries a snapshot of the order taken right
// after the transition and the time it happened.
type Event interface {
	Order() *Order
	CreatedAt() time.Time
	Name() string
}

type orderEvent struct {
	order     *Order
	createdAt time.Time
}

func newOrderEvent(o *Order) orderEvent {
	return orderEvent{
		order:     o.clone(),
		createdAt: time.Now().UTC(),
	}
}

// Order returns the snapshot. Later transitions of the live aggregate do not affect it.
func (e orderEvent) Order() *Order {
	return e.order
}

func (e orderEvent) CreatedAt() time.Time {
	return e.createdAt
}

// OrderCreatedEvent is returned by InitializeOrder. It triggers the payment request.
type OrderCreatedEvent struct {
	orderEvent
}

func (OrderCreatedEvent) Name() string {
	return "OrderCreatedEvent"
}

// OrderPaidEvent is returned by Pay. It triggers the restaurant approval request.
type OrderPaidEvent struct {
	orderEvent
}

func (OrderPaidEvent) Name() string {
	return "OrderPaidEvent"
}

// OrderCancelledEvent is returned by InitCancel. It means "compensate the payment",
// not "the order is cancelled"; the order reaches CANCELLED only once the
// payment service confirms.
type OrderCancelledEvent struct {
	orderEvent
}

func (OrderCancelledEvent) Name() string {
	return "OrderCancelledEvent"
}
