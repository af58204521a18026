package sagas

import (
	"context"
	"log/slog"

	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/domain/services"
	"ordering/internal/core/ports"
)

var (
	payRule = transitionRule{
		operation: "pay",
		accepted:  []order.Status{order.Pending},
		applied:   []order.Status{order.Paid, order.Approved, order.Cancelling},
	}

	cancelRule = transitionRule{
		operation: "cancel",
		accepted:  []order.Status{order.Pending, order.Cancelling},
		applied:   []order.Status{order.Cancelled},
	}
)

var _ SagaStep[PaymentResponse] = (*PaymentSaga)(nil)

// PaymentSaga handles payment service responses.
//
//   - COMPLETED: PENDING -> PAID, then the restaurant is asked for approval.
//   - FAILED or CANCELLED: PENDING -> CANCELLED when the charge never happened,
//     CANCELLING -> CANCELLED when the refund is confirmed. Nothing is published.
type PaymentSaga struct {
	step                orderStep
	restaurantPublisher ports.OrderPaidRestaurantRequestPublisher
}

// NewPaymentSaga creates the payment saga step.
func NewPaymentSaga(
	uowFactory ports.OrderUnitOfWorkFactory,
	domain services.OrderDomainService,
	restaurantPublisher ports.OrderPaidRestaurantRequestPublisher,
	logger *slog.Logger,
) *PaymentSaga {
	return &PaymentSaga{
		step: orderStep{
			uowFactory: uowFactory,
			domain:     domain,
			logger:     logger.With("component", "payment_saga"),
		},
		restaurantPublisher: restaurantPublisher,
	}
}

// Process applies a completed payment.
func (s *PaymentSaga) Process(ctx context.Context, response PaymentResponse) (Outcome, error) {
	var paid order.OrderPaidEvent

	outcome, err := s.step.transition(ctx, response.OrderID, response.SagaID, payRule, func(o *order.Order) error {
		var err error
		paid, err = s.step.domain.PayOrder(ctx, o)
		return err
	})
	if err != nil || outcome != Applied {
		return outcome, err
	}

	s.restaurantPublisher.Publish(ctx, paid)
	return Applied, nil
}

// Rollback applies a failed payment or a confirmed refund.
func (s *PaymentSaga) Rollback(ctx context.Context, response PaymentResponse) (Outcome, error) {
	return s.step.transition(ctx, response.OrderID, response.SagaID, cancelRule, func(o *order.Order) error {
		return s.step.domain.CancelOrder(ctx, o, response.FailureMessages)
	})
}
