package sagas

import (
	"context"
	"log/slog"

	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/domain/services"
	"ordering/internal/core/ports"
)

var (
	approveRule = transitionRule{
		operation: "approve",
		accepted:  []order.Status{order.Paid},
		applied:   []order.Status{order.Approved},
	}

	rejectRule = transitionRule{
		operation: "initiate cancel",
		accepted:  []order.Status{order.Paid},
		applied:   []order.Status{order.Cancelling, order.Cancelled},
	}
)

var _ SagaStep[RestaurantApprovalResponse] = (*RestaurantApprovalSaga)(nil)

// RestaurantApprovalSaga handles restaurant approval responses.
//
//   - APPROVED: PAID -> APPROVED. The saga ends.
//   - REJECTED: PAID -> CANCELLING, then the payment service is asked to refund.
//     The order reaches CANCELLED when PaymentSaga receives the refund confirmation.
type RestaurantApprovalSaga struct {
	step             orderStep
	paymentPublisher ports.OrderCancelledPaymentRequestPublisher
}

// NewRestaurantApprovalSaga creates the restaurant approval saga step.
func NewRestaurantApprovalSaga(
	uowFactory ports.OrderUnitOfWorkFactory,
	domain services.OrderDomainService,
	paymentPublisher ports.OrderCancelledPaymentRequestPublisher,
	logger *slog.Logger,
) *RestaurantApprovalSaga {
	return &RestaurantApprovalSaga{
		step: orderStep{
			uowFactory: uowFactory,
			domain:     domain,
			logger:     logger.With("component", "restaurant_approval_saga"),
		},
		paymentPublisher: paymentPublisher,
	}
}

// Process applies an approval.
func (s *RestaurantApprovalSaga) Process(ctx context.Context, response RestaurantApprovalResponse) (Outcome, error) {
	return s.step.transition(ctx, response.OrderID, response.SagaID, approveRule, func(o *order.Order) error {
		return s.step.domain.ApproveOrder(ctx, o)
	})
}

// Rollback applies a rejection and starts the payment compensation.
func (s *RestaurantApprovalSaga) Rollback(ctx context.Context, response RestaurantApprovalResponse) (Outcome, error) {
	var cancelled order.OrderCancelledEvent

	outcome, err := s.step.transition(ctx, response.OrderID, response.SagaID, rejectRule, func(o *order.Order) error {
		var err error
		cancelled, err = s.step.domain.CancelOrderPayment(ctx, o, response.FailureMessages)
		return err
	})
	if err != nil || outcome != Applied {
		return outcome, err
	}

	s.paymentPublisher.Publish(ctx, cancelled)
	return Applied, nil
}
