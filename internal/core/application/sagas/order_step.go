package sagas

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/domain/services"
	"ordering/internal/core/ports"
	"ordering/internal/pkg/errs"
)

// transitionRule describes which order statuses a response may be applied to
// and which statuses mean it has been applied already.
type transitionRule struct {
	operation string
	accepted  []order.Status
	applied   []order.Status
}

// orderStep is the load / check / transition / persist cycle shared by the saga steps.
type orderStep struct {
	uowFactory ports.OrderUnitOfWorkFactory
	domain     services.OrderDomainService
	logger     *slog.Logger
}

// transition applies fn to the order inside one unit of work. fn runs only when
// the response belongs to the order's saga and the order is in an accepted status.
// The follow-up request must be published by the caller after an Applied outcome.
func (s orderStep) transition(
	ctx context.Context,
	orderID kernel.UUID,
	sagaID kernel.UUID,
	rule transitionRule,
	fn func(o *order.Order) error,
) (Outcome, error) {
	logger := s.logger.With("operation", rule.operation, "orderId", orderID.String(), "sagaId", sagaID.String())

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return Rejected, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	o, err := repo.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			logger.WarnContext(ctx, "Order not found, response dropped")
			return OrderNotFound, nil
		}
		return Rejected, err
	}

	if !o.SagaID().IsEqual(sagaID) {
		logger.WarnContext(ctx, "Response belongs to another saga, dropped", "orderSagaId", o.SagaID().String())
		return SagaMismatch, nil
	}

	if slices.Contains(rule.applied, o.Status()) {
		logger.InfoContext(ctx, "Response already applied, dropped", "status", o.Status().String())
		return Duplicate, nil
	}

	if !slices.Contains(rule.accepted, o.Status()) {
		logger.WarnContext(ctx, "Response does not apply to order status, dropped", "status", o.Status().String())
		return Stale, nil
	}

	if err = fn(o); err != nil {
		if errors.Is(err, errs.ErrInvalidStateTransition) {
			logger.WarnContext(ctx, "Order rejected transition, response dropped", "error", err)
			return Stale, nil
		}
		return Rejected, err
	}

	if err = repo.Update(ctx, o); err != nil {
		return Rejected, err
	}

	if err = uow.Commit(ctx); err != nil {
		return Rejected, err
	}

	return Applied, nil
}
