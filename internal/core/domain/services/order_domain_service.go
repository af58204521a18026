package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/domain/model/restaurant"
	"ordering/internal/pkg/errs"
)

var (
	// ErrRestaurantIsNotActive is the cause reported when an order targets a closed restaurant.
	ErrRestaurantIsNotActive = errors.New("restaurant is not active")

	// ErrProductIsNotAvailable is the cause reported when an ordered product is
	// missing from the catalog or currently unavailable.
	ErrProductIsNotAvailable = errors.New("product is not available")
)

// OrderDomainService applies the business rules that span an order and the
// restaurant it is placed with, and drives the order through its saga transitions.
//
// The service is stateless: every method operates only on its arguments and
// returns the event produced by the transition, if any. Persistence and
// publishing are left to the caller.
//
// Example usage:
//
//	svc := services.NewOrderDomainService(logger)
//	created, err := svc.ValidateAndInitiateOrder(ctx, o, r)
//	if errors.Is(err, errs.ErrInvalidOrderData) {
//	    // reject the request, nothing is persisted
//	}
type OrderDomainService struct {
	logger *slog.Logger
}

// NewOrderDomainService creates the domain service.
func NewOrderDomainService(logger *slog.Logger) OrderDomainService {
	return OrderDomainService{
		logger: logger.With("component", "order_domain_service"),
	}
}

// ValidateAndInitiateOrder accepts a transient order for a restaurant.
//
// Steps:
//   - the restaurant must be active
//   - every ordered product must exist in the catalog and be available;
//     its catalog name and price are copied onto the order
//   - the order's price invariants are validated
//   - the order is initialized (id, tracking id, saga id, PENDING)
//
// Validation runs before initialization, so a rejected order never receives an identity.
//
// Returns:
//   - OrderCreatedEvent on success
//   - InvalidOrderDataError when the restaurant, a product or a price is unacceptable
func (s OrderDomainService) ValidateAndInitiateOrder(
	ctx context.Context,
	o *order.Order,
	r *restaurant.Restaurant,
) (order.OrderCreatedEvent, error) {
	if err := errors.Join(o.Validate(), r.Validate()); err != nil {
		return order.OrderCreatedEvent{}, err
	}

	if err := s.confirmRestaurant(o, r); err != nil {
		return order.OrderCreatedEvent{}, err
	}

	if err := o.ValidateOrder(); err != nil {
		return order.OrderCreatedEvent{}, err
	}

	event, err := o.InitializeOrder()
	if err != nil {
		return order.OrderCreatedEvent{}, err
	}

	s.logger.InfoContext(ctx, "Order is initiated", "orderId", o.ID().String(), "trackingId", o.TrackingID().String())
	return event, nil
}

// PayOrder marks a pending order as paid.
func (s OrderDomainService) PayOrder(ctx context.Context, o *order.Order) (order.OrderPaidEvent, error) {
	event, err := o.Pay()
	if err != nil {
		return order.OrderPaidEvent{}, err
	}

	s.logger.InfoContext(ctx, "Order is paid", "orderId", o.ID().String())
	return event, nil
}

// ApproveOrder marks a paid order as approved. Approval ends the saga, so no event is returned.
func (s OrderDomainService) ApproveOrder(ctx context.Context, o *order.Order) error {
	if err := o.Approve(); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Order is approved", "orderId", o.ID().String())
	return nil
}

// CancelOrderPayment starts compensation of a paid order. The returned event
// asks the payment service to refund; the order is CANCELLING, not yet CANCELLED.
func (s OrderDomainService) CancelOrderPayment(
	ctx context.Context,
	o *order.Order,
	failureMessages []string,
) (order.OrderCancelledEvent, error) {
	event, err := o.InitCancel(failureMessages)
	if err != nil {
		return order.OrderCancelledEvent{}, err
	}

	s.logger.InfoContext(ctx, "Order payment is cancelling", "orderId", o.ID().String())
	return event, nil
}

// CancelOrder moves the order to its terminal CANCELLED state.
func (s OrderDomainService) CancelOrder(ctx context.Context, o *order.Order, failureMessages []string) error {
	if err := o.Cancel(failureMessages); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Order is cancelled", "orderId", o.ID().String())
	return nil
}

func (s OrderDomainService) confirmRestaurant(o *order.Order, r *restaurant.Restaurant) error {
	if !r.IsActive() {
		return errs.NewInvalidOrderDataError(
			fmt.Sprintf("restaurant %s", r.ID()), ErrRestaurantIsNotActive)
	}

	for n, item := range o.Items() {
		productID := item.Product().ID()
		product, ok := r.FindProduct(productID)
		if !ok || !product.Available() {
			return errs.NewInvalidOrderDataError(
				fmt.Sprintf("item %d (product %s)", n+1, productID), ErrProductIsNotAvailable)
		}

		if err := o.ConfirmProduct(productID, product.Name(), product.Price()); err != nil {
			return err
		}
	}

	return nil
}
