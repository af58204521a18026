package commands

import (
	"context"
	"log/slog"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/domain/services"
	"ordering/internal/core/ports"
)

// OrderCreatedMessage is returned to the caller of a successful CreateOrderCommand.
const OrderCreatedMessage = "Order created successfully"

// CreateOrderResponse is what the customer gets back: the tracking id to poll.
type CreateOrderResponse struct {
	TrackingID kernel.UUID
	Status     order.Status
	Message    string
}

// CreateOrderCommandHandler accepts new orders.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(customers, restaurants, uowFactory, domainService, publisher, logger)
//	resp, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrObjectNotFound) {
//	    // unknown customer or restaurant
//	}
type CreateOrderCommandHandler struct {
	customers     ports.CustomerRepository
	restaurants   ports.RestaurantRepository
	uowFactory    ports.OrderUnitOfWorkFactory
	domainService services.OrderDomainService
	publisher     ports.OrderCreatedPaymentRequestPublisher
	logger        *slog.Logger
}

func NewCreateOrderCommandHandler(
	customers ports.CustomerRepository,
	restaurants ports.RestaurantRepository,
	uowFactory ports.OrderUnitOfWorkFactory,
	domainService services.OrderDomainService,
	publisher ports.OrderCreatedPaymentRequestPublisher,
	logger *slog.Logger,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		customers:     customers,
		restaurants:   restaurants,
		uowFactory:    uowFactory,
		domainService: domainService,
		publisher:     publisher,
		logger:        logger.With("component", "create_order_handler"),
	}
}

// Handle validates the order against the customer and the restaurant catalog,
// persists it in PENDING and then asks the payment service to charge it.
// The payment request is sent after commit; a failed send does not undo the order.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (CreateOrderResponse, error) {
	if err := cmd.Validate(); err != nil {
		return CreateOrderResponse{}, err
	}

	if _, err := h.customers.Get(ctx, cmd.CustomerID()); err != nil {
		return CreateOrderResponse{}, err
	}

	productIDs := make([]kernel.UUID, 0, len(cmd.Items()))
	for _, item := range cmd.Items() {
		productIDs = append(productIDs, item.ProductID())
	}

	r, err := h.restaurants.GetWithProducts(ctx, cmd.RestaurantID(), productIDs)
	if err != nil {
		return CreateOrderResponse{}, err
	}

	o, err := newOrder(cmd)
	if err != nil {
		return CreateOrderResponse{}, err
	}

	event, err := h.domainService.ValidateAndInitiateOrder(ctx, o, r)
	if err != nil {
		return CreateOrderResponse{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return CreateOrderResponse{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return CreateOrderResponse{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return CreateOrderResponse{}, err
	}

	h.publisher.Publish(ctx, event)

	h.logger.InfoContext(ctx, "Order is created", "orderId", o.ID().String(), "trackingId", o.TrackingID().String())
	return CreateOrderResponse{
		TrackingID: o.TrackingID(),
		Status:     o.Status(),
		Message:    OrderCreatedMessage,
	}, nil
}

func newOrder(cmd CreateOrderCommand) (*order.Order, error) {
	items := make([]*order.OrderItem, 0, len(cmd.Items()))
	for _, line := range cmd.Items() {
		product, err := order.NewProductReference(line.ProductID())
		if err != nil {
			return nil, err
		}

		item, err := order.NewOrderItem(product, line.Quantity(), line.Price(), line.Subtotal())
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return order.NewOrder(cmd.CustomerID(), cmd.RestaurantID(), cmd.Address(), cmd.Price(), items)
}
