package order

import (
	"errors"
	"fmt"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrOrderHasNoItems is returned by NewOrder for an empty item list.
	ErrOrderHasNoItems = errs.NewValueIsRequiredError("items")
)

// Order is the aggregate root of the order service. It owns the lifecycle of a
// customer's order from creation through payment and restaurant approval, or
// through cancellation and payment compensation.
//
// Order follows these invariants:
//   - id, trackingID and sagaID are unset until InitializeOrder runs exactly once
//   - price must be strictly greater than zero
//   - the sum of item subtotals equals the price
//   - each item's price matches its product's catalog price, is positive, and
//     price × quantity equals its subtotal
//   - item ids are assigned sequentially at initialization
//   - status changes only through the transition methods below
//
// The trackingID is what external callers poll with; the id never leaves the service.
// The sagaID correlates every request/response pair of this order's saga.
type Order struct {
	// id is the internal identity, assigned at initialization
	id kernel.UUID

	// customerID identifies the ordering customer
	customerID kernel.UUID

	// restaurantID identifies the restaurant whose catalog the items come from
	restaurantID kernel.UUID

	// deliveryAddress is where the order goes
	deliveryAddress kernel.StreetAddress

	// price is the total the customer agreed to pay
	price kernel.Money

	// items are the ordered lines, in command order
	items []*OrderItem

	// trackingID is the customer-facing identifier, assigned at initialization
	trackingID kernel.UUID

	// sagaID correlates outbound requests with inbound responses
	sagaID kernel.UUID

	// status is the current lifecycle state
	status Status

	// failureMessages accumulate across cancellation attempts
	failureMessages []string

	// version is the optimistic concurrency token maintained by persistence
	version int64

	// isConstructed ensures the order was created via NewOrder or RestoreOrder
	isConstructed bool
}

// NewOrder creates a transient order from a create-order request. The order
// has no identity and no status until the domain service validates and
// initializes it.
//
// Parameters:
//   - customerID: ordering customer
//   - restaurantID: restaurant the items belong to
//   - address: delivery address
//   - price: declared total; checked against the items by ValidateOrder
//   - items: at least one item
//
// Example:
//
//	product, _ := order.NewProductReference(productID)
//	item, _ := order.NewOrderItem(product, 2, kernel.NewMoneyFromFloat(5), kernel.NewMoneyFromFloat(10))
//	o, err := order.NewOrder(customerID, restaurantID, address, kernel.NewMoneyFromFloat(10), []*order.OrderItem{item})
//	if err != nil {
//	    // Handle validation error
//	}
func NewOrder(
	customerID kernel.UUID,
	restaurantID kernel.UUID,
	address kernel.StreetAddress,
	price kernel.Money,
	items []*OrderItem,
) (*Order, error) {
	o := &Order{
		price:         price,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setCustomerID(customerID),
		o.setRestaurantID(restaurantID),
		o.setDeliveryAddress(address),
		o.setItems(items),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreParams carries the persisted state of an order.
type RestoreParams struct {
	ID              kernel.UUID
	CustomerID      kernel.UUID
	RestaurantID    kernel.UUID
	DeliveryAddress kernel.StreetAddress
	Price           kernel.Money
	Items           []*OrderItem
	TrackingID      kernel.UUID
	SagaID          kernel.UUID
	Status          Status
	FailureMessages []string
	Version         int64
}

// RestoreOrder rebuilds an initialized order from storage. It is meant for
// repositories only; business code creates orders with NewOrder.
func RestoreOrder(p RestoreParams) (*Order, error) {
	o, err := NewOrder(p.CustomerID, p.RestaurantID, p.DeliveryAddress, p.Price, p.Items)
	if err != nil {
		return nil, err
	}

	if err = errors.Join(
		p.ID.Validate(),
		p.TrackingID.Validate(),
		p.SagaID.Validate(),
		p.Status.Validate(),
	); err != nil {
		return nil, err
	}

	o.id = p.ID
	o.trackingID = p.TrackingID
	o.sagaID = p.SagaID
	o.status = p.Status
	o.version = p.Version
	o.updateFailureMessages(p.FailureMessages)
	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// IsEqual compares two orders by their identities.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the internal identity. It is zero before initialization.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// CustomerID returns the ordering customer's id.
func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

// RestaurantID returns the restaurant's id.
func (o *Order) RestaurantID() kernel.UUID {
	return o.restaurantID
}

// DeliveryAddress returns where the order is delivered.
func (o *Order) DeliveryAddress() kernel.StreetAddress {
	return o.deliveryAddress
}

// Price returns the declared order total.
func (o *Order) Price() kernel.Money {
	return o.price
}

// Items returns the order lines. The slice is a copy; the items are shared.
func (o *Order) Items() []*OrderItem {
	items := make([]*OrderItem, len(o.items))
	copy(items, o.items)
	return items
}

// TrackingID returns the customer-facing identifier. It is zero before initialization.
func (o *Order) TrackingID() kernel.UUID {
	return o.trackingID
}

// SagaID returns the correlation id of the order's saga.
func (o *Order) SagaID() kernel.UUID {
	return o.sagaID
}

// Status returns the current lifecycle state.
func (o *Order) Status() Status {
	return o.status
}

// FailureMessages returns a copy of the accumulated failure reasons.
func (o *Order) FailureMessages() []string {
	msgs := make([]string, len(o.failureMessages))
	copy(msgs, o.failureMessages)
	return msgs
}

// Version returns the optimistic concurrency token the order was loaded with.
func (o *Order) Version() int64 {
	return o.version
}

// ConfirmProduct copies catalog name and price into every item referencing productID.
// It is only allowed before initialization.
//
// Returns:
//   - nil on success
//   - InvalidStateTransitionError if the order is already initialized
func (o *Order) ConfirmProduct(productID kernel.UUID, name string, price kernel.Money) error {
	if o.status != Unknown {
		return errs.NewInvalidStateTransitionError("confirm product", o.status.String())
	}

	for _, item := range o.items {
		if item.product.ID().IsEqual(productID) {
			item.product = item.product.withCatalogInfo(name, price)
		}
	}
	return nil
}

// ValidateOrder checks the creation invariants of a transient order.
//
// The checks run in this order:
//  1. the order is not initialized yet (InvalidStateTransitionError otherwise)
//  2. price is strictly positive
//  3. each item's price equals its product price, is positive, and times
//     quantity equals its subtotal; the error names the offending item
//  4. the subtotals, summed with Money.Add, equal the price
//
// Violations of 2-4 return InvalidOrderDataError.
//
// Example:
//
//	if err := o.ValidateOrder(); err != nil {
//	    if errors.Is(err, errs.ErrInvalidOrderData) {
//	        // reject the create-order request
//	    }
//	}
func (o *Order) ValidateOrder() error {
	if !o.id.IsZero() || o.status != Unknown {
		return errs.NewInvalidStateTransitionError("validate", o.status.String())
	}

	if !o.price.IsGreaterThanZero() {
		return errs.NewInvalidOrderDataError("price", fmt.Errorf("%s is not greater than 0", o.price))
	}

	sum := kernel.ZeroMoney
	for n, item := range o.items {
		if err := item.validatePrice(); err != nil {
			return errs.NewInvalidOrderDataError(
				fmt.Sprintf("item %d (product %s)", n+1, item.product.ID()), err)
		}
		sum = sum.Add(item.subtotal)
	}

	if !sum.IsEqual(o.price) {
		return errs.NewInvalidOrderDataError(
			"price", fmt.Errorf("total %s does not match sum of item subtotals %s", o.price, sum))
	}

	return nil
}

// InitializeOrder assigns identity, tracking id and saga id, moves the order
// to PENDING and numbers the items 1..n. It runs exactly once per order.
//
// Returns:
//   - OrderCreatedEvent carrying a snapshot of the initialized order
//   - InvalidStateTransitionError if the order was already initialized
func (o *Order) InitializeOrder() (OrderCreatedEvent, error) {
	if !o.id.IsZero() {
		return OrderCreatedEvent{}, errs.NewInvalidStateTransitionError("initialize", o.status.String())
	}

	newStatus, err := o.status.Initialize()
	if err != nil {
		return OrderCreatedEvent{}, err
	}

	o.id = kernel.NewUUID()
	o.trackingID = kernel.NewUUID()
	o.sagaID = kernel.NewUUID()
	o.status = newStatus
	for n, item := range o.items {
		item.initialize(o.id, int64(n+1))
	}

	return OrderCreatedEvent{newOrderEvent(o)}, nil
}

// Pay records a successful payment: PENDING -> PAID.
//
// Returns:
//   - OrderPaidEvent carrying a snapshot of the paid order
//   - InvalidStateTransitionError if the order is not PENDING
func (o *Order) Pay() (OrderPaidEvent, error) {
	newStatus, err := o.status.Pay()
	if err != nil {
		return OrderPaidEvent{}, err
	}

	o.status = newStatus
	return OrderPaidEvent{newOrderEvent(o)}, nil
}

// Approve records the restaurant's approval: PAID -> APPROVED. No event is
// produced; approval is the end of the saga.
func (o *Order) Approve() error {
	newStatus, err := o.status.Approve()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// InitCancel starts compensating a paid order: PAID -> CANCELLING.
// failureMessages are merged into the existing ones.
//
// Returns:
//   - OrderCancelledEvent asking for the payment to be cancelled
//   - InvalidStateTransitionError if the order is not PAID
func (o *Order) InitCancel(failureMessages []string) (OrderCancelledEvent, error) {
	newStatus, err := o.status.InitCancel()
	if err != nil {
		return OrderCancelledEvent{}, err
	}

	o.status = newStatus
	o.updateFailureMessages(failureMessages)
	return OrderCancelledEvent{newOrderEvent(o)}, nil
}

// Cancel moves a PENDING or CANCELLING order to CANCELLED and merges failureMessages.
func (o *Order) Cancel(failureMessages []string) error {
	newStatus, err := o.status.Cancel()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.updateFailureMessages(failureMessages)
	return nil
}

// updateFailureMessages appends non-empty messages. Duplicates are kept.
func (o *Order) updateFailureMessages(msgs []string) {
	for _, msg := range msgs {
		if msg != "" {
			o.failureMessages = append(o.failureMessages, msg)
		}
	}
}

func (o *Order) clone() *Order {
	c := *o
	c.items = make([]*OrderItem, len(o.items))
	for n, item := range o.items {
		c.items[n] = item.clone()
	}
	c.failureMessages = make([]string, len(o.failureMessages))
	copy(c.failureMessages, o.failureMessages)
	return &c
}

func (o *Order) setCustomerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customerID", err)
	}
	o.customerID = id
	return nil
}

func (o *Order) setRestaurantID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("restaurantID", err)
	}
	o.restaurantID = id
	return nil
}

func (o *Order) setDeliveryAddress(address kernel.StreetAddress) error {
	if err := address.Validate(); err != nil {
		return err
	}
	o.deliveryAddress = address
	return nil
}

func (o *Order) setItems(items []*OrderItem) error {
	if len(items) == 0 {
		return ErrOrderHasNoItems
	}
	for n, item := range items {
		if item == nil {
			return errs.NewValueIsRequiredError(fmt.Sprintf("item %d", n+1))
		}
	}
	o.items = make([]*OrderItem, len(items))
	copy(o.items, items)
	return nil
}
