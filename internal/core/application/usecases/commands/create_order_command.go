// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
package commands

import (
	"errors"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/pkg/errs"
	"ordering/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrItemsAreRequired  = errors.New("at least one item is required")
	ErrQuantityIsInvalid = errors.New("quantity must be greater than 0")
)

// CreateOrderItem is one ordered line as submitted by the customer.
type CreateOrderItem struct {
	productID kernel.UUID
	quantity  int
	price     kernel.Money
	subtotal  kernel.Money
}

// NewCreateOrderItem validates the line. Price consistency against the
// catalog is checked later by the domain service.
func NewCreateOrderItem(productID kernel.UUID, quantity int, price, subtotal kernel.Money) (CreateOrderItem, error) {
	if err := productID.Validate(); err != nil {
		return CreateOrderItem{}, err
	}
	if quantity <= 0 {
		return CreateOrderItem{}, ErrQuantityIsInvalid
	}

	return CreateOrderItem{
		productID: productID,
		quantity:  quantity,
		price:     price,
		subtotal:  subtotal,
	}, nil
}

func (i CreateOrderItem) ProductID() kernel.UUID { return i.productID }
func (i CreateOrderItem) Quantity() int          { return i.quantity }
func (i CreateOrderItem) Price() kernel.Money    { return i.price }
func (i CreateOrderItem) Subtotal() kernel.Money { return i.subtotal }

// CreateOrderCommand represents a customer's request to place an order with a restaurant.
//
// Example:
//
//	item, _ := commands.NewCreateOrderItem(productID, 2, kernel.NewMoneyFromFloat(12.5), kernel.NewMoneyFromFloat(25))
//	cmd, err := commands.NewCreateOrderCommand(customerID, restaurantID, address, kernel.NewMoneyFromFloat(25),
//	    []commands.CreateOrderItem{item})
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	resp, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	customerID   kernel.UUID
	restaurantID kernel.UUID
	address      kernel.StreetAddress
	price        kernel.Money
	items        []CreateOrderItem

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates identifiers, the address and that items are present.
func NewCreateOrderCommand(
	customerID kernel.UUID,
	restaurantID kernel.UUID,
	address kernel.StreetAddress,
	price kernel.Money,
	items []CreateOrderItem,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		price: price,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setCustomerID(customerID),
		cmd.setRestaurantID(restaurantID),
		cmd.setAddress(address),
		cmd.setItems(items),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) CustomerID() kernel.UUID {
	return c.customerID
}

func (c CreateOrderCommand) RestaurantID() kernel.UUID {
	return c.restaurantID
}

func (c CreateOrderCommand) Address() kernel.StreetAddress {
	return c.address
}

// Price is the total the customer expects to pay.
func (c CreateOrderCommand) Price() kernel.Money {
	return c.price
}

func (c CreateOrderCommand) Items() []CreateOrderItem {
	items := make([]CreateOrderItem, len(c.items))
	copy(items, c.items)
	return items
}

func (c *CreateOrderCommand) setCustomerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customer id", err)
	}
	c.customerID = id
	return nil
}

func (c *CreateOrderCommand) setRestaurantID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("restaurant id", err)
	}
	c.restaurantID = id
	return nil
}

func (c *CreateOrderCommand) setAddress(address kernel.StreetAddress) error {
	if err := address.Validate(); err != nil {
		return err
	}
	c.address = address
	return nil
}

func (c *CreateOrderCommand) setItems(items []CreateOrderItem) error {
	if len(items) == 0 {
		return ErrItemsAreRequired
	}
	c.items = make([]CreateOrderItem, len(items))
	copy(c.items, items)
	return nil
}
