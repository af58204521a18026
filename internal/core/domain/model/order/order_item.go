package order

import (
	"errors"
	"fmt"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/pkg/errs"
)

// OrderItem is a line of an order: a product, a quantity, the unit price the
// customer saw and the resulting subtotal. It is owned by exactly one Order,
// which assigns its sequential id (1, 2, 3, ...) at initialization.
type OrderItem struct {
	id       int64
	orderID  kernel.UUID
	product  Product
	quantity int
	price    kernel.Money
	subtotal kernel.Money
}

// NewOrderItem creates a transient item. Price consistency is not checked here;
// that is part of Order.ValidateOrder so it can name the offending item.
func NewOrderItem(product Product, quantity int, price, subtotal kernel.Money) (*OrderItem, error) {
	if err := product.ID().Validate(); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is not greater than 0", quantity))
	}

	return &OrderItem{
		product:  product,
		quantity: quantity,
		price:    price,
		subtotal: subtotal,
	}, nil
}

// RestoreOrderItem rebuilds a persisted item including its identity.
func RestoreOrderItem(
	id int64,
	orderID kernel.UUID,
	product Product,
	quantity int,
	price, subtotal kernel.Money,
) (*OrderItem, error) {
	item, err := NewOrderItem(product, quantity, price, subtotal)
	if err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("order item id", fmt.Errorf("%d is not greater than 0", id))
	}
	if err = orderID.Validate(); err != nil {
		return nil, err
	}

	item.id = id
	item.orderID = orderID
	return item, nil
}

func (i *OrderItem) ID() int64 {
	return i.id
}

func (i *OrderItem) OrderID() kernel.UUID {
	return i.orderID
}

func (i *OrderItem) Product() Product {
	return i.product
}

func (i *OrderItem) Quantity() int {
	return i.quantity
}

func (i *OrderItem) Price() kernel.Money {
	return i.price
}

func (i *OrderItem) Subtotal() kernel.Money {
	return i.subtotal
}

func (i *OrderItem) initialize(orderID kernel.UUID, id int64) {
	i.orderID = orderID
	i.id = id
}

// validatePrice checks item.price == product.price, item.price > 0 and
// item.price × quantity == subtotal.
func (i *OrderItem) validatePrice() error {
	var problems []error

	if !i.price.IsEqual(i.product.Price()) {
		problems = append(problems, fmt.Errorf("price %s does not match product price %s", i.price, i.product.Price()))
	}
	if !i.price.IsGreaterThanZero() {
		problems = append(problems, fmt.Errorf("price %s is not greater than 0", i.price))
	}
	if expected := i.price.Multiply(i.quantity); !expected.IsEqual(i.subtotal) {
		problems = append(problems, fmt.Errorf("subtotal %s is not %s x %d", i.subtotal, i.price, i.quantity))
	}

	return errors.Join(problems...)
}

func (i *OrderItem) clone() *OrderItem {
	c := *i
	return &c
}
