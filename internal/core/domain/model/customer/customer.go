// Package customer holds the minimal customer view the order service needs:
// existence, checked before an order is accepted.
package customer

import (
	"ordering/internal/core/domain/model/kernel"
)

type Customer struct {
	id kernel.UUID
}

func NewCustomer(id kernel.UUID) (*Customer, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return &Customer{id: id}, nil
}

func (c *Customer) ID() kernel.UUID {
	return c.id
}
