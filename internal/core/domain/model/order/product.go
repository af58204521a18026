package order

import (
	"ordering/internal/core/domain/model/kernel"
)

// Product is the order's reference to a restaurant catalog entry.
// When the order is built from a create command only the id is known;
// name and price are confirmed from the catalog by the domain service
// before validation compares them with the item prices.
type Product struct {
	id    kernel.UUID
	name  string
	price kernel.Money
}

// NewProductReference builds an unconfirmed reference holding only the product id.
func NewProductReference(id kernel.UUID) (Product, error) {
	if err := id.Validate(); err != nil {
		return Product{}, err
	}
	return Product{id: id}, nil
}

// NewProduct builds a fully known product, used when restoring persisted orders.
func NewProduct(id kernel.UUID, name string, price kernel.Money) (Product, error) {
	p, err := NewProductReference(id)
	if err != nil {
		return Product{}, err
	}
	p.name = name
	p.price = price
	return p, nil
}

func (p Product) ID() kernel.UUID {
	return p.id
}

func (p Product) Name() string {
	return p.name
}

func (p Product) Price() kernel.Money {
	return p.price
}

func (p Product) withCatalogInfo(name string, price kernel.Money) Product {
	p.name = name
	p.price = price
	return p
}
