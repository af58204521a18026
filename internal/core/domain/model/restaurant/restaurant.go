// Package restaurant holds the order service's read-only view of a restaurant:
// whether it accepts orders and which products it currently sells.
package restaurant

import (
	"errors"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/pkg/errs"
)

// ErrRestaurantIsNotConstructed is returned for a zero-value Restaurant.
var ErrRestaurantIsNotConstructed = errors.New("Restaurant must be created via NewRestaurant constructor")

// Product is a catalog entry as the restaurant publishes it.
type Product struct {
	id        kernel.UUID
	name      string
	price     kernel.Money
	available bool
}

// NewProduct builds a catalog entry.
func NewProduct(id kernel.UUID, name string, price kernel.Money, available bool) (Product, error) {
	if err := id.Validate(); err != nil {
		return Product{}, err
	}
	if name == "" {
		return Product{}, errs.NewValueIsRequiredError("product name")
	}
	return Product{id: id, name: name, price: price, available: available}, nil
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

func (p Product) Available() bool {
	return p.available
}

// Restaurant is loaded per create-order request and never persisted by this service.
type Restaurant struct {
	id       kernel.UUID
	active   bool
	products map[kernel.UUID]Product

	isConstructed bool
}

// NewRestaurant builds a restaurant with its catalog. Later duplicates of a
// product id replace earlier ones.
func NewRestaurant(id kernel.UUID, active bool, products []Product) (*Restaurant, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	catalog := make(map[kernel.UUID]Product, len(products))
	for _, p := range products {
		catalog[p.ID()] = p
	}

	return &Restaurant{
		id:            id,
		active:        active,
		products:      catalog,
		isConstructed: true,
	}, nil
}

// Validate ensures the restaurant was created via NewRestaurant.
func (r *Restaurant) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrRestaurantIsNotConstructed
	}
	return nil
}

func (r *Restaurant) ID() kernel.UUID {
	return r.id
}

// IsActive reports whether the restaurant currently accepts orders.
func (r *Restaurant) IsActive() bool {
	return r.active
}

// FindProduct looks a product up in the catalog.
func (r *Restaurant) FindProduct(id kernel.UUID) (Product, bool) {
	p, ok := r.products[id]
	return p, ok
}
