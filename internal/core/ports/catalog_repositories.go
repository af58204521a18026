package ports

import (
	"context"

	"ordering/internal/core/domain/model/customer"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/restaurant"
)

// CustomerRepository answers whether a customer exists.
type CustomerRepository interface {
	// Get returns errs.ObjectNotFoundError for unknown customers.
	Get(ctx context.Context, id kernel.UUID) (*customer.Customer, error)
}

// RestaurantRepository loads a restaurant with the catalog entries an order refers to.
type RestaurantRepository interface {
	// GetWithProducts returns the restaurant and those of productIDs it lists.
	// Products it does not list are simply absent from the catalog.
	// Returns errs.ObjectNotFoundError for unknown restaurants.
	GetWithProducts(ctx context.Context, restaurantID kernel.UUID, productIDs []kernel.UUID) (*restaurant.Restaurant, error)
}
