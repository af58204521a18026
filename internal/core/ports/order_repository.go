// Package ports defines the contracts between the order service core and its adapters.
// Repositories, the unit of work and the event publishers are plain interfaces
// so the application layer can be tested with mocks.
package ports

import (
	"context"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a newly initialized order together with its items and address.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists the status and failure messages of an existing order.
	// The write succeeds only if the stored version still equals aggregate.Version();
	// otherwise it returns an error matching errs.ErrConcurrencyConflict.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by its internal identity.
	// Returns errs.ObjectNotFoundError when no such order exists.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByTrackingID retrieves an order by its customer-facing tracking id.
	GetByTrackingID(ctx context.Context, trackingID kernel.UUID) (*order.Order, error)
}
