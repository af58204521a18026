package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request or message.
// This ensures proper isolation between concurrent handlers.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// OrderUnitOfWorkFactory hands out the narrower unit of work that order use
// cases and saga steps need.
type OrderUnitOfWorkFactory interface {
	Create() OrderUnitOfWork
}

// OrderUnitOfWork is a business transaction boundary over the order repository.
// Client code must explicitly manage transaction lifecycle.
type OrderUnitOfWork interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	// Returns error if no active transaction or commit fails.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction.
	// Returns error if no active transaction or rollback fails.
	Rollback(ctx context.Context) error

	// OrderRepository returns an OrderRepository bound to the current transaction.
	OrderRepository() OrderRepository
}

// UnitOfWork adds the outbox to OrderUnitOfWork.
type UnitOfWork interface {
	OrderUnitOfWork

	// OutboxRepository returns an OutboxRepository bound to the current transaction.
	// Without Begin the repository writes directly.
	OutboxRepository() OutboxRepository
}
