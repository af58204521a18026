package commands

import (
	"errors"
	"time"

	"ordering/internal/pkg/errs"
	"ordering/internal/pkg/guard"
)

// RelayOutboxCommand asks for one pass over the pending outbox messages.
//
// Example:
//
//	cmd, err := NewRelayOutboxCommand(100, 10, time.Minute)
//	if err != nil {
//	    return err
//	}
//	result, err := handler.Handle(ctx, cmd)
type RelayOutboxCommand struct {
	batchSize   int
	maxAttempts int
	lease       time.Duration

	guard guard.ConstructorGuard
}

var ErrRelayOutboxCommandIsNotConstructed = errors.New(
	"RelayOutboxCommand must be created via NewRelayOutboxCommand constructor",
)

// NewRelayOutboxCommand creates a relay pass over at most batchSize messages.
// A message that fails maxAttempts times is moved to FAILED. The pass claims
// its messages for lease; a message whose outcome was never recorded becomes
// claimable again once the lease runs out, so lease must outlast a send.
func NewRelayOutboxCommand(batchSize, maxAttempts int, lease time.Duration) (RelayOutboxCommand, error) {
	if batchSize <= 0 {
		return RelayOutboxCommand{}, errs.NewValueIsInvalidError("batchSize")
	}
	if maxAttempts <= 0 {
		return RelayOutboxCommand{}, errs.NewValueIsInvalidError("maxAttempts")
	}
	if lease <= 0 {
		return RelayOutboxCommand{}, errs.NewValueIsInvalidError("lease")
	}

	return RelayOutboxCommand{
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
		lease:       lease,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c RelayOutboxCommand) Validate() error {
	return c.guard.Validate(ErrRelayOutboxCommandIsNotConstructed)
}

func (c RelayOutboxCommand) BatchSize() int   { return c.batchSize }
func (c RelayOutboxCommand) MaxAttempts() int { return c.maxAttempts }

func (c RelayOutboxCommand) Lease() time.Duration { return c.lease }
