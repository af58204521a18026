package commands

import (
	"context"
	"errors"
	"log/slog"

	"ordering/internal/core/ports"
)

// OutboxSender hands a stored message to the transport and waits for the outcome.
type OutboxSender interface {
	Send(ctx context.Context, msg ports.OutboxMessage) error
}

// RelayOutboxResult counts what one relay pass did.
type RelayOutboxResult struct {
	Published int
	Failed    int
}

// RelayOutboxCommandHandler re-sends messages the publishers could not deliver.
// No transaction stays open while the broker is called: the batch is claimed
// with a lease in one short transaction and each outcome is stored in its own.
type RelayOutboxCommandHandler struct {
	uowFactory ports.UnitOfWorkFactory
	sender     OutboxSender
	logger     *slog.Logger
}

func NewRelayOutboxCommandHandler(
	uowFactory ports.UnitOfWorkFactory, sender OutboxSender, logger *slog.Logger,
) RelayOutboxCommandHandler {
	return RelayOutboxCommandHandler{
		uowFactory: uowFactory,
		sender:     sender,
		logger:     logger.With("component", "relay_outbox_handler"),
	}
}

// Handle sends each claimed message synchronously. A send failure only bumps
// the attempt counter of that message. If an outcome cannot be stored the pass
// goes on and the message is relayed again after its lease expires.
func (h *RelayOutboxCommandHandler) Handle(ctx context.Context, cmd RelayOutboxCommand) (RelayOutboxResult, error) {
	if err := cmd.Validate(); err != nil {
		return RelayOutboxResult{}, err
	}

	messages, err := h.claim(ctx, cmd)
	if err != nil {
		return RelayOutboxResult{}, err
	}

	var (
		result    RelayOutboxResult
		recordErr []error
	)
	for _, msg := range messages {
		sendErr := h.sender.Send(ctx, msg)
		if sendErr != nil {
			h.logger.WarnContext(ctx, "outbox message not relayed",
				"id", msg.ID.String(),
				"topic", msg.Topic,
				"attempt", msg.Attempts+1,
				"error", sendErr,
			)
			result.Failed++
		} else {
			result.Published++
		}

		if err = h.record(ctx, msg, sendErr, cmd.MaxAttempts()); err != nil {
			h.logger.ErrorContext(ctx, "failed to store outbox relay outcome",
				"id", msg.ID.String(),
				"error", err,
			)
			recordErr = append(recordErr, err)
		}
	}

	return result, errors.Join(recordErr...)
}

func (h *RelayOutboxCommandHandler) claim(ctx context.Context, cmd RelayOutboxCommand) ([]ports.OutboxMessage, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	messages, err := uow.OutboxRepository().ClaimPending(ctx, cmd.BatchSize(), cmd.Lease())
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return messages, nil
}

func (h *RelayOutboxCommandHandler) record(ctx context.Context, msg ports.OutboxMessage, sendErr error, maxAttempts int) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	outbox := uow.OutboxRepository()

	var err error
	if sendErr != nil {
		err = outbox.MarkAttemptFailed(ctx, msg.ID, sendErr.Error(), maxAttempts)
	} else {
		err = outbox.MarkPublished(ctx, msg.ID)
	}
	if err != nil {
		return err
	}

	return uow.Commit(ctx)
}
