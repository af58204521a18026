package ports

import (
	"context"
	"time"

	"ordering/internal/core/domain/model/kernel"
)

// OutboxStatus is the delivery state of an outbox message.
type OutboxStatus string

const (
	OutboxPending   OutboxStatus = "PENDING"
	OutboxPublished OutboxStatus = "PUBLISHED"
	OutboxFailed    OutboxStatus = "FAILED"
)

// OutboxMessage is an outbound message that could not be handed to the
// transport and waits for the relay job.
type OutboxMessage struct {
	ID        kernel.UUID
	Topic     string
	Key       string
	Payload   []byte
	SagaID    kernel.UUID
	Status    OutboxStatus
	Attempts  int
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time

	// LockedUntil is the end of the current relay claim, zero when unclaimed.
	LockedUntil time.Time
}

// OutboxRepository stores unpublished messages.
type OutboxRepository interface {
	// Add stores a message in PENDING state.
	Add(ctx context.Context, msg OutboxMessage) error

	// ClaimPending leases up to limit unclaimed PENDING messages, oldest first,
	// for the given duration. Claimed messages are invisible to other relays
	// until the lease expires or a Mark call releases them.
	ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]OutboxMessage, error)

	// MarkPublished moves a message to PUBLISHED and releases its claim.
	MarkPublished(ctx context.Context, id kernel.UUID) error

	// MarkAttemptFailed records a failed attempt and releases the claim; after
	// maxAttempts the message becomes FAILED.
	MarkAttemptFailed(ctx context.Context, id kernel.UUID, reason string, maxAttempts int) error
}
