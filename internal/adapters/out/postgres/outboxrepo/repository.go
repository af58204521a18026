// Package outboxrepo stores outbound messages the transport refused, until the
// relay job hands them over again. The relay claims rows with a lease
// (locked_until) instead of holding row locks while it talks to the broker.
package outboxrepo

import (
	"context"
	"slices"
	"time"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/ports"
	"ordering/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OutboxMessageDTO is the outbox_messages row.
type OutboxMessageDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Topic     string    `gorm:"type:varchar(255);not null"`
	Key       string    `gorm:"type:varchar(64);not null"`
	Payload   []byte    `gorm:"type:bytea;not null"`
	SagaID    uuid.UUID `gorm:"type:uuid"`
	Status    string    `gorm:"type:varchar(16);not null;index:idx_outbox_status_created,priority:1"`
	Attempts  int       `gorm:"not null;default:0"`
	LastError string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null;index:idx_outbox_status_created,priority:2"`
	UpdatedAt time.Time `gorm:"not null"`

	LockedUntil *time.Time
}

func (OutboxMessageDTO) TableName() string {
	return "outbox_messages"
}

// GormOutboxRepository implements ports.OutboxRepository.
type GormOutboxRepository struct {
	db *gorm.DB
}

func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

// Add stores msg as PENDING. A zero ID is replaced with a fresh one.
func (r *GormOutboxRepository) Add(ctx context.Context, msg ports.OutboxMessage) error {
	if msg.Topic == "" {
		return errs.NewValueIsRequiredError("topic")
	}
	if msg.ID.IsZero() {
		msg.ID = kernel.NewUUID()
	}

	now := time.Now().UTC()
	dto := OutboxMessageDTO{
		ID:        msg.ID.UUID(),
		Topic:     msg.Topic,
		Key:       msg.Key,
		Payload:   msg.Payload,
		SagaID:    msg.SagaID.UUID(),
		Status:    string(ports.OutboxPending),
		LastError: msg.LastError,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return r.db.WithContext(ctx).Create(&dto).Error
}

// ClaimPending leases the oldest unclaimed pending messages in one statement.
// Rows another relay is claiming right now are skipped, and an expired lease
// makes a message claimable again.
func (r *GormOutboxRepository) ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]ports.OutboxMessage, error) {
	now := time.Now().UTC()

	var dtos []OutboxMessageDTO
	err := r.db.WithContext(ctx).Raw(`
		UPDATE outbox_messages SET locked_until = ?, updated_at = ?
		WHERE id IN (
			SELECT id FROM outbox_messages
			WHERE status = ? AND (locked_until IS NULL OR locked_until < ?)
			ORDER BY created_at
			LIMIT ?
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`,
		now.Add(lease), now, string(ports.OutboxPending), now, limit,
	).Scan(&dtos).Error
	if err != nil {
		return nil, err
	}

	slices.SortFunc(dtos, func(a, b OutboxMessageDTO) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	messages := make([]ports.OutboxMessage, 0, len(dtos))
	for _, dto := range dtos {
		msg, convErr := toDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// MarkPublished moves the message to PUBLISHED.
func (r *GormOutboxRepository) MarkPublished(ctx context.Context, id kernel.UUID) error {
	return r.update(ctx, id, map[string]any{
		"status":       string(ports.OutboxPublished),
		"attempts":     gorm.Expr("attempts + 1"),
		"last_error":   "",
		"locked_until": nil,
		"updated_at":   time.Now().UTC(),
	})
}

// MarkAttemptFailed counts a failed attempt. The message becomes FAILED once
// attempts reach maxAttempts and is no longer relayed.
func (r *GormOutboxRepository) MarkAttemptFailed(ctx context.Context, id kernel.UUID, reason string, maxAttempts int) error {
	return r.update(ctx, id, map[string]any{
		"status": gorm.Expr("CASE WHEN attempts + 1 >= ? THEN ? ELSE status END",
			maxAttempts, string(ports.OutboxFailed)),
		"attempts":     gorm.Expr("attempts + 1"),
		"last_error":   reason,
		"locked_until": nil,
		"updated_at":   time.Now().UTC(),
	})
}

func (r *GormOutboxRepository) update(ctx context.Context, id kernel.UUID, values map[string]any) error {
	result := r.db.WithContext(ctx).Model(&OutboxMessageDTO{}).Where("id = ?", id.UUID()).Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("outbox message", id.String())
	}
	return nil
}

func toDomain(dto OutboxMessageDTO) (ports.OutboxMessage, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return ports.OutboxMessage{}, err
	}

	var sagaID kernel.UUID
	if dto.SagaID != uuid.Nil {
		if sagaID, err = kernel.UUIDFromBytes(dto.SagaID[:]); err != nil {
			return ports.OutboxMessage{}, err
		}
	}

	var lockedUntil time.Time
	if dto.LockedUntil != nil {
		lockedUntil = *dto.LockedUntil
	}

	return ports.OutboxMessage{
		ID:        id,
		Topic:     dto.Topic,
		Key:       dto.Key,
		Payload:   dto.Payload,
		SagaID:    sagaID,
		Status:    ports.OutboxStatus(dto.Status),
		Attempts:  dto.Attempts,
		LastError: dto.LastError,
		CreatedAt: dto.CreatedAt,
		UpdatedAt: dto.UpdatedAt,

		LockedUntil: lockedUntil,
	}, nil
}
