package messaging

import (
	"context"

	"ordering/internal/core/application/usecases/commands"
	"ordering/internal/core/ports"
	"ordering/internal/pkg/broker"
	"ordering/internal/pkg/metrics"
	"ordering/internal/pkg/telemetry"

	"github.com/pkg/errors"
)

var _ commands.OutboxSender = (*OutboxSender)(nil)

// OutboxSender replays stored messages through the producer and waits for the
// broker to acknowledge them.
type OutboxSender struct {
	producer broker.Producer
}

func NewOutboxSender(producer broker.Producer) *OutboxSender {
	return &OutboxSender{producer: producer}
}

func (s *OutboxSender) Send(ctx context.Context, msg ports.OutboxMessage) error {
	headers := map[string]string{}
	telemetry.Inject(ctx, headers)

	_, err := s.producer.ProduceSync(ctx, broker.Message{
		Topic:   msg.Topic,
		Key:     msg.Key,
		Value:   msg.Payload,
		Headers: headers,
	})
	if err != nil {
		metrics.PublishFailures.WithLabelValues(msg.Topic).Inc()
		return errors.Wrapf(err, "relay outbox message %s", msg.ID)
	}

	metrics.MessagesPublished.WithLabelValues(msg.Topic).Inc()
	return nil
}
