package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/ports"
	"ordering/internal/pkg/broker"
	"ordering/internal/pkg/errs"
	"ordering/internal/pkg/metrics"
	"ordering/internal/pkg/telemetry"
)

var (
	_ ports.OrderCreatedPaymentRequestPublisher   = (*OrderCreatedPaymentRequestPublisher)(nil)
	_ ports.OrderCancelledPaymentRequestPublisher = (*OrderCancelledPaymentRequestPublisher)(nil)
	_ ports.OrderPaidRestaurantRequestPublisher   = (*OrderPaidRestaurantRequestPublisher)(nil)
)

// publisher hands one message to the producer. Refused messages are stored in
// the outbox for the relay job.
type publisher struct {
	producer   broker.Producer
	topic      string
	uowFactory ports.UnitOfWorkFactory
	logger     *slog.Logger
}

func newPublisher(producer broker.Producer, topic string, uowFactory ports.UnitOfWorkFactory, logger *slog.Logger) publisher {
	return publisher{
		producer:   producer,
		topic:      topic,
		uowFactory: uowFactory,
		logger:     logger.With("component", "publisher", "topic", topic),
	}
}

func (p publisher) publish(ctx context.Context, key string, sagaID kernel.UUID, payload any) {
	value, err := json.Marshal(payload)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to encode message", "key", key, "error", err)
		return
	}

	headers := map[string]string{}
	telemetry.Inject(ctx, headers)

	msg := broker.Message{Topic: p.topic, Key: key, Value: value, Headers: headers}
	// The callback may run after the caller's context is gone.
	cbCtx := context.WithoutCancel(ctx)

	p.producer.Produce(ctx, msg, func(msg broker.Message, d broker.Delivery, err error) {
		if err != nil {
			p.onFailure(cbCtx, msg, sagaID, err)
			return
		}
		metrics.MessagesPublished.WithLabelValues(msg.Topic).Inc()
		p.logger.InfoContext(cbCtx, "message published",
			"key", msg.Key,
			"partition", d.Partition,
			"offset", d.Offset,
			"message_id", d.MessageID,
		)
	})
}

func (p publisher) onFailure(ctx context.Context, msg broker.Message, sagaID kernel.UUID, cause error) {
	metrics.PublishFailures.WithLabelValues(msg.Topic).Inc()
	p.logger.ErrorContext(ctx, "failed to publish message",
		"key", msg.Key,
		"error", errs.NewPublishFailureError(msg.Topic, msg.Key, cause),
	)

	err := p.uowFactory.Create().OutboxRepository().Add(ctx, ports.OutboxMessage{
		ID:        kernel.NewUUID(),
		Topic:     msg.Topic,
		Key:       msg.Key,
		Payload:   msg.Value,
		SagaID:    sagaID,
		Status:    ports.OutboxPending,
		LastError: cause.Error(),
	})
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to store message in outbox", "key", msg.Key, "error", err)
		return
	}
	p.logger.WarnContext(ctx, "message stored in outbox", "key", msg.Key)
}

// OrderCreatedPaymentRequestPublisher sends PENDING payment requests.
type OrderCreatedPaymentRequestPublisher struct {
	publisher
}

func NewOrderCreatedPaymentRequestPublisher(
	producer broker.Producer, topic string, uowFactory ports.UnitOfWorkFactory, logger *slog.Logger,
) *OrderCreatedPaymentRequestPublisher {
	return &OrderCreatedPaymentRequestPublisher{newPublisher(producer, topic, uowFactory, logger)}
}

func (p *OrderCreatedPaymentRequestPublisher) Publish(ctx context.Context, event order.OrderCreatedEvent) {
	msg := PaymentRequestFromCreated(event)
	p.publish(ctx, msg.OrderID, event.Order().SagaID(), msg)
}

// OrderCancelledPaymentRequestPublisher sends CANCELLED payment requests, the
// compensation of a captured payment.
type OrderCancelledPaymentRequestPublisher struct {
	publisher
}

func NewOrderCancelledPaymentRequestPublisher(
	producer broker.Producer, topic string, uowFactory ports.UnitOfWorkFactory, logger *slog.Logger,
) *OrderCancelledPaymentRequestPublisher {
	return &OrderCancelledPaymentRequestPublisher{newPublisher(producer, topic, uowFactory, logger)}
}

func (p *OrderCancelledPaymentRequestPublisher) Publish(ctx context.Context, event order.OrderCancelledEvent) {
	msg := PaymentRequestFromCancelled(event)
	p.publish(ctx, msg.OrderID, event.Order().SagaID(), msg)
}

// OrderPaidRestaurantRequestPublisher sends approval requests for paid orders.
type OrderPaidRestaurantRequestPublisher struct {
	publisher
}

func NewOrderPaidRestaurantRequestPublisher(
	producer broker.Producer, topic string, uowFactory ports.UnitOfWorkFactory, logger *slog.Logger,
) *OrderPaidRestaurantRequestPublisher {
	return &OrderPaidRestaurantRequestPublisher{newPublisher(producer, topic, uowFactory, logger)}
}

func (p *OrderPaidRestaurantRequestPublisher) Publish(ctx context.Context, event order.OrderPaidEvent) {
	msg := RestaurantApprovalRequestFromPaid(event)
	p.publish(ctx, msg.OrderID, event.Order().SagaID(), msg)
}
