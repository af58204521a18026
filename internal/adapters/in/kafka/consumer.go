// Package kafka consumes saga responses from Kafka topics.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"ordering/internal/pkg/broker"
	"ordering/internal/pkg/metrics"
	"ordering/internal/pkg/telemetry"

	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"
)

// Config configures the group readers and the dead letter writer.
type Config struct {
	Brokers      []string
	GroupID      string
	MaxWait      time.Duration
	BatchTimeout time.Duration
	// SleepAfterError is the pause after a failed fetch. Defaults to 5s.
	SleepAfterError time.Duration
	Retry           broker.RetryPolicy
}

type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer runs one group reader per registered topic. A message is committed
// once its handler succeeded or it reached the "<topic>-dlq" topic.
type Consumer struct {
	logger   *slog.Logger
	readers  map[string]reader
	handlers map[string]broker.Handler
	dlq      writer
	retry    broker.RetryPolicy

	sleepAfterError time.Duration
}

var _ broker.Consumer = (*Consumer)(nil)

func NewConsumer(logger *slog.Logger, cfg Config, handlers map[string]broker.Handler) *Consumer {
	if cfg.SleepAfterError == 0 {
		cfg.SleepAfterError = 5 * time.Second
	}

	readers := make(map[string]reader, len(handlers))
	for topic := range handlers {
		readers[topic] = kafka.NewReader(kafka.ReaderConfig{
			Brokers: cfg.Brokers,
			GroupID: cfg.GroupID,
			Topic:   topic,
			MaxWait: cfg.MaxWait,
		})
	}

	return &Consumer{
		logger:   logger.With("component", "kafka-consumer"),
		readers:  readers,
		handlers: handlers,
		dlq: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Balancer:               &kafka.Hash{},
			BatchTimeout:           cfg.BatchTimeout,
			AllowAutoTopicCreation: true,
		},
		retry:           cfg.Retry,
		sleepAfterError: cfg.SleepAfterError,
	}
}

// Consume blocks until ctx is cancelled or a reader fails for good.
func (c *Consumer) Consume(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for topic, r := range c.readers {
		g.Go(func() error {
			c.consume(ctx, topic, r)
			return nil
		})
	}
	return g.Wait()
}

func (c *Consumer) consume(ctx context.Context, topic string, r reader) {
	handler := c.handlers[topic]
	logger := c.logger.With("topic", topic)

	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return
			}
			logger.Error("failed to fetch message", "error", err)

			select {
			case <-ctx.Done():
				return
			case <-time.After(c.sleepAfterError):
			}
			continue
		}

		if err := c.handle(ctx, handler, m); err != nil {
			logger.ErrorContext(ctx, "failed to handle message",
				"key", string(m.Key), "offset", m.Offset, "error", err)

			if err := c.writeToDLQ(ctx, m); err != nil {
				logger.Error("failed to write message to DLQ", "key", string(m.Key), "error", err)
				// Not committed, so the group redelivers it after a restart.
				continue
			}
			metrics.MessagesDeadLettered.WithLabelValues(topic).Inc()
		}

		if err := r.CommitMessages(ctx, m); err != nil {
			metrics.CommitErrors.WithLabelValues(topic).Inc()
			logger.Error("failed to commit message", "offset", m.Offset, "error", err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, handler broker.Handler, m kafka.Message) error {
	msg := fromKafkaMessage(m)
	ctx = telemetry.Extract(ctx, msg.Headers)

	start := time.Now()
	defer func() {
		metrics.MessageDuration.WithLabelValues(m.Topic).Observe(time.Since(start).Seconds())
	}()

	if err := c.retry.Handle(ctx, handler, msg); err != nil {
		metrics.MessagesFailed.WithLabelValues(m.Topic).Inc()
		return err
	}

	metrics.MessagesProcessed.WithLabelValues(m.Topic).Inc()
	return nil
}

func (c *Consumer) writeToDLQ(ctx context.Context, m kafka.Message) error {
	dead := kafka.Message{
		Topic:   fmt.Sprintf("%s-dlq", m.Topic),
		Key:     m.Key,
		Value:   m.Value,
		Headers: m.Headers,
	}
	return c.dlq.WriteMessages(ctx, dead)
}

// Close stops the readers and flushes the dead letter writer.
func (c *Consumer) Close() error {
	var errs []error
	for _, r := range c.readers {
		errs = append(errs, r.Close())
	}
	errs = append(errs, c.dlq.Close())
	return errors.Join(errs...)
}

func fromKafkaMessage(m kafka.Message) broker.Message {
	headers := make(map[string]string, len(m.Headers))
	for _, h := range m.Headers {
		headers[h.Key] = string(h.Value)
	}
	return broker.Message{
		Topic:   m.Topic,
		Key:     string(m.Key),
		Value:   m.Value,
		Headers: headers,
	}
}
