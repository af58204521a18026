// Package sqs consumes saga responses from an SQS queue subscribed to the SNS
// response topics. Messages that keep failing are left on the queue; the
// queue's redrive policy moves them to its dead letter queue.
package sqs

import (
	"context"
	"log/slog"
	"time"

	"ordering/internal/pkg/broker"
	"ordering/internal/pkg/metrics"
	"ordering/internal/pkg/telemetry"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/pkg/errors"
)

const topicAttribute = "topic"

// API is the subset of the SQS client the consumer calls.
type API interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

var _ API = (*sqs.Client)(nil)

type Config struct {
	QueueURL            string
	MaxNumberOfMessages int32
	WaitTimeSeconds     int32
	VisibilityTimeout   int32
	SleepAfterError     time.Duration
	Retry               broker.RetryPolicy
}

type Consumer struct {
	client   API
	cfg      Config
	handlers map[string]broker.Handler
	logger   *slog.Logger
}

var _ broker.Consumer = (*Consumer)(nil)

func NewConsumer(logger *slog.Logger, client API, cfg Config, handlers map[string]broker.Handler) *Consumer {
	if cfg.MaxNumberOfMessages == 0 {
		cfg.MaxNumberOfMessages = 10
	}
	if cfg.SleepAfterError == 0 {
		cfg.SleepAfterError = 5 * time.Second
	}
	return &Consumer{
		client:   client,
		cfg:      cfg,
		handlers: handlers,
		logger:   logger.With("component", "sqs-consumer", "queue", cfg.QueueURL),
	}
}

// Consume long-polls the queue until ctx is cancelled.
func (c *Consumer) Consume(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		if err := c.poll(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("failed to receive messages", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.cfg.SleepAfterError):
			}
		}
	}
}

func (c *Consumer) poll(ctx context.Context) error {
	out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(c.cfg.QueueURL),
		MaxNumberOfMessages:   c.cfg.MaxNumberOfMessages,
		WaitTimeSeconds:       c.cfg.WaitTimeSeconds,
		VisibilityTimeout:     c.cfg.VisibilityTimeout,
		MessageAttributeNames: []string{"All"},
	})
	if err != nil {
		return errors.Wrap(err, "failed to receive message from SQS")
	}

	for _, m := range out.Messages {
		c.process(ctx, m)
	}
	return nil
}

func (c *Consumer) process(ctx context.Context, m types.Message) {
	msg := toBrokerMessage(m)
	logger := c.logger.With("topic", msg.Topic, "message_id", aws.ToString(m.MessageId))

	handler, ok := c.handlers[msg.Topic]
	if !ok {
		logger.Warn("no handler for topic, leaving message for redrive")
		return
	}

	ctx = telemetry.Extract(ctx, msg.Headers)
	start := time.Now()
	err := c.cfg.Retry.Handle(ctx, handler, msg)
	metrics.MessageDuration.WithLabelValues(msg.Topic).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.MessagesFailed.WithLabelValues(msg.Topic).Inc()
		logger.ErrorContext(ctx, "failed to handle message", "key", msg.Key, "error", err)
		return
	}
	metrics.MessagesProcessed.WithLabelValues(msg.Topic).Inc()

	if err := c.delete(ctx, m); err != nil {
		metrics.CommitErrors.WithLabelValues(msg.Topic).Inc()
		logger.Error("failed to delete message", "error", err)
	}
}

func (c *Consumer) delete(ctx context.Context, m types.Message) error {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.cfg.QueueURL),
		ReceiptHandle: m.ReceiptHandle,
	})
	return errors.Wrap(err, "failed to delete message from SQS")
}

// Close is a no-op; the SQS client holds no connections of its own.
func (c *Consumer) Close() error {
	return nil
}

func toBrokerMessage(m types.Message) broker.Message {
	headers := make(map[string]string, len(m.MessageAttributes))
	for k, v := range m.MessageAttributes {
		if v.StringValue != nil {
			headers[k] = *v.StringValue
		}
	}

	return broker.Message{
		Topic:   headers[topicAttribute],
		Key:     headers["key"],
		Value:   []byte(aws.ToString(m.Body)),
		Headers: headers,
	}
}
