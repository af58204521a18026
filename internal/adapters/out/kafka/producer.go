// Package kafka implements broker.Producer on segmentio/kafka-go.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/pkg/broker"

	"github.com/segmentio/kafka-go"
)

// correlationHeader ties an async write back to its callback.
const correlationHeader = "x-correlation-id"

// Config configures the writers.
type Config struct {
	Brokers      []string
	BatchTimeout time.Duration
	WriteTimeout time.Duration
}

// Producer writes keyed messages. Messages with the same key land on the same
// partition, which keeps the events of one order in order.
type Producer struct {
	asyncWriter *kafka.Writer
	syncWriter  *kafka.Writer

	mu        sync.Mutex
	closed    bool
	callbacks sync.Map // correlation id -> pending
}

type pending struct {
	msg      broker.Message
	callback broker.Callback
}

var _ broker.Producer = (*Producer)(nil)

// NewProducer creates the async writer used for publishing and the sync writer
// used by the outbox relay.
func NewProducer(cfg Config) *Producer {
	p := &Producer{}

	p.asyncWriter = &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           cfg.BatchTimeout,
		WriteTimeout:           cfg.WriteTimeout,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion:             p.complete,
	}

	p.syncWriter = &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           cfg.BatchTimeout,
		WriteTimeout:           cfg.WriteTimeout,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}

	return p
}

// Produce enqueues msg on the async writer.
func (p *Producer) Produce(ctx context.Context, msg broker.Message, callback broker.Callback) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		callback(msg, broker.Delivery{}, broker.ErrProducerClosed)
		return
	}

	id := kernel.NewUUID().String()
	p.callbacks.Store(id, pending{msg: msg, callback: callback})

	km := toKafkaMessage(msg)
	km.Headers = append(km.Headers, kafka.Header{Key: correlationHeader, Value: []byte(id)})

	// In async mode WriteMessages only fails before enqueueing.
	if err := p.asyncWriter.WriteMessages(ctx, km); err != nil {
		if entry, ok := p.callbacks.LoadAndDelete(id); ok {
			entry.(pending).callback(msg, broker.Delivery{}, err)
		}
	}
}

// ProduceSync writes msg and waits for the acknowledgement.
func (p *Producer) ProduceSync(ctx context.Context, msg broker.Message) (broker.Delivery, error) {
	if err := p.syncWriter.WriteMessages(ctx, toKafkaMessage(msg)); err != nil {
		return broker.Delivery{}, fmt.Errorf("failed to write message to %s: %w", msg.Topic, err)
	}
	// The sync writer does not report offsets.
	return broker.Delivery{Topic: msg.Topic, Partition: -1, Offset: -1}, nil
}

// Close flushes pending writes. Callbacks of flushed messages still run.
func (p *Producer) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	return errors.Join(p.asyncWriter.Close(), p.syncWriter.Close())
}

// complete is the kafka.Writer completion hook. err applies to the whole batch.
func (p *Producer) complete(messages []kafka.Message, err error) {
	for _, km := range messages {
		id := headerValue(km.Headers, correlationHeader)
		entry, ok := p.callbacks.LoadAndDelete(id)
		if !ok {
			continue
		}

		pm := entry.(pending)
		if err != nil {
			pm.callback(pm.msg, broker.Delivery{}, err)
			continue
		}
		pm.callback(pm.msg, broker.Delivery{
			Topic:     km.Topic,
			Partition: km.Partition,
			Offset:    km.Offset,
		}, nil)
	}
}

func toKafkaMessage(msg broker.Message) kafka.Message {
	headers := make([]kafka.Header, 0, len(msg.Headers)+1)
	for k, v := range msg.Headers {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	return kafka.Message{
		Topic:   msg.Topic,
		Key:     []byte(msg.Key),
		Value:   msg.Value,
		Headers: headers,
	}
}

func headerValue(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
