// Package broker is the transport abstraction shared by the Kafka and the
// SNS/SQS adapters. Messages are opaque bytes with a partition key; the
// adapters decide how a topic maps onto the underlying system.
package broker

import (
	"context"
	"errors"
)

// ErrProducerClosed is reported for messages produced after Close.
var ErrProducerClosed = errors.New("producer is closed")

// Message is one record on the wire.
type Message struct {
	Topic   string
	Key     string
	Value   []byte
	Headers map[string]string
}

// Header returns the value of header name, or "".
func (m Message) Header(name string) string {
	if m.Headers == nil {
		return ""
	}
	return m.Headers[name]
}

// Delivery describes where the transport placed an accepted message.
// Kafka fills Partition and Offset; SNS fills MessageID.
type Delivery struct {
	Topic     string
	Partition int
	Offset    int64
	MessageID string
}

// Callback receives the outcome of an asynchronous Produce. err is nil on success.
type Callback func(msg Message, delivery Delivery, err error)

// Producer hands messages to the transport.
type Producer interface {
	// Produce enqueues msg and returns immediately. callback runs exactly once,
	// on a transport goroutine, when the outcome is known.
	Produce(ctx context.Context, msg Message, callback Callback)

	// ProduceSync blocks until the transport accepted or refused msg.
	ProduceSync(ctx context.Context, msg Message) (Delivery, error)

	Close() error
}

// Handler processes one inbound message. A returned error makes the consumer
// retry and finally dead-letter the message.
type Handler func(ctx context.Context, msg Message) error

// Consumer delivers messages of its topics to the registered handlers until
// ctx is cancelled.
type Consumer interface {
	Consume(ctx context.Context) error
	Close() error
}

// Permanent marks err as not worth retrying. Consumers dead-letter such
// messages right away.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }
