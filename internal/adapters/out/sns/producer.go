// Package sns implements broker.Producer on AWS SNS. Each logical topic maps to
// a topic ARN; subscribed SQS queues receive the payload with raw delivery and
// the logical topic in the "topic" message attribute.
package sns

import (
	"context"
	"strings"
	"sync"

	"ordering/internal/pkg/broker"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/pkg/errors"
)

// TopicAttribute carries the logical topic name to consumers.
const TopicAttribute = "topic"

// API is the subset of the SNS client the producer calls.
type API interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

var _ API = (*sns.Client)(nil)

type Producer struct {
	client API
	topics map[string]string // logical topic -> ARN

	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

var _ broker.Producer = (*Producer)(nil)

func NewProducer(client API, topicARNs map[string]string) *Producer {
	return &Producer{
		client: client,
		topics: topicARNs,
	}
}

// Produce publishes in the background and reports the outcome to callback.
func (p *Producer) Produce(ctx context.Context, msg broker.Message, callback broker.Callback) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		callback(msg, broker.Delivery{}, broker.ErrProducerClosed)
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		delivery, err := p.ProduceSync(context.WithoutCancel(ctx), msg)
		callback(msg, delivery, err)
	}()
}

// ProduceSync publishes msg and returns the SNS message id.
func (p *Producer) ProduceSync(ctx context.Context, msg broker.Message) (broker.Delivery, error) {
	arn, ok := p.topics[msg.Topic]
	if !ok {
		return broker.Delivery{}, errors.Errorf("no topic ARN configured for %q", msg.Topic)
	}

	input := &sns.PublishInput{
		TopicArn:          aws.String(arn),
		Message:           aws.String(string(msg.Value)),
		MessageAttributes: messageAttributes(msg),
	}
	// FIFO topics keep per-order ordering through the group id.
	if strings.HasSuffix(arn, ".fifo") {
		input.MessageGroupId = aws.String(msg.Key)
	}

	out, err := p.client.Publish(ctx, input)
	if err != nil {
		return broker.Delivery{}, errors.Wrapf(err, "failed to publish message to %s", msg.Topic)
	}

	return broker.Delivery{
		Topic:     msg.Topic,
		Partition: -1,
		Offset:    -1,
		MessageID: aws.ToString(out.MessageId),
	}, nil
}

// Close waits for in-flight publishes.
func (p *Producer) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

func messageAttributes(msg broker.Message) map[string]types.MessageAttributeValue {
	attrs := map[string]types.MessageAttributeValue{
		TopicAttribute: {
			DataType:    aws.String("String"),
			StringValue: aws.String(msg.Topic),
		},
	}
	if msg.Key != "" {
		attrs["key"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(msg.Key),
		}
	}
	for k, v := range msg.Headers {
		if v == "" {
			continue
		}
		attrs[k] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(v),
		}
	}
	return attrs
}
