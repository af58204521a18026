package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"ordering/internal/adapters/out/messaging"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/ports"
	"ordering/internal/pkg/broker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// fakeProducer completes every Produce synchronously with err.
type fakeProducer struct {
	err      error
	produced []broker.Message
}

func (p *fakeProducer) Produce(_ context.Context, msg broker.Message, callback broker.Callback) {
	p.produced = append(p.produced, msg)
	callback(msg, broker.Delivery{Topic: msg.Topic, Partition: 1, Offset: 7}, p.err)
}

func (p *fakeProducer) ProduceSync(_ context.Context, msg broker.Message) (broker.Delivery, error) {
	p.produced = append(p.produced, msg)
	return broker.Delivery{Topic: msg.Topic}, p.err
}

func (p *fakeProducer) Close() error { return nil }

type MockOutboxRepository struct{ mock.Mock }

func (m *MockOutboxRepository) Add(ctx context.Context, msg ports.OutboxMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockOutboxRepository) ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]ports.OutboxMessage, error) {
	args := m.Called(ctx, limit, lease)
	msgs, _ := args.Get(0).([]ports.OutboxMessage)
	return msgs, args.Error(1)
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id kernel.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOutboxRepository) MarkAttemptFailed(ctx context.Context, id kernel.UUID, reason string, maxAttempts int) error {
	return m.Called(ctx, id, reason, maxAttempts).Error(0)
}

type outboxUoW struct {
	ports.UnitOfWork
	outbox ports.OutboxRepository
}

func (u outboxUoW) OutboxRepository() ports.OutboxRepository { return u.outbox }

type outboxUoWFactory struct {
	outbox ports.OutboxRepository
}

func (f outboxUoWFactory) Create() ports.UnitOfWork { return outboxUoW{outbox: f.outbox} }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPendingOrder(t *testing.T) (*order.Order, order.OrderCreatedEvent) {
	t.Helper()

	productID := kernel.NewUUID()
	ref, err := order.NewProductReference(productID)
	require.NoError(t, err)
	item, err := order.NewOrderItem(ref, 2, kernel.NewMoneyFromFloat(12.5), kernel.NewMoneyFromFloat(25))
	require.NoError(t, err)
	addr, err := kernel.NewStreetAddress(kernel.NewUUID(), "Main St 1", "1000", "Amsterdam")
	require.NoError(t, err)

	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), addr, kernel.NewMoneyFromFloat(25), []*order.OrderItem{item})
	require.NoError(t, err)
	require.NoError(t, o.ConfirmProduct(productID, "pizza", kernel.NewMoneyFromFloat(12.5)))
	require.NoError(t, o.ValidateOrder())
	event, err := o.InitializeOrder()
	require.NoError(t, err)
	return o, event
}

func TestOrderCreatedPaymentRequestPublisher_Publish(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	o, event := newPendingOrder(t)
	producer := &fakeProducer{}
	outbox := &MockOutboxRepository{}
	p := messaging.NewOrderCreatedPaymentRequestPublisher(producer, "payment-request", outboxUoWFactory{outbox}, discardLogger())

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))

	p.Publish(ctx, event)

	require.Len(t, producer.produced, 1)
	msg := producer.produced[0]
	assert.Equal(t, "payment-request", msg.Topic)
	assert.Equal(t, o.ID().String(), msg.Key)
	assert.Contains(t, msg.Header("traceparent"), traceID.String())

	var body messaging.PaymentRequestMessage
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, o.SagaID().String(), body.SagaID)
	assert.Equal(t, o.CustomerID().String(), body.CustomerID)
	assert.Equal(t, "25.00", body.Price)
	assert.Equal(t, messaging.PaymentOrderStatusPending, body.PaymentOrderStatus)
	assert.NotEqual(t, o.ID().String(), body.ID)
	outbox.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestOrderPaidRestaurantRequestPublisher_Publish(t *testing.T) {
	o, _ := newPendingOrder(t)
	paid, err := o.Pay()
	require.NoError(t, err)
	producer := &fakeProducer{}
	p := messaging.NewOrderPaidRestaurantRequestPublisher(producer, "restaurant-approval-request", outboxUoWFactory{}, discardLogger())

	p.Publish(context.Background(), paid)

	require.Len(t, producer.produced, 1)
	var body messaging.RestaurantApprovalRequestMessage
	require.NoError(t, json.Unmarshal(producer.produced[0].Value, &body))
	assert.Equal(t, messaging.RestaurantOrderStatusPaid, body.RestaurantOrderStatus)
	assert.Equal(t, o.RestaurantID().String(), body.RestaurantID)
	require.Len(t, body.Products, 1)
	assert.Equal(t, o.Items()[0].Product().ID().String(), body.Products[0].ID)
	assert.Equal(t, 2, body.Products[0].Quantity)
}

func TestOrderCancelledPaymentRequestPublisher_FailureGoesToOutbox(t *testing.T) {
	o, _ := newPendingOrder(t)
	_, err := o.Pay()
	require.NoError(t, err)
	cancelled, err := o.InitCancel([]string{"out of stock"})
	require.NoError(t, err)

	producer := &fakeProducer{err: errors.New("broker unavailable")}
	outbox := &MockOutboxRepository{}
	outbox.On("Add", mock.Anything, mock.MatchedBy(func(m ports.OutboxMessage) bool {
		var body messaging.PaymentRequestMessage
		return m.Topic == "payment-request" &&
			m.Key == o.ID().String() &&
			m.SagaID.IsEqual(o.SagaID()) &&
			m.Status == ports.OutboxPending &&
			m.LastError == "broker unavailable" &&
			json.Unmarshal(m.Payload, &body) == nil &&
			body.PaymentOrderStatus == messaging.PaymentOrderStatusCancelled
	})).Return(nil).Once()
	p := messaging.NewOrderCancelledPaymentRequestPublisher(producer, "payment-request", outboxUoWFactory{outbox}, discardLogger())

	assert.NotPanics(t, func() { p.Publish(context.Background(), cancelled) })
	outbox.AssertExpectations(t)
}

func TestPublisher_OutboxFailureIsOnlyLogged(t *testing.T) {
	_, created := newPendingOrder(t)
	outbox := &MockOutboxRepository{}
	outbox.On("Add", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	p := messaging.NewOrderCreatedPaymentRequestPublisher(
		&fakeProducer{err: errors.New("broker unavailable")}, "payment-request", outboxUoWFactory{outbox}, discardLogger())

	assert.NotPanics(t, func() { p.Publish(context.Background(), created) })
	outbox.AssertExpectations(t)
}
