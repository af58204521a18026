package commands_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"ordering/internal/core/application/usecases/commands"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOutboxRepository struct{ mock.Mock }

func (m *MockOutboxRepository) Add(ctx context.Context, msg ports.OutboxMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockOutboxRepository) ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]ports.OutboxMessage, error) {
	args := m.Called(ctx, limit, lease)
	msgs, _ := args.Get(0).([]ports.OutboxMessage)
	return msgs, args.Error(1)
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) MarkAttemptFailed(ctx context.Context, id kernel.UUID, reason string, maxAttempts int) error {
	args := m.Called(ctx, id, reason, maxAttempts)
	return args.Error(0)
}

// txLedger is shared by every unit of work the factory hands out and counts
// the transactions that are open right now.
type txLedger struct {
	mu        sync.Mutex
	open      int
	begun     int
	committed int
	beginErr  error
}

func (l *txLedger) Open() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.open
}

type trackedUoW struct {
	ledger *txLedger
	outbox ports.OutboxRepository
	active bool
}

func (u *trackedUoW) Begin(context.Context) error {
	u.ledger.mu.Lock()
	defer u.ledger.mu.Unlock()
	if u.ledger.beginErr != nil {
		return u.ledger.beginErr
	}
	u.active = true
	u.ledger.open++
	u.ledger.begun++
	return nil
}

func (u *trackedUoW) Commit(context.Context) error {
	u.ledger.mu.Lock()
	defer u.ledger.mu.Unlock()
	if !u.active {
		return errors.New("no active transaction")
	}
	u.active = false
	u.ledger.open--
	u.ledger.committed++
	return nil
}

func (u *trackedUoW) Rollback(context.Context) error {
	u.ledger.mu.Lock()
	defer u.ledger.mu.Unlock()
	if u.active {
		u.active = false
		u.ledger.open--
	}
	return nil
}

func (u *trackedUoW) OrderRepository() ports.OrderRepository { return nil }

func (u *trackedUoW) OutboxRepository() ports.OutboxRepository { return u.outbox }

type trackedUoWFactory struct {
	ledger *txLedger
	outbox ports.OutboxRepository
}

func (f trackedUoWFactory) Create() ports.UnitOfWork {
	return &trackedUoW{ledger: f.ledger, outbox: f.outbox}
}

type MockOutboxSender struct{ mock.Mock }

func (m *MockOutboxSender) Send(ctx context.Context, msg ports.OutboxMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type relayEnv struct {
	outbox  *MockOutboxRepository
	ledger  *txLedger
	sender  *MockOutboxSender
	handler commands.RelayOutboxCommandHandler
	cmd     commands.RelayOutboxCommand
}

func newRelayEnv(t *testing.T) *relayEnv {
	t.Helper()
	env := &relayEnv{
		outbox: new(MockOutboxRepository),
		ledger: &txLedger{},
		sender: new(MockOutboxSender),
	}
	env.handler = commands.NewRelayOutboxCommandHandler(
		trackedUoWFactory{ledger: env.ledger, outbox: env.outbox}, env.sender, slog.New(slog.DiscardHandler))

	var err error
	env.cmd, err = commands.NewRelayOutboxCommand(10, 3, time.Minute)
	require.NoError(t, err)
	return env
}

func outboxMessage(topic string) ports.OutboxMessage {
	return ports.OutboxMessage{
		ID:      kernel.NewUUID(),
		Topic:   topic,
		Key:     kernel.NewUUID().String(),
		Payload: []byte(`{}`),
		SagaID:  kernel.NewUUID(),
		Status:  ports.OutboxPending,
	}
}

func TestRelayOutboxCommandHandler_Handle_PublishesAndCountsFailures(t *testing.T) {
	ctx := t.Context()
	env := newRelayEnv(t)
	ok, broken := outboxMessage("payment-request"), outboxMessage("restaurant-approval-request")

	env.outbox.On("ClaimPending", ctx, 10, time.Minute).Return([]ports.OutboxMessage{ok, broken}, nil).Once()
	env.sender.On("Send", ctx, ok).Return(nil).Once()
	env.sender.On("Send", ctx, broken).Return(errors.New("broker unavailable")).Once()
	env.outbox.On("MarkPublished", ctx, ok.ID).Return(nil).Once()
	env.outbox.On("MarkAttemptFailed", ctx, broken.ID, "broker unavailable", 3).Return(nil).Once()

	result, err := env.handler.Handle(ctx, env.cmd)

	require.NoError(t, err)
	assert.Equal(t, commands.RelayOutboxResult{Published: 1, Failed: 1}, result)
	env.outbox.AssertExpectations(t)
	env.sender.AssertExpectations(t)

	// One claim and one outcome per message, each in its own transaction.
	assert.Equal(t, 3, env.ledger.begun)
	assert.Equal(t, 3, env.ledger.committed)
	assert.Zero(t, env.ledger.Open())
}

func TestRelayOutboxCommandHandler_Handle_SendsWithNoTransactionOpen(t *testing.T) {
	ctx := t.Context()
	env := newRelayEnv(t)
	batch := []ports.OutboxMessage{
		outboxMessage("payment-request"),
		outboxMessage("payment-request"),
		outboxMessage("restaurant-approval-request"),
	}

	var openDuringSend []int
	env.outbox.On("ClaimPending", ctx, 10, time.Minute).Return(batch, nil).Once()
	env.sender.On("Send", ctx, mock.Anything).
		Run(func(mock.Arguments) { openDuringSend = append(openDuringSend, env.ledger.Open()) }).
		Return(nil).Times(len(batch))
	env.outbox.On("MarkPublished", ctx, mock.Anything).Return(nil).Times(len(batch))

	_, err := env.handler.Handle(ctx, env.cmd)

	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0}, openDuringSend)
}

func TestRelayOutboxCommandHandler_Handle_NothingPending(t *testing.T) {
	ctx := t.Context()
	env := newRelayEnv(t)

	env.outbox.On("ClaimPending", ctx, 10, time.Minute).Return([]ports.OutboxMessage{}, nil).Once()

	result, err := env.handler.Handle(ctx, env.cmd)

	require.NoError(t, err)
	assert.Zero(t, result)
	assert.Zero(t, env.ledger.Open())
	env.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestRelayOutboxCommandHandler_Handle_ClaimError(t *testing.T) {
	ctx := t.Context()
	env := newRelayEnv(t)

	env.outbox.On("ClaimPending", ctx, 10, time.Minute).Return(nil, errors.New("connection reset")).Once()

	_, err := env.handler.Handle(ctx, env.cmd)

	require.Error(t, err)
	assert.Zero(t, env.ledger.committed)
	assert.Zero(t, env.ledger.Open())
	env.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestRelayOutboxCommandHandler_Handle_OutcomeStorageErrorKeepsRelaying(t *testing.T) {
	ctx := t.Context()
	env := newRelayEnv(t)
	first, second := outboxMessage("payment-request"), outboxMessage("payment-request")

	env.outbox.On("ClaimPending", ctx, 10, time.Minute).Return([]ports.OutboxMessage{first, second}, nil).Once()
	env.sender.On("Send", ctx, first).Return(nil).Once()
	env.sender.On("Send", ctx, second).Return(nil).Once()
	env.outbox.On("MarkPublished", ctx, first.ID).Return(errors.New("connection reset")).Once()
	env.outbox.On("MarkPublished", ctx, second.ID).Return(nil).Once()

	result, err := env.handler.Handle(ctx, env.cmd)

	require.Error(t, err)
	assert.Equal(t, commands.RelayOutboxResult{Published: 2}, result)
	env.sender.AssertExpectations(t)
	env.outbox.AssertExpectations(t)
	// The claim and the second outcome are committed; the first is rolled back.
	assert.Equal(t, 2, env.ledger.committed)
	assert.Zero(t, env.ledger.Open())
}

func TestRelayOutboxCommandHandler_Handle_BeginError(t *testing.T) {
	ctx := t.Context()
	env := newRelayEnv(t)
	env.ledger.beginErr = errors.New("pool exhausted")

	_, err := env.handler.Handle(ctx, env.cmd)

	require.Error(t, err)
	env.outbox.AssertNotCalled(t, "ClaimPending", mock.Anything, mock.Anything, mock.Anything)
}

func TestRelayOutboxCommandHandler_Handle_NotConstructed(t *testing.T) {
	env := newRelayEnv(t)

	_, err := env.handler.Handle(t.Context(), commands.RelayOutboxCommand{})

	require.ErrorIs(t, err, commands.ErrRelayOutboxCommandIsNotConstructed)
}
