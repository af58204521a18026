package broker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ordering/internal/pkg/broker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastPolicy = broker.RetryPolicy{
	MaxRetries:      2,
	InitialInterval: time.Millisecond,
	MaxInterval:     time.Millisecond,
}

func TestRetryPolicy_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	h := func(_ context.Context, _ broker.Message) error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	}

	err := fastPolicy.Handle(t.Context(), h, broker.Message{Topic: "t"})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryPolicy_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	failure := errors.New("db down")
	h := func(_ context.Context, _ broker.Message) error {
		calls++
		return failure
	}

	err := fastPolicy.Handle(t.Context(), h, broker.Message{Topic: "t"})

	require.ErrorIs(t, err, failure)
	assert.Equal(t, 3, calls, "one attempt plus two retries")
}

func TestRetryPolicy_PermanentErrorStopsRetries(t *testing.T) {
	calls := 0
	h := func(_ context.Context, _ broker.Message) error {
		calls++
		return broker.Permanent(errors.New("undecodable"))
	}

	err := fastPolicy.Handle(t.Context(), h, broker.Message{Topic: "t"})

	require.Error(t, err)
	assert.True(t, broker.IsPermanent(err))
	assert.Equal(t, 1, calls)
}

func TestPermanent(t *testing.T) {
	assert.NoError(t, broker.Permanent(nil))

	cause := errors.New("bad json")
	err := broker.Permanent(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "bad json", err.Error())
	assert.False(t, broker.IsPermanent(cause))
}

func TestMessage_Header(t *testing.T) {
	assert.Empty(t, broker.Message{}.Header("x"))
	assert.Equal(t, "v", broker.Message{Headers: map[string]string{"x": "v"}}.Header("x"))
}
