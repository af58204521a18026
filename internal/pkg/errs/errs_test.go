package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"ordering/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("NewObjectNotFoundError", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("customerId", "123")

		assert.Equal(t, "customerId", err.ParamName)
		assert.Equal(t, "123", err.ID)
		require.NoError(t, err.Cause)
		assert.Equal(t, "object not found: 123", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("NewObjectNotFoundErrorWithCause", func(t *testing.T) {
		cause := errors.New("database connection failed")
		err := errs.NewObjectNotFoundErrorWithCause("customerId", "123", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"object not found: param is: customerId, ID is: 123 (cause: database connection failed)",
			err.Error())
	})

	t.Run("Error with different ID types", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("orderId", 456)
		assert.Equal(t, "object not found: %!s(int=456)", err.Error())
	})
}

func TestValueIsInvalidError(t *testing.T) {
	t.Run("NewValueIsInvalidError", func(t *testing.T) {
		err := errs.NewValueIsInvalidError("price")

		assert.Equal(t, "price", err.ParamName)
		assert.Equal(t, "value is invalid: price", err.Error())
		assert.Equal(t, errs.ErrValueIsInvalid, err.Unwrap())
	})

	t.Run("NewValueIsInvalidErrorWithCause", func(t *testing.T) {
		err := errs.NewValueIsInvalidErrorWithCause("price", errors.New("not a number"))
		assert.Equal(t, "value is invalid: price (cause: not a number)", err.Error())
	})
}

func TestValueIsRequiredError(t *testing.T) {
	err := errs.NewValueIsRequiredError("street")
	assert.Equal(t, "value is required: street", err.Error())
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	withCause := errs.NewValueIsRequiredErrorWithCause("street", errors.New("empty"))
	assert.Equal(t, "value is required: street (cause: empty)", withCause.Error())
}

func TestInvalidStateTransitionError(t *testing.T) {
	err := errs.NewInvalidStateTransitionError("pay", "PAID")

	assert.Equal(t, "invalid state transition: cannot pay order in status PAID", err.Error())
	require.ErrorIs(t, err, errs.ErrInvalidStateTransition)

	var target *errs.InvalidStateTransitionError
	wrapped := fmt.Errorf("saga step: %w", err)
	require.ErrorAs(t, wrapped, &target)
	assert.Equal(t, "pay", target.Operation)
	assert.Equal(t, "PAID", target.Status)
}

func TestInvalidOrderDataError(t *testing.T) {
	t.Run("names the offending item", func(t *testing.T) {
		err := errs.NewInvalidOrderDataError("item 2", errors.New("subtotal mismatch"))
		assert.Equal(t, "invalid order data: item 2 (cause: subtotal mismatch)", err.Error())
		require.ErrorIs(t, err, errs.ErrInvalidOrderData)
	})

	t.Run("sanitizes newlines", func(t *testing.T) {
		err := errs.NewInvalidOrderDataError("item\n2", nil)
		assert.Equal(t, "invalid order data: item 2", err.Error())
	})
}

func TestConcurrencyConflictError(t *testing.T) {
	err := errs.NewConcurrencyConflictError("order", "abc", 3)
	assert.Equal(t, "concurrency conflict: order abc is no longer at version 3", err.Error())
	require.ErrorIs(t, err, errs.ErrConcurrencyConflict)
}

func TestPublishFailureError(t *testing.T) {
	cause := errors.New("broker unavailable")
	err := errs.NewPublishFailureError("payment-request", "order-1", cause)

	assert.Equal(t, "publish failure: topic payment-request, key order-1 (cause: broker unavailable)", err.Error())
	require.ErrorIs(t, err, errs.ErrPublishFailure)
	require.ErrorIs(t, err, cause)
}
