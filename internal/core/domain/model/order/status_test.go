package order_test

import (
	"testing"

	"ordering/internal/core/domain/model/order"
	"ordering/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_String(t *testing.T) {
	testCases := map[order.Status]string{
		order.Unknown:    "UNKNOWN",
		order.Pending:    "PENDING",
		order.Paid:       "PAID",
		order.Approved:   "APPROVED",
		order.Cancelling: "CANCELLING",
		order.Cancelled:  "CANCELLED",
		order.Status(42): "UNKNOWN",
	}

	for status, expected := range testCases {
		assert.Equal(t, expected, status.String())
	}
}

func TestStatus_Validate(t *testing.T) {
	for _, s := range []order.Status{order.Pending, order.Paid, order.Approved, order.Cancelling, order.Cancelled} {
		require.NoError(t, s.Validate(), s.String())
	}

	for _, s := range []order.Status{order.Unknown, order.Status(-1), order.Status(99)} {
		err := s.Validate()
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	}
}

func TestParseStatus(t *testing.T) {
	s, err := order.ParseStatus("CANCELLING")
	require.NoError(t, err)
	assert.Equal(t, order.Cancelling, s)

	_, err = order.ParseStatus("UNKNOWN")
	require.Error(t, err)

	_, err = order.ParseStatus("paid")
	require.Error(t, err)
}

func TestStatus_Transitions(t *testing.T) {
	all := []order.Status{order.Unknown, order.Pending, order.Paid, order.Approved, order.Cancelling, order.Cancelled}

	testCases := []struct {
		name       string
		transition func(order.Status) (order.Status, error)
		allowed    map[order.Status]order.Status
	}{
		{"initialize", order.Status.Initialize, map[order.Status]order.Status{order.Unknown: order.Pending}},
		{"pay", order.Status.Pay, map[order.Status]order.Status{order.Pending: order.Paid}},
		{"approve", order.Status.Approve, map[order.Status]order.Status{order.Paid: order.Approved}},
		{"initiate cancel", order.Status.InitCancel, map[order.Status]order.Status{order.Paid: order.Cancelling}},
		{"cancel", order.Status.Cancel, map[order.Status]order.Status{
			order.Pending:    order.Cancelled,
			order.Cancelling: order.Cancelled,
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for _, from := range all {
				next, err := tc.transition(from)

				if expected, ok := tc.allowed[from]; ok {
					require.NoError(t, err, "from %s", from)
					assert.Equal(t, expected, next)
					continue
				}

				var transitionErr *errs.InvalidStateTransitionError
				require.ErrorAs(t, err, &transitionErr, "from %s", from)
				assert.Equal(t, tc.name, transitionErr.Operation)
				assert.Equal(t, from.String(), transitionErr.Status)
			}
		})
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, order.Approved.IsTerminal())
	assert.True(t, order.Cancelled.IsTerminal())
	assert.False(t, order.Pending.IsTerminal())
	assert.False(t, order.Paid.IsTerminal())
	assert.False(t, order.Cancelling.IsTerminal())
}
