package order

import (
	"fmt"

	"ordering/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
// It implements the saga state machine; each transition method returns the
// next status or an InvalidStateTransitionError naming the attempted operation.
//
// State transitions:
//
//	(unset) ──initialize──> PENDING ──pay──> PAID ──approve──> APPROVED
//	                           │               │
//	                           │          initCancel
//	                           │               v
//	                           └──cancel──> CANCELLED <──cancel── CANCELLING
//
// APPROVED and CANCELLED are terminal.
type Status int

const (
	// Unknown is the zero value. A transient order that has not been
	// initialized yet has this status.
	Unknown Status = iota

	// Pending is assigned at initialization. The order is waiting for the
	// payment service to charge the customer.
	Pending

	// Paid means the payment succeeded and the restaurant is asked to approve.
	Paid

	// Approved means the restaurant accepted the order. Terminal.
	Approved

	// Cancelling means the restaurant rejected a paid order and the payment
	// is being compensated.
	Cancelling

	// Cancelled is the terminal failure state.
	Cancelled
)

// getStatusStrings returns a map of Status values to their string representations.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "UNKNOWN",
		Pending:    "PENDING",
		Paid:       "PAID",
		Approved:   "APPROVED",
		Cancelling: "CANCELLING",
		Cancelled:  "CANCELLED",
	}
}

// getValidStatusStrings returns only the statuses a persisted order can be in.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:    "PENDING",
		Paid:       "PAID",
		Approved:   "APPROVED",
		Cancelling: "CANCELLING",
		Cancelled:  "CANCELLED",
	}
}

// ParseStatus converts the wire/persistence name back into a Status.
//
// Example:
//
//	s, err := order.ParseStatus("PAID")
//	if err != nil {
//	    // not a status a persisted order can be in
//	}
func ParseStatus(name string) (Status, error) {
	for s, str := range getValidStatusStrings() {
		if str == name {
			return s, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", name))
}

// Validate checks that the status is one a persisted order can be in.
// Unknown (0) and out-of-range values are invalid.
//
// Used by RestoreOrder to reject corrupted rows.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the upper-case name used on the wire and in tracking responses.
// Out-of-range values render as "UNKNOWN".
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == Approved || s == Cancelled
}

// Initialize transitions an unset status to Pending.
//
// Valid transitions:
//   - Unknown -> Pending
//
// Any other source status means the order was already initialized.
func (s Status) Initialize() (Status, error) {
	if s != Unknown {
		return 0, errs.NewInvalidStateTransitionError("initialize", s.String())
	}
	return Pending, nil
}

// Pay transitions the status to Paid.
//
// Valid transitions:
//   - Pending -> Paid
//
// A second Pay on a Paid order fails; saga steps check the status first
// so that redelivered payment responses never reach this guard.
func (s Status) Pay() (Status, error) {
	if s != Pending {
		return 0, errs.NewInvalidStateTransitionError("pay", s.String())
	}
	return Paid, nil
}

// Approve transitions the status to Approved.
//
// Valid transitions:
//   - Paid -> Approved
func (s Status) Approve() (Status, error) {
	if s != Paid {
		return 0, errs.NewInvalidStateTransitionError("approve", s.String())
	}
	return Approved, nil
}

// InitCancel starts compensation of a paid order.
//
// Valid transitions:
//   - Paid -> Cancelling
func (s Status) InitCancel() (Status, error) {
	if s != Paid {
		return 0, errs.NewInvalidStateTransitionError("initiate cancel", s.String())
	}
	return Cancelling, nil
}

// Cancel transitions the status to Cancelled.
//
// Valid transitions:
//   - Pending -> Cancelled (payment failed, nothing to compensate)
//   - Cancelling -> Cancelled (payment compensation confirmed)
func (s Status) Cancel() (Status, error) {
	if s != Pending && s != Cancelling {
		return 0, errs.NewInvalidStateTransitionError("cancel", s.String())
	}
	return Cancelled, nil
}
