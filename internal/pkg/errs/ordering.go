package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInvalidOrderData       = errors.New("invalid order data")
	ErrConcurrencyConflict    = errors.New("concurrency conflict")
	ErrPublishFailure         = errors.New("publish failure")
)

// InvalidStateTransitionError is raised by the order state machine when an
// operation's guard does not hold for the current status.
type InvalidStateTransitionError struct {
	Operation string
	Status    string
}

func NewInvalidStateTransitionError(operation, status string) *InvalidStateTransitionError {
	return &InvalidStateTransitionError{
		Operation: operation,
		Status:    status,
	}
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("%s: cannot %s order in status %s", ErrInvalidStateTransition, e.Operation, e.Status)
}

func (e *InvalidStateTransitionError) Unwrap() error {
	return ErrInvalidStateTransition
}

// InvalidOrderDataError reports a price or item invariant violated while an
// order is being created. Subject names the offending part, e.g. "item 2".
type InvalidOrderDataError struct {
	Subject string
	Cause   error
}

func NewInvalidOrderDataError(subject string, cause error) *InvalidOrderDataError {
	return &InvalidOrderDataError{
		Subject: subject,
		Cause:   cause,
	}
}

func (e *InvalidOrderDataError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrInvalidOrderData, sanitize(e.Subject), e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidOrderData, sanitize(e.Subject))
}

func (e *InvalidOrderDataError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrInvalidOrderData}
	}
	return []error{ErrInvalidOrderData, e.Cause}
}

// ConcurrencyConflictError signals that an optimistic version check failed:
// another handler updated the aggregate after it was loaded.
type ConcurrencyConflictError struct {
	Aggregate string
	ID        any
	Version   int64
}

func NewConcurrencyConflictError(aggregate string, id any, version int64) *ConcurrencyConflictError {
	return &ConcurrencyConflictError{
		Aggregate: aggregate,
		ID:        id,
		Version:   version,
	}
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("%s: %s %v is no longer at version %d", ErrConcurrencyConflict, e.Aggregate, e.ID, e.Version)
}

func (e *ConcurrencyConflictError) Unwrap() error {
	return ErrConcurrencyConflict
}

// PublishFailureError wraps a transport error for an outbound message.
type PublishFailureError struct {
	Topic string
	Key   string
	Cause error
}

func NewPublishFailureError(topic, key string, cause error) *PublishFailureError {
	return &PublishFailureError{
		Topic: topic,
		Key:   key,
		Cause: cause,
	}
}

func (e *PublishFailureError) Error() string {
	return fmt.Sprintf("%s: topic %s, key %s (cause: %v)", ErrPublishFailure, e.Topic, e.Key, e.Cause)
}

func (e *PublishFailureError) Unwrap() []error {
	return []error{ErrPublishFailure, e.Cause}
}

func sanitize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
