// Package errs provides the error kinds shared by the order service.
//
// Generic kinds:
//   - ValueIsRequiredError: a required value is missing
//   - ValueIsInvalidError: a value is present but unacceptable
//   - ObjectNotFoundError: a referenced object does not exist
//
// Ordering kinds:
//   - InvalidStateTransitionError: an order lifecycle guard was violated
//   - InvalidOrderDataError: price or item invariants failed at creation
//   - ConcurrencyConflictError: an optimistic version check failed
//   - PublishFailureError: an outbound message could not be handed to the transport
//
// Every kind has a sentinel (ErrValueIsRequired, ErrInvalidStateTransition, ...)
// returned from Unwrap, so callers branch with errors.Is and read details with errors.As.
package errs
