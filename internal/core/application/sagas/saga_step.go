// Package sagas contains the saga steps of the order service. Each step maps
// a response from a participating service onto an order transition, persists
// it in one unit of work and publishes the next request after commit.
//
// Every step is safe under at-least-once delivery: a response for another
// saga, for an unknown order, or for a step the order has already passed is
// logged and dropped. Only infrastructure failures (including optimistic
// concurrency conflicts) are returned, so the transport redelivers.
package sagas

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownResponseStatus is returned by Dispatch for a response that is neither success nor failure.
var ErrUnknownResponseStatus = errors.New("response is neither success nor failure")

// Response is implemented by every inbound saga response.
type Response interface {
	IsSuccess() bool
	IsFailure() bool
}

// SagaStep handles one participant's responses: Process on success, Rollback on failure.
type SagaStep[T Response] interface {
	Process(ctx context.Context, response T) (Outcome, error)
	Rollback(ctx context.Context, response T) (Outcome, error)
}

// Dispatch routes a response to the matching side of the step.
func Dispatch[T Response](ctx context.Context, step SagaStep[T], response T) (Outcome, error) {
	switch {
	case response.IsSuccess():
		return step.Process(ctx, response)
	case response.IsFailure():
		return step.Rollback(ctx, response)
	default:
		return Rejected, fmt.Errorf("%w: %+v", ErrUnknownResponseStatus, response)
	}
}

// Outcome tells the transport adapter what a step did with a response.
type Outcome int

const (
	// Rejected is returned together with an error.
	Rejected Outcome = iota

	// Applied means the order transitioned and any follow-up request was published.
	Applied

	// Duplicate means the order already reflects this response.
	Duplicate

	// Stale means the order is in a status the response no longer applies to.
	Stale

	// SagaMismatch means the response belongs to another saga of the order.
	SagaMismatch

	// OrderNotFound means the response names an order this service does not know.
	OrderNotFound
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Duplicate:
		return "duplicate"
	case Stale:
		return "stale"
	case SagaMismatch:
		return "saga_mismatch"
	case OrderNotFound:
		return "order_not_found"
	default:
		return "rejected"
	}
}
