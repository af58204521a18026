// Package messaging turns inbound payment and restaurant replies into saga
// responses and dispatches them to the saga steps.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	wire "ordering/internal/adapters/out/messaging"
	"ordering/internal/core/application/sagas"
	"ordering/internal/pkg/broker"
	"ordering/internal/pkg/metrics"
	"ordering/internal/pkg/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// listener decodes messages of type M, maps them to R and dispatches R to step.
type listener[M any, R sagas.Response] struct {
	name       string
	step       sagas.SagaStep[R]
	toResponse func(M) (R, error)
	logger     *slog.Logger
}

// Handle is a broker.Handler. Malformed messages are permanent failures;
// saga errors are returned for redelivery.
func (l *listener[M, R]) Handle(ctx context.Context, msg broker.Message) error {
	ctx, span := telemetry.Tracer().Start(ctx, l.name,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.destination", msg.Topic),
			attribute.String("messaging.message.key", msg.Key),
		),
	)
	defer span.End()

	var m M
	if err := wire.Decode(msg.Value, &m); err != nil {
		return l.fail(span, broker.Permanent(fmt.Errorf("failed to decode %s message: %w", l.name, err)))
	}

	response, err := l.toResponse(m)
	if err != nil {
		return l.fail(span, broker.Permanent(fmt.Errorf("failed to map %s message: %w", l.name, err)))
	}

	outcome, err := sagas.Dispatch(ctx, l.step, response)
	metrics.SagaOutcomes.WithLabelValues(l.name, outcome.String()).Inc()
	span.SetAttributes(attribute.String("saga.outcome", outcome.String()))
	if err != nil {
		if errors.Is(err, sagas.ErrUnknownResponseStatus) {
			err = broker.Permanent(err)
		}
		return l.fail(span, err)
	}

	l.logger.DebugContext(ctx, "response handled", "key", msg.Key, "outcome", outcome.String())
	return nil
}

func (l *listener[M, R]) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// PaymentResponseListener handles replies on the payment response topic.
type PaymentResponseListener struct {
	listener[wire.PaymentResponseMessage, sagas.PaymentResponse]
}

func NewPaymentResponseListener(step sagas.SagaStep[sagas.PaymentResponse], logger *slog.Logger) *PaymentResponseListener {
	return &PaymentResponseListener{listener[wire.PaymentResponseMessage, sagas.PaymentResponse]{
		name:       "payment-response",
		step:       step,
		toResponse: wire.PaymentResponseFromMessage,
		logger:     logger.With("component", "payment-response-listener"),
	}}
}

// RestaurantApprovalResponseListener handles replies on the restaurant approval response topic.
type RestaurantApprovalResponseListener struct {
	listener[wire.RestaurantApprovalResponseMessage, sagas.RestaurantApprovalResponse]
}

func NewRestaurantApprovalResponseListener(
	step sagas.SagaStep[sagas.RestaurantApprovalResponse], logger *slog.Logger,
) *RestaurantApprovalResponseListener {
	return &RestaurantApprovalResponseListener{listener[wire.RestaurantApprovalResponseMessage, sagas.RestaurantApprovalResponse]{
		name:       "restaurant-approval-response",
		step:       step,
		toResponse: wire.RestaurantApprovalResponseFromMessage,
		logger:     logger.With("component", "restaurant-approval-response-listener"),
	}}
}
