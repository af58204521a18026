// Package metrics holds the Prometheus collectors of the order service.
// They are registered with the default registry and served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "order_service"

var (
	MessagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "consumer",
		Name:      "messages_processed_total",
		Help:      "Total number of inbound messages handled successfully.",
	}, []string{"topic"})

	MessagesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "consumer",
		Name:      "messages_failed_total",
		Help:      "Total number of inbound messages whose handler failed after retries.",
	}, []string{"topic"})

	MessagesDeadLettered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "consumer",
		Name:      "messages_dlq_total",
		Help:      "Total number of inbound messages written to the dead letter topic.",
	}, []string{"topic"})

	CommitErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "consumer",
		Name:      "commit_errors_total",
		Help:      "Total number of failed offset commits or message deletions.",
	}, []string{"topic"})

	MessageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "consumer",
		Name:      "message_processing_duration_seconds",
		Help:      "Histogram of inbound message handling durations in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"topic"})

	SagaOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "saga",
		Name:      "responses_total",
		Help:      "Saga responses by step and outcome.",
	}, []string{"step", "outcome"})

	MessagesPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "publisher",
		Name:      "messages_published_total",
		Help:      "Total number of outbound messages accepted by the transport.",
	}, []string{"topic"})

	PublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "publisher",
		Name:      "publish_failures_total",
		Help:      "Total number of outbound messages the transport refused.",
	}, []string{"topic"})

	OutboxRelayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "outbox",
		Name:      "messages_relayed_total",
		Help:      "Outbox messages handled by the relay job, by result.",
	}, []string{"result"})

	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "created_total",
		Help:      "Total number of orders created.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests processed.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latencies in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
