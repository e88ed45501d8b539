// Package metrics registers the saga counters. The inbox drop counter
// matters most: a dropped poison message is silent data loss and must
// stay visible on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Registry *prometheus.Registry

	Outbox OutboxMetrics
	Inbox  InboxMetrics
	Saga   SagaMetrics
	API    APIMetrics
}

type OutboxMetrics struct {
	PublishedTotal       *prometheus.CounterVec
	PublishFailuresTotal *prometheus.CounterVec
}

type InboxMetrics struct {
	ConsumedTotal *prometheus.CounterVec
	RetriedTotal  *prometheus.CounterVec
	DroppedTotal  *prometheus.CounterVec
}

type SagaMetrics struct {
	SettlementsTotal *prometheus.CounterVec
}

type APIMetrics struct {
	RequestsTotal *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		Outbox: OutboxMetrics{
			PublishedTotal: f.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "outbox",
				Name:      "published_total",
				Help:      "Outbox records published to the broker.",
			}, []string{"topic"}),

			PublishFailuresTotal: f.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "outbox",
				Name:      "publish_failures_total",
				Help:      "Publish attempts that failed; records stay pending and are retried.",
			}, []string{"topic"}),
		},

		Inbox: InboxMetrics{
			ConsumedTotal: f.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "inbox",
				Name:      "consumed_total",
				Help:      "Broker records handled and committed successfully.",
			}, []string{"topic"}),

			RetriedTotal: f.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "inbox",
				Name:      "retried_total",
				Help:      "Handler failures below the poison threshold.",
			}, []string{"topic"}),

			DroppedTotal: f.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "inbox",
				Name:      "dropped_total",
				Help:      "Poison records dropped after exhausting retries; the offset was committed past them.",
			}, []string{"topic"}),
		},

		Saga: SagaMetrics{
			SettlementsTotal: f.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "saga",
				Name:      "settlements_total",
				Help:      "Settlement decisions by outcome.",
			}, []string{"decision"}),
		},

		API: APIMetrics{
			RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, path and status.",
			}, []string{"method", "path", "status"}),
		},
	}
}
