// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "accent_vote"

// Metrics holds the service's collectors on a private registry, so tests
// can create as many as they like.
type Metrics struct {
	registry      *prometheus.Registry
	votesAccepted prometheus.Counter
	votesRejected *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		votesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_accepted_total",
			Help:      "Votes recorded in the ledger.",
		}),
		votesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_rejected_total",
			Help:      "Vote submissions rejected, by error kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(
		m.votesAccepted,
		m.votesRejected,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) VoteAccepted() {
	m.votesAccepted.Inc()
}

// VoteRejected counts a rejection under kind, or "Internal" when kind is
// empty.
func (m *Metrics) VoteRejected(kind string) {
	if kind == "" {
		kind = "Internal"
	}
	m.votesRejected.WithLabelValues(kind).Inc()
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
