package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/relgraph/internal/qerr"
)

// metrics are the Prometheus series the server exports.
type metrics struct {
	queries prometheus.Counter
	errors  *prometheus.CounterVec
	latency prometheus.Summary
}

func newMetrics(r prometheus.Registerer) *metrics {
	m := &metrics{
		queries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "relgraph",
			Name:      "queries_total",
			Help:      "Number of queries received",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relgraph",
			Name:      "query_errors_total",
			Help:      "Number of failed queries by error code",
		}, []string{"code"}),
		latency: prometheus.NewSummary(prometheus.SummaryOpts{
			Namespace:  "relgraph",
			Name:       "query_duration_seconds",
			Help:       "Query latency in seconds",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}),
	}
	r.MustRegister(m.queries, m.errors, m.latency)
	return m
}

func (m *metrics) failed(err error) {
	m.errors.WithLabelValues(string(qerr.CodeOf(err))).Inc()
}
