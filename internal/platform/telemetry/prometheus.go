package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upstream attempt outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeFailure     = "failure"
	OutcomeCircuitOpen = "circuit_open"
)

// QuoteMetrics counts proxy traffic towards the upstream quote hosts.
type QuoteMetrics struct {
	registry  *prometheus.Registry
	attempts  *prometheus.CounterVec
	exhausted prometheus.Counter
}

// NewQuoteMetrics registers the quote counters plus the Go and process
// collectors on a private registry.
func NewQuoteMetrics(namespace string) *QuoteMetrics {
	reg := prometheus.NewRegistry()

	m := &QuoteMetrics{
		registry: reg,
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_attempts_total",
			Help:      "Upstream quote requests by host and outcome.",
		}, []string{"source", "outcome"}),
		exhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_exhausted_total",
			Help:      "Proxy requests for which every upstream host failed.",
		}),
	}

	reg.MustRegister(
		m.attempts,
		m.exhausted,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveAttempt records one upstream call.
func (m *QuoteMetrics) ObserveAttempt(source, outcome string) {
	if m == nil {
		return
	}

	m.attempts.WithLabelValues(source, outcome).Inc()
}

// ObserveExhausted records a request that fell through every host.
func (m *QuoteMetrics) ObserveExhausted() {
	if m == nil {
		return
	}

	m.exhausted.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *QuoteMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
