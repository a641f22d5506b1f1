package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcomes, used as the "outcome" label.
const (
	outcomeSuccess             = "success"
	outcomeUpstreamError       = "upstream_error"
	outcomeUpstreamUnavailable = "upstream_unavailable"
	outcomeInvalidRequest      = "invalid_request"
	outcomeInternalError       = "internal_error"
)

type metrics struct {
	handler            http.Handler
	requests           *prometheus.CounterVec
	generationDuration prometheus.Histogram
}

// newMetrics registers the service collectors on reg. A nil reg gets a fresh
// registry that also carries the Go runtime and process collectors.
func newMetrics(reg *prometheus.Registry) *metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	factory := promauto.With(reg)
	return &metrics{
		handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "story_requests_total",
				Help: "Story generation requests, partitioned by outcome.",
			},
			[]string{"outcome"},
		),
		generationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "story_generation_duration_seconds",
			Help:    "Time spent waiting on the upstream provider per story.",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		}),
	}
}

func (m *metrics) observe(outcome string) {
	m.requests.WithLabelValues(outcome).Inc()
}
