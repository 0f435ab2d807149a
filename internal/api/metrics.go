package api

import (
	"strconv"
	"time"

	"flowcast/internal/simulation"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	trials   *prometheus.CounterVec
	datasets prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowcast",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "flowcast",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		trials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowcast",
			Subsystem: "simulation",
			Name:      "trials_total",
			Help:      "Monte-Carlo trials executed by forecast mode.",
		}, []string{"mode"}),
		datasets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flowcast",
			Name:      "datasets_analyzed_total",
			Help:      "Uploaded datasets that went through the analysis pipeline.",
		}),
	}
	m.registry.MustRegister(
		m.requests,
		m.latency,
		m.trials,
		m.datasets,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *metrics) observeRequest(route, method string, code int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.latency.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *metrics) observeForecast(res simulation.Result) {
	m.trials.WithLabelValues(string(res.Mode)).Add(float64(res.Trials))
}
