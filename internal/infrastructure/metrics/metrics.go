// Package metrics defines the prometheus collectors for the HTTP layer and
// the screening pipeline.  All observe methods are nil-receiver safe so
// that components can run without metrics wired (tests, CLI).
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "molscreen"

// HTTP holds request-level collectors.
type HTTP struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// ObserveRequest records one served request.
func (h *HTTP) ObserveRequest(method, path string, status int, took time.Duration) {
	if h == nil {
		return
	}
	code := strconv.Itoa(status)
	h.requestsTotal.WithLabelValues(method, path, code).Inc()
	h.requestDuration.WithLabelValues(method, path).Observe(took.Seconds())
}

// Screening holds pipeline-level collectors.
type Screening struct {
	submissionsTotal   *prometheus.CounterVec
	predictionDuration prometheus.Histogram
	uploadBytes        prometheus.Histogram
}

// ObserveSubmission records one submission attempt with its outcome, one of
// "ok", "rejected", "parse_failed", "conflict", "upstream_failed".
func (s *Screening) ObserveSubmission(source, outcome string) {
	if s == nil {
		return
	}
	s.submissionsTotal.WithLabelValues(source, outcome).Inc()
}

// ObservePredictionDuration records the latency of one upstream call.
func (s *Screening) ObservePredictionDuration(took time.Duration) {
	if s == nil {
		return
	}
	s.predictionDuration.Observe(took.Seconds())
}

// ObserveUploadBytes records the size of one accepted upload.
func (s *Screening) ObserveUploadBytes(n int64) {
	if s == nil {
		return
	}
	s.uploadBytes.Observe(float64(n))
}

// Metrics bundles all collectors with their registry.
type Metrics struct {
	HTTP      *HTTP
	Screening *Screening

	registry *prometheus.Registry
}

// New constructs and registers all collectors on a fresh registry,
// including the standard Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	h := &HTTP{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests served, by method, route and status.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
	reg.MustRegister(h.requestsTotal, h.requestDuration)

	s := &Screening{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "screening",
			Name:      "submissions_total",
			Help:      "Screening submissions, by input source and outcome.",
		}, []string{"source", "outcome"}),
		predictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "screening",
			Name:      "prediction_duration_seconds",
			Help:      "Latency of upstream prediction calls.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		uploadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "screening",
			Name:      "upload_bytes",
			Help:      "Size of accepted spreadsheet uploads.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 6),
		}),
	}
	reg.MustRegister(s.submissionsTotal, s.predictionDuration, s.uploadBytes)

	return &Metrics{HTTP: h, Screening: s, registry: reg}
}

// Handler returns the /metrics scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
