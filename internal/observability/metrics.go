package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	httpRequestsTotal   *prometheus.CounterVec
	httpLatencySeconds  *prometheus.HistogramVec
	feedbackSubmissions *prometheus.CounterVec
	storeWriteSeconds   prometheus.Histogram
	storeConnected      prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used by the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency distribution for HTTP requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		feedbackSubmissions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedback_submissions_total",
			Help: "Feedback submissions by outcome.",
		}, []string{"outcome"})

		storeWriteSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "feedback_store_write_seconds",
			Help:    "Latency of feedback inserts into the store.",
			Buckets: prometheus.DefBuckets,
		})

		storeConnected = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feedback_store_connected",
			Help: "1 when the feedback store is reachable, 0 otherwise.",
		})

		prometheus.MustRegister(httpRequestsTotal, httpLatencySeconds, feedbackSubmissions, storeWriteSeconds, storeConnected)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// FeedbackSubmissions exposes the submission outcome counter.
func FeedbackSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return feedbackSubmissions
}

// StoreWriteLatency exposes the store insert latency histogram.
func StoreWriteLatency() prometheus.Histogram {
	RegisterMetrics()
	return storeWriteSeconds
}

// StoreConnected exposes the store connectivity gauge.
func StoreConnected() prometheus.Gauge {
	RegisterMetrics()
	return storeConnected
}
