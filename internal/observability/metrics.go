package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics surface used by the gateway and session manager.
type Recorder interface {
	RecordRequest(method string, status int, duration time.Duration)
	RecordTransportError(method string)
	RecordRefresh(outcome string)
	RecordRetry()
	RecordInvalidation()
}

// Refresh outcomes.
const (
	RefreshSucceeded = "succeeded"
	RefreshFailed    = "failed"
	RefreshReused    = "reused"
	// RefreshSuperseded marks a refresh discarded because the session it
	// started from was logged out or replaced.
	RefreshSuperseded = "superseded"
)

// Metrics collects client-side counters in Prometheus form.
type Metrics struct {
	requests        *prometheus.CounterVec
	transportErrors *prometheus.CounterVec
	latency         prometheus.Histogram
	refreshes       *prometheus.CounterVec
	retries         prometheus.Counter
	invalidations   prometheus.Counter
	consoleRequests *prometheus.CounterVec
	consoleErrors   *prometheus.CounterVec
}

// NewMetrics initializes the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "duty_client_requests_total",
			Help: "Outbound API requests by method and response status.",
		}, []string{"method", "status"}),
		transportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "duty_client_transport_errors_total",
			Help: "Outbound API requests that failed before a response arrived.",
		}, []string{"method"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "duty_client_request_duration_seconds",
			Help:    "Outbound API request latency.",
			Buckets: prometheus.DefBuckets,
		}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "duty_client_token_refresh_total",
			Help: "Access token refresh attempts by outcome.",
		}, []string{"outcome"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "duty_client_request_retries_total",
			Help: "Requests replayed after a successful refresh.",
		}),
		invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "duty_client_session_invalidations_total",
			Help: "Sessions cleared because a refresh failed.",
		}),
		consoleRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "duty_console_requests_total",
			Help: "Console requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		consoleErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "duty_console_errors_total",
			Help: "Console requests that ended in an error, by error code.",
		}, []string{"route", "method", "code"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.transportErrors, m.latency, m.refreshes, m.retries, m.invalidations,
			m.consoleRequests, m.consoleErrors)
	}
	return m
}

// RecordRequest counts a completed request.
func (m *Metrics) RecordRequest(method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.latency.Observe(duration.Seconds())
}

// RecordTransportError counts a request that never got a response.
func (m *Metrics) RecordTransportError(method string) {
	if m == nil {
		return
	}
	m.transportErrors.WithLabelValues(method).Inc()
}

// RecordRefresh counts a refresh attempt.
func (m *Metrics) RecordRefresh(outcome string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(outcome).Inc()
}

// RecordRetry counts a replayed request.
func (m *Metrics) RecordRetry() {
	if m == nil {
		return
	}
	m.retries.Inc()
}

// RecordInvalidation counts a forced logout.
func (m *Metrics) RecordInvalidation() {
	if m == nil {
		return
	}
	m.invalidations.Inc()
}

// RecordConsoleRequest counts a request served by the console.
func (m *Metrics) RecordConsoleRequest(route, method string, status int) {
	if m == nil {
		return
	}
	m.consoleRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

// RecordError counts a console request that failed with code.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.consoleErrors.WithLabelValues(route, method, code).Inc()
}

// Handler serves the registry for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
