// Package metrics defines the Prometheus collectors exported by the server.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "splitbill"

// Metrics groups the server's collectors.
type Metrics struct {
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	Allocations  prometheus.Counter
	Receipts     *prometheus.CounterVec
	Shares       *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Allocations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocations_total",
			Help:      "Bills run through the allocation engine.",
		}),
		Receipts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipts_total",
			Help:      "Receipt uploads by outcome.",
		}, []string{"result"}),
		Shares: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "share_operations_total",
			Help:      "Share API operations by operation and outcome.",
		}, []string{"op", "result"}),
	}
}

// ObserveHTTP records one finished request.
func (m *Metrics) ObserveHTTP(method, route string, code int, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(seconds)
}

// Allocated counts one allocation.
func (m *Metrics) Allocated() {
	if m == nil {
		return
	}
	m.Allocations.Inc()
}

// Receipt counts one receipt upload with its outcome.
func (m *Metrics) Receipt(result string) {
	if m == nil {
		return
	}
	m.Receipts.WithLabelValues(result).Inc()
}

// Share counts one share operation with its outcome.
func (m *Metrics) Share(op, result string) {
	if m == nil {
		return
	}
	m.Shares.WithLabelValues(op, result).Inc()
}
