// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts served requests by method and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arsenal",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method and status code.",
	}, []string{"method", "status"})

	// HTTPDuration observes request latency by method.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "arsenal",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	// StoreOperations counts record store operations by file, operation and result.
	StoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arsenal",
		Name:      "store_operations_total",
		Help:      "Record store operations by store file, operation and result.",
	}, []string{"store", "op", "result"})

	// AuditEntries counts audit log appends by action kind.
	AuditEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arsenal",
		Name:      "audit_entries_total",
		Help:      "Audit log entries written by action kind.",
	}, []string{"kind"})

	// AuditFailures counts audit appends that could not be written.
	AuditFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "arsenal",
		Name:      "audit_failures_total",
		Help:      "Audit log entries that failed to persist.",
	})
)

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Result maps an error to the "result" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
