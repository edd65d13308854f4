// Package metrics defines casino API metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// API counter vectors
var (
	APIRetriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_retries_total",
		Help:      "Total number of retried casino requests by operation",
	}, []string{"operation"})

	APIErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_errors_total",
		Help:      "Total number of failed casino calls by error class",
	}, []string{"class"})
)

// RecordRetry records a retried request.
func RecordRetry(operation string) {
	APIRetriesTotal.WithLabelValues(operation).Inc()
}

// RecordAPIError records a failed call.
func RecordAPIError(class string) {
	APIErrorsTotal.WithLabelValues(class).Inc()
}
