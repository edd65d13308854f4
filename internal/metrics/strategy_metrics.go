// Package metrics defines rule-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Rule-specific counter vectors
var (
	RuleFiringsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rule_firings_total",
		Help:      "Total number of rule firings by rule",
	}, []string{"rule"})
)

// RecordRuleFired records a rule firing.
func RecordRuleFired(rule string) {
	RuleFiringsTotal.WithLabelValues(rule).Inc()
}
