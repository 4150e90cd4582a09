package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query service Prometheus metrics.
var (
	QueryRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rigel",
			Name:      "query_requests_total",
			Help:      "Total number of query service requests",
		},
		[]string{"schema", "shape", "status"},
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rigel",
			Name:      "query_duration_seconds",
			Help:      "Query duration in seconds, including materialization",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"schema", "shape"},
	)

	QueryItemsReturned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rigel",
			Name:      "query_items_returned_total",
			Help:      "Total content items returned by the query service",
		},
		[]string{"schema", "shape"},
	)
)

var queryMetricsRegistered bool

// RegisterQueryMetrics registers query service metrics. Must be called once from main.
func RegisterQueryMetrics() {
	if queryMetricsRegistered {
		return
	}
	prometheus.MustRegister(QueryRequestsTotal)
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(QueryItemsReturned)
	queryMetricsRegistered = true
}
