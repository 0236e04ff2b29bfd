// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NotRecognized labels commands that matched no rule.
const NotRecognized = "not_recognized"

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mealplanner_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mealplanner_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	CommandsInterpreted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mealplanner_commands_interpreted_total",
			Help: "Total number of natural-language commands by resulting action",
		},
		[]string{"action"},
	)

	AIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mealplanner_ai_requests_total",
			Help: "Total number of AI completions by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mealplanner_cache_lookups_total",
			Help: "Response cache lookups by result",
		},
		[]string{"result"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mealplanner_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
