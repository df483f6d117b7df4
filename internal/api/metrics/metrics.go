// Package metrics defines the Prometheus metrics for the library
// client's outbound request pipeline. It is the single source of truth
// for metric names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "library_client"

// RequestsTotal counts outbound requests by method and response status.
// Labels:
//   - method: HTTP method of the request (e.g. "GET")
//   - status: numeric response status, or "error" when no response arrived
var RequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Total number of outbound backend requests.",
	},
	[]string{"method", "status"},
)

// RequestDuration measures wall-clock time per outbound request.
// Label:
//   - method: HTTP method of the request
var RequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "Duration of outbound backend requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// AuthFailuresTotal counts 401 responses, each of which forces a logout.
var AuthFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of 401 responses that forced a logout.",
	},
)
