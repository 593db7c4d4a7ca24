// Package metrics instruments the HTTP API with Prometheus collectors.
//
// Crawl-side metrics live with the progress sinks; this package covers only
// the serve surface, so both can share one registry without name collisions.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTP tracks request counts and latencies for the API server.
type HTTP struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTP registers the request collectors against reg.
func NewHTTP(reg prometheus.Registerer) (*HTTP, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	h := &HTTP{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jarchive_http_requests_total",
			Help: "HTTP requests served partitioned by method and status code.",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jarchive_http_request_duration_seconds",
			Help:    "HTTP request latency partitioned by method and route.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "route"}),
	}
	for _, collector := range []prometheus.Collector{h.requests, h.duration} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register http collector: %w", err)
		}
	}
	return h, nil
}

// Observe records a single completed request.
func (h *HTTP) Observe(method, route string, code int, elapsed time.Duration) {
	h.requests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	h.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
