package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(httpRequestsTotal, httpRequestLatencyMs) }

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Inbound HTTP requests by route pattern and status code.",
		},
		[]string{"route", "method", "code"},
	)

	httpRequestLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_latency_ms",
			Help:    "Inbound HTTP latency in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"route"},
	)
)

func ObserveHTTP(route, method string, code int, latencyMs int64) {
	httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	httpRequestLatencyMs.WithLabelValues(route).Observe(float64(latencyMs))
}
