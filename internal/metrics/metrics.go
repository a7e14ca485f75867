// Package metrics provides Prometheus metric collection and exposure for
// the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers request-level metrics for the API.
type Collector struct {
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	authFailures   prometheus.Counter
	providerCalls  *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with the
// given registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_http_requests_total",
			Help: "HTTP requests by method, route pattern, and status code.",
		}, []string{"method", "route", "status_code"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskhub_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskhub_auth_failures_total",
			Help: "Requests rejected with HTTP 401.",
		}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_identity_provider_requests_total",
			Help: "Outbound identity provider calls by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		c.requests,
		c.requestLatency,
		c.authFailures,
		c.providerCalls,
	)

	return c
}

// RecordProviderCall records an outbound identity provider call outcome
// ("ok", "rejected", "unavailable").
func (c *Collector) RecordProviderCall(outcome string) {
	c.providerCalls.WithLabelValues(outcome).Inc()
}

// Middleware instruments each request with a counter and a latency
// histogram, labeled by the chi route pattern rather than the raw path so
// /tasks/{id} stays a single series.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chiRoutePattern(r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		c.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.requestLatency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())

		if status == http.StatusUnauthorized {
			c.authFailures.Inc()
		}
	})
}

// chiRoutePattern returns the matched chi route pattern, or the raw path
// when no pattern matched (404s).
func chiRoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
