package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInstrumentedRouter(c *Collector) http.Handler {
	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.Get("/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	return r
}

func TestCollector_CountsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	router := newInstrumentedRouter(c)

	// Two different IDs land in the same route-pattern series.
	for _, id := range []string{"1111", "2222"} {
		req := httptest.NewRequest(http.MethodGet, "/tasks/"+id, nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	count := testutil.ToFloat64(c.requests.WithLabelValues("GET", "/tasks/{id}", "200"))
	assert.Equal(t, 2.0, count)
}

func TestCollector_CountsAuthFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	router := newInstrumentedRouter(c)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.authFailures))
}

func TestCollector_RecordProviderCall(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordProviderCall("ok")
	c.RecordProviderCall("ok")
	c.RecordProviderCall("rejected")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.providerCalls.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.providerCalls.WithLabelValues("rejected")))
}

func TestHandler_ServesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	router := newInstrumentedRouter(c)

	req := httptest.NewRequest(http.MethodGet, "/tasks/abc", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "taskhub_http_requests_total"))
}
