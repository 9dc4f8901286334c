package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yogitrack/studio/studio"
)

// Metrics holds the Prometheus collectors of one server. Each Metrics has
// its own registry so tests can build several routers in one process.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	checkinsTotal       *prometheus.CounterVec
	cancellationsTotal  *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yogitrack_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yogitrack_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	m.checkinsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yogitrack_checkins_total",
			Help: "Check-in attempts by outcome",
		},
		[]string{"outcome"},
	)
	m.cancellationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yogitrack_cancellations_total",
			Help: "Check-in cancellations by outcome",
		},
		[]string{"outcome"},
	)

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.checkinsTotal,
		m.cancellationsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Hooks returns studio callbacks that count workflow outcomes.
func (m *Metrics) Hooks() studio.Hooks {
	return studio.Hooks{
		OnCheckIn: func(err error) {
			m.checkinsTotal.WithLabelValues(checkinOutcome(err)).Inc()
		},
		OnCancel: func(restored bool, err error) {
			m.cancellationsTotal.WithLabelValues(cancelOutcome(restored, err)).Inc()
		},
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency, labelled by the matched
// chi route pattern rather than the raw path.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func checkinOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, studio.ErrInsufficientBalance):
		return "no_balance"
	case errors.Is(err, studio.ErrNotFound):
		return "not_found"
	case errors.Is(err, studio.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}

func cancelOutcome(restored bool, err error) string {
	switch {
	case err == nil && restored:
		return "restored"
	case err == nil:
		return "not_restored"
	case errors.Is(err, studio.ErrAlreadyCancelled):
		return "already_cancelled"
	case errors.Is(err, studio.ErrNotFound):
		return "not_found"
	case errors.Is(err, studio.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}
