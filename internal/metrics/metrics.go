package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a private registry so several
// instances can coexist in one process (tests, CLI one-shots).
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	contentPublished *prometheus.CounterVec
	moderation       *prometheus.CounterVec
	votes            *prometheus.CounterVec
	notifications    *prometheus.CounterVec
	triggerRuns      *prometheus.CounterVec
}

func New(serviceName string) *Metrics {
	prefix := strings.ReplaceAll(serviceName, "-", "_")

	m := &Metrics{registry: prometheus.NewRegistry()}

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	m.contentPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_content_published_total",
			Help: "Content items moved to published, by trigger source",
		},
		[]string{"source"},
	)
	m.moderation = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_moderation_actions_total",
			Help: "Moderation actions by kind",
		},
		[]string{"action"},
	)
	m.votes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_poll_votes_total",
			Help: "Poll vote attempts by outcome",
		},
		[]string{"outcome"},
	)
	m.notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_notifications_total",
			Help: "Notification deliveries by outcome",
		},
		[]string{"outcome"},
	)
	m.triggerRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_publish_trigger_runs_total",
			Help: "Publication trigger runs by result",
		},
		[]string{"result"},
	)

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.contentPublished,
		m.moderation,
		m.votes,
		m.notifications,
		m.triggerRuns,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) ContentPublished(source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.contentPublished.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) Moderation(action string) {
	if m == nil {
		return
	}
	m.moderation.WithLabelValues(action).Inc()
}

func (m *Metrics) Vote(outcome string) {
	if m == nil {
		return
	}
	m.votes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Notification(outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) TriggerRun(result string) {
	if m == nil {
		return
	}
	m.triggerRuns.WithLabelValues(result).Inc()
}
