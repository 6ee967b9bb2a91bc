// Package metrics exposes Prometheus metrics for the HTTP layer and the update queue.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adfharrison1/go-search/pkg/domain"
)

const namespace = "gosearch"

// Metrics owns a registry so that several servers can live in one process
type Metrics struct {
	registry *prometheus.Registry

	UpdatesRegistered *prometheus.CounterVec
	UpdatesProcessed  *prometheus.CounterVec
	UpdateDuration    *prometheus.HistogramVec
	RequestDuration   *prometheus.HistogramVec
}

// New creates and registers every collector
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.UpdatesRegistered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "updates_registered_total",
		Help:      "Updates accepted by the update queue",
	}, []string{"type", "async"})
	m.UpdatesProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "updates_processed_total",
		Help:      "Updates applied to an index, by outcome",
	}, []string{"type", "status"})
	m.UpdateDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "update_duration_seconds",
		Help:      "Time spent applying an update",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
	}, []string{"type"})
	m.RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	m.registry.MustRegister(
		m.UpdatesRegistered,
		m.UpdatesProcessed,
		m.UpdateDuration,
		m.RequestDuration,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// UpdateRegistered implements updates.Recorder
func (m *Metrics) UpdateRegistered(kind domain.UpdateKind, async bool) {
	m.UpdatesRegistered.WithLabelValues(string(kind), strconv.FormatBool(async)).Inc()
}

// UpdateProcessed implements updates.Recorder
func (m *Metrics) UpdateProcessed(kind domain.UpdateKind, status domain.UpdateStatus, took time.Duration) {
	m.UpdatesProcessed.WithLabelValues(string(kind), string(status)).Inc()
	m.UpdateDuration.WithLabelValues(string(kind)).Observe(took.Seconds())
}

// Middleware records the latency of every request under its route template
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		m.RequestDuration.WithLabelValues(r.Method, route, strconv.Itoa(rw.status)).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
