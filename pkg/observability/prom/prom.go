// Package prom implements the observability hooks with Prometheus
// collectors.
package prom

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/ganttrow/pkg/observability"
)

const namespace = "ganttrow"

// Metrics holds the collectors. It implements every hook interface.
type Metrics struct {
	registry *prometheus.Registry

	layouts        *prometheus.CounterVec
	layoutDuration *prometheus.HistogramVec
	rows           *prometheus.CounterVec
	rowDuration    *prometheus.HistogramVec
	pills          prometheus.Counter
	renders        *prometheus.CounterVec
	renderDuration prometheus.Histogram
	cacheEvents    *prometheus.CounterVec
	cacheBytes     *prometheus.CounterVec
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.ServerHooks   = (*Metrics)(nil)
)

// New creates the collectors and registers them, with the Go and process
// collectors, on reg. A nil reg means a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: reg,
		layouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "layouts_total",
			Help: "Chart layouts by scale unit and outcome.",
		}, []string{"unit", "outcome"}),
		layoutDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "layout_duration_seconds",
			Help:    "Chart layout duration.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"unit"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "rows_total",
			Help: "Laid-out rows by kind and outcome.",
		}, []string{"kind", "outcome"}),
		rowDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "row_duration_seconds",
			Help:    "Single row layout duration.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
		}, []string{"kind"}),
		pills: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "pills_total",
			Help: "Pills produced over all layouts.",
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "renders_total",
			Help: "Artifact renders by format.",
		}, []string{"format"}),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "render_duration_seconds",
			Help:    "Render duration for all requested formats.",
			Buckets: prometheus.DefBuckets,
		}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_events_total",
			Help: "Cache hits, misses and writes by key type.",
		}, []string{"key_type", "event"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_written_bytes_total",
			Help: "Bytes written to the cache by key type.",
		}, []string{"key_type"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.layouts, m.layoutDuration, m.rows, m.rowDuration, m.pills,
		m.renders, m.renderDuration, m.cacheEvents, m.cacheBytes,
		m.requests, m.requestLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Register installs m as the global pipeline, cache and server hooks.
func (m *Metrics) Register() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetServerHooks(m)
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func rowKind(grouped bool) string {
	if grouped {
		return "group"
	}
	return "leaf"
}

func (m *Metrics) OnLayoutStart(context.Context, string, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, unit string, _, pills int, d time.Duration, err error) {
	m.layouts.WithLabelValues(unit, outcome(err)).Inc()
	m.layoutDuration.WithLabelValues(unit).Observe(d.Seconds())
	if err == nil {
		m.pills.Add(float64(pills))
	}
}

func (m *Metrics) OnRowComplete(_ context.Context, grouped bool, _ int, d time.Duration, err error) {
	kind := rowKind(grouped)
	m.rows.WithLabelValues(kind, outcome(err)).Inc()
	m.rowDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		return
	}
	for _, f := range formats {
		m.renders.WithLabelValues(f).Inc()
	}
	m.renderDuration.Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(_ context.Context, method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestLatency.WithLabelValues(method, route).Observe(d.Seconds())
}
