// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the server records into.
//
// Metrics:
//   - packlist_http_requests_total{method,route,status}
//   - packlist_http_request_duration_seconds{method,route}
//   - packlist_weather_cache_total{result}         hit | miss
//   - packlist_weather_fetch_total{kind,outcome}   forecast|historical|preview, ok|unavailable
//   - packlist_query_cache_invalidations_total{entity}
//   - packlist_template_applied_items_total
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
	WeatherCache        *prometheus.CounterVec
	WeatherFetch        *prometheus.CounterVec
	CacheInvalidations  *prometheus.CounterVec
	TemplateAppliedItem prometheus.Counter
}

// New registers all collectors on a fresh registry. Each call is independent,
// so tests can build as many as they like without duplicate-registration panics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "packlist_http_requests_total",
			Help: "HTTP requests served, by route pattern and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "packlist_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		WeatherCache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "packlist_weather_cache_total",
			Help: "Trip weather lookups answered from the persisted cache.",
		}, []string{"result"}),
		WeatherFetch: f.NewCounterVec(prometheus.CounterOpts{
			Name: "packlist_weather_fetch_total",
			Help: "Live weather fetches by kind and outcome.",
		}, []string{"kind", "outcome"}),
		CacheInvalidations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "packlist_query_cache_invalidations_total",
			Help: "Query cache invalidations by entity.",
		}, []string{"entity"}),
		TemplateAppliedItem: f.NewCounter(prometheus.CounterOpts{
			Name: "packlist_template_applied_items_total",
			Help: "Packing items created by applying templates.",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Outcome labels for WeatherFetch.
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
)

// ObserveWeatherFetch records a live fetch.
func (m *Metrics) ObserveWeatherFetch(kind string, available bool) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if !available {
		outcome = OutcomeUnavailable
	}
	m.WeatherFetch.WithLabelValues(kind, outcome).Inc()
}

// ObserveWeatherCache records a cache hit or miss.
func (m *Metrics) ObserveWeatherCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.WeatherCache.WithLabelValues("hit").Inc()
		return
	}
	m.WeatherCache.WithLabelValues("miss").Inc()
}

// ObserveInvalidation records a query cache invalidation for entity.
func (m *Metrics) ObserveInvalidation(entity string) {
	if m == nil {
		return
	}
	m.CacheInvalidations.WithLabelValues(entity).Inc()
}

// ObserveTemplateApplied adds n created items.
func (m *Metrics) ObserveTemplateApplied(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.TemplateAppliedItem.Add(float64(n))
}
