// Package metrics defines the Prometheus collectors used by the catalog
// service and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search outcome labels.
const (
	ResultMatched = "matched"
	ResultEmpty   = "zero_result"
	ResultError   = "error"
)

// Metrics holds all Prometheus collectors for the service. Each instance owns
// its registry, so several engines (or tests) can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	SearchesTotal        *prometheus.CounterVec
	SearchLatency        *prometheus.HistogramVec
	SearchResultsCount   prometheus.Histogram
	ParseCacheHits       prometheus.Counter
	ParseCacheMisses     prometheus.Counter
	CatalogReloadsTotal  *prometheus.CounterVec
	CatalogProducts      prometheus.Gauge
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, route, and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"method", "route"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_searches_total",
				Help: "Total catalog searches by mode and outcome (matched, zero_result, error).",
			},
			[]string{"mode", "result"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalog_search_latency_seconds",
				Help:    "Catalog search latency in seconds.",
				Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
			},
			[]string{"mode"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "catalog_search_results_count",
				Help:    "Number of products returned per search.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500},
			},
		),
		ParseCacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "query_parse_cache_hits_total",
				Help: "Total number of parse cache hits.",
			},
		),
		ParseCacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "query_parse_cache_misses_total",
				Help: "Total number of parse cache misses.",
			},
		),
		CatalogReloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_reloads_total",
				Help: "Total catalog reloads by status.",
			},
			[]string{"status"},
		),
		CatalogProducts: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "catalog_products",
				Help: "Number of products in the loaded catalog.",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.SearchesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.ParseCacheHits,
		m.ParseCacheMisses,
		m.CatalogReloadsTotal,
		m.CatalogProducts,
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus scrape HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveReload records the outcome of a catalog load.
func (m *Metrics) ObserveReload(products int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.CatalogReloadsTotal.WithLabelValues("error").Inc()
		return
	}
	m.CatalogReloadsTotal.WithLabelValues("ok").Inc()
	m.CatalogProducts.Set(float64(products))
}

// ObserveSearch records one search.
func (m *Metrics) ObserveSearch(mode string, seconds float64, results int, err error) {
	if m == nil {
		return
	}
	m.SearchLatency.WithLabelValues(mode).Observe(seconds)
	switch {
	case err != nil:
		m.SearchesTotal.WithLabelValues(mode, ResultError).Inc()
		return
	case results == 0:
		m.SearchesTotal.WithLabelValues(mode, ResultEmpty).Inc()
	default:
		m.SearchesTotal.WithLabelValues(mode, ResultMatched).Inc()
	}
	m.SearchResultsCount.Observe(float64(results))
}
