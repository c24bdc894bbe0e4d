// Package metrics exposes Prometheus metrics for page fetches and the cache.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "edsview"

// Fetch outcomes recorded in the "outcome" label.
const (
	OutcomeSuccess      = "success"
	OutcomeHTTPError    = "http_error"
	OutcomeNetworkError = "network_error"
	OutcomeCanceled     = "canceled"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	FetchesTotal      *prometheus.CounterVec
	FetchDuration     *prometheus.HistogramVec
	CacheLookups      *prometheus.CounterVec
	CacheEvictions    prometheus.Counter
	ScreenTransitions *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates and registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers the collectors on reg and serves them from g.
func NewWithRegistry(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetches_total",
				Help:      "Plain-HTML fetches by document kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Duration of plain-HTML fetches including parsing",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"kind"},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Page cache lookups by result",
			},
			[]string{"result"},
		),
		CacheEvictions: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "evictions_total",
				Help:      "Page cache entries removed before a forced reload",
			},
		),
		ScreenTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "screen",
				Name:      "transitions_total",
				Help:      "Screen state transitions by target state",
			},
			[]string{"state"},
		),
		gatherer: g,
	}
}

// ObserveFetch records one fetch.
func (m *Metrics) ObserveFetch(kind, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(kind, outcome).Inc()
	m.FetchDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// CacheLookup records a cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// CacheEvicted records a forced eviction.
func (m *Metrics) CacheEvicted() {
	if m == nil {
		return
	}
	m.CacheEvictions.Inc()
}

// StateChanged records a screen transition into state.
func (m *Metrics) StateChanged(state string) {
	if m == nil {
		return
	}
	m.ScreenTransitions.WithLabelValues(state).Inc()
}

// Handler serves the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
