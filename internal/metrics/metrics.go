// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcomes
const (
	FetchOK             = "ok"
	FetchTransportError = "transport_error"
	FetchMalformed      = "malformed"
)

// Upsert results
const (
	UpsertInserted = "inserted"
	UpsertExisting = "existing"
	UpsertRace     = "race"
)

// Metrics groups the collectors on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	astroFetch       *prometheus.CounterVec
	astroUpsert      *prometheus.CounterVec
	astroLastSuccess prometheus.Gauge
	httpRequests     *prometheus.CounterVec
	eventClients     prometheus.Gauge
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		astroFetch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coopcontrol",
			Subsystem: "astro",
			Name:      "fetch_total",
			Help:      "Sunrise-sunset provider calls by outcome.",
		}, []string{"outcome"}),
		astroUpsert: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coopcontrol",
			Subsystem: "astro",
			Name:      "upsert_total",
			Help:      "Astronomical upserts by result.",
		}, []string{"result"}),
		astroLastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "coopcontrol",
			Subsystem: "astro",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful daily acquisition.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coopcontrol",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
		eventClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "coopcontrol",
			Subsystem: "events",
			Name:      "clients",
			Help:      "Connected websocket event clients.",
		}),
	}

	m.registry.MustRegister(
		m.astroFetch,
		m.astroUpsert,
		m.astroLastSuccess,
		m.httpRequests,
		m.eventClients,
	)
	return m
}

// Registry exposes the underlying registry for tests and custom exporters
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveFetch counts one provider call
func (m *Metrics) ObserveFetch(outcome string) {
	if m == nil {
		return
	}
	m.astroFetch.WithLabelValues(outcome).Inc()
}

// ObserveUpsert counts one upsert
func (m *Metrics) ObserveUpsert(result string) {
	if m == nil {
		return
	}
	m.astroUpsert.WithLabelValues(result).Inc()
}

// MarkAstroSuccess records the time of a successful acquisition
func (m *Metrics) MarkAstroSuccess(t time.Time) {
	if m == nil {
		return
	}
	m.astroLastSuccess.Set(float64(t.Unix()))
}

// ObserveRequest counts one HTTP request
func (m *Metrics) ObserveRequest(route string, code int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// SetEventClients records the number of connected websocket clients
func (m *Metrics) SetEventClients(n int) {
	if m == nil {
		return
	}
	m.eventClients.Set(float64(n))
}
