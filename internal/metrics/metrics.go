// Package metrics provides Prometheus metrics for the architect service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	GatewayCalls    *prometheus.CounterVec
	GatewayDuration *prometheus.HistogramVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	Projects        prometheus.Gauge
	Notifications   *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		GatewayCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "architect_gateway_calls_total",
				Help: "AI gateway calls by operation and outcome.",
			},
			[]string{"op", "status"},
		),
		GatewayDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "architect_gateway_call_duration_seconds",
				Help:    "AI gateway call latency by operation.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
			},
			[]string{"op"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "architect_http_requests_total",
				Help: "HTTP requests by route and status code.",
			},
			[]string{"route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "architect_http_request_duration_seconds",
				Help:    "HTTP request latency by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		Projects: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "architect_projects",
				Help: "Number of projects currently held by the store.",
			},
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "architect_notifications_total",
				Help: "Notifications emitted by type.",
			},
			[]string{"type"},
		),
		registry: reg,
	}

	reg.MustRegister(m.GatewayCalls)
	reg.MustRegister(m.GatewayDuration)
	reg.MustRegister(m.HTTPRequests)
	reg.MustRegister(m.HTTPDuration)
	reg.MustRegister(m.Projects)
	reg.MustRegister(m.Notifications)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordGatewayCall records one gateway round trip. A nil receiver is a no-op.
func (m *Metrics) RecordGatewayCall(op, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.GatewayCalls.WithLabelValues(op, status).Inc()
	m.GatewayDuration.WithLabelValues(op).Observe(d.Seconds())
}

// RecordHTTPRequest records one served request. A nil receiver is a no-op.
func (m *Metrics) RecordHTTPRequest(route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}

// SetProjects sets the project gauge. A nil receiver is a no-op.
func (m *Metrics) SetProjects(n int) {
	if m == nil {
		return
	}
	m.Projects.Set(float64(n))
}

// RecordNotification counts an emitted notification. A nil receiver is a no-op.
func (m *Metrics) RecordNotification(kind string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(kind).Inc()
}
