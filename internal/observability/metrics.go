package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Rejection phases for RecordRejection.
const (
	PhaseBootstrap = "bootstrap"
	PhaseLive      = "live"
)

// Metrics holds the session lifecycle counters. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	requests    *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	transitions *prometheus.CounterVec
	redirects   *prometheus.CounterVec
}

// NewMetrics registers the counters on registry under namespace.
func NewMetrics(namespace string, registry prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "docdesk"
	}
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Outbound API requests by method and status code.",
		}, []string{"method", "code"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "rejections_total",
			Help:      "Responses that rejected the bearer credential.",
		}, []string{"phase"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Session state transitions by target phase and reason.",
		}, []string{"to", "reason"}),
		redirects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "login_redirects_total",
			Help:      "Navigations to the login surface.",
		}, []string{"reason"}),
	}

	registry.MustRegister(m.requests, m.rejections, m.transitions, m.redirects)
	return m
}

// RecordRequest counts a completed outbound request.
func (m *Metrics) RecordRequest(method string, status int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// RecordRejection counts a 401/403 seen by the gateway.
func (m *Metrics) RecordRejection(phase string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(phase).Inc()
}

// RecordTransition counts a session phase change.
func (m *Metrics) RecordTransition(to, reason string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(to, reason).Inc()
}

// RecordRedirect counts a navigation to the login surface.
func (m *Metrics) RecordRedirect(reason string) {
	if m == nil {
		return
	}
	m.redirects.WithLabelValues(reason).Inc()
}

// Counters exposes the underlying vectors for tests and exporters.
func (m *Metrics) Counters() (requests, rejections, transitions, redirects *prometheus.CounterVec) {
	return m.requests, m.rejections, m.transitions, m.redirects
}
