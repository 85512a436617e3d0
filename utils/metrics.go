package utils

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the service's prometheus counters and histograms.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	httpRequests      *prometheus.CounterVec
	httpLatency       *prometheus.HistogramVec
	wizardTransitions *prometheus.CounterVec
	bookingsSubmitted *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "homeserve",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "homeserve",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		wizardTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "homeserve",
			Subsystem: "wizard",
			Name:      "transitions_total",
			Help:      "Wizard navigation attempts by direction and outcome",
		}, []string{"direction", "moved"}),
		bookingsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "homeserve",
			Subsystem: "wizard",
			Name:      "submits_total",
			Help:      "Wizard submissions by outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.httpRequests, m.httpLatency, m.wizardTransitions, m.bookingsSubmitted)
	return m
}

func (m *Metrics) ObserveRequest(method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(seconds)
}

func (m *Metrics) ObserveTransition(direction string, moved bool) {
	if m == nil {
		return
	}
	m.wizardTransitions.WithLabelValues(direction, strconv.FormatBool(moved)).Inc()
}

func (m *Metrics) ObserveSubmit(outcome string) {
	if m == nil {
		return
	}
	m.bookingsSubmitted.WithLabelValues(outcome).Inc()
}
