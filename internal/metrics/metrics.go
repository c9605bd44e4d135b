// Package metrics exposes the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics groups the domain counters. A nil *Metrics records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	codesIssued      *prometheus.CounterVec
	codeChecks       *prometheus.CounterVec
	logins           *prometheus.CounterVec
	orderCancels     *prometheus.CounterVec
	requestsRejected prometheus.Counter
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		codesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tripbook",
			Name:      "verification_codes_issued_total",
			Help:      "Verification codes issued, by purpose.",
		}, []string{"type"}),
		codeChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tripbook",
			Name:      "verification_checks_total",
			Help:      "Verification attempts, by purpose and result.",
		}, []string{"type", "result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tripbook",
			Name:      "logins_total",
			Help:      "Login attempts, by method and result.",
		}, []string{"method", "result"}),
		orderCancels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tripbook",
			Name:      "order_cancellations_total",
			Help:      "Order cancellation attempts, by result.",
		}, []string{"result"}),
		requestsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tripbook",
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the per-IP limiter.",
		}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.codesIssued,
		m.codeChecks,
		m.logins,
		m.orderCancels,
		m.requestsRejected,
	)
	return m
}

func (m *Metrics) CodeIssued(typ string) {
	if m == nil {
		return
	}
	m.codesIssued.WithLabelValues(typ).Inc()
}

func (m *Metrics) CodeChecked(typ string, ok bool) {
	if m == nil {
		return
	}
	m.codeChecks.WithLabelValues(typ, result(ok)).Inc()
}

func (m *Metrics) Login(method string, ok bool) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(method, result(ok)).Inc()
}

func (m *Metrics) OrderCancel(ok bool) {
	if m == nil {
		return
	}
	m.orderCancels.WithLabelValues(result(ok)).Inc()
}

func (m *Metrics) RequestRejected() {
	if m == nil {
		return
	}
	m.requestsRejected.Inc()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
