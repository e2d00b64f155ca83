// Package metrics exposes Prometheus metrics for interview traffic.
//
// Metrics:
//   - interview_requests_total: handled interview requests by agent type and outcome
//   - interview_upstream_duration_seconds: generative API latency by agent type
//   - interview_audit_entries_total: audit log entries appended
//
// A nil *Collector is valid and records nothing, so callers can run with
// metrics disabled without branching.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tjfontaine/interview-gateway/internal/domain"
)

// Outcome label for successful requests. Failures use the domain.ErrorType value.
const OutcomeSuccess = "success"

// Collector owns the registry and every interview metric.
type Collector struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	auditEntries     prometheus.Counter
}

// NewCollector creates and registers the interview metrics. If registry is nil
// a fresh registry is created.
func NewCollector(namespace string, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = "interview"
	}

	c := &Collector{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of interview requests handled",
			},
			[]string{"agent_type", "outcome"},
		),
		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_duration_seconds",
				Help:      "Duration of generative API calls in seconds",
				// LLM latencies up to the 30s upstream timeout
				Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
			[]string{"agent_type"},
		),
		auditEntries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "audit_entries_total",
				Help:      "Total number of audit log entries appended",
			},
		),
	}

	registry.MustRegister(c.requestsTotal, c.upstreamDuration, c.auditEntries)

	return c
}

// RecordRequest counts one handled interview request.
func (c *Collector) RecordRequest(agent domain.AgentType, outcome string) {
	if c == nil {
		return
	}
	c.requestsTotal.WithLabelValues(agentLabel(agent), outcome).Inc()
}

// ObserveUpstream records the latency of one generative API call.
func (c *Collector) ObserveUpstream(agent domain.AgentType, d time.Duration) {
	if c == nil {
		return
	}
	c.upstreamDuration.WithLabelValues(agentLabel(agent)).Observe(d.Seconds())
}

// RecordAuditEntry counts one appended audit entry.
func (c *Collector) RecordAuditEntry() {
	if c == nil {
		return
	}
	c.auditEntries.Inc()
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler for the Prometheus metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(
		c.registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			ErrorHandling:     promhttp.ContinueOnError,
		},
	)
}

// agentLabel bounds label cardinality: agent_type is client-controlled.
func agentLabel(agent domain.AgentType) string {
	switch agent {
	case domain.AgentMain, domain.AgentOrchestrator, domain.AgentClarification:
		return string(agent)
	default:
		return "other"
	}
}
