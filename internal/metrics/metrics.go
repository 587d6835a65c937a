// Package metrics exposes prometheus collectors for the code action pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Invocation outcomes used as the "outcome" label.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomePanic    = "panic"
	OutcomeSkipped  = "disallowed"
	OutcomeCanceled = "canceled"
)

// Collector groups the pipeline metrics. A nil *Collector records nothing.
type Collector struct {
	registry *prometheus.Registry

	requestsTotal      *prometheus.CounterVec
	requestDuration    prometheus.Histogram
	invocationsTotal   *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec
	actionsReturned    prometheus.Histogram
	cyclesBrokenTotal  prometheus.Counter
}

// New creates a Collector registered on a fresh registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codeact_requests_total",
				Help: "Number of code action requests by result.",
			},
			[]string{"result"},
		),
		requestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "codeact_request_duration_seconds",
				Help:    "Time taken to compute the available actions of one request.",
				Buckets: prometheus.DefBuckets,
			},
		),
		invocationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codeact_provider_invocations_total",
				Help: "Number of provider invocations by provider and outcome.",
			},
			[]string{"provider", "outcome"},
		),
		invocationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "codeact_provider_invocation_duration_seconds",
				Help:    "Time taken by one provider invocation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		actionsReturned: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "codeact_actions_returned",
				Help:    "Number of presentable actions returned per request.",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
			},
		),
		cyclesBrokenTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "codeact_ordering_cycles_broken_total",
				Help: "Number of ordering edges ignored to break constraint cycles.",
			},
		),
	}
	c.registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.invocationsTotal,
		c.invocationDuration,
		c.actionsReturned,
		c.cyclesBrokenTotal,
	)
	return c
}

// Registry returns the registry holding the collectors.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the collected metrics in the prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records a finished request.
func (c *Collector) ObserveRequest(result string, d time.Duration, actions int) {
	if c == nil {
		return
	}
	c.requestsTotal.WithLabelValues(result).Inc()
	c.requestDuration.Observe(d.Seconds())
	c.actionsReturned.Observe(float64(actions))
}

// ObserveInvocation records one provider invocation.
func (c *Collector) ObserveInvocation(provider, outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.invocationsTotal.WithLabelValues(provider, outcome).Inc()
	if outcome != OutcomeSkipped {
		c.invocationDuration.WithLabelValues(provider).Observe(d.Seconds())
	}
}

// AddCycles records ordering edges dropped by the topological sort.
func (c *Collector) AddCycles(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.cyclesBrokenTotal.Add(float64(n))
}
