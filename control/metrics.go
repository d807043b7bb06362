// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus collectors for the reactor. A nil *Metrics is valid and records
// nothing, so the loop can call it unconditionally.

package control

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Wakeup outcomes recorded by Metrics.Wakeup.
const (
	WakeReady       = "ready"
	WakeTimeout     = "timeout"
	WakeInterrupted = "interrupted"
)

// MetricsConfig configures NewMetrics.
type MetricsConfig struct {
	Namespace string
	Subsystem string
	Buckets   []float64
	Registry  prometheus.Registerer
}

// MetricsOption configures NewMetrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace (default "webserv").
func WithNamespace(ns string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = ns
	}
}

// WithRegistry sets the registerer (default prometheus.DefaultRegisterer).
func WithRegistry(reg prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = reg
	}
}

// WithBuckets sets the dispatch duration histogram buckets.
func WithBuckets(b []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = b
	}
}

// Metrics holds the reactor collectors.
type Metrics struct {
	accepted prometheus.Counter
	closed   *prometheus.CounterVec
	wakeups  *prometheus.CounterVec
	live     prometheus.Gauge
	dispatch prometheus.Histogram
	panics   prometheus.Counter
}

// NewMetrics registers the reactor collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := MetricsConfig{
		Namespace: "webserv",
		Subsystem: "reactor",
		Buckets:   []float64{.00005, .0001, .0005, .001, .005, .01, .05, .1, .5},
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.Registry)

	return &Metrics{
		accepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "accepted_total",
			Help:      "Client connections accepted.",
		}),
		closed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "closed_total",
			Help:      "Client connections closed, by reason.",
		}, []string{"reason"}),
		wakeups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "poll_wakeups_total",
			Help:      "Readiness-wait returns, by outcome.",
		}, []string{"outcome"}),
		live: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "live_connections",
			Help:      "Client connections currently registered.",
		}),
		dispatch: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent dispatching one readiness pass.",
			Buckets:   cfg.Buckets,
		}),
		panics: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "handler_panics_total",
			Help:      "Panics recovered from readiness hooks.",
		}),
	}
}

func (m *Metrics) Accepted() {
	if m != nil {
		m.accepted.Inc()
	}
}

func (m *Metrics) Closed(reason string) {
	if m != nil {
		m.closed.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) Wakeup(outcome string) {
	if m != nil {
		m.wakeups.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) SetLive(n int) {
	if m != nil {
		m.live.Set(float64(n))
	}
}

func (m *Metrics) ObserveDispatch(d time.Duration) {
	if m != nil {
		m.dispatch.Observe(d.Seconds())
	}
}

func (m *Metrics) HandlerPanic() {
	if m != nil {
		m.panics.Inc()
	}
}
