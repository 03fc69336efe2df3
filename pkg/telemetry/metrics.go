package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/reactive/pkg/observer"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "reactive").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for subscribers per notification.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the fan-out histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "reactive",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics counts runtime activity. It implements observer.Hooks.
type Metrics struct {
	observersCreated    *prometheus.CounterVec
	depsCreated         prometheus.Counter
	notifications       prometheus.Counter
	subscribersNotified prometheus.Counter
	fanOut              prometheus.Histogram
	arrayMutations      *prometheus.CounterVec
	warnings            *prometheus.CounterVec
}

var _ observer.Hooks = (*Metrics)(nil)

// NewMetrics creates and registers the collectors. It panics if they are
// already registered with the registry, like promauto.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		observersCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "observers_created_total",
			Help:        "Total number of containers made reactive",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		depsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "deps_created_total",
			Help:        "Total number of dependency registries created",
			ConstLabels: config.ConstLabels,
		}),

		notifications: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notifications_total",
			Help:        "Total number of dependency notifications",
			ConstLabels: config.ConstLabels,
		}),

		subscribersNotified: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "subscribers_notified_total",
			Help:        "Total number of subscriber updates triggered",
			ConstLabels: config.ConstLabels,
		}),

		fanOut: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notification_fan_out",
			Help:        "Subscribers updated per notification",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		arrayMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "array_mutations_total",
			Help:        "Total number of intercepted array mutations",
			ConstLabels: config.ConstLabels,
		}, []string{"method"}),

		warnings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "warnings_total",
			Help:        "Total number of developer warnings emitted",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),
	}
}

func (m *Metrics) ObserverCreated(kind string) {
	m.observersCreated.WithLabelValues(kind).Inc()
}

func (m *Metrics) DepCreated() {
	m.depsCreated.Inc()
}

func (m *Metrics) Notified(_ *observer.Dep, subscribers int) {
	m.notifications.Inc()
	m.subscribersNotified.Add(float64(subscribers))
	m.fanOut.Observe(float64(subscribers))
}

func (m *Metrics) ArrayMutated(method string) {
	m.arrayMutations.WithLabelValues(method).Inc()
}

func (m *Metrics) Warned(code string) {
	m.warnings.WithLabelValues(code).Inc()
}
