package toaster

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/colonyops/toaster/internal/core/toast"
)

// MetricsConfig configures the Prometheus metrics of a registry.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "toaster").
	Namespace string

	// Registerer is the Prometheus registerer to use.
	// Default: prometheus.DefaultRegisterer
	Registerer prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithRegisterer sets the Prometheus registerer.
func WithRegisterer(reg prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registerer = reg
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:  "toaster",
		Registerer: prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors fed by registry hooks.
type Metrics struct {
	actions     *prometheus.CounterVec
	shown       *prometheus.CounterVec
	subscribers *prometheus.GaugeVec
	panics      prometheus.Counter
}

// RegisterMetrics creates the collectors and registers the hooks feeding them.
//
// Metrics collected:
//   - toaster_actions_total: actions applied, by action type
//   - toaster_notifications_shown_total: notifications added or replaced, by kind
//   - toaster_subscribers: mounted subscribers, by surface
//   - toaster_subscriber_panics_total: recovered subscriber panics
func RegisterMetrics(r *Registry, opts ...MetricsOption) *Metrics {
	cfg := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.Registerer)

	m := &Metrics{
		actions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "actions_total",
			Help:      "Total number of toast actions applied",
		}, []string{"action"}),

		shown: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "notifications_shown_total",
			Help:      "Total number of notifications shown",
		}, []string{"kind"}),

		subscribers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "subscribers",
			Help:      "Number of mounted subscribers",
		}, []string{"surface"}),

		panics: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "subscriber_panics_total",
			Help:      "Total number of recovered subscriber panics",
		}),
	}

	r.OnDispatch(func(_ string, a toast.Action) {
		m.actions.WithLabelValues(a.Type.String()).Inc()
		if (a.Type == toast.ActionAdd || a.Type == toast.ActionUpsert) && a.Fields&toast.FieldKind != 0 {
			m.shown.WithLabelValues(string(a.Toast.Kind)).Inc()
		}
	})
	r.OnSubscribe(func(key string) {
		m.subscribers.WithLabelValues(key).Inc()
	})
	r.OnUnsubscribe(func(key string) {
		m.subscribers.WithLabelValues(key).Dec()
	})
	r.OnPanic(func(string, any) {
		m.panics.Inc()
	})

	return m
}
