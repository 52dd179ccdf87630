// Package metrics exposes link session activity as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/led-icicles/icicles-serial/protocol"
)

// Config configures the collector.
type Config struct {
	// Namespace is the metrics namespace (default: "icicles").
	Namespace string

	// Subsystem is the metrics subsystem (default: "link").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics, e.g. the device path.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "icicles",
		Subsystem: "link",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector records session activity. It implements link.Observer.
type Collector struct {
	framesTotal  *prometheus.CounterVec
	bytesTotal   *prometheus.CounterVec
	writeErrors  *prometheus.CounterVec
	inFlight     prometheus.Gauge
	pingsEnabled prometheus.Gauge
}

// New creates a collector and registers its metrics.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Collector{
		framesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frames_sent_total",
			Help:        "Total number of messages written to the device",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		bytesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bytes_sent_total",
			Help:        "Total number of bytes written to the device",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		writeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "write_errors_total",
			Help:        "Total number of failed transport writes",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "sends_in_flight",
			Help:        "Number of sends waiting on the transport",
			ConstLabels: config.ConstLabels,
		}),

		pingsEnabled: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "keepalive_armed",
			Help:        "1 while the keepalive timer is armed",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (c *Collector) FrameSent(kind protocol.MessageKind, bytes int) {
	c.framesTotal.WithLabelValues(kind.String()).Inc()
	c.bytesTotal.WithLabelValues(kind.String()).Add(float64(bytes))
}

func (c *Collector) WriteFailed(kind protocol.MessageKind) {
	c.writeErrors.WithLabelValues(kind.String()).Inc()
}

func (c *Collector) InFlight(n int) {
	c.inFlight.Set(float64(n))
}

func (c *Collector) PingsEnabled(enabled bool) {
	if enabled {
		c.pingsEnabled.Set(1)
	} else {
		c.pingsEnabled.Set(0)
	}
}

// NewRouter serves /metrics from gatherer and a /healthz probe.
func NewRouter(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
