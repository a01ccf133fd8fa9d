// Package metrics exports resolution telemetry to Prometheus.
package metrics

import (
	"net/http"

	compose "github.com/goliatone/go-compose"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "compose"

// Collector implements compose.ResolveLogger by updating Prometheus metrics.
type Collector struct {
	registry       *prometheus.Registry
	resolutions    *prometheus.CounterVec
	acquisitions   *prometheus.CounterVec
	commitFailures prometheus.Counter
	duration       prometheus.Histogram
}

var _ compose.ResolveLogger = (*Collector)(nil)

// NewCollector registers the resolver metrics on a private registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Resolved component nodes by outcome.",
		}, []string{"outcome"}),
		acquisitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "acquisitions_total",
			Help:      "Schema and data acquisitions by kind and source.",
		}, []string{"kind", "source"}),
		commitFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commit_failures_total",
			Help:      "Store commits that failed without failing the resolution.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_duration_seconds",
			Help:      "Time spent resolving one component node, children included.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
	}
	c.registry.MustRegister(c.resolutions, c.acquisitions, c.commitFailures, c.duration)
	return c
}

// LogResolution implements compose.ResolveLogger.
func (c *Collector) LogResolution(event compose.ResolveLogEvent) {
	outcome := "success"
	if event.Err != nil {
		outcome = "error"
	}
	c.resolutions.WithLabelValues(outcome).Inc()
	if event.SchemaSource != compose.SourceNone {
		c.acquisitions.WithLabelValues("schema", string(event.SchemaSource)).Inc()
	}
	if event.DataSource != compose.SourceNone {
		c.acquisitions.WithLabelValues("data", string(event.DataSource)).Inc()
	}
	if event.CommitErr != nil {
		c.commitFailures.Inc()
	}
	c.duration.Observe(event.Duration.Seconds())
}

// Registry exposes the underlying registry, e.g. for extra collectors.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
