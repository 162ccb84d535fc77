package telemetry

import (
	"net/http"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine/graph"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the runtime's Prometheus collectors on a private registry.
// It implements graph.Observer so state-machine events are counted as they happen.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	frames        prometheus.Counter
	transitions   *prometheus.CounterVec
	updateSeconds prometheus.Histogram
	entities      prometheus.Gauge
}

var _ graph.Observer = &Metrics{}

// NewMetrics creates and registers every collector.
//
// Returns:
//   - *Metrics: the metrics set
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oxy_anim_frames_total",
			Help: "Scene updates performed.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oxy_anim_transitions_total",
			Help: "State-machine transition events by kind.",
		}, []string{"event"}),
		updateSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "oxy_anim_scene_update_seconds",
			Help:    "Wall time of one scene update.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		entities: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "oxy_anim_entities",
			Help: "Game objects updated in the last scene update.",
		}),
	}
	m.registry.MustRegister(m.frames, m.transitions, m.updateSeconds, m.entities)
	return m
}

// Registry returns the private registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// OnTransition counts one transition event.
func (m *Metrics) OnTransition(e graph.TransitionEvent) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(e.Kind.String()).Inc()
}

// ObserveUpdate records one scene update.
//
// Parameters:
//   - d: the wall time of the update
//   - entities: the number of game objects updated
func (m *Metrics) ObserveUpdate(d time.Duration, entities int) {
	if m == nil {
		return
	}
	m.frames.Inc()
	m.updateSeconds.Observe(d.Seconds())
	m.entities.Set(float64(entities))
}
