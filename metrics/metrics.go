// Package metrics exports Prometheus metrics about learning progress
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/samuelfneumann/tabular/errs"
)

// Sources of value updates
const (
	SourceExperiment = "experiment"
	SourceFeed       = "feed"
)

// Collectors bundles the metrics of a learner. A nil *Collectors is
// valid and records nothing.
type Collectors struct {
	// Updates counts value updates by source
	Updates *prometheus.CounterVec

	// UpdateErrors counts failed updates by error code
	UpdateErrors *prometheus.CounterVec

	// States tracks the number of states in the value table
	States prometheus.Gauge

	// EpisodeReturn observes the return of each finished episode
	EpisodeReturn prometheus.Histogram

	// EpisodeLength observes the number of steps of each episode
	EpisodeLength prometheus.Histogram

	// TdError observes the absolute TD error of each experiment
	// transition before it is learned from
	TdError prometheus.Histogram
}

// New creates Collectors and registers them with reg
func New(reg prometheus.Registerer) *Collectors {
	factory := promauto.With(reg)

	return &Collectors{
		Updates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tabular_updates_total",
			Help: "The total number of action value updates",
		}, []string{"source"}),

		UpdateErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tabular_update_errors_total",
			Help: "The total number of rejected action value updates",
		}, []string{"code"}),

		States: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tabular_states",
			Help: "The number of states in the value table",
		}),

		EpisodeReturn: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tabular_episode_return",
			Help:    "The undiscounted return of finished episodes",
			Buckets: prometheus.LinearBuckets(-100, 20, 11),
		}),

		EpisodeLength: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tabular_episode_length",
			Help:    "The number of steps in finished episodes",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),

		TdError: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tabular_td_error",
			Help:    "The absolute TD error of transitions before learning",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
}

// ObserveUpdate records the outcome of an update from source. states is
// the size of the value table after the update.
func (c *Collectors) ObserveUpdate(source string, err error, states int) {
	if c == nil {
		return
	}
	if err != nil {
		c.UpdateErrors.WithLabelValues(string(errs.CodeOf(err))).Inc()
		return
	}
	c.Updates.WithLabelValues(source).Inc()
	c.States.Set(float64(states))
}

// ObserveEpisode records the return and length of a finished episode
func (c *Collectors) ObserveEpisode(ret float64, length int) {
	if c == nil {
		return
	}
	c.EpisodeReturn.Observe(ret)
	c.EpisodeLength.Observe(float64(length))
}

// ObserveTdError records the absolute TD error of a transition
func (c *Collectors) ObserveTdError(tdError float64) {
	if c == nil {
		return
	}
	c.TdError.Observe(tdError)
}

// Handler returns an http.Handler which serves the metrics gathered by
// g in the Prometheus exposition format
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
