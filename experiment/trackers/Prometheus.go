package trackers

import (
	"github.com/samuelfneumann/tabular/metrics"
	ts "github.com/samuelfneumann/tabular/timestep"
)

// Prometheus records the return and length of each finished episode
// in Prometheus histograms. It has no data of its own to save.
type Prometheus struct {
	collectors    *metrics.Collectors
	currentReturn float64
}

// NewPrometheus returns a Tracker which records to c
func NewPrometheus(c *metrics.Collectors) *Prometheus {
	return &Prometheus{collectors: c}
}

// Track implements the tracker.Tracker interface
func (p *Prometheus) Track(step ts.TimeStep) {
	if step.First() {
		p.currentReturn = 0
	}
	p.currentReturn += step.Reward

	if step.Last() {
		p.collectors.ObserveEpisode(p.currentReturn, step.Number)
		p.currentReturn = 0
	}
}

// Save implements the tracker.Tracker interface
func (p *Prometheus) Save() error {
	return nil
}
