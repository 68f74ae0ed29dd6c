package experiment

import (
	"context"
	"math"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/samuelfneumann/tabular/agent"
	env "github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/experiment/checkpointer"
	"github.com/samuelfneumann/tabular/experiment/tracker"
	"github.com/samuelfneumann/tabular/metrics"
	ts "github.com/samuelfneumann/tabular/timestep"
	"github.com/samuelfneumann/tabular/utils/progressbar"
	"gonum.org/v1/gonum/mat"
)

// Online is an Experiment that runs an agent online only. No offline
// evaluation is performed.
type Online struct {
	env.Environment
	agent.Agent
	maxSteps      uint
	currentSteps  uint
	trackers      []tracker.Tracker
	checkpointers []checkpointer.Checkpointer

	metrics  *metrics.Collectors
	progress *progressbar.ManualProgressBar
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. The steps parameter determines how
// many timesteps the experiment is run for, the t parameter is a slice
// of tracker.Tracker which determine what data is saved, and the c
// parameter is a slice of checkpointer.Checkpointer which determine
// when the agent is saved.
func NewOnline(e env.Environment, a agent.Agent, steps uint,
	t []tracker.Tracker, c []checkpointer.Checkpointer) *Online {
	return &Online{
		Environment:   e,
		Agent:         a,
		maxSteps:      steps,
		trackers:      t,
		checkpointers: c,
	}
}

// Instrument records the outcome and TD error of every agent update
// to m
func (o *Online) Instrument(m *metrics.Collectors) {
	o.metrics = m
}

// ShowProgress displays the progress of the experiment on p after
// every episode
func (o *Online) ShowProgress(p *progressbar.ManualProgressBar) {
	o.progress = p
}

// Register registers a tracker.Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// Steps returns the number of steps taken so far
func (o *Online) Steps() uint {
	return o.currentSteps
}

// RunEpisode runs a single episode of the experiment. The context is
// checked before every step; if it is done the episode is cut short
// and the context's error is returned.
func (o *Online) RunEpisode(ctx context.Context) (bool, error) {
	step, err := o.Environment.Reset()
	if err != nil {
		return false, errors.Wrap(err, "runEpisode: could not reset "+
			"environment")
	}
	if err := o.Agent.ObserveFirst(step); err != nil {
		return false, err
	}
	o.track(step)

	// Run the next timestep
	for !step.Last() && o.currentSteps < o.maxSteps {
		if err := ctx.Err(); err != nil {
			o.Agent.EndEpisode()
			return true, err
		}
		o.currentSteps++

		// Select action, step in environment
		prev := step
		action := o.Agent.SelectAction(step)
		step, _, err = o.Environment.Step(action)
		if err != nil {
			return false, errors.Wrapf(err, "runEpisode: environment step "+
				"%d", o.currentSteps)
		}

		// Cache the environment step in each Tracker
		o.track(step)

		// Observe the timestep and step the agent
		if err := o.Agent.Observe(action, step); err != nil {
			return false, err
		}
		o.observeTdError(prev, action, step)
		err = o.Agent.Step()
		o.observeUpdate(err)
		if err != nil {
			return false, err
		}

		if err := o.checkpoint(step); err != nil {
			return false, err
		}
		if o.progress != nil {
			o.progress.Increment()
		}
	}
	o.Agent.EndEpisode()

	if o.progress != nil {
		o.progress.Display()
	}
	glog.V(1).Infof("episode finished after %d steps (%d/%d total)",
		step.Number, o.currentSteps, o.maxSteps)

	// Return whether or not the max timestep limit has been reached
	return o.currentSteps >= o.maxSteps, nil
}

// Run runs episodes until the step budget is exhausted or ctx is done.
// In the latter case the context's error is returned and the agent
// keeps everything it has learned so far.
func (o *Online) Run(ctx context.Context) error {
	for {
		ended, err := o.RunEpisode(ctx)
		if err != nil {
			return err
		}
		if ended {
			return nil
		}
	}
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() error {
	for _, t := range o.trackers {
		if err := t.Save(); err != nil {
			return err
		}
	}
	return nil
}

// track tracks the current timestep by caching its data in each
// Tracker
func (o *Online) track(t ts.TimeStep) {
	for _, tr := range o.trackers {
		tr.Track(t)
	}
}

// checkpoint sends the current timestep to each Checkpointer
func (o *Online) checkpoint(t ts.TimeStep) error {
	for _, c := range o.checkpointers {
		if err := c.Checkpoint(t); err != nil {
			return errors.Wrap(err, "checkpoint")
		}
	}
	return nil
}

// observeTdError records the magnitude of the TD error of a
// transition before the agent learns from it
func (o *Online) observeTdError(step ts.TimeStep, action *mat.VecDense,
	next ts.TimeStep) {
	if o.metrics == nil || action.Len() != 1 {
		return
	}
	td, ok := o.Agent.(agent.TdErrorer)
	if !ok {
		return
	}
	a := int(action.AtVec(0))
	o.metrics.ObserveTdError(math.Abs(td.TdError(ts.NewTransition(step, a,
		next))))
}

// observeUpdate records the outcome of an agent update
func (o *Online) observeUpdate(err error) {
	if o.metrics == nil {
		return
	}

	states := 0
	if l, ok := o.Agent.(interface{ Len() int }); ok {
		states = l.Len()
	}
	o.metrics.ObserveUpdate(metrics.SourceExperiment, err, states)
}
