// Package envconfig provides configuration structs for configuring
// environments and their tasks. Environment configurations in this
// package are JSON and YAML serializable.
package envconfig

import (
	"github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/environment/gridworld"
	"github.com/samuelfneumann/tabular/errs"
	ts "github.com/samuelfneumann/tabular/timestep"
)

// EnvName stores the name of environments that can be configured with
// this package
type EnvName string

// Environments available for configuration
const (
	GridWorld EnvName = "GridWorld"
)

// TaskName stores the tasks that can be configured with this package.
//
//	Environment			Task
//	GridWorld			Goal
type TaskName string

// Tasks available for configuration
const (
	Goal TaskName = "Goal"
)

// Config implements a specific configuration of a specific environment
// and specific task
type Config struct {
	Environment   EnvName
	Task          TaskName
	EpisodeCutoff uint
	Discount      float64

	Rows, Cols int

	// Start position. If RandomStart is set, episodes start uniformly
	// at random in the grid instead.
	StartX, StartY int
	RandomStart    bool

	// Goal positions and rewards
	GoalX, GoalY   []int
	TimeStepReward float64
	GoalReward     float64
}

// Validate ensures the Config describes a known environment and task
func (c Config) Validate() error {
	switch c.Environment {
	case GridWorld:
		if c.Task != Goal {
			return errs.New(errs.InvalidConfiguration, "validate: "+
				"GridWorld environment has no task %q", c.Task)
		}
		if c.Rows <= 0 || c.Cols <= 0 {
			return errs.New(errs.InvalidConfiguration, "validate: "+
				"gridworld dimensions must be positive (got %d x %d)",
				c.Rows, c.Cols)
		}
	default:
		return errs.New(errs.InvalidConfiguration, "validate: no such "+
			"environment %q", c.Environment)
	}

	if !(c.Discount >= 0 && c.Discount <= 1) {
		return errs.New(errs.InvalidConfiguration, "validate: discount "+
			"must be in [0, 1] (got %v)", c.Discount)
	}
	return nil
}

// Create returns the environment described by the Config as well as
// the first timestep of the environment.
func (c Config) Create(seed uint64) (environment.Environment, ts.TimeStep,
	error) {
	if err := c.Validate(); err != nil {
		return nil, ts.TimeStep{}, err
	}
	return CreateGridWorld(c, seed)
}

// CreateGridWorld is a factory for creating a GridWorld with a Goal
// task
func CreateGridWorld(c Config, seed uint64) (environment.Environment,
	ts.TimeStep, error) {
	var s environment.Starter
	var err error
	if c.RandomStart {
		s, err = gridworld.NewRandomStart(c.Rows, c.Cols, seed)
	} else {
		s, err = gridworld.NewSingleStart(c.StartX, c.StartY, c.Rows, c.Cols)
	}
	if err != nil {
		return nil, ts.TimeStep{}, errs.Wrap(errs.InvalidConfiguration, err,
			"createGridWorld: invalid start")
	}

	task, err := gridworld.NewGoal(s, c.GoalX, c.GoalY, c.Rows, c.Cols,
		int(c.EpisodeCutoff), c.TimeStepReward, c.GoalReward)
	if err != nil {
		return nil, ts.TimeStep{}, errs.Wrap(errs.InvalidConfiguration, err,
			"createGridWorld: invalid task")
	}

	env, step, err := gridworld.New(c.Rows, c.Cols, task, c.Discount)
	if err != nil {
		return nil, ts.TimeStep{}, errs.Wrap(errs.InvalidConfiguration, err,
			"createGridWorld: invalid environment")
	}
	return env, step, nil
}
