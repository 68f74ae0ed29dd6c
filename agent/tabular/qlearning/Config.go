package qlearning

import (
	"reflect"

	"github.com/samuelfneumann/tabular/agent"
	"github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/errs"
)

func init() {
	// Register ConfigList type so that it can be typed using
	// agent.TypedConfigList to help with serialization/deserialization.
	agent.Register(agent.EGreedyQLearningTabular, ConfigList{})
}

// Config represents a configuration for the tabular QLearning agent
type Config struct {
	LearningRate float64 // step size α in (0, 1]
	Discount     float64 // discount factor γ in [0, 1]
	Actions      int     // number of discrete actions
	Epsilon      float64 // probability of a uniformly random action
}

// DefaultConfig returns a Config with α = 0.1, γ = 0.9, two actions and
// a purely greedy policy
func DefaultConfig() Config {
	return Config{LearningRate: 0.1, Discount: 0.9, Actions: 2, Epsilon: 0}
}

// Validate ensures that the Config is valid. All errors are tagged
// errs.InvalidConfiguration.
func (c Config) Validate() error {
	if c.Actions <= 0 {
		return errs.New(errs.InvalidConfiguration,
			"action space size must be positive (got %d)", c.Actions)
	}
	if !(c.LearningRate > 0 && c.LearningRate <= 1) {
		return errs.New(errs.InvalidConfiguration,
			"learning rate must be in (0, 1] (got %v)", c.LearningRate)
	}
	if !(c.Discount >= 0 && c.Discount <= 1) {
		return errs.New(errs.InvalidConfiguration,
			"discount must be in [0, 1] (got %v)", c.Discount)
	}
	if !(c.Epsilon >= 0 && c.Epsilon <= 1) {
		return errs.New(errs.InvalidConfiguration,
			"epsilon must be in [0, 1] (got %v)", c.Epsilon)
	}
	return nil
}

// CreateAgent creates the agent from the Config for the argument
// environment. If the Config does not specify the number of actions,
// it is taken from the environment's action specification.
// Observations are identified with VecState.
func (c Config) CreateAgent(env environment.Environment,
	seed uint64) (agent.Agent, error) {
	actions, err := environment.NumActions(env.ActionSpec())
	if err != nil {
		return nil, errs.Wrap(errs.InvalidConfiguration, err,
			"createAgent: environment incompatible with tabular agent")
	}

	if c.Actions == 0 {
		c.Actions = actions
	} else if c.Actions != actions {
		return nil, errs.New(errs.InvalidConfiguration,
			"createAgent: config has %d actions but environment has %d",
			c.Actions, actions)
	}

	return NewAgent(c, VecState, seed)
}

// ValidAgent returns whether the argument agent is a valid agent for
// construction with the Config
func (c Config) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*Agent)
	return ok
}

// Type returns the type of the agent constructed by the Config
func (c Config) Type() agent.Type {
	return agent.EGreedyQLearningTabular
}

// ConfigList implements functionality for storing a number of Config's
// in a simple manner. Instead of storing a slice of Configs, the
// ConfigList stores each field's values and constructs the list by
// every combination of field values.
type ConfigList struct {
	LearningRate []float64
	Discount     []float64
	Actions      []int
	Epsilon      []float64
}

// NewConfigList returns a new ConfigList as an agent.TypedConfigList
// so that it can easily be JSON serialized/deserialized without
// knowing the underlying concrete type.
func NewConfigList(learningRate, discount []float64, actions []int,
	ɛ []float64) agent.TypedConfigList {
	config := ConfigList{
		LearningRate: learningRate,
		Discount:     discount,
		Actions:      actions,
		Epsilon:      ɛ,
	}
	return agent.NewTypedConfigList(config)
}

// Config returns an empty Config that is of the type stored by
// ConfigList
func (c ConfigList) Config() agent.Config {
	return Config{}
}

// Type returns the type of agent that can be constructed by Config's
// stored by the list
func (c ConfigList) Type() agent.Type {
	return c.Config().Type()
}

// NumFields returns the number of settable fields for the ConfigList
func (c ConfigList) NumFields() int {
	rValue := reflect.ValueOf(c)
	return rValue.NumField()
}

// Len returns the number of Configs stored by the list
func (c ConfigList) Len() int {
	return len(c.LearningRate) * len(c.Discount) * len(c.Actions) *
		len(c.Epsilon)
}
