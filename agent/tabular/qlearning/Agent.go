package qlearning

import (
	"github.com/golang/glog"
	"github.com/samuelfneumann/tabular/errs"
	"github.com/samuelfneumann/tabular/timestep"
	"github.com/samuelfneumann/tabular/utils/matutils"
	"gonum.org/v1/gonum/mat"
)

// Agent adapts a QLearning learner to the agent.Agent interface so that
// it can be run in an environment. Observations are mapped to States
// with an Encoder.
type Agent struct {
	*QLearning
	encode Encoder

	step     timestep.TimeStep
	action   int
	nextStep timestep.TimeStep
	observed bool
}

// NewAgent creates a new tabular Q-learning Agent
func NewAgent(config Config, encode Encoder, seed uint64) (*Agent, error) {
	q, err := New(config, seed)
	if err != nil {
		return nil, err
	}
	return Wrap(q, encode), nil
}

// Wrap adapts an existing learner, such as one restored from a
// Snapshot, to the agent.Agent interface
func Wrap(q *QLearning, encode Encoder) *Agent {
	if encode == nil {
		encode = VecState
	}
	return &Agent{QLearning: q, encode: encode}
}

// SelectAction selects an action ε-greedily in the state observed at
// TimeStep t
func (a *Agent) SelectAction(t timestep.TimeStep) *mat.VecDense {
	action := a.ChooseAction(a.encode(t.Observation))
	return mat.NewVecDense(1, []float64{float64(action)})
}

// ObserveFirst observes and records the first episodic timestep
func (a *Agent) ObserveFirst(t timestep.TimeStep) error {
	if !t.First() {
		glog.Warningf("ObserveFirst() should only be called on the first "+
			"timestep (current timestep = %d)", t.Number)
	}
	a.step = timestep.TimeStep{}
	a.nextStep = t
	a.observed = false
	return nil
}

// Observe observes and records any timestep other than the first timestep
func (a *Agent) Observe(action mat.Vector, nextStep timestep.TimeStep) error {
	if action.Len() != 1 {
		return errs.New(errs.InvalidArgument, "observe: value-based "+
			"methods cannot have multi-dimensional actions (action = %v)",
			matutils.Format(action))
	}
	a.step = a.nextStep
	a.action = int(action.AtVec(0))
	a.nextStep = nextStep
	a.observed = true
	return nil
}

// Step updates the action values using the most recently observed
// transition. Transitions into terminal states do not bootstrap.
func (a *Agent) Step() error {
	if !a.observed {
		return nil
	}

	state := a.encode(a.step.Observation)
	reward := a.nextStep.Reward

	var err error
	if a.nextStep.Last() &&
		a.nextStep.EndType() == timestep.TerminalStateReached {
		_, err = a.UpdateTerminal(state, a.action, reward)
	} else {
		next := a.encode(a.nextStep.Observation)
		_, err = a.UpdateValue(state, a.action, reward, next)
	}
	return err
}

// EndEpisode performs cleanup at the end of an episode
func (a *Agent) EndEpisode() {
	a.step = timestep.TimeStep{}
	a.nextStep = timestep.TimeStep{}
	a.observed = false
}

// TdError returns the TD error on a transition. Transitions with
// invalid actions have a TD error of zero.
func (a *Agent) TdError(t timestep.Transition) float64 {
	tdError, err := a.QLearning.TdError(a.encode(t.State), t.Action,
		t.Reward, a.encode(t.NextState))
	if err != nil {
		glog.Warningf("tdError: %v", err)
		return 0
	}
	return tdError
}
