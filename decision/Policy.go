package decision

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/tabular/agent/tabular/qlearning"
	"github.com/samuelfneumann/tabular/errs"
)

// PolicyConfig configures a Policy from a snapshot file written by
// (*qlearning.QLearning).Save
type PolicyConfig struct {
	Snapshot string `json:"snapshot" yaml:"snapshot"`
}

// Policy scores an input by the value of the greedy action in the
// State identified by the input. Unseen States score zero.
type Policy struct {
	learner *qlearning.QLearning
	encode  qlearning.Encoder
}

// NewPolicy returns a Policy backed by learner. Inputs are identified
// with qlearning.VecState.
func NewPolicy(learner *qlearning.QLearning) *Policy {
	return &Policy{learner: learner, encode: qlearning.VecState}
}

// NewPolicyFromConfig loads the learner of a Policy from a snapshot
func NewPolicyFromConfig(cfg PolicyConfig) (*Policy, error) {
	if cfg.Snapshot == "" {
		return nil, errs.New(errs.InvalidConfiguration,
			"newPolicy: snapshot file must be set")
	}

	learner, err := qlearning.Load(cfg.Snapshot, 0)
	if err != nil {
		return nil, err
	}
	return NewPolicy(learner), nil
}

// Decide implements the Decider interface
func (p *Policy) Decide(_ context.Context, input []float64) (float64,
	error) {
	if len(input) == 0 {
		return 0, errs.New(errs.InvalidArgument, "decide: empty input")
	}

	s := p.encode(mat.NewVecDense(len(input), input))
	_, value := p.learner.Greedy(s)
	return value, nil
}

// Action returns the greedy action for input
func (p *Policy) Action(input []float64) int {
	if len(input) == 0 {
		return 0
	}
	action, _ := p.learner.Greedy(p.encode(mat.NewVecDense(len(input),
		input)))
	return action
}
