// Package feed streams transitions into a tabular learner over AMQP.
//
// Transitions are published as JSON messages on a queue. A Consumer
// applies each message to a learner with one Q-learning update and
// acknowledges it once the update has been applied.
package feed

import (
	"encoding/json"
	"fmt"

	"github.com/samuelfneumann/tabular/agent/tabular/qlearning"
	"github.com/samuelfneumann/tabular/errs"
)

// ContentType of published messages
const ContentType = "application/json"

// Transition is a single (s, a, r, s') tuple of experience. If Terminal
// is set, NextState is ignored and the update does not bootstrap.
type Transition struct {
	ID        string          `json:"id,omitempty"`
	State     qlearning.State `json:"state"`
	Action    int             `json:"action"`
	Reward    float64         `json:"reward"`
	NextState qlearning.State `json:"next_state"`
	Terminal  bool            `json:"terminal,omitempty"`
}

// Learner is the subset of *qlearning.QLearning needed to apply
// transitions
type Learner interface {
	UpdateValue(s qlearning.State, action int, reward float64,
		next qlearning.State) (float64, error)
	UpdateTerminal(s qlearning.State, action int, reward float64) (float64,
		error)
	Len() int
}

// Apply performs the update for t on l and returns the new value of
// Q(t.State, t.Action)
func Apply(l Learner, t Transition) (float64, error) {
	if t.Terminal {
		return l.UpdateTerminal(t.State, t.Action, t.Reward)
	}
	return l.UpdateValue(t.State, t.Action, t.Reward, t.NextState)
}

// Decode decodes a Transition from a message body. Malformed bodies
// are tagged errs.InvalidArgument.
func Decode(body []byte) (Transition, error) {
	var t Transition
	if err := json.Unmarshal(body, &t); err != nil {
		return Transition{}, errs.Wrap(errs.InvalidArgument, err,
			"decode: malformed transition")
	}
	return t, nil
}

// String implements fmt.Stringer
func (t Transition) String() string {
	if t.Terminal {
		return fmt.Sprintf("(%q, %d, %v, terminal)", t.State, t.Action,
			t.Reward)
	}
	return fmt.Sprintf("(%q, %d, %v, %q)", t.State, t.Action, t.Reward,
		t.NextState)
}
