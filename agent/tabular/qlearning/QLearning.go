// Package qlearning implements tabular Q-learning.
//
// A QLearning learner stores a vector of action values for each State
// it has encountered, selects actions ε-greedily with respect to those
// values, and updates them from observed transitions with the
// Q-learning rule:
//
//	Q(s, a) ← Q(s, a) + α [r + γ max_a' Q(s', a') - Q(s, a)]
//
// States are created lazily with all-zero action values the first time
// they are queried or updated.
package qlearning

import (
	"sync"

	"github.com/golang/glog"
	"github.com/samuelfneumann/tabular/errs"
	"github.com/samuelfneumann/tabular/utils/matutils"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// QLearning implements the tabular Q-learning algorithm with an
// ε-greedy behaviour policy.
//
// All methods are safe for concurrent use. Each operation holds an
// exclusive lock for its duration, so lazy initialization and the
// following read or update of a State happen atomically.
type QLearning struct {
	mu      sync.Mutex
	config  Config
	table   *Table
	rng     *rand.Rand
	explore distuv.Bernoulli
}

// New creates a new QLearning learner with an empty value table. An
// error tagged errs.InvalidConfiguration is returned if the Config is
// not valid.
func New(config Config, seed uint64) (*QLearning, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	source := rand.NewSource(seed)
	return &QLearning{
		config:  config,
		table:   newTable(config.Actions),
		rng:     rand.New(source),
		explore: distuv.Bernoulli{P: config.Epsilon, Src: source},
	}, nil
}

// ChooseAction selects an action in state s. With probability ε an
// action is chosen uniformly at random, otherwise the greedy action is
// chosen. Ties between greedy actions are broken in favour of the
// lowest action index.
//
// If s has not been seen before, its action values are initialized to
// zero.
func (q *QLearning) ChooseAction(s State) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	values := q.table.values(s)
	if q.explore.Rand() == 1.0 {
		return q.rng.Intn(q.config.Actions)
	}
	return matutils.MaxVec(values)
}

// Greedy returns the greedy action in state s and its value without
// exploring. Unlike ChooseAction, Greedy does not add s to the table.
func (q *QLearning) Greedy(s State) (int, float64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	values, ok := q.table.peek(s)
	if !ok {
		return 0, 0
	}
	action := matutils.MaxVec(values)
	return action, values.AtVec(action)
}

// UpdateValue performs a single Q-learning update for the transition
// (s, action, reward, next) and returns the updated estimate of
// Q(s, action). Both s and next are initialized to zero if they have
// not been seen before.
//
// If action is not in [0, Actions) an error tagged errs.InvalidArgument
// is returned and the table is left untouched.
func (q *QLearning) UpdateValue(s State, action int, reward float64,
	next State) (float64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.checkAction(action); err != nil {
		return 0, err
	}

	values := q.table.values(s)
	nextValues := q.table.values(next)

	// Bootstrap off the greedy action in the next state
	bestNext := matutils.MaxVec(nextValues)
	target := reward + q.config.Discount*nextValues.AtVec(bestNext)

	return q.update(s, values, action, target), nil
}

// UpdateTerminal performs a Q-learning update for a transition into a
// terminal state, for which the bootstrapped value is zero. Only s is
// added to the table.
func (q *QLearning) UpdateTerminal(s State, action int,
	reward float64) (float64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.checkAction(action); err != nil {
		return 0, err
	}

	values := q.table.values(s)
	return q.update(s, values, action, reward), nil
}

// TdError returns the TD error of the transition (s, action, reward,
// next) without modifying the table. Unseen States are treated as
// having zero action values.
func (q *QLearning) TdError(s State, action int, reward float64,
	next State) (float64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.checkAction(action); err != nil {
		return 0, err
	}

	var current, bootstrap float64
	if values, ok := q.table.peek(s); ok {
		current = values.AtVec(action)
	}
	if nextValues, ok := q.table.peek(next); ok {
		bootstrap = nextValues.AtVec(matutils.MaxVec(nextValues))
	}

	return reward + q.config.Discount*bootstrap - current, nil
}

// update moves Q(s, action) toward target and returns the new value
func (q *QLearning) update(s State, values *mat.VecDense, action int,
	target float64) float64 {
	current := values.AtVec(action)
	updated := current + q.config.LearningRate*(target-current)
	values.SetVec(action, updated)

	glog.V(2).Infof("qlearning: Q(%q, %d): %v -> %v (target %v)", s, action,
		current, updated, target)
	return updated
}

// checkAction ensures action indexes a valid action
func (q *QLearning) checkAction(action int) error {
	if action < 0 || action >= q.config.Actions {
		return errs.New(errs.InvalidArgument,
			"action %d out of range [0, %d)", action, q.config.Actions)
	}
	return nil
}

// Known returns whether s has an entry in the value table
func (q *QLearning) Known(s State) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	_, ok := q.table.peek(s)
	return ok
}

// Values returns a copy of the action values of s. If s has not been
// seen, nil is returned and no entry is created.
func (q *QLearning) Values(s State) []float64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	values, ok := q.table.peek(s)
	if !ok {
		return nil
	}
	out := make([]float64, values.Len())
	copy(out, values.RawVector().Data)
	return out
}

// Len returns the number of States in the value table
func (q *QLearning) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.table.Len()
}

// Config returns the Config of the learner
func (q *QLearning) Config() Config {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.config
}
