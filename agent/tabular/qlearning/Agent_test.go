package qlearning

import (
	"testing"

	"github.com/samuelfneumann/tabular/environment/gridworld"
	"github.com/samuelfneumann/tabular/errs"
	"github.com/samuelfneumann/tabular/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func vec(v ...float64) mat.Vector {
	return mat.NewVecDense(len(v), v)
}

// newCorridor returns a single row gridworld of length n with the goal
// at the right-most cell and a reward of -1 per step
func newCorridor(t *testing.T, n int) (*gridworld.GridWorld,
	timestep.TimeStep) {
	t.Helper()

	s, err := gridworld.NewSingleStart(0, 0, 1, n)
	require.NoError(t, err)
	task, err := gridworld.NewGoal(s, []int{n - 1}, []int{0}, 1, n, 100,
		-1.0, 0.0)
	require.NoError(t, err)
	env, step, err := gridworld.New(1, n, task, 1.0)
	require.NoError(t, err)

	return env, step
}

func TestAgentLearnsCorridor(t *testing.T) {
	env, step := newCorridor(t, 4)

	c := Config{LearningRate: 0.5, Discount: 1.0, Epsilon: 0.1}
	a, err := c.CreateAgent(env, 3)
	require.NoError(t, err)
	require.True(t, c.ValidAgent(a))

	for episode := 0; episode < 200; episode++ {
		require.NoError(t, a.ObserveFirst(step))
		for !step.Last() {
			action := a.SelectAction(step)
			step, _, err = env.Step(action)
			require.NoError(t, err)
			require.NoError(t, a.Observe(action, step))
			require.NoError(t, a.Step())
		}
		a.EndEpisode()

		step, err = env.Reset()
		require.NoError(t, err)
	}

	q := a.(*Agent)
	for x := 0; x < 3; x++ {
		action, value := q.Greedy(StateOf(x, 0))
		assert.Equal(t, gridworld.Right, action, "x = %d", x)
		assert.InDelta(t, -float64(2-x), value, 0.1, "x = %d", x)
	}

	// Terminal transitions never bootstrap, so the goal is never added
	assert.False(t, q.Known(StateOf(3, 0)))
}

func TestAgentStepWithoutObserve(t *testing.T) {
	a, err := NewAgent(DefaultConfig(), VecState, 1)
	require.NoError(t, err)

	first := timestep.New(timestep.First, 0, 1, vec(0, 0), 0)
	require.NoError(t, a.ObserveFirst(first))
	require.NoError(t, a.Step())
	assert.Equal(t, 0, a.Len())
}

func TestAgentObserveRejectsMultiDimensionalActions(t *testing.T) {
	a, err := NewAgent(DefaultConfig(), nil, 1)
	require.NoError(t, err)

	next := timestep.New(timestep.Mid, 1, 1, vec(1), 1)
	err = a.Observe(vec(0, 1), next)
	assert.True(t, errs.Is(err, errs.InvalidArgument))
}

func TestAgentStepInvalidAction(t *testing.T) {
	a, err := NewAgent(DefaultConfig(), VecState, 1)
	require.NoError(t, err)

	first := timestep.New(timestep.First, 0, 1, vec(0), 0)
	next := timestep.New(timestep.Mid, 1, 1, vec(1), 1)
	require.NoError(t, a.ObserveFirst(first))
	require.NoError(t, a.Observe(vec(7), next))

	err = a.Step()
	assert.True(t, errs.Is(err, errs.InvalidArgument))
	assert.Equal(t, 0, a.Len())
}

func TestAgentTimeoutBootstraps(t *testing.T) {
	a, err := NewAgent(DefaultConfig(), VecState, 1)
	require.NoError(t, err)
	_, err = a.UpdateTerminal(VecState(vec(1)), 0, 10.0)
	require.NoError(t, err)

	first := timestep.New(timestep.First, 0, 1, vec(0), 0)
	last := timestep.New(timestep.Last, 0, 1, vec(1), 1)
	last.SetEnd(timestep.Timeout)

	require.NoError(t, a.ObserveFirst(first))
	require.NoError(t, a.Observe(vec(0), last))
	require.NoError(t, a.Step())

	// 0.1 * (0 + 0.9 * 1.0)
	assert.InDelta(t, 0.09, a.Values(VecState(vec(0)))[0], 1e-12)
}

func TestAgentTdError(t *testing.T) {
	a, err := NewAgent(DefaultConfig(), VecState, 1)
	require.NoError(t, err)

	first := timestep.New(timestep.First, 0, 1, vec(0), 0)
	next := timestep.New(timestep.Mid, 2, 1, vec(1), 1)

	tr := timestep.NewTransition(first, 1, next)
	assert.Equal(t, 2.0, a.TdError(tr))

	tr = timestep.NewTransition(first, 5, next)
	assert.Equal(t, 0.0, a.TdError(tr))
}

func TestCreateAgentActionMismatch(t *testing.T) {
	env, _ := newCorridor(t, 3)

	c := DefaultConfig()
	_, err := c.CreateAgent(env, 1)
	assert.True(t, errs.Is(err, errs.InvalidConfiguration))

	c.Actions = gridworld.NumActions
	a, err := c.CreateAgent(env, 1)
	require.NoError(t, err)
	assert.Equal(t, gridworld.NumActions, a.(*Agent).Config().Actions)
}
