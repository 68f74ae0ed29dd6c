package environment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/tabular/timestep"
)

func TestStepLimit(t *testing.T) {
	limit := NewStepLimit(3)

	step := timestep.New(timestep.Mid, 0, 1, nil, 2)
	assert.False(t, limit.End(&step))
	assert.Equal(t, timestep.Mid, step.StepType)

	step = timestep.New(timestep.Mid, 0, 1, nil, 3)
	assert.True(t, limit.End(&step))
	assert.True(t, step.Last())
	assert.Equal(t, timestep.Timeout, step.EndType())

	step = timestep.New(timestep.Mid, 0, 1, nil, 1000)
	assert.False(t, NewStepLimit(0).End(&step))
}

func TestFunctionEnder(t *testing.T) {
	ender := NewFunctionEnder(func(v mat.Vector) bool {
		return v.AtVec(0) > 1
	}, timestep.TerminalStateReached)

	step := timestep.New(timestep.Mid, 0, 1, mat.NewVecDense(1, []float64{0}), 1)
	assert.False(t, ender.End(&step))

	step = timestep.New(timestep.Mid, 0, 1, mat.NewVecDense(1, []float64{2}), 1)
	assert.True(t, ender.End(&step))
	assert.Equal(t, timestep.TerminalStateReached, step.EndType())
}

func TestCategoricalStarter(t *testing.T) {
	_, err := NewCategoricalStarter([]int{3, 0}, 1)
	assert.Error(t, err)

	s, err := NewCategoricalStarter([]int{3, 2}, 1)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		start := s.Start()
		require.Equal(t, 2, start.Len())
		assert.True(t, start.AtVec(0) >= 0 && start.AtVec(0) < 3)
		assert.True(t, start.AtVec(1) >= 0 && start.AtVec(1) < 2)
	}
}

func TestSingleStarter(t *testing.T) {
	state := []float64{1, 2}
	s := NewSingleStarter(state)
	state[0] = 5

	start := s.Start()
	assert.Equal(t, []float64{1, 2}, start.RawVector().Data)
	start.SetVec(0, 9)
	assert.Equal(t, 1.0, s.Start().AtVec(0))
}

func TestNumActions(t *testing.T) {
	one := mat.NewVecDense(1, nil)
	spec := NewSpec(one, Action, mat.NewVecDense(1, []float64{0}),
		mat.NewVecDense(1, []float64{3}), Discrete)
	n, err := NumActions(spec)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	spec.Cardinality = Continuous
	_, err = NumActions(spec)
	assert.Error(t, err)

	spec = NewSpec(one, Observation, mat.NewVecDense(1, []float64{0}),
		mat.NewVecDense(1, []float64{3}), Discrete)
	_, err = NumActions(spec)
	assert.Error(t, err)

	assert.Panics(t, func() {
		NewSpec(one, Action, mat.NewVecDense(2, nil), one, Discrete)
	})
}
