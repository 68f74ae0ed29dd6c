package gridworld

import (
	"fmt"

	"github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/timestep"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Goal represents the task of reaching goal states in a GridWorld.
// Each transition into a goal state receives the goal reward, every
// other transition the timestep reward.
type Goal struct {
	environment.Starter
	goals          map[[2]int]bool
	r, c           int // total rows and columns in environment
	timeStepReward float64
	goalReward     float64

	stepLimit environment.Ender
	atGoal    environment.Ender
}

// NewGoal creates and returns a new Goal task with goals at positions
// (x[i], y[i]), given that the gridworld has r rows and c columns.
// Episodes are cut off after cutoff steps; a cutoff <= 0 disables the
// limit.
func NewGoal(s environment.Starter, x, y []int, r, c, cutoff int,
	timeStepReward, goalReward float64) (*Goal, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("newGoal: x length (%d) != y length (%d)",
			len(x), len(y))
	}
	if len(x) == 0 {
		return nil, fmt.Errorf("newGoal: at least one goal is required")
	}

	goals := make(map[[2]int]bool, len(x))
	for i := range x {
		// Ensure that the goal is within the proper bounds
		if x[i] < 0 || x[i] >= c {
			return nil, fmt.Errorf("newGoal: x[%d] = %d out of range "+
				"[0, %d)", i, x[i], c)
		} else if y[i] < 0 || y[i] >= r {
			return nil, fmt.Errorf("newGoal: y[%d] = %d out of range "+
				"[0, %d)", i, y[i], r)
		}
		goals[[2]int{x[i], y[i]}] = true
	}

	g := &Goal{
		Starter:        s,
		goals:          goals,
		r:              r,
		c:              c,
		timeStepReward: timeStepReward,
		goalReward:     goalReward,
		stepLimit:      environment.NewStepLimit(cutoff),
	}
	g.atGoal = environment.NewFunctionEnder(
		func(v mat.Vector) bool { return g.AtGoal(v) },
		timestep.TerminalStateReached,
	)

	return g, nil
}

// GetReward returns the reward for moving from state to nextState
func (g *Goal) GetReward(_, _, nextState mat.Vector) float64 {
	if g.AtGoal(nextState) {
		return g.goalReward
	}
	return g.timeStepReward
}

// AtGoal returns whether state is a goal position
func (g *Goal) AtGoal(state mat.Matrix) bool {
	rows, cols := state.Dims()
	if rows != 2 || cols != 1 {
		return false
	}

	x, y := int(state.At(0, 0)), int(state.At(1, 0))
	return g.goals[[2]int{x, y}]
}

// End determines whether the episode ends at TimeStep t, either
// because a goal was reached or the step limit was exceeded
func (g *Goal) End(t *timestep.TimeStep) bool {
	if g.atGoal.End(t) {
		return true
	}
	return g.stepLimit.End(t)
}

// String returns the Goal as a string
func (g *Goal) String() string {
	return fmt.Sprintf("Goal | Goals: %v  |  Bounds: (%d, %d)", len(g.goals),
		g.r, g.c)
}

// Min returns the minimum reward attainable in the Task
func (g *Goal) Min() float64 {
	return floats.Min([]float64{g.timeStepReward, g.goalReward})
}

// Max returns the maximum reward attainable in the Task
func (g *Goal) Max() float64 {
	return floats.Max([]float64{g.timeStepReward, g.goalReward})
}
