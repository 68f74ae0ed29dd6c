// Package gridworld implements 2D gridworld environments
package gridworld

import (
	"fmt"

	"github.com/samuelfneumann/tabular/environment"
	"github.com/samuelfneumann/tabular/timestep"
	"gonum.org/v1/gonum/mat"
)

// Actions available in a GridWorld
const (
	Left int = iota
	Right
	Up
	Down

	NumActions
)

// GridWorld represents a gridworld environment
//
// Observations are the (x, y) coordinates of the agent. Moving off the
// edge of the grid leaves the agent in place.
type GridWorld struct {
	environment.Task
	r, c        int
	x, y        int
	discount    float64
	currentStep timestep.TimeStep
}

// New creates a new gridworld with r rows and c columns, task t, and
// discount factor d. The first TimeStep of the first episode is
// returned along with the environment.
func New(r, c int, t environment.Task, d float64) (*GridWorld,
	timestep.TimeStep, error) {
	if r <= 0 || c <= 0 {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: gridworld "+
			"dimensions must be positive (got %d x %d)", r, c)
	}
	if d < 0 || d > 1 {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: discount must "+
			"be in [0, 1] (got %v)", d)
	}

	g := &GridWorld{Task: t, r: r, c: c, discount: d}
	step, err := g.Reset()
	if err != nil {
		return nil, timestep.TimeStep{}, err
	}

	return g, step, nil
}

// Reset resets the environment to some starting state
func (g *GridWorld) Reset() (timestep.TimeStep, error) {
	start := g.Start()
	if start.Len() != 2 {
		return timestep.TimeStep{}, fmt.Errorf("reset: starting state "+
			"must be 2-dimensional (got %d)", start.Len())
	}

	x, y := int(start.AtVec(0)), int(start.AtVec(1))
	if x < 0 || x >= g.c || y < 0 || y >= g.r {
		return timestep.TimeStep{}, fmt.Errorf("reset: starting position "+
			"(%d, %d) out of bounds", x, y)
	}
	g.x, g.y = x, y

	step := timestep.New(timestep.First, 0, g.discount, g.observation(), 0)
	g.currentStep = step
	return step, nil
}

// Step takes one environmental step given action a
func (g *GridWorld) Step(a *mat.VecDense) (timestep.TimeStep, bool, error) {
	if a.Len() != 1 {
		return timestep.TimeStep{}, false, fmt.Errorf("step: actions must "+
			"be 1-dimensional (got %d)", a.Len())
	}

	direction := int(a.AtVec(0))
	switch direction {
	case Left:
		if g.x > 0 {
			g.x--
		}
	case Right:
		if g.x < g.c-1 {
			g.x++
		}
	case Up:
		if g.y < g.r-1 {
			g.y++
		}
	case Down:
		if g.y > 0 {
			g.y--
		}
	default:
		return timestep.TimeStep{}, false, fmt.Errorf("step: invalid "+
			"action %d", direction)
	}

	state := g.currentStep.Observation
	nextState := g.observation()
	reward := g.GetReward(state, a, nextState)

	step := timestep.New(timestep.Mid, reward, g.discount, nextState,
		g.currentStep.Number+1)
	last := g.End(&step)
	g.currentStep = step

	return step, last, nil
}

// CurrentTimeStep returns the current TimeStep of the environment
func (g *GridWorld) CurrentTimeStep() timestep.TimeStep {
	return g.currentStep
}

// Dims gets the rows and columns of the GridWorld
func (g *GridWorld) Dims() (r, c int) {
	return g.r, g.c
}

// Coordinates returns the current (x, y) position of the agent
func (g *GridWorld) Coordinates() (int, int) {
	return g.x, g.y
}

// ActionSpec returns the action specification of the environment
func (g *GridWorld) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{0})
	upperBound := mat.NewVecDense(1, []float64{float64(NumActions - 1)})

	return environment.NewSpec(shape, environment.Action, lowerBound,
		upperBound, environment.Discrete)
}

// ObservationSpec returns the observation specification of the
// environment
func (g *GridWorld) ObservationSpec() environment.Spec {
	shape := mat.NewVecDense(2, nil)
	lowerBound := mat.NewVecDense(2, nil)
	upperBound := mat.NewVecDense(2, []float64{float64(g.c - 1),
		float64(g.r - 1)})

	return environment.NewSpec(shape, environment.Observation, lowerBound,
		upperBound, environment.Discrete)
}

// DiscountSpec returns the discount specification of the environment
func (g *GridWorld) DiscountSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{g.discount})
	upperBound := mat.NewVecDense(1, []float64{g.discount})

	return environment.NewSpec(shape, environment.Discount, lowerBound,
		upperBound, environment.Continuous)
}

func (g *GridWorld) String() string {
	return fmt.Sprintf("GridWorld | At: (%d, %d)  |  Task: %v", g.x, g.y,
		g.Task)
}

func (g *GridWorld) observation() *mat.VecDense {
	return mat.NewVecDense(2, []float64{float64(g.x), float64(g.y)})
}
