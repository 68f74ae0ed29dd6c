package environment

import (
	"github.com/samuelfneumann/tabular/timestep"
	"gonum.org/v1/gonum/mat"
)

// StepLimit ends episodes with timestep.Timeout once a fixed number of
// steps has been taken. A limit <= 0 never ends an episode.
type StepLimit struct {
	episodeSteps int
}

// NewStepLimit returns a StepLimit ending episodes after episodeSteps
func NewStepLimit(episodeSteps int) StepLimit {
	return StepLimit{episodeSteps}
}

// End marks t as the last step of a timed out episode if the step
// limit is reached
func (s StepLimit) End(t *timestep.TimeStep) bool {
	if s.episodeSteps <= 0 || t.Number < s.episodeSteps {
		return false
	}
	t.StepType = timestep.Last
	t.SetEnd(timestep.Timeout)
	return true
}

// FunctionEnder ends an episode with a fixed EndType whenever a
// predicate of the observation holds
type FunctionEnder struct {
	end     func(mat.Vector) bool
	endType timestep.EndType
}

// NewFunctionEnder returns an Ender which ends episodes with endType
// when f returns true
func NewFunctionEnder(f func(mat.Vector) bool, endType timestep.EndType) Ender {
	return &FunctionEnder{f, endType}
}

// End marks t as the last step of the episode if the predicate holds
// for its observation
func (f *FunctionEnder) End(t *timestep.TimeStep) bool {
	if !f.end(t.Observation) {
		return false
	}
	t.StepType = timestep.Last
	t.SetEnd(f.endType)
	return true
}
