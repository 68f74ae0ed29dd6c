// Package checkpointer implements Checkpointers, which save a learner
// to disk or to a store.Store at regular points of an experiment
package checkpointer

import (
	"encoding/gob"

	"github.com/samuelfneumann/tabular/agent/tabular/qlearning"
	ts "github.com/samuelfneumann/tabular/timestep"
)

// Checkpointer is shown every TimeStep of an experiment and decides
// when to save its object
type Checkpointer interface {
	Checkpoint(ts.TimeStep) error
}

// Serializable is an object which can be gob encoded and written to a
// file
type Serializable interface {
	gob.GobEncoder
	gob.GobDecoder

	Save(filename string) error
}

// Snapshotter is an object whose learned values can be captured in a
// qlearning.Snapshot
type Snapshotter interface {
	Snapshot() qlearning.Snapshot
}
