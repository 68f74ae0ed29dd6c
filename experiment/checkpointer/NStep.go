package checkpointer

import (
	"github.com/golang/glog"
	ts "github.com/samuelfneumann/tabular/timestep"
)

// nStep implements checkpointing every N steps
type nStep struct {
	interval int
	steps    int
	object   Serializable // Object to save

	// filename generates the file each checkpoint is saved to, see
	// Naming for the available schemes
	filename func() string
}

// NewNStep returns a checkpointer that checkpoints every n steps of
// the experiment. Episode boundaries do not reset the count. If n <= 0
// the checkpointer never checkpoints.
func NewNStep(n int, object Serializable,
	filename func() string) Checkpointer {
	return &nStep{
		interval: n,
		object:   object,
		filename: filename,
	}
}

// Checkpoint checkpoints the Checkpointer's tracked object by calling
// its Save() method
func (n *nStep) Checkpoint(t ts.TimeStep) error {
	if n.interval <= 0 || t.First() {
		return nil
	}

	n.steps++
	if n.steps%n.interval != 0 {
		return nil
	}

	filename := n.filename()
	glog.V(1).Infof("checkpointing after %d steps to %v", n.steps, filename)
	return n.object.Save(filename)
}
