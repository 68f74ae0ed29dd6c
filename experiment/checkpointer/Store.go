package checkpointer

import (
	"context"

	"github.com/golang/glog"
	"github.com/samuelfneumann/tabular/store"
	ts "github.com/samuelfneumann/tabular/timestep"
)

// storeCheckpointer saves snapshots to a store.Store at the end of
// every n episodes
type storeCheckpointer struct {
	ctx      context.Context
	interval int
	episodes int
	object   Snapshotter
	store    store.Store
}

// NewStore returns a Checkpointer which saves a snapshot of object to
// st at the end of every n episodes. If n <= 0 the checkpointer never
// checkpoints. Saves are made with ctx, so cancelling it aborts them.
func NewStore(ctx context.Context, n int, object Snapshotter,
	st store.Store) Checkpointer {
	return &storeCheckpointer{ctx: ctx, interval: n, object: object,
		store: st}
}

// Checkpoint implements the Checkpointer interface
func (s *storeCheckpointer) Checkpoint(t ts.TimeStep) error {
	if s.interval <= 0 || !t.Last() {
		return nil
	}

	s.episodes++
	if s.episodes%s.interval != 0 {
		return nil
	}

	glog.V(1).Infof("checkpointing to store after %d episodes", s.episodes)
	return s.store.Save(s.ctx, s.object.Snapshot())
}
