// Package store defines persistent storage for the value tables of
// tabular Q-learning agents. Implementations live in the subpackages
// filestore, ldbstore and redisstore.
package store

import (
	"context"
	"errors"

	"github.com/samuelfneumann/tabular/agent/tabular/qlearning"
	"github.com/samuelfneumann/tabular/errs"
)

// ErrNotFound is the cause of errors returned by Load when no snapshot
// has been saved
var ErrNotFound = errors.New("snapshot not found")

// Store saves and loads learner snapshots. All errors returned by a
// Store are tagged errs.Storage, except for snapshots which fail
// validation on Load.
type Store interface {
	Save(ctx context.Context, s qlearning.Snapshot) error
	Load(ctx context.Context) (qlearning.Snapshot, error)
	Close() error
}

// NotFound returns an errs.Storage error wrapping ErrNotFound
func NotFound(format string, args ...interface{}) error {
	return errs.Wrap(errs.Storage, ErrNotFound, format, args...)
}

// IsNotFound returns whether err was caused by a missing snapshot
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Restore loads a learner from st. If no snapshot has been saved, a new
// learner is created from config instead.
func Restore(ctx context.Context, st Store, config qlearning.Config,
	seed uint64) (*qlearning.QLearning, error) {
	snap, err := st.Load(ctx)
	if IsNotFound(err) {
		return qlearning.New(config, seed)
	} else if err != nil {
		return nil, err
	}

	if snap.Config != config {
		return nil, errs.New(errs.InvalidConfiguration, "restore: stored "+
			"config %+v does not match %+v", snap.Config, config)
	}
	return qlearning.Restore(snap, seed)
}
