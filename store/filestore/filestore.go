// Package filestore implements a store.Store which keeps a gob-encoded
// snapshot in a single file
package filestore

import (
	"context"
	"encoding/gob"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/samuelfneumann/tabular/agent/tabular/qlearning"
	"github.com/samuelfneumann/tabular/errs"
	"github.com/samuelfneumann/tabular/store"
)

// Store saves snapshots to a file. Writes go to a temporary file in
// the same directory which is then renamed over the target, so a
// crash never leaves a partially written snapshot behind.
type Store struct {
	filename string
}

// New returns a Store which saves snapshots to filename
func New(filename string) *Store {
	return &Store{filename: filename}
}

// Save implements store.Store
func (s *Store) Save(ctx context.Context, snap qlearning.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return errs.Wrap(errs.Storage, err, "save: context done")
	}

	dir := filepath.Dir(s.filename)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.filename)+".tmp-*")
	if err != nil {
		return errs.Wrap(errs.Storage, err, "save: could not create "+
			"temporary file in %v", dir)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(snap); err != nil {
		tmp.Close()
		return errs.Wrap(errs.Storage, errors.Wrap(err, "encode"),
			"save: could not write %v", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errs.Wrap(errs.Storage, err, "save: could not close %v",
			tmp.Name())
	}

	if err := os.Rename(tmp.Name(), s.filename); err != nil {
		return errs.Wrap(errs.Storage, err, "save: could not rename to %v",
			s.filename)
	}

	glog.V(1).Infof("saved %d states to %v", len(snap.Values), s.filename)
	return nil
}

// Load implements store.Store
func (s *Store) Load(ctx context.Context) (qlearning.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return qlearning.Snapshot{}, errs.Wrap(errs.Storage, err,
			"load: context done")
	}

	file, err := os.Open(s.filename)
	if os.IsNotExist(err) {
		return qlearning.Snapshot{}, store.NotFound("load: %v", s.filename)
	} else if err != nil {
		return qlearning.Snapshot{}, errs.Wrap(errs.Storage, err,
			"load: could not open %v", s.filename)
	}
	defer file.Close()

	var snap qlearning.Snapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return qlearning.Snapshot{}, errs.Wrap(errs.Storage,
			errors.Wrap(err, "decode"), "load: could not read %v", s.filename)
	}
	if err := snap.Validate(); err != nil {
		return qlearning.Snapshot{}, err
	}
	return snap, nil
}

// Close implements store.Store
func (s *Store) Close() error {
	return nil
}
