// Package ldbstore implements a store.Store which keeps a value table
// in a LevelDB database, one key per State.
package ldbstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"math"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/samuelfneumann/tabular/agent/tabular/qlearning"
	"github.com/samuelfneumann/tabular/errs"
	"github.com/samuelfneumann/tabular/store"
)

const (
	configKey   = "cfg"
	valuePrefix = "q:"
)

// Store is a store.Store backed by LevelDB. The Config of a snapshot is
// stored as JSON under the key "cfg", and the action values of each
// State s are stored as little-endian float64s under "q:" + s.
type Store struct {
	db    *leveldb.DB
	rOpts *opt.ReadOptions
	wOpts *opt.WriteOptions
}

// Open opens or creates a LevelDB database at path
func Open(path string, opts *opt.Options) (*Store, error) {
	db, err := leveldb.OpenFile(path, opts)
	if err != nil {
		return nil, errs.Wrap(errs.Storage, err, "open: could not open "+
			"leveldb at %v", path)
	}
	return New(db), nil
}

// New returns a Store using an already opened database
func New(db *leveldb.DB) *Store {
	return &Store{db: db, wOpts: &opt.WriteOptions{Sync: true}}
}

// Save implements store.Store. Values of States which are no longer in
// the snapshot are deleted, and all writes are applied in one batch.
func (s *Store) Save(ctx context.Context, snap qlearning.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return errs.Wrap(errs.Storage, err, "save: context done")
	}

	cfg, err := json.Marshal(snap.Config)
	if err != nil {
		return errs.Wrap(errs.Storage, err, "save: could not encode config")
	}

	batch := new(leveldb.Batch)
	iter := s.db.NewIterator(util.BytesPrefix([]byte(valuePrefix)), s.rOpts)
	for iter.Next() {
		state := qlearning.State(iter.Key()[len(valuePrefix):])
		if _, ok := snap.Values[state]; !ok {
			batch.Delete(append([]byte(nil), iter.Key()...))
		}
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return errs.Wrap(errs.Storage, err, "save: could not list states")
	}

	batch.Put([]byte(configKey), cfg)
	for state, values := range snap.Values {
		batch.Put(valueKey(state), encodeF64s(values))
	}

	if err := s.db.Write(batch, s.wOpts); err != nil {
		return errs.Wrap(errs.Storage, err, "save: could not write batch")
	}

	glog.V(1).Infof("saved %d states to leveldb", len(snap.Values))
	return nil
}

// Load implements store.Store
func (s *Store) Load(ctx context.Context) (qlearning.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return qlearning.Snapshot{}, errs.Wrap(errs.Storage, err,
			"load: context done")
	}

	cfg, err := s.db.Get([]byte(configKey), s.rOpts)
	if err == leveldb.ErrNotFound {
		return qlearning.Snapshot{}, store.NotFound("load: no config in "+
			"leveldb")
	} else if err != nil {
		return qlearning.Snapshot{}, errs.Wrap(errs.Storage, err,
			"load: could not read config")
	}

	var snap qlearning.Snapshot
	if err := json.Unmarshal(cfg, &snap.Config); err != nil {
		return qlearning.Snapshot{}, errs.Wrap(errs.Storage, err,
			"load: could not decode config")
	}

	snap.Values = make(map[qlearning.State][]float64)
	iter := s.db.NewIterator(util.BytesPrefix([]byte(valuePrefix)), s.rOpts)
	defer iter.Release()
	for iter.Next() {
		values, err := decodeF64s(iter.Value())
		if err != nil {
			return qlearning.Snapshot{}, errs.Wrap(errs.Storage, err,
				"load: corrupt values for key %q", iter.Key())
		}
		state := qlearning.State(iter.Key()[len(valuePrefix):])
		snap.Values[state] = values
	}
	if err := iter.Error(); err != nil {
		return qlearning.Snapshot{}, errs.Wrap(errs.Storage, err,
			"load: could not iterate states")
	}

	if err := snap.Validate(); err != nil {
		return qlearning.Snapshot{}, err
	}
	return snap, nil
}

// Close implements store.Store
func (s *Store) Close() error {
	return s.db.Close()
}

func valueKey(s qlearning.State) []byte {
	return []byte(valuePrefix + string(s))
}

func encodeF64s(v []float64) []byte {
	result := make([]byte, 8*len(v))
	for i, v := range v {
		bits := math.Float64bits(v)
		buf := result[8*i : 8*(i+1)]
		binary.LittleEndian.PutUint64(buf, bits)
	}

	return result
}

func decodeF64s(buf []byte) ([]float64, error) {
	if len(buf)%8 != 0 {
		return nil, errors.Errorf("invalid encoded buffer of floats has "+
			"len %d", len(buf))
	}

	n := len(buf) / 8
	result := make([]float64, n)
	for i := 0; i < n; i++ {
		b := buf[8*i : 8*(i+1)]
		bits := binary.LittleEndian.Uint64(b)
		result[i] = math.Float64frombits(bits)
	}

	return result, nil
}
