package qlearning

import (
	"bytes"
	"encoding/gob"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/tabular/errs"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Snapshot is a point-in-time copy of a learner's configuration and
// value table, used to persist and restore learners
type Snapshot struct {
	Config Config
	Values map[State][]float64
}

// Snapshot returns a deep copy of the learner's state
func (q *QLearning) Snapshot() Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()

	values := make(map[State][]float64, q.table.Len())
	for s, v := range q.table.entries {
		out := make([]float64, v.Len())
		copy(out, v.RawVector().Data)
		values[s] = out
	}
	return Snapshot{Config: q.config, Values: values}
}

// Validate ensures the Snapshot's Config is valid and that every value
// vector has one entry per action
func (s Snapshot) Validate() error {
	if err := s.Config.Validate(); err != nil {
		return err
	}
	for state, values := range s.Values {
		if len(values) != s.Config.Actions {
			return errs.New(errs.InvalidArgument, "snapshot: state %q has "+
				"%d values, want %d", state, len(values), s.Config.Actions)
		}
	}
	return nil
}

// Restore creates a new learner from a Snapshot
func Restore(s Snapshot, seed uint64) (*QLearning, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	q, err := New(s.Config, seed)
	if err != nil {
		return nil, err
	}
	q.table = tableFrom(s)
	return q, nil
}

// tableFrom copies the values of a validated Snapshot into a new Table
func tableFrom(s Snapshot) *Table {
	table := newTable(s.Config.Actions)
	for state, values := range s.Values {
		v := make([]float64, len(values))
		copy(v, values)
		table.entries[state] = mat.NewVecDense(len(v), v)
	}
	return table
}

// MarshalTo gob-encodes a Snapshot of the learner to w
func (q *QLearning) MarshalTo(w io.Writer) error {
	enc := gob.NewEncoder(w)
	if err := enc.Encode(q.Snapshot()); err != nil {
		return errors.Wrap(err, "marshalTo: could not encode snapshot")
	}
	return nil
}

// LoadFrom decodes a Snapshot written by MarshalTo and restores a
// learner from it
func LoadFrom(r io.Reader, seed uint64) (*QLearning, error) {
	dec := gob.NewDecoder(r)

	var s Snapshot
	if err := dec.Decode(&s); err != nil {
		return nil, errors.Wrap(err, "loadFrom: could not decode snapshot")
	}
	return Restore(s, seed)
}

// GobEncode implements the gob.GobEncoder interface
func (q *QLearning) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := q.MarshalTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The decoded
// learner keeps its random number generator if it has one.
func (q *QLearning) GobDecode(data []byte) error {
	var s Snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return errors.Wrap(err, "gobDecode: could not decode snapshot")
	}
	if err := s.Validate(); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.rng == nil {
		source := rand.NewSource(0)
		q.rng = rand.New(source)
		q.explore.Src = source
	}
	q.config = s.Config
	q.table = tableFrom(s)
	q.explore = distuv.Bernoulli{P: s.Config.Epsilon, Src: q.explore.Src}
	return nil
}

// Save writes a gob-encoded Snapshot of the learner to filename
func (q *QLearning) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errs.Wrap(errs.Storage, err, "save: could not create %v",
			filename)
	}
	defer file.Close()

	if err := q.MarshalTo(file); err != nil {
		return errs.Wrap(errs.Storage, err, "save: could not write %v",
			filename)
	}
	return nil
}

// Load restores a learner from a file written by Save
func Load(filename string, seed uint64) (*QLearning, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errs.Wrap(errs.Storage, err, "load: could not open %v",
			filename)
	}
	defer file.Close()

	return LoadFrom(file, seed)
}
