package qlearning

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Table maps States to a vector of action values, one per action.
//
// Entries are created lazily as zero vectors the first time a State is
// accessed through values(), and are never removed.
type Table struct {
	actions int
	entries map[State]*mat.VecDense
}

// newTable returns an empty Table for the given number of actions
func newTable(actions int) *Table {
	return &Table{
		actions: actions,
		entries: make(map[State]*mat.VecDense),
	}
}

// values returns the action values of s, initializing them to zero if
// s has not been seen before
func (t *Table) values(s State) *mat.VecDense {
	v, ok := t.entries[s]
	if !ok {
		v = mat.NewVecDense(t.actions, nil)
		t.entries[s] = v
	}
	return v
}

// peek returns the action values of s without creating an entry
func (t *Table) peek(s State) (*mat.VecDense, bool) {
	v, ok := t.entries[s]
	return v, ok
}

// Len returns the number of States in the Table
func (t *Table) Len() int {
	return len(t.entries)
}

// States returns all States in the Table in sorted order
func (t *Table) States() []State {
	states := make([]State, 0, len(t.entries))
	for s := range t.entries {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool { return states[i] < states[j] })
	return states
}
