package qlearning

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// State is an opaque identifier of a discrete environment state. Any
// label, coordinate or encoded observation can be used as a State as
// long as equal states have equal identifiers.
type State string

// StateOf builds a State from a label or a tuple of values, e.g.
// StateOf("s1") or StateOf(2, 3).
func StateOf(parts ...interface{}) State {
	if len(parts) == 1 {
		return State(fmt.Sprint(parts[0]))
	}

	strs := make([]string, len(parts))
	for i, part := range parts {
		strs[i] = fmt.Sprint(part)
	}
	return State(strings.Join(strs, ","))
}

// Encoder maps an environment observation to a State
type Encoder func(mat.Vector) State

// VecState is an Encoder which identifies an observation vector by its
// exact components
func VecState(v mat.Vector) State {
	if v == nil {
		return ""
	}

	var b strings.Builder
	for i := 0; i < v.Len(); i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(v.AtVec(i), 'g', -1, 64))
	}
	return State(b.String())
}
