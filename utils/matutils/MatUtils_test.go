package matutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestMaxVec(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   int
	}{
		{"single", []float64{3}, 0},
		{"last", []float64{-1, 0, 2}, 2},
		{"tie goes to lowest", []float64{1, 5, 5, 0}, 1},
		{"all negative", []float64{-3, -1, -2}, 1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			v := mat.NewVecDense(len(test.values), test.values)
			assert.Equal(t, test.want, MaxVec(v))
		})
	}
}

func TestFormat(t *testing.T) {
	v := mat.NewVecDense(2, []float64{1, 2})
	assert.Contains(t, Format(v), "1")
	assert.Contains(t, Format(v), "2")
}
