package gridworld

import (
	"fmt"

	"github.com/samuelfneumann/tabular/environment"
)

// NewSingleStart returns a Starter which always starts episodes at
// position (x, y) in a gridworld with r rows and c columns
func NewSingleStart(x, y, r, c int) (environment.Starter, error) {
	if x < 0 || x >= c {
		return nil, fmt.Errorf("newSingleStart: x = %d out of range [0, %d)",
			x, c)
	} else if y < 0 || y >= r {
		return nil, fmt.Errorf("newSingleStart: y = %d out of range [0, %d)",
			y, r)
	}

	return environment.NewSingleStarter([]float64{float64(x), float64(y)}),
		nil
}

// NewRandomStart returns a Starter which starts episodes uniformly at
// random over all positions of a gridworld with r rows and c columns
func NewRandomStart(r, c int, seed uint64) (environment.Starter, error) {
	return environment.NewCategoricalStarter([]int{c, r}, seed)
}
