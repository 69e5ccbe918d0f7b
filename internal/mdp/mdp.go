// Package mdp holds the value types shared by environments, tables and
// learners. All of them are plain comparable values; passing them around
// never shares mutable state.
package mdp

import (
	"fmt"
	"math/bits"

	"github.com/danielpatrickdp/paretoq/internal/vector"
)

// MaxResources is the capacity of a Mask.
const MaxResources = 64

// Mask records which resources have been collected, one bit per resource.
type Mask uint64

// Has reports whether resource i is collected.
func (m Mask) Has(i int) bool { return m&(1<<uint(i)) != 0 }

// With returns a copy of m with resource i marked collected.
func (m Mask) With(i int) Mask { return m | 1<<uint(i) }

// Count returns the number of collected resources.
func (m Mask) Count() int { return bits.OnesCount64(uint64(m)) }

// State is an agent location plus the collected-resource mask.
type State struct {
	X, Y   int
	Picked Mask
}

func (s State) String() string {
	return fmt.Sprintf("(%d,%d|%b)", s.X, s.Y, uint64(s.Picked))
}

// Action indexes a discrete action.
type Action int

// Transition is one observed step. Terminal marks that State1 ends the
// episode and carries no future value.
type Transition struct {
	State0   State
	Action   Action
	Reward   vector.Vector
	State1   State
	Terminal bool
}
