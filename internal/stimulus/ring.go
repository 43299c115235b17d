package stimulus

import (
	"math/rand/v2"

	"github.com/abhisek/focuslab/internal/difficulty"
)

// Ring generates stimuli for the center-plus-periphery games.
type Ring struct {
	kind difficulty.GameKind
	r    *rand.Rand
}

var _ Generator = (*Ring)(nil)

// NewRing creates a ring generator for a two-phase game kind.
func NewRing(kind difficulty.GameKind, r *rand.Rand) *Ring {
	return &Ring{kind: kind, r: r}
}

func (g *Ring) Generate(level difficulty.Level, params difficulty.Params) Stimulus {
	target := g.r.IntN(RingSlots)

	slots := make([]int, RingSlots)
	for i := range slots {
		slots[i] = i
	}

	s := Stimulus{
		Kind:                g.kind,
		Level:               level,
		CentralType:         vehicles[g.r.IntN(len(vehicles))],
		PeripheralPosition:  target,
		DistractorPositions: SampleWithout(g.r, slots, target, params.DistractorCount),
	}
	if g.kind == difficulty.DoubleDecision {
		s.Direction = directions[g.r.IntN(len(directions))]
	}
	return s
}
