// Package stimulus draws the randomized stimuli shown in each trial.
//
// Generators are pure functions of their inputs plus an injected random
// source, so tests seed the source and get reproducible draws.
package stimulus

import (
	"fmt"
	"math/rand/v2"

	"github.com/abhisek/focuslab/internal/difficulty"
)

// RingSlots is the number of peripheral positions around the center.
const RingSlots = 8

// Stimulus describes what one trial presents.
type Stimulus struct {
	Kind  difficulty.GameKind
	Level difficulty.Level

	// Ring games. Direction is the road direction shown in double-decision.
	CentralType         string
	Direction           string
	PeripheralPosition  int
	DistractorPositions []int

	// Icon swap.
	OriginalIcons []string
	ModifiedIcons []string
	SwapIndex     int
}

// Generator produces the stimulus for a trial at the given level.
type Generator interface {
	Generate(level difficulty.Level, params difficulty.Params) Stimulus
}

var (
	vehicles   = []string{"car", "truck"}
	directions = []string{"left", "right"}
)

// CentralChoices returns the answers offered for the central judgment of a
// ring game, in display order. Divided attention asks for the vehicle,
// double decision for the direction it travels.
func CentralChoices(kind difficulty.GameKind) []string {
	switch kind {
	case difficulty.DividedAttention:
		return vehicles
	case difficulty.DoubleDecision:
		return directions
	}
	return nil
}

// CentralAnswer is the correct answer to the central judgment.
func (s Stimulus) CentralAnswer() string {
	if s.Kind == difficulty.DoubleDecision {
		return s.Direction
	}
	return s.CentralType
}

// ForKind returns the generator used by kind.
func ForKind(kind difficulty.GameKind, r *rand.Rand) (Generator, error) {
	switch kind {
	case difficulty.DividedAttention, difficulty.DoubleDecision:
		return NewRing(kind, r), nil
	case difficulty.IconSwap:
		return NewIconSwap(r), nil
	}
	return nil, fmt.Errorf("no stimulus generator for %s", kind)
}

// NewRand returns a random source seeded from the runtime.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// SampleWithout draws up to n distinct elements of pool, never returning
// exclude. When fewer than n candidates remain, all of them are returned in
// random order.
func SampleWithout[T comparable](r *rand.Rand, pool []T, exclude T, n int) []T {
	candidates := make([]T, 0, len(pool))
	for _, v := range pool {
		if v != exclude {
			candidates = append(candidates, v)
		}
	}
	r.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if n < 0 {
		n = 0
	}
	if n > len(candidates) {
		n = len(candidates)
	}
	return candidates[:n]
}
