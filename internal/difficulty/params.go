// Package difficulty maps discrete difficulty levels to per-game parameters
// and decides level changes from trial history.
package difficulty

import (
	"errors"
	"math"
	"time"

	"github.com/abhisek/focuslab/internal/statsmath"
)

const (
	MinLevel = 1
	MaxLevel = 20
)

// Level is a difficulty level in [MinLevel, MaxLevel]. Higher is harder.
type Level int

// Clamp saturates an arbitrary int into the valid level range.
func Clamp(v int) Level {
	return Level(statsmath.Clamp(v, MinLevel, MaxLevel))
}

// ErrNoTable is returned for game kinds that are not driven by a level table.
var ErrNoTable = errors.New("difficulty: game kind has no parameter table")

// Params is the derived parameter set for one game kind at one level.
type Params struct {
	Level Level

	// Ring games.
	FlashDuration        time.Duration
	PeripheralDistance   float64 // fraction of the playing-field size
	DistractorCount      int
	DistractorSimilarity float64

	// Icon swap.
	MemorizeTime  time.Duration
	BlinkDuration time.Duration
	CardCount     int
	IconPoolSize  int
}

type table [MaxLevel]Params

var (
	dividedAttentionTable = buildRingTable(600, 150, 0.25, 0.45)
	doubleDecisionTable   = buildRingTable(800, 200, 0.30, 0.45)
	iconSwapTable         = buildIconSwapTable()
)

// lerp interpolates linearly from lo at level 1 to hi at level 20.
func lerp(level int, lo, hi float64) float64 {
	return lo + float64(level-MinLevel)*(hi-lo)/float64(MaxLevel-MinLevel)
}

func ms(v float64) time.Duration {
	return time.Duration(math.Round(v)) * time.Millisecond
}

func buildRingTable(flashFrom, flashTo, distFrom, distTo float64) table {
	var t table
	for i := range t {
		lvl := i + 1
		t[i] = Params{
			Level:                Level(lvl),
			FlashDuration:        ms(lerp(lvl, flashFrom, flashTo)),
			PeripheralDistance:   lerp(lvl, distFrom, distTo),
			DistractorCount:      int(math.Round(lerp(lvl, 0, 6))),
			DistractorSimilarity: lerp(lvl, 0.3, 0.8),
		}
	}
	return t
}

func buildIconSwapTable() table {
	var t table
	for i := range t {
		lvl := i + 1
		t[i] = Params{
			Level:         Level(lvl),
			MemorizeTime:  ms(lerp(lvl, 3000, 500)),
			BlinkDuration: ms(lerp(lvl, 400, 210)),
			CardCount:     cardCountFor(lvl),
			IconPoolSize:  int(math.Round(lerp(lvl, 12, 40))),
		}
	}
	return t
}

// cardCountFor steps the grid size up at levels 6, 10, 14 and 18.
func cardCountFor(level int) int {
	switch {
	case level < 6:
		return 4
	case level < 10:
		return 5
	case level < 14:
		return 6
	case level < 18:
		return 7
	default:
		return 8
	}
}

// ParamsFor returns the parameters of kind at level. Out-of-range levels are
// saturated, never rejected. The result depends only on its inputs.
func ParamsFor(level int, kind GameKind) (Params, error) {
	l := Clamp(level)
	switch kind {
	case DividedAttention:
		return dividedAttentionTable[l-1], nil
	case DoubleDecision:
		return doubleDecisionTable[l-1], nil
	case IconSwap:
		return iconSwapTable[l-1], nil
	}
	return Params{Level: l}, ErrNoTable
}

// MustParamsFor is ParamsFor for kinds known to be timed. It panics on a
// kind without a table, which is a programming error.
func MustParamsFor(level int, kind GameKind) Params {
	p, err := ParamsFor(level, kind)
	if err != nil {
		panic(err)
	}
	return p
}
