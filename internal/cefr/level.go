// Package cefr models the language level ladder: six CEFR tiers, each
// split into three sub-tiers, giving 18 totally ordered rungs.
package cefr

import (
	"fmt"
	"strings"
)

// Tier is a CEFR proficiency tier.
type Tier int

const (
	A1 Tier = iota
	A2
	B1
	B2
	C1
	C2
)

var tierNames = [...]string{"A1", "A2", "B1", "B2", "C1", "C2"}

func (t Tier) String() string {
	if t < A1 || t > C2 {
		return "unknown"
	}
	return tierNames[t]
}

// SubTier places a learner within a tier.
type SubTier int

const (
	Novice SubTier = iota
	WellPlaced
	Advanced
)

var subTierNames = [...]string{"novice", "well-placed", "advanced"}

func (s SubTier) String() string {
	if s < Novice || s > Advanced {
		return "unknown"
	}
	return subTierNames[s]
}

// Describe is the phrase used in exercise prompts for the sub-tier.
func (s SubTier) Describe() string {
	switch s {
	case Novice:
		return "lower range"
	case Advanced:
		return "upper range"
	default:
		return "mid range"
	}
}

const (
	subTiers = 3

	// Rungs is the number of positions on the ladder.
	Rungs = (int(C2) + 1) * subTiers
)

// Level is one rung of the ladder.
type Level struct {
	Tier Tier
	Sub  SubTier
}

// Bottom and Top are the ends of the ladder.
var (
	Bottom = Level{A1, Novice}
	Top    = Level{C2, Advanced}
)

// Rung returns the level's position, 0 for A1 novice through 17 for C2
// advanced.
func (l Level) Rung() int {
	return int(l.Tier)*subTiers + int(l.Sub)
}

// FromRung returns the level at rung r, saturating at either end.
func FromRung(r int) Level {
	r = min(max(r, 0), Rungs-1)
	return Level{Tier: Tier(r / subTiers), Sub: SubTier(r % subTiers)}
}

// String renders the level as "B1 well-placed".
func (l Level) String() string {
	return l.Tier.String() + " " + l.Sub.String()
}

// Label renders the level for prompts, e.g. "B1 (mid range)".
func (l Level) Label() string {
	return fmt.Sprintf("%s (%s)", l.Tier, l.Sub.Describe())
}

// Parse reads a tier such as "b1" and a sub-tier such as "well-placed".
// An empty sub-tier means novice.
func Parse(tier, sub string) (Level, error) {
	var l Level
	t := strings.ToUpper(strings.TrimSpace(tier))
	found := false
	for i, name := range tierNames {
		if name == t {
			l.Tier = Tier(i)
			found = true
			break
		}
	}
	if !found {
		return Bottom, fmt.Errorf("unknown CEFR tier %q", tier)
	}

	s := strings.ToLower(strings.TrimSpace(sub))
	if s == "" {
		return l, nil
	}
	for i, name := range subTierNames {
		if name == s {
			l.Sub = SubTier(i)
			return l, nil
		}
	}
	return Bottom, fmt.Errorf("unknown sub-tier %q", sub)
}

// MustParse is like Parse but panics on error.
func MustParse(tier, sub string) Level {
	l, err := Parse(tier, sub)
	if err != nil {
		panic(err)
	}
	return l
}
