package difficulty

import "fmt"

// GameKind identifies a training game.
type GameKind int

const (
	DividedAttention GameKind = iota
	DoubleDecision
	IconSwap
	TenseRewrite
	Comprehension
	SpeedSummary
)

// AllKinds lists every game kind in menu order.
var AllKinds = []GameKind{DividedAttention, DoubleDecision, IconSwap, TenseRewrite, Comprehension, SpeedSummary}

// String returns the stable kebab-case identifier used in storage and on the
// command line.
func (k GameKind) String() string {
	switch k {
	case DividedAttention:
		return "divided-attention"
	case DoubleDecision:
		return "double-decision"
	case IconSwap:
		return "icon-swap"
	case TenseRewrite:
		return "tense-rewrite"
	case Comprehension:
		return "comprehension"
	case SpeedSummary:
		return "speed-summary"
	}
	return fmt.Sprintf("GameKind(%d)", int(k))
}

// DisplayName returns a human-readable game name.
func (k GameKind) DisplayName() string {
	switch k {
	case DividedAttention:
		return "Divided Attention"
	case DoubleDecision:
		return "Double Decision"
	case IconSwap:
		return "Icon Swap"
	case TenseRewrite:
		return "Tense Rewrite"
	case Comprehension:
		return "Comprehension"
	case SpeedSummary:
		return "Speed Summary"
	}
	return k.String()
}

// Timed reports whether the kind is played through the trial engine.
func (k GameKind) Timed() bool {
	switch k {
	case DividedAttention, DoubleDecision, IconSwap:
		return true
	}
	return false
}

// Language reports whether the kind is an LLM-graded language game.
func (k GameKind) Language() bool {
	switch k {
	case TenseRewrite, Comprehension, SpeedSummary:
		return true
	}
	return false
}

// TwoPhase reports whether a trial has a central and a peripheral judgment.
func (k GameKind) TwoPhase() bool {
	return k == DividedAttention || k == DoubleDecision
}

// ParseGameKind converts an identifier produced by String back to a GameKind.
func ParseGameKind(s string) (GameKind, error) {
	for _, k := range AllKinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown game kind %q", s)
}
