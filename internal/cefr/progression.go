package cefr

const (
	upgradeRun     = 3
	upgradeScore   = 8.0
	downgradeRun   = 2
	downgradeScore = 4.0
)

// Direction is the way a level moved.
type Direction int

const (
	Unchanged Direction = iota
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "unchanged"
	}
}

// Result is the outcome of Evaluate.
type Result struct {
	Changed   bool
	Level     Level
	Direction Direction
}

// Evaluate decides whether a learner at current moves a rung given their
// recent session scores, oldest first. Three scores of at least 8 in a row
// step up; failing that, two scores of at most 4 step down. At most one
// rung changes per call and the ladder ends are sticky.
func Evaluate(current Level, recentScores []float64) Result {
	if tailAll(recentScores, upgradeRun, func(s float64) bool { return s >= upgradeScore }) {
		if current != Top {
			return Result{Changed: true, Level: FromRung(current.Rung() + 1), Direction: Up}
		}
	}
	if tailAll(recentScores, downgradeRun, func(s float64) bool { return s <= downgradeScore }) {
		if current != Bottom {
			return Result{Changed: true, Level: FromRung(current.Rung() - 1), Direction: Down}
		}
	}
	return Result{Level: current}
}

// tailAll reports whether the last n scores exist and all satisfy ok.
func tailAll(scores []float64, n int, ok func(float64) bool) bool {
	if len(scores) < n {
		return false
	}
	for _, s := range scores[len(scores)-n:] {
		if !ok(s) {
			return false
		}
	}
	return true
}
