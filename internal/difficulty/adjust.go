package difficulty

const (
	// StreakUp is the number of consecutive correct trials that raises the level.
	StreakUp = 3
	// StreakDown is the number of consecutive incorrect trials that lowers the level.
	StreakDown = 2
	// Window is the number of most recent trials used for the accuracy rule.
	Window = 10

	windowRaiseAbove = 0.80
	windowLowerBelow = 0.50
)

// Outcome is anything with a correct/incorrect result, typically a trial.
type Outcome interface {
	IsCorrect() bool
}

// Streaks holds the caller-maintained consecutive outcome counters.
type Streaks struct {
	Correct   int
	Incorrect int
}

// Record returns the counters after one more outcome. A matching outcome
// increments its counter, the opposite counter resets to zero.
func (s Streaks) Record(correct bool) Streaks {
	if correct {
		return Streaks{Correct: s.Correct + 1}
	}
	return Streaks{Incorrect: s.Incorrect + 1}
}

// NextLevel computes the level for the next trial. Rules apply in order:
// a correct streak of StreakUp raises, an incorrect streak of StreakDown
// lowers, and otherwise once at least Window outcomes exist the accuracy of
// the last Window decides (> 80% raises, < 50% lowers). The window slides,
// so it is re-evaluated on every call.
func NextLevel[T Outcome](current Level, trials []T, consecutiveCorrect, consecutiveIncorrect int) Level {
	lvl := Clamp(int(current))

	if consecutiveCorrect >= StreakUp {
		return Clamp(int(lvl) + 1)
	}
	if consecutiveIncorrect >= StreakDown {
		return Clamp(int(lvl) - 1)
	}

	if len(trials) >= Window {
		recent := trials[len(trials)-Window:]
		correct := 0
		for _, t := range recent {
			if t.IsCorrect() {
				correct++
			}
		}
		accuracy := float64(correct) / float64(len(recent))
		switch {
		case accuracy > windowRaiseAbove:
			return Clamp(int(lvl) + 1)
		case accuracy < windowLowerBelow:
			return Clamp(int(lvl) - 1)
		}
	}

	return lvl
}
