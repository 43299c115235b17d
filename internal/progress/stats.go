// Package progress summarizes finished sessions and folds them into
// per-game lifetime statistics.
package progress

import (
	"math"
	"slices"

	"github.com/abhisek/focuslab/internal/difficulty"
	"github.com/abhisek/focuslab/internal/statsmath"
)

// SessionStats are the descriptive statistics of one session's trials.
// Times are in milliseconds.
type SessionStats struct {
	TotalTrials           int
	CorrectTrials         int
	Accuracy              float64
	AverageResponseTimeMs float64
	MedianResponseTimeMs  float64
	ResponseTimeStdDev    float64
	CorrectAvgTimeMs      float64
	IncorrectAvgTimeMs    float64
	FastestCorrectMs      float64
	SlowestCorrectMs      float64
	DifficultyProgression []difficulty.Level
	FinalDifficulty       difficulty.Level
}

// Summarize computes SessionStats over trials. An empty log yields zeros
// with a final difficulty of 1.
func Summarize(trials []Trial) SessionStats {
	if len(trials) == 0 {
		return SessionStats{FinalDifficulty: difficulty.MinLevel}
	}

	var all, correct, incorrect []float64
	progression := make([]difficulty.Level, 0, len(trials))
	for _, t := range trials {
		ms := t.ResponseMillis()
		all = append(all, ms)
		if t.Correct {
			correct = append(correct, ms)
		} else {
			incorrect = append(incorrect, ms)
		}
		progression = append(progression, t.Level)
	}

	s := SessionStats{
		TotalTrials:           len(trials),
		CorrectTrials:         len(correct),
		Accuracy:              float64(len(correct)) / float64(len(trials)),
		AverageResponseTimeMs: statsmath.Mean(all),
		MedianResponseTimeMs:  statsmath.Median(all),
		ResponseTimeStdDev:    statsmath.StdDev(all),
		CorrectAvgTimeMs:      statsmath.Mean(correct),
		IncorrectAvgTimeMs:    statsmath.Mean(incorrect),
		DifficultyProgression: progression,
		FinalDifficulty:       difficulty.Clamp(int(trials[len(trials)-1].Level)),
	}
	if len(correct) > 0 {
		s.FastestCorrectMs = slices.Min(correct)
		s.SlowestCorrectMs = slices.Max(correct)
	}
	return s
}

// PerformanceRating scores a session from 0 to 100: accuracy weighs 40%,
// speed of correct answers 30% and the final difficulty 30%.
func PerformanceRating(s SessionStats) int {
	accuracy := s.Accuracy * 100

	speed := 50.0
	if s.CorrectAvgTimeMs > 0 {
		speed = statsmath.MapRange(s.CorrectAvgTimeMs, 2000, 200, 0, 100)
	}

	level := float64(s.FinalDifficulty) / difficulty.MaxLevel * 100

	score := accuracy*0.4 + speed*0.3 + level*0.3
	return statsmath.Clamp(int(math.Round(score)), 0, 100)
}
