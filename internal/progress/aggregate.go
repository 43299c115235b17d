package progress

import (
	"time"

	"github.com/abhisek/focuslab/internal/difficulty"
	"github.com/abhisek/focuslab/internal/statsmath"
)

// WindowSize is the capacity of the recent-session window.
const WindowSize = 10

// Trend classifies the direction of recent accuracy.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// trendThreshold is the regression slope beyond which a trend is reported.
const trendThreshold = 0.02

// SessionSummary is what a finished session contributes to its aggregate.
type SessionSummary struct {
	SessionID       string
	TotalTrials     int
	Accuracy        float64
	AvgResponseMs   float64
	FinalDifficulty difficulty.Level
	Rating          int
	EndedAt         time.Time
}

// RecentSession is one entry of the recent-session window.
type RecentSession struct {
	SessionID       string    `json:"session_id"`
	Accuracy        float64   `json:"accuracy"`
	AvgResponseMs   float64   `json:"avg_response_ms"`
	FinalDifficulty int       `json:"final_difficulty"`
	Rating          int       `json:"rating"`
	Date            time.Time `json:"date"`
}

// AggregateStats is the lifetime summary of one game kind.
type AggregateStats struct {
	Kind           difficulty.GameKind
	TotalSessions  int
	TotalTrials    int
	Accuracy       float64 // trial-weighted over every trial ever played
	BestAccuracy   float64
	BestSessionID  string
	AvgResponseMs  float64 // trial-weighted
	CurrentLevel   difficulty.Level
	Trend          Trend
	LastPlayedAt   time.Time
	RecentSessions []RecentSession // oldest first, at most WindowSize
}

// Empty returns the aggregate of a game that has never been played.
func Empty(kind difficulty.GameKind) AggregateStats {
	return AggregateStats{
		Kind:         kind,
		CurrentLevel: difficulty.MinLevel,
		Trend:        TrendStable,
	}
}

// Fold merges a finished session into agg and returns the new aggregate.
// agg is not modified.
func Fold(agg AggregateStats, s SessionSummary) AggregateStats {
	trials := max(s.TotalTrials, 0)
	total := agg.TotalTrials + trials

	out := agg
	out.TotalSessions = agg.TotalSessions + 1
	out.TotalTrials = total
	if total > 0 {
		out.Accuracy = weighted(agg.Accuracy, agg.TotalTrials, s.Accuracy, trials)
		out.AvgResponseMs = weighted(agg.AvgResponseMs, agg.TotalTrials, s.AvgResponseMs, trials)
	}

	// Ties keep the earlier session.
	if s.Accuracy > agg.BestAccuracy {
		out.BestAccuracy = s.Accuracy
		out.BestSessionID = s.SessionID
	}

	level := difficulty.Clamp(int(s.FinalDifficulty))
	out.CurrentLevel = level

	keep := agg.RecentSessions
	if len(keep) > WindowSize-1 {
		keep = keep[len(keep)-(WindowSize-1):]
	}
	window := make([]RecentSession, 0, len(keep)+1)
	window = append(window, keep...)
	window = append(window, RecentSession{
		SessionID:       s.SessionID,
		Accuracy:        s.Accuracy,
		AvgResponseMs:   s.AvgResponseMs,
		FinalDifficulty: int(level),
		Rating:          s.Rating,
		Date:            s.EndedAt,
	})
	out.RecentSessions = window

	accuracies := make([]float64, len(window))
	for i, r := range window {
		accuracies[i] = r.Accuracy
	}
	out.Trend = ComputeTrend(accuracies)
	out.LastPlayedAt = s.EndedAt

	return out
}

func weighted(oldMean float64, oldN int, mean float64, n int) float64 {
	return (oldMean*float64(oldN) + mean*float64(n)) / float64(oldN+n)
}

// ComputeTrend fits a least-squares line through accuracies (oldest first).
// Fewer than three samples are always stable.
func ComputeTrend(accuracies []float64) Trend {
	if len(accuracies) < 3 {
		return TrendStable
	}
	slope := statsmath.LinearRegressionSlope(accuracies)
	switch {
	case slope > trendThreshold:
		return TrendImproving
	case slope < -trendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// StartingDifficulty is the level a new session begins at: one below the
// last level reached, never below 1.
func StartingDifficulty(agg AggregateStats) difficulty.Level {
	return difficulty.Clamp(int(agg.CurrentLevel) - 1)
}

// Summary builds the fold input for a finished session.
func Summary(id string, stats SessionStats, rating int, endedAt time.Time) SessionSummary {
	return SessionSummary{
		SessionID:       id,
		TotalTrials:     stats.TotalTrials,
		Accuracy:        stats.Accuracy,
		AvgResponseMs:   stats.AverageResponseTimeMs,
		FinalDifficulty: stats.FinalDifficulty,
		Rating:          rating,
		EndedAt:         endedAt,
	}
}
