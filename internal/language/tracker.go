package language

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/abhisek/focuslab/internal/cefr"
	"github.com/abhisek/focuslab/internal/difficulty"
	"github.com/abhisek/focuslab/internal/progress"
	"github.com/abhisek/focuslab/internal/store"
	"github.com/abhisek/focuslab/internal/timer"
)

// RecentScoreWindow is how many recent overall scores feed level
// progression.
const RecentScoreWindow = 5

// TrackerRepos are the store repositories a Tracker uses.
type TrackerRepos struct {
	Sessions   store.SessionRepo
	Aggregates store.AggregateRepo
	Levels     store.LevelRepo
}

// TrackerReposFrom returns the tracker repositories of s.
func TrackerReposFrom(s *store.Store) TrackerRepos {
	return TrackerRepos{
		Sessions:   s.SessionRepo(),
		Aggregates: s.AggregateRepo(),
		Levels:     s.LevelRepo(),
	}
}

// Outcome is a graded session ready to be recorded.
type Outcome struct {
	SessionID   string
	Kind        difficulty.GameKind
	Language    Language
	Level       cefr.Level
	StartedAt   time.Time
	ReadingTime time.Duration
	AnswerTime  time.Duration
	Evaluation  *Evaluation
}

func (o Outcome) game() difficulty.GameKind {
	if o.Kind.Language() {
		return o.Kind
	}
	return difficulty.TenseRewrite
}

// Progress is what recording a session changed.
type Progress struct {
	Previous  cefr.Level
	Result    cefr.Result
	Aggregate progress.AggregateStats
}

// Tracker persists language sessions and moves learners along the ladder.
type Tracker struct {
	repos   TrackerRepos
	initial cefr.Level
	clock   timer.Clock
	log     *slog.Logger
}

// NewTracker creates a Tracker. initial is the level of a language the
// learner has never practised. Nil clock and logger use defaults.
func NewTracker(repos TrackerRepos, initial cefr.Level, clock timer.Clock, logger *slog.Logger) *Tracker {
	if clock == nil {
		clock = timer.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		repos:   repos,
		initial: initial,
		clock:   clock,
		log:     logger.With("component", "language"),
	}
}

// Level returns the learner's current level in lang.
func (t *Tracker) Level(ctx context.Context, lang Language) (cefr.Level, error) {
	rec, err := t.repos.Levels.Get(ctx, string(lang))
	if errors.Is(err, store.ErrNotFound) {
		return t.initial, nil
	}
	if err != nil {
		return t.initial, fmt.Errorf("read level: %w", err)
	}
	lvl, err := cefr.Parse(rec.Tier, rec.SubTier)
	if err != nil {
		t.log.Warn("stored level unreadable, using initial level", "language", string(lang), "err", err)
		return t.initial, nil
	}
	return lvl, nil
}

// SetLevel stores the learner's level in lang.
func (t *Tracker) SetLevel(ctx context.Context, lang Language, lvl cefr.Level) error {
	err := t.repos.Levels.Put(ctx, store.LevelRecord{
		Language:  string(lang),
		Tier:      lvl.Tier.String(),
		SubTier:   lvl.Sub.String(),
		UpdatedAt: t.clock.Now(),
	})
	if err != nil {
		return fmt.Errorf("write level: %w", err)
	}
	return nil
}

// Record stores a graded session, folds it into the aggregate of its game
// and, for tense rewrite sessions, evaluates level progression. Storage failures are returned; progression
// failures are logged and leave the level unchanged. Recording the same
// session again after a failure does not duplicate it.
func (t *Tracker) Record(ctx context.Context, o Outcome) (Progress, error) {
	p := Progress{Previous: o.Level, Result: cefr.Result{Level: o.Level}}
	game := o.game()
	eval := o.Evaluation
	n := len(eval.Items)
	now := t.clock.Now()
	if o.StartedAt.IsZero() {
		o.StartedAt = now
	}

	if _, err := t.repos.Sessions.Get(ctx, o.SessionID); errors.Is(err, store.ErrNotFound) {
		err := t.repos.Sessions.Create(ctx, store.SessionRecord{
			ID:         o.SessionID,
			Game:       game,
			StartedAt:  o.StartedAt,
			StartLevel: ladderDifficulty(o.Level),
			Language:   string(o.Language),
			CEFRLevel:  o.Level.Tier.String(),
			SubLevel:   o.Level.Sub.String(),
		})
		if err != nil {
			return p, fmt.Errorf("record session: %w", err)
		}
	} else if err != nil {
		return p, fmt.Errorf("record session: %w", err)
	}

	var avgMs float64
	if n > 0 {
		avgMs = float64(o.AnswerTime.Milliseconds()) / float64(n)
	}
	rating := int(math.Round(eval.Overall * 10))

	err := t.repos.Sessions.Finalize(ctx, store.SessionRecord{
		ID:            o.SessionID,
		EndedAt:       now,
		FinalLevel:    ladderDifficulty(o.Level),
		TotalTrials:   n,
		CorrectTrials: eval.CorrectCount(),
		Accuracy:      eval.Accuracy(),
		AvgResponseMs: avgMs,
		Rating:        rating,
		OverallScore:  eval.Overall,
		Feedback:      eval.Feedback,
	})
	if err != nil {
		return p, fmt.Errorf("record session: %w", err)
	}

	agg, err := t.repos.Aggregates.Get(ctx, game)
	switch {
	case errors.Is(err, store.ErrNotFound):
		agg = new(progress.AggregateStats)
		*agg = progress.Empty(game)
	case err != nil:
		return p, fmt.Errorf("read aggregate: %w", err)
	}
	folded := progress.Fold(*agg, progress.SessionSummary{
		SessionID:       o.SessionID,
		TotalTrials:     n,
		Accuracy:        eval.Accuracy(),
		AvgResponseMs:   avgMs,
		FinalDifficulty: ladderDifficulty(o.Level),
		Rating:          rating,
		EndedAt:         now,
	})
	if err := t.repos.Aggregates.Put(ctx, folded); err != nil {
		return p, fmt.Errorf("write aggregate: %w", err)
	}
	p.Aggregate = folded
	t.log.Info("language session recorded", "game", game.String(), "language", string(o.Language),
		"overall", eval.Overall, "reading", o.ReadingTime, "answering", o.AnswerTime)

	if game == difficulty.TenseRewrite {
		p.Result = t.progress(ctx, o)
	}
	return p, nil
}

func (t *Tracker) progress(ctx context.Context, o Outcome) cefr.Result {
	unchanged := cefr.Result{Level: o.Level}
	scores, err := t.repos.Sessions.RecentLanguageScores(ctx, difficulty.TenseRewrite,
		string(o.Language), o.Level.Tier.String(), o.Level.Sub.String(), RecentScoreWindow)
	if err != nil {
		t.log.Warn("level progression skipped", "language", string(o.Language), "err", err)
		return unchanged
	}

	res := cefr.Evaluate(o.Level, scores)
	if !res.Changed {
		return res
	}
	if err := t.SetLevel(ctx, o.Language, res.Level); err != nil {
		t.log.Warn("level change not saved", "language", string(o.Language), "to", res.Level.String(), "err", err)
		return unchanged
	}
	t.log.Info("level changed",
		"language", string(o.Language),
		"from", o.Level.String(),
		"to", res.Level.String(),
		"direction", res.Direction.String(),
	)
	return res
}

// ladderDifficulty maps a rung onto the difficulty scale so language
// sessions share the aggregate layout of the timed games.
func ladderDifficulty(l cefr.Level) difficulty.Level {
	return difficulty.Clamp(l.Rung() + 1)
}
