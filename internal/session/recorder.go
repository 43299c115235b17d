// Package session persists timed game sessions: it buffers trials as they
// are scored, finalizes the session row and folds the result into the
// per-game aggregate.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/abhisek/focuslab/internal/difficulty"
	"github.com/abhisek/focuslab/internal/progress"
	"github.com/abhisek/focuslab/internal/store"
	"github.com/abhisek/focuslab/internal/timer"
)

// DefaultBatchSize is how many trials are buffered before a flush.
const DefaultBatchSize = 10

// ErrNotOpen is returned when a trial or finish arrives before Open.
var ErrNotOpen = errors.New("session: no open session")

// Repos are the store repositories the recorder writes to.
type Repos struct {
	Sessions   store.SessionRepo
	Trials     store.TrialRepo
	Aggregates store.AggregateRepo
}

// ReposFrom returns the recorder repositories of s.
func ReposFrom(s *store.Store) Repos {
	return Repos{
		Sessions:   s.SessionRepo(),
		Trials:     s.TrialRepo(),
		Aggregates: s.AggregateRepo(),
	}
}

// Recorder writes one session at a time. It is safe for concurrent use.
type Recorder struct {
	repos     Repos
	clock     timer.Clock
	log       *slog.Logger
	batchSize int

	mu       sync.Mutex
	id       string
	kind     difficulty.GameKind
	buffer   []progress.Trial
	finished bool
	last     *progress.AggregateStats
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock sets the clock used for session timestamps.
func WithClock(c timer.Clock) Option {
	return func(r *Recorder) { r.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) { r.log = l }
}

// WithBatchSize sets the flush threshold. Values below 1 are ignored.
func WithBatchSize(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// New creates a Recorder.
func New(repos Repos, opts ...Option) *Recorder {
	r := &Recorder{
		repos:     repos,
		clock:     timer.SystemClock{},
		log:       slog.Default(),
		batchSize: DefaultBatchSize,
	}
	for _, o := range opts {
		o(r)
	}
	r.log = r.log.With("component", "session")
	return r
}

// StartingLevel returns the level the next session of kind should begin
// at. A game never played starts at level 1.
func (r *Recorder) StartingLevel(ctx context.Context, kind difficulty.GameKind) (difficulty.Level, error) {
	agg, err := r.aggregate(ctx, kind)
	if err != nil {
		return difficulty.MinLevel, err
	}
	return progress.StartingDifficulty(agg), nil
}

// Open creates a new session row and returns its id. Any previous session
// state held by the recorder is discarded.
func (r *Recorder) Open(ctx context.Context, kind difficulty.GameKind, start difficulty.Level) (string, error) {
	id := uuid.NewString()
	err := r.repos.Sessions.Create(ctx, store.SessionRecord{
		ID:         id,
		Game:       kind,
		StartedAt:  r.clock.Now(),
		StartLevel: start,
	})
	if err != nil {
		return "", fmt.Errorf("open session: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.id = id
	r.kind = kind
	r.buffer = nil
	r.finished = false
	r.last = nil
	r.log.Info("session opened", "id", id, "game", kind.String(), "level", int(start))
	return id, nil
}

// SaveTrial buffers t and flushes once the buffer reaches the batch size.
// A failed flush keeps the buffer; the next flush retries it.
func (r *Recorder) SaveTrial(ctx context.Context, t progress.Trial) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.id == "" {
		return ErrNotOpen
	}
	r.buffer = append(r.buffer, t)
	if len(r.buffer) < r.batchSize {
		return nil
	}
	return r.flushLocked(ctx)
}

// Finish flushes buffered trials, finalizes the session row and folds the
// session into the aggregate of its game. The aggregate is written only
// after the session row is finalized. Calling Finish again after it
// succeeded is a no-op.
func (r *Recorder) Finish(ctx context.Context, trials []progress.Trial, final difficulty.Level) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.id == "" {
		return ErrNotOpen
	}
	if r.finished {
		return nil
	}

	if err := r.flushLocked(ctx); err != nil {
		return err
	}

	stats := progress.Summarize(trials)
	stats.FinalDifficulty = final
	rating := progress.PerformanceRating(stats)
	now := r.clock.Now()

	err := r.repos.Sessions.Finalize(ctx, store.SessionRecord{
		ID:            r.id,
		EndedAt:       now,
		FinalLevel:    final,
		TotalTrials:   stats.TotalTrials,
		CorrectTrials: stats.CorrectTrials,
		Accuracy:      stats.Accuracy,
		AvgResponseMs: stats.AverageResponseTimeMs,
		Rating:        rating,
	})
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}

	agg, err := r.aggregate(ctx, r.kind)
	if err != nil {
		return err
	}
	agg = progress.Fold(agg, progress.Summary(r.id, stats, rating, now))
	if err := r.repos.Aggregates.Put(ctx, agg); err != nil {
		return fmt.Errorf("write aggregate: %w", err)
	}

	r.finished = true
	r.last = &agg
	r.log.Info("session finished",
		"id", r.id,
		"trials", stats.TotalTrials,
		"accuracy", stats.Accuracy,
		"final_level", int(final),
		"rating", rating,
		"trend", string(agg.Trend),
	)
	return nil
}

// Aggregate returns the aggregate written by the last successful Finish.
func (r *Recorder) Aggregate() (progress.AggregateStats, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return progress.AggregateStats{}, false
	}
	return *r.last, true
}

// Pending reports how many trials are buffered and not yet written.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buffer)
}

func (r *Recorder) flushLocked(ctx context.Context) error {
	if len(r.buffer) == 0 {
		return nil
	}
	if err := r.repos.Trials.InsertBatch(ctx, r.id, r.buffer); err != nil {
		r.log.Warn("trial flush failed", "id", r.id, "pending", len(r.buffer), "err", err)
		return fmt.Errorf("flush trials: %w", err)
	}
	r.buffer = nil
	return nil
}

func (r *Recorder) aggregate(ctx context.Context, kind difficulty.GameKind) (progress.AggregateStats, error) {
	agg, err := r.repos.Aggregates.Get(ctx, kind)
	if errors.Is(err, store.ErrNotFound) {
		return progress.Empty(kind), nil
	}
	if err != nil {
		return progress.AggregateStats{}, fmt.Errorf("read aggregate: %w", err)
	}
	return *agg, nil
}
