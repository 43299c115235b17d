// Package trial drives one timed game session: it draws stimuli at the
// current difficulty, sequences the response phases, scores each trial and
// adapts the level after every trial.
//
// An Engine is safe for concurrent use. Timer callbacks arrive on scheduler
// goroutines while player input arrives from the UI; both are serialized by
// one mutex, and the OnChange observer runs outside it.
package trial

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/focuslab/internal/difficulty"
	"github.com/abhisek/focuslab/internal/progress"
	"github.com/abhisek/focuslab/internal/stimulus"
	"github.com/abhisek/focuslab/internal/timer"
)

const (
	DefaultFeedbackDuration  = 600 * time.Millisecond
	DefaultCountdownDuration = 3 * time.Second
	DefaultCheckpointEvery   = 10
)

// Config controls one session.
type Config struct {
	Kind       difficulty.GameKind
	StartLevel difficulty.Level

	FeedbackDuration  time.Duration
	CountdownDuration time.Duration
	CheckpointEvery   int

	// ResponseTimeout force-advances a response phase as an incorrect
	// trial. Zero waits indefinitely.
	ResponseTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.FeedbackDuration <= 0 {
		c.FeedbackDuration = DefaultFeedbackDuration
	}
	if c.CountdownDuration <= 0 {
		c.CountdownDuration = DefaultCountdownDuration
	}
	if c.CheckpointEvery <= 0 {
		c.CheckpointEvery = DefaultCheckpointEvery
	}
	c.StartLevel = difficulty.Clamp(int(c.StartLevel))
	return c
}

// Recorder persists the session. SaveTrial may buffer; Finish must flush
// everything before finalizing.
type Recorder interface {
	Open(ctx context.Context, kind difficulty.GameKind, start difficulty.Level) (string, error)
	SaveTrial(ctx context.Context, t progress.Trial) error
	Finish(ctx context.Context, trials []progress.Trial, final difficulty.Level) error
}

// Deps are the engine's collaborators. Nil fields get working defaults:
// real timers, the system clock, a randomly seeded generator, a recorder
// that keeps nothing and the default logger.
type Deps struct {
	Scheduler timer.Scheduler
	Clock     timer.Clock
	Generator stimulus.Generator
	Recorder  Recorder
	Logger    *slog.Logger
	OnChange  func(Snapshot)
}

// Snapshot is a read-only copy of the engine state.
type Snapshot struct {
	Phase          Phase
	Kind           difficulty.GameKind
	SessionID      string
	Level          difficulty.Level
	Params         difficulty.Params
	Stimulus       stimulus.Stimulus
	CentralAnswer  string // answer given in the first phase of the current trial
	TrialCount     int
	LastTrial      *progress.Trial
	Streaks        difficulty.Streaks
	PhaseStartedAt time.Time
}

// Result describes a finished session.
type Result struct {
	SessionID  string
	Kind       difficulty.GameKind
	Trials     []progress.Trial
	FinalLevel difficulty.Level
	StartedAt  time.Time
	EndedAt    time.Time
	Stats      progress.SessionStats
	Rating     int
}

// Engine is the per-session trial state machine.
type Engine struct {
	mu   sync.Mutex
	cfg  Config
	deps Deps
	log  *slog.Logger

	// ctx is the context passed to Start. Trial saves triggered by player
	// input run under it.
	ctx context.Context

	phase      Phase
	phaseStart time.Time
	closed     bool

	// gen identifies the outstanding timer; callbacks carrying an older
	// generation were cancelled after they fired and must do nothing.
	gen    uint64
	cancel timer.Cancel

	sessionID string
	startedAt time.Time
	level     difficulty.Level
	params    difficulty.Params
	stim      stimulus.Stimulus
	streaks   difficulty.Streaks
	trials    []progress.Trial

	centralAnswer  string
	centralCorrect bool

	result *Result
}

// New creates an engine for one session. Start must be called before any
// other operation.
func New(cfg Config, deps Deps) *Engine {
	cfg = cfg.withDefaults()
	if deps.Scheduler == nil {
		deps.Scheduler = timer.Real{}
	}
	if deps.Clock == nil {
		deps.Clock = timer.SystemClock{}
	}
	if deps.Recorder == nil {
		deps.Recorder = discard{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Engine{
		cfg:   cfg,
		deps:  deps,
		log:   deps.Logger.With("component", "trial", "game", cfg.Kind.String()),
		ctx:   context.Background(),
		level: cfg.StartLevel,
	}
}

// Start opens the session with the recorder and begins the countdown. The
// engine sits in PhaseOpening while the recorder works.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if err := e.check("Start", PhaseIdle); err != nil {
		e.mu.Unlock()
		return err
	}
	if _, err := difficulty.ParamsFor(int(e.level), e.cfg.Kind); err != nil {
		e.mu.Unlock()
		return fmt.Errorf("trial: start %s: %w", e.cfg.Kind, err)
	}
	if e.deps.Generator == nil {
		g, err := stimulus.ForKind(e.cfg.Kind, stimulus.NewRand())
		if err != nil {
			e.mu.Unlock()
			return fmt.Errorf("trial: start: %w", err)
		}
		e.deps.Generator = g
	}
	e.ctx = ctx
	e.setPhase(PhaseOpening)
	e.unlockAndEmit()

	id, err := e.deps.Recorder.Open(ctx, e.cfg.Kind, e.level)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		e.setPhase(PhaseIdle)
		e.unlockAndEmit()
		return &CollaboratorError{Op: "start", Phase: PhaseIdle, Err: err}
	}
	e.sessionID = id
	e.startedAt = e.deps.Clock.Now()
	e.setPhase(PhaseCountdown)
	e.schedule(e.cfg.CountdownDuration, e.beginTrial)
	e.log.Info("session started", "session_id", id, "level", int(e.level))
	e.unlockAndEmit()
	return nil
}

// SkipCountdown starts the first trial immediately.
func (e *Engine) SkipCountdown() error {
	return e.apply(func() error {
		if err := e.check("SkipCountdown", PhaseCountdown); err != nil {
			return err
		}
		e.beginTrial()
		return nil
	})
}

// RespondCentral records the central judgment of a ring game and opens the
// peripheral response phase with a fresh response clock.
func (e *Engine) RespondCentral(answer string) error {
	return e.apply(func() error {
		if err := e.check("RespondCentral", PhaseResponseCentral); err != nil {
			return err
		}
		if !e.cfg.Kind.TwoPhase() {
			return &InputError{Op: "RespondCentral", Reason: e.cfg.Kind.String() + " takes a card pick"}
		}
		if !slices.Contains(stimulus.CentralChoices(e.cfg.Kind), answer) {
			return &InputError{Op: "RespondCentral", Reason: fmt.Sprintf("unknown answer %q", answer)}
		}
		e.centralAnswer = answer
		e.centralCorrect = answer == e.stim.CentralAnswer()
		e.enterResponse(PhaseResponsePeripheral)
		return nil
	})
}

// RespondPeripheral records the peripheral location and scores the trial.
func (e *Engine) RespondPeripheral(slot int) error {
	return e.apply(func() error {
		if err := e.check("RespondPeripheral", PhaseResponsePeripheral); err != nil {
			return err
		}
		if slot < 0 || slot >= stimulus.RingSlots {
			return &InputError{Op: "RespondPeripheral", Reason: fmt.Sprintf("slot %d out of range", slot)}
		}
		peripheralCorrect := slot == e.stim.PeripheralPosition
		e.score(progress.Trial{
			Correct:            e.centralCorrect && peripheralCorrect,
			CentralCorrect:     e.centralCorrect,
			PeripheralCorrect:  peripheralCorrect,
			CentralExpected:    e.stim.CentralAnswer(),
			CentralAnswer:      e.centralAnswer,
			PeripheralExpected: e.stim.PeripheralPosition,
			PeripheralAnswer:   slot,
		})
		return nil
	})
}

// RespondPick scores an icon-swap trial by the card the player picked.
func (e *Engine) RespondPick(index int) error {
	return e.apply(func() error {
		if err := e.check("RespondPick", PhaseResponseCentral); err != nil {
			return err
		}
		if e.cfg.Kind != difficulty.IconSwap {
			return &InputError{Op: "RespondPick", Reason: e.cfg.Kind.String() + " takes central and peripheral answers"}
		}
		if index < 0 || index >= len(e.stim.ModifiedIcons) {
			return &InputError{Op: "RespondPick", Reason: fmt.Sprintf("card %d out of range", index)}
		}
		correct := index == e.stim.SwapIndex
		e.score(progress.Trial{
			Correct:            correct,
			CentralCorrect:     correct,
			PeripheralCorrect:  correct,
			PeripheralExpected: e.stim.SwapIndex,
			PeripheralAnswer:   index,
		})
		return nil
	})
}

// Continue resumes play from a checkpoint.
func (e *Engine) Continue() error {
	return e.apply(func() error {
		if err := e.check("Continue", PhaseContinuePrompt); err != nil {
			return err
		}
		e.beginTrial()
		return nil
	})
}

// End finalizes the session through the recorder. On failure the engine
// returns to the phase End was called from and the error is a
// *CollaboratorError; calling End again retries.
func (e *Engine) End(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if !e.phase.endable() {
		err := &PhaseError{Op: "End", Phase: e.phase}
		e.mu.Unlock()
		return err
	}
	from, fromStart := e.phase, e.phaseStart
	e.cancelTimer()
	e.setPhase(PhaseSaving)
	trials := slices.Clone(e.trials)
	final := e.level
	e.unlockAndEmit()

	err := e.deps.Recorder.Finish(ctx, trials, final)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		e.phase, e.phaseStart = from, fromStart
		e.resume()
		e.log.Error("session finalize failed", "session_id", e.sessionID, "error", err)
		e.unlockAndEmit()
		return &CollaboratorError{Op: "end", Phase: from, Err: err}
	}

	stats := progress.Summarize(trials)
	stats.FinalDifficulty = final
	e.result = &Result{
		SessionID:  e.sessionID,
		Kind:       e.cfg.Kind,
		Trials:     trials,
		FinalLevel: final,
		StartedAt:  e.startedAt,
		EndedAt:    e.deps.Clock.Now(),
		Stats:      stats,
		Rating:     progress.PerformanceRating(stats),
	}
	e.setPhase(PhaseEnd)
	e.log.Info("session ended", "session_id", e.sessionID, "trials", len(trials),
		"accuracy", stats.Accuracy, "final_level", int(final))
	e.unlockAndEmit()
	return nil
}

// Close tears the engine down. No scheduled callback runs after Close
// returns. It is safe to call more than once.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelTimer()
	e.closed = true
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Result returns the finished session, or nil before End succeeds.
func (e *Engine) Result() *Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.result == nil {
		return nil
	}
	r := *e.result
	r.Trials = slices.Clone(r.Trials)
	return &r
}

// Level returns the level the next trial will be presented at.
func (e *Engine) Level() difficulty.Level {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.level
}

// apply runs fn under the lock and notifies the observer if it succeeded.
func (e *Engine) apply(fn func() error) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if err := fn(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.unlockAndEmit()
	return nil
}

func (e *Engine) check(op string, want Phase) error {
	if e.closed {
		return ErrClosed
	}
	if e.phase != want {
		return &PhaseError{Op: op, Phase: e.phase}
	}
	return nil
}

func (e *Engine) unlockAndEmit() {
	snap := e.snapshotLocked()
	e.mu.Unlock()
	if e.deps.OnChange != nil {
		e.deps.OnChange(snap)
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	s := Snapshot{
		Phase:          e.phase,
		Kind:           e.cfg.Kind,
		SessionID:      e.sessionID,
		Level:          e.level,
		Params:         e.params,
		Stimulus:       e.stim,
		CentralAnswer:  e.centralAnswer,
		TrialCount:     len(e.trials),
		Streaks:        e.streaks,
		PhaseStartedAt: e.phaseStart,
	}
	s.Stimulus.DistractorPositions = slices.Clone(e.stim.DistractorPositions)
	s.Stimulus.OriginalIcons = slices.Clone(e.stim.OriginalIcons)
	s.Stimulus.ModifiedIcons = slices.Clone(e.stim.ModifiedIcons)
	if n := len(e.trials); n > 0 {
		last := e.trials[n-1]
		s.LastTrial = &last
	}
	return s
}

func (e *Engine) setPhase(p Phase) {
	e.phase = p
	e.phaseStart = e.deps.Clock.Now()
}

// schedule replaces the outstanding timer with one running fn after d.
func (e *Engine) schedule(d time.Duration, fn func()) {
	e.cancelTimer()
	gen := e.gen
	e.cancel = e.deps.Scheduler.After(d, func() {
		e.mu.Lock()
		if e.closed || e.gen != gen {
			e.mu.Unlock()
			return
		}
		e.cancel = nil
		fn()
		e.unlockAndEmit()
	})
}

func (e *Engine) cancelTimer() {
	e.gen++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// holdDuration is how long the stimulus stays visible.
func (e *Engine) holdDuration() time.Duration {
	if e.cfg.Kind == difficulty.IconSwap {
		return e.params.MemorizeTime
	}
	return e.params.FlashDuration
}

func (e *Engine) beginTrial() {
	params, err := difficulty.ParamsFor(int(e.level), e.cfg.Kind)
	if err != nil {
		// Start validated the kind.
		panic(err)
	}
	e.params = params
	e.stim = e.deps.Generator.Generate(e.level, params)
	e.centralAnswer = ""
	e.centralCorrect = false
	e.setPhase(PhaseStimulus)
	e.schedule(e.holdDuration(), e.afterStimulus)
}

func (e *Engine) afterStimulus() {
	if e.cfg.Kind == difficulty.IconSwap {
		e.setPhase(PhaseOcclusion)
		e.schedule(e.params.BlinkDuration, e.reveal)
		return
	}
	e.enterResponse(PhaseResponseCentral)
}

func (e *Engine) reveal() {
	e.enterResponse(PhaseResponseCentral)
}

// enterResponse opens a response phase. The response clock starts now.
func (e *Engine) enterResponse(p Phase) {
	e.setPhase(p)
	if e.cfg.ResponseTimeout > 0 {
		e.schedule(e.cfg.ResponseTimeout, e.timeout)
	} else {
		e.cancelTimer()
	}
}

func (e *Engine) timeout() {
	t := progress.Trial{
		TimedOut:        true,
		CentralExpected: e.stim.CentralAnswer(),
		CentralAnswer:   e.centralAnswer,
		// Nothing was located or picked.
		PeripheralAnswer: -1,
	}
	switch {
	case e.cfg.Kind == difficulty.IconSwap:
		t.PeripheralExpected = e.stim.SwapIndex
	case e.phase == PhaseResponsePeripheral:
		t.CentralCorrect = e.centralCorrect
		t.PeripheralExpected = e.stim.PeripheralPosition
	default:
		t.PeripheralExpected = e.stim.PeripheralPosition
	}
	e.log.Debug("response timed out", "phase", e.phase.String())
	e.score(t)
}

// score completes the current trial from the sub-judgments in t.
func (e *Engine) score(t progress.Trial) {
	now := e.deps.Clock.Now()
	t.Number = len(e.trials) + 1
	t.Level = e.level
	t.ResponseTime = max(now.Sub(e.phaseStart), time.Millisecond)
	t.At = now
	e.trials = append(e.trials, t)

	if err := e.deps.Recorder.SaveTrial(e.ctx, t); err != nil {
		// The recorder keeps unsaved trials and retries on Finish.
		e.log.Warn("trial save failed", "session_id", e.sessionID, "trial", t.Number, "error", err)
	}

	e.streaks = e.streaks.Record(t.Correct)
	next := difficulty.NextLevel(e.level, e.trials, e.streaks.Correct, e.streaks.Incorrect)
	if next != e.level {
		e.log.Debug("level changed", "from", int(e.level), "to", int(next), "trial", t.Number)
	}
	e.level = next

	e.setPhase(PhaseFeedback)
	e.schedule(e.cfg.FeedbackDuration, e.afterFeedback)
}

func (e *Engine) afterFeedback() {
	if len(e.trials)%e.cfg.CheckpointEvery == 0 {
		e.setPhase(PhaseContinuePrompt)
		return
	}
	e.beginTrial()
}

// resume re-arms the timer of the current phase after a failed End.
func (e *Engine) resume() {
	switch e.phase {
	case PhaseCountdown:
		e.schedule(e.cfg.CountdownDuration, e.beginTrial)
	case PhaseStimulus:
		e.schedule(e.holdDuration(), e.afterStimulus)
	case PhaseOcclusion:
		e.schedule(e.params.BlinkDuration, e.reveal)
	case PhaseResponseCentral, PhaseResponsePeripheral:
		if e.cfg.ResponseTimeout > 0 {
			e.schedule(e.cfg.ResponseTimeout, e.timeout)
		}
	case PhaseFeedback:
		e.schedule(e.cfg.FeedbackDuration, e.afterFeedback)
	}
}

// discard is the recorder used when none is configured.
type discard struct{}

func (discard) Open(context.Context, difficulty.GameKind, difficulty.Level) (string, error) {
	return uuid.NewString(), nil
}

func (discard) SaveTrial(context.Context, progress.Trial) error { return nil }

func (discard) Finish(context.Context, []progress.Trial, difficulty.Level) error { return nil }
