// Package game is the screen that plays one timed training game through
// the trial engine.
package game

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/focuslab/internal/difficulty"
	"github.com/abhisek/focuslab/internal/progress"
	"github.com/abhisek/focuslab/internal/router"
	"github.com/abhisek/focuslab/internal/screen"
	"github.com/abhisek/focuslab/internal/screens/results"
	"github.com/abhisek/focuslab/internal/stimulus"
	"github.com/abhisek/focuslab/internal/timer"
	"github.com/abhisek/focuslab/internal/trial"
	"github.com/abhisek/focuslab/internal/ui/components"
	"github.com/abhisek/focuslab/internal/ui/layout"
)

// Recorder is the session recorder a game persists through.
type Recorder interface {
	trial.Recorder
	StartingLevel(ctx context.Context, kind difficulty.GameKind) (difficulty.Level, error)
	Aggregate() (progress.AggregateStats, bool)
}

// Deps are the collaborators of a game screen.
type Deps struct {
	// NewRecorder returns a fresh recorder for each game.
	NewRecorder func() Recorder
	Config      trial.Config
	Scheduler   timer.Scheduler // nil uses real timers
	Clock       timer.Clock     // nil uses the system clock
	Logger      *slog.Logger
}

const tickEvery = 200 * time.Millisecond

// Screen plays one game session.
type Screen struct {
	kind    difficulty.GameKind
	deps    Deps
	rec     Recorder
	engine  *trial.Engine
	changes chan struct{}
	ctx     context.Context

	snap   trial.Snapshot
	choice components.Choice // central answer or checkpoint prompt
	cursor int               // ring slot or card under the cursor

	confirmQuit bool
	leaving     bool // Esc pressed before the engine was ready
	ending      bool
	saveFailed  bool
	errMsg      string
}

var (
	_ screen.Screen          = (*Screen)(nil)
	_ screen.KeyHintProvider = (*Screen)(nil)
	_ screen.Capturer        = (*Screen)(nil)
	_ screen.Stopper         = (*Screen)(nil)
)

// New creates a game screen for kind.
func New(kind difficulty.GameKind, deps Deps) *Screen {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Screen{
		kind:    kind,
		deps:    deps,
		changes: make(chan struct{}, 1),
		ctx:     context.Background(),
	}
}

func (s *Screen) Title() string { return s.kind.DisplayName() }

// CapturesEsc keeps Esc from the start command until the screen shows an
// error, so the screen is never popped with an engine still starting.
func (s *Screen) CapturesEsc() bool {
	return s.errMsg == ""
}

func (s *Screen) Init() tea.Cmd {
	s.rec = s.deps.NewRecorder()
	return tea.Batch(s.start(s.rec), tick())
}

// start picks the starting level and opens the session off the UI
// goroutine; Start blocks on the recorder.
func (s *Screen) start(rec Recorder) tea.Cmd {
	kind, deps, changes, ctx := s.kind, s.deps, s.changes, s.ctx
	return func() tea.Msg {
		level, err := rec.StartingLevel(ctx, kind)
		if err != nil {
			deps.Logger.Warn("starting level unavailable", "game", kind.String(), "error", err)
			level = difficulty.MinLevel
		}
		cfg := deps.Config
		cfg.Kind = kind
		cfg.StartLevel = level
		eng := trial.New(cfg, trial.Deps{
			Scheduler: deps.Scheduler,
			Clock:     deps.Clock,
			Recorder:  rec,
			Logger:    deps.Logger,
			OnChange: func(trial.Snapshot) {
				// Coalesce: the screen reads the latest snapshot itself.
				select {
				case changes <- struct{}{}:
				default:
				}
			},
		})
		if err := eng.Start(ctx); err != nil {
			eng.Close()
			return readyMsg{err: err}
		}
		return readyMsg{engine: eng}
	}
}

func (s *Screen) waitForChange() tea.Cmd {
	changes := s.changes
	return func() tea.Msg {
		<-changes
		return changedMsg{}
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case readyMsg:
		if s.leaving {
			if msg.engine != nil {
				msg.engine.Close()
			}
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		s.engine = msg.engine
		s.refresh()
		return s, s.waitForChange()

	case changedMsg:
		if s.engine == nil {
			return s, nil
		}
		s.refresh()
		return s, s.waitForChange()

	case tickMsg:
		if s.engine == nil || s.snap.Phase == trial.PhaseEnd || s.errMsg != "" {
			return s, nil
		}
		return s, tick()

	case endedMsg:
		return s.handleEnded(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

// refresh pulls the latest snapshot and resets per-phase input state when
// the phase changed.
func (s *Screen) refresh() {
	prev := s.snap.Phase
	s.snap = s.engine.Snapshot()
	if s.snap.Phase == prev {
		return
	}
	switch s.snap.Phase {
	case trial.PhaseResponseCentral:
		s.cursor = 0
		if s.kind.TwoPhase() {
			s.choice = components.NewChoice(stimulus.CentralChoices(s.kind))
		}
	case trial.PhaseResponsePeripheral:
		s.cursor = 0
	case trial.PhaseContinuePrompt:
		s.choice = components.NewChoice([]string{"Continue", "End session"})
	}
}

func (s *Screen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		s.close()
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if s.engine == nil {
		if key == "esc" {
			s.leaving = true
		}
		return s, nil
	}
	if s.ending {
		return s, nil
	}

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.confirmQuit = false
			return s, s.end()
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	if key == "esc" {
		switch s.snap.Phase {
		case trial.PhaseIdle, trial.PhaseOpening:
			s.close()
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		s.confirmQuit = true
		return s, nil
	}

	var err error
	switch s.snap.Phase {
	case trial.PhaseCountdown:
		if key == "space" || key == "enter" {
			err = s.engine.SkipCountdown()
		}

	case trial.PhaseResponseCentral:
		if s.kind.TwoPhase() {
			s.choice = s.choice.Update(msg)
			if i, ok := s.choice.Picked(); ok {
				err = s.engine.RespondCentral(s.choice.Options[i])
			}
		} else {
			err = s.pick(key, len(s.snap.Stimulus.ModifiedIcons), s.engine.RespondPick)
		}

	case trial.PhaseResponsePeripheral:
		err = s.pick(key, stimulus.RingSlots, s.engine.RespondPeripheral)

	case trial.PhaseContinuePrompt:
		s.choice = s.choice.Update(msg)
		if i, ok := s.choice.Picked(); ok {
			if i == 0 {
				err = s.engine.Continue()
			} else {
				return s, s.end()
			}
		}
	}

	if err != nil {
		// A timer moved the engine on between render and key press.
		var pe *trial.PhaseError
		if !errors.As(err, &pe) {
			s.deps.Logger.Warn("input rejected", "phase", s.snap.Phase.String(), "error", err)
		}
	}
	s.refresh()
	return s, nil
}

// pick moves the cursor over n targets and submits on Enter or a digit.
func (s *Screen) pick(key string, n int, respond func(int) error) error {
	switch key {
	case "left", "h", "up", "k":
		s.cursor = (s.cursor + n - 1) % n
	case "right", "l", "down", "j":
		s.cursor = (s.cursor + 1) % n
	case "enter", "space":
		return respond(s.cursor)
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < n {
				s.cursor = i
				return respond(i)
			}
		}
	}
	return nil
}

func (s *Screen) end() tea.Cmd {
	s.ending = true
	s.saveFailed = false
	eng, ctx := s.engine, s.ctx
	return func() tea.Msg {
		return endedMsg{err: eng.End(ctx)}
	}
}

func (s *Screen) handleEnded(msg endedMsg) (screen.Screen, tea.Cmd) {
	s.ending = false
	if msg.err != nil {
		if errors.Is(msg.err, trial.ErrClosed) {
			return s, nil
		}
		// The engine rolled back; Esc then Y retries.
		s.deps.Logger.Error("end session", "error", msg.err)
		s.snap = s.engine.Snapshot()
		s.choice.Reset()
		s.saveFailed = true
		return s, nil
	}

	res := s.engine.Result()
	agg, _ := s.rec.Aggregate()
	s.close()
	return s, func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: results.New(res, agg)}
	}
}

// Stop ends a session that has trials before the program exits, so
// buffered trials reach the store. A session without trials is dropped.
func (s *Screen) Stop(ctx context.Context) {
	if s.engine == nil {
		return
	}
	defer s.close()
	if s.ending || s.engine.Result() != nil || s.engine.Snapshot().TrialCount == 0 {
		return
	}
	if err := s.engine.End(ctx); err != nil {
		s.deps.Logger.Warn("end session on exit", "error", err)
	}
}

func (s *Screen) close() {
	if s.engine != nil {
		s.engine.Close()
	}
}

func (s *Screen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case s.confirmQuit:
		return []layout.KeyHint{{Key: "Y", Description: "End and save"}, {Key: "N", Description: "Keep playing"}}
	}
	switch s.snap.Phase {
	case trial.PhaseCountdown:
		return []layout.KeyHint{{Key: "Space", Description: "Start now"}, {Key: "Esc", Description: "Quit"}}
	case trial.PhaseResponseCentral:
		if s.kind.TwoPhase() {
			return []layout.KeyHint{{Key: "←→ / 1-2", Description: "Choose"}, {Key: "Enter", Description: "Answer"}}
		}
		return []layout.KeyHint{{Key: "←→ / 1-9", Description: "Card"}, {Key: "Enter", Description: "Pick"}}
	case trial.PhaseResponsePeripheral:
		return []layout.KeyHint{{Key: "←→ / 1-8", Description: "Position"}, {Key: "Enter", Description: "Answer"}}
	case trial.PhaseContinuePrompt:
		return []layout.KeyHint{{Key: "←→", Description: "Choose"}, {Key: "Enter", Description: "Confirm"}}
	}
	return []layout.KeyHint{{Key: "Esc", Description: "Quit"}}
}
