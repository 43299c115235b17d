package game

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/focuslab/internal/difficulty"
	"github.com/abhisek/focuslab/internal/progress"
	"github.com/abhisek/focuslab/internal/router"
	"github.com/abhisek/focuslab/internal/stimulus"
	"github.com/abhisek/focuslab/internal/timer"
	"github.com/abhisek/focuslab/internal/trial"
)

type fakeRecorder struct {
	mu         sync.Mutex
	start      difficulty.Level
	saved      []progress.Trial
	finished   bool
	finishErrs int
	openErr    error
}

func (f *fakeRecorder) Open(context.Context, difficulty.GameKind, difficulty.Level) (string, error) {
	return "s-1", f.openErr
}

func (f *fakeRecorder) SaveTrial(_ context.Context, t progress.Trial) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, t)
	return nil
}

func (f *fakeRecorder) Finish(context.Context, []progress.Trial, difficulty.Level) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finishErrs > 0 {
		f.finishErrs--
		return errors.New("disk full")
	}
	f.finished = true
	return nil
}

func (f *fakeRecorder) StartingLevel(context.Context, difficulty.GameKind) (difficulty.Level, error) {
	return f.start, nil
}

func (f *fakeRecorder) Aggregate() (progress.AggregateStats, bool) {
	return progress.Empty(difficulty.DividedAttention), f.finished
}

func key(s string) tea.KeyPressMsg {
	switch s {
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	}
	return tea.KeyPressMsg{Code: rune(s[0]), Text: s}
}

// startGame builds a screen on a manual clock and runs its start command
// synchronously.
func startGame(t *testing.T, kind difficulty.GameKind, rec *fakeRecorder) (*Screen, *timer.Manual) {
	t.Helper()
	clock := timer.NewManual(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	s := New(kind, Deps{
		NewRecorder: func() Recorder { return rec },
		Config:      trial.Config{CountdownDuration: time.Second, FeedbackDuration: 500 * time.Millisecond},
		Scheduler:   clock,
		Clock:       clock,
	})
	s.rec = rec
	s.Update(s.start(rec)())
	t.Cleanup(s.close)
	return s, clock
}

func press(s *Screen, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = s.Update(key(k))
	}
	return cmd
}

func pull(s *Screen) { s.Update(changedMsg{}) }

func TestStartsAtRecordedLevel(t *testing.T) {
	s, _ := startGame(t, difficulty.DividedAttention, &fakeRecorder{start: 4})
	assert.Equal(t, trial.PhaseCountdown, s.snap.Phase)
	assert.Equal(t, difficulty.Level(4), s.snap.Level)
	assert.True(t, s.CapturesEsc())
	assert.Contains(t, s.View(100, 30), "Starting in")
}

func TestStartFailureShowsErrorAndPops(t *testing.T) {
	s, _ := startGame(t, difficulty.IconSwap, &fakeRecorder{openErr: errors.New("locked")})
	assert.NotEmpty(t, s.errMsg)
	assert.False(t, s.CapturesEsc())
	assert.Contains(t, s.View(100, 30), "locked")

	cmd := press(s, "x")
	require.NotNil(t, cmd)
	assert.IsType(t, router.PopScreenMsg{}, cmd())
}

func TestRingTrialThroughKeys(t *testing.T) {
	rec := &fakeRecorder{start: 1}
	s, clock := startGame(t, difficulty.DividedAttention, rec)

	press(s, "space")
	assert.Equal(t, trial.PhaseStimulus, s.snap.Phase)
	assert.NotEmpty(t, s.View(100, 30))

	clock.Advance(s.snap.Params.FlashDuration)
	pull(s)
	require.Equal(t, trial.PhaseResponseCentral, s.snap.Phase)

	st := s.snap.Stimulus
	central := slices.Index(stimulus.CentralChoices(difficulty.DividedAttention), st.CentralAnswer())
	press(s, string(rune('1'+central)))
	require.Equal(t, trial.PhaseResponsePeripheral, s.snap.Phase)

	press(s, string(rune('1'+st.PeripheralPosition)))
	require.Equal(t, trial.PhaseFeedback, s.snap.Phase)
	require.NotNil(t, s.snap.LastTrial)
	assert.True(t, s.snap.LastTrial.Correct)
	assert.Contains(t, s.View(100, 30), "Correct")
	assert.Len(t, rec.saved, 1)
}

func TestPeripheralCursorWraps(t *testing.T) {
	s, clock := startGame(t, difficulty.DoubleDecision, &fakeRecorder{start: 1})
	press(s, "space")
	clock.Advance(s.snap.Params.FlashDuration)
	pull(s)
	press(s, "1")
	require.Equal(t, trial.PhaseResponsePeripheral, s.snap.Phase)

	press(s, "left")
	assert.Equal(t, stimulus.RingSlots-1, s.cursor)
	press(s, "right", "right")
	assert.Equal(t, 1, s.cursor)
}

func TestIconSwapPick(t *testing.T) {
	s, clock := startGame(t, difficulty.IconSwap, &fakeRecorder{start: 1})
	press(s, "space")
	clock.Advance(s.snap.Params.MemorizeTime)
	pull(s)
	require.Equal(t, trial.PhaseOcclusion, s.snap.Phase)
	clock.Advance(s.snap.Params.BlinkDuration)
	pull(s)
	require.Equal(t, trial.PhaseResponseCentral, s.snap.Phase)
	assert.Contains(t, s.View(120, 30), "Which card changed?")

	press(s, string(rune('1'+s.snap.Stimulus.SwapIndex)))
	require.Equal(t, trial.PhaseFeedback, s.snap.Phase)
	assert.True(t, s.snap.LastTrial.Correct)
}

func TestQuitConfirmThenResults(t *testing.T) {
	rec := &fakeRecorder{start: 1}
	s, _ := startGame(t, difficulty.DividedAttention, rec)

	press(s, "esc")
	assert.True(t, s.confirmQuit)
	press(s, "n")
	assert.False(t, s.confirmQuit)

	press(s, "esc")
	cmd := press(s, "y")
	require.NotNil(t, cmd)
	_, next := s.Update(cmd())
	require.NotNil(t, next)

	msg, ok := next().(router.ReplaceScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "Session Results", msg.Screen.Title())
	assert.True(t, rec.finished)
}

func TestFailedSaveCanBeRetried(t *testing.T) {
	rec := &fakeRecorder{start: 1, finishErrs: 1}
	s, _ := startGame(t, difficulty.DividedAttention, rec)

	press(s, "esc")
	cmd := press(s, "y")
	_, next := s.Update(cmd())
	assert.Nil(t, next)
	assert.True(t, s.saveFailed)
	assert.Equal(t, trial.PhaseCountdown, s.snap.Phase)
	assert.Contains(t, s.View(100, 30), "Saving failed")

	press(s, "esc")
	cmd = press(s, "y")
	_, next = s.Update(cmd())
	require.NotNil(t, next)
	assert.IsType(t, router.ReplaceScreenMsg{}, next())
	assert.True(t, rec.finished)
}

func TestCheckpointPrompt(t *testing.T) {
	s, clock := startGame(t, difficulty.IconSwap, &fakeRecorder{start: 1})
	press(s, "space")

	for range trial.DefaultCheckpointEvery {
		clock.Advance(s.snap.Params.MemorizeTime)
		clock.Advance(s.snap.Params.BlinkDuration)
		pull(s)
		require.Equal(t, trial.PhaseResponseCentral, s.snap.Phase)
		press(s, "enter")
		clock.Advance(500 * time.Millisecond)
		pull(s)
	}
	require.Equal(t, trial.PhaseContinuePrompt, s.snap.Phase)
	assert.Contains(t, s.View(100, 30), "10 trials done")

	press(s, "enter")
	assert.Equal(t, trial.PhaseStimulus, s.snap.Phase)
}

func TestEscBeforeReadyClosesEngine(t *testing.T) {
	clock := timer.NewManual(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	rec := &fakeRecorder{start: 1}
	s := New(difficulty.DividedAttention, Deps{
		NewRecorder: func() Recorder { return rec },
		Config:      trial.Config{CountdownDuration: time.Second},
		Scheduler:   clock,
		Clock:       clock,
	})
	s.rec = rec
	start := s.start(rec)

	require.True(t, s.CapturesEsc(), "Esc must stay with the screen while it starts")
	assert.Nil(t, press(s, "esc"))
	assert.Contains(t, s.View(100, 30), "Leaving")

	// The start command finishes after Esc; its engine is closed and the
	// screen pops itself.
	_, cmd := s.Update(start())
	require.NotNil(t, cmd)
	assert.IsType(t, router.PopScreenMsg{}, cmd())
	assert.Nil(t, s.engine)
	assert.Zero(t, clock.Pending())

	clock.Advance(5 * time.Second)
	assert.Empty(t, rec.saved)
}

func TestStopSavesPlayedTrials(t *testing.T) {
	rec := &fakeRecorder{start: 1}
	s, clock := startGame(t, difficulty.IconSwap, rec)
	press(s, "space")
	clock.Advance(s.snap.Params.MemorizeTime)
	clock.Advance(s.snap.Params.BlinkDuration)
	pull(s)
	require.Equal(t, trial.PhaseResponseCentral, s.snap.Phase)
	press(s, "enter")

	s.Stop(context.Background())
	assert.True(t, rec.finished)
	assert.Zero(t, clock.Pending())
}

func TestStopWithoutTrialsDropsSession(t *testing.T) {
	rec := &fakeRecorder{start: 1}
	s, clock := startGame(t, difficulty.DividedAttention, rec)
	require.Equal(t, trial.PhaseCountdown, s.snap.Phase)

	s.Stop(context.Background())
	assert.False(t, rec.finished)
	assert.Zero(t, clock.Pending())
}
