// Package practice is the screen for the LLM-backed language games: load
// the material, read it when the game asks for that, answer each item,
// then grade.
package practice

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/focuslab/internal/cefr"
	"github.com/abhisek/focuslab/internal/difficulty"
	"github.com/abhisek/focuslab/internal/language"
	"github.com/abhisek/focuslab/internal/llm"
	"github.com/abhisek/focuslab/internal/router"
	"github.com/abhisek/focuslab/internal/screen"
	"github.com/abhisek/focuslab/internal/timer"
	"github.com/abhisek/focuslab/internal/ui/components"
	"github.com/abhisek/focuslab/internal/ui/layout"
)

// LevelSource reports the learner's current level in a language.
type LevelSource interface {
	Level(ctx context.Context, lang language.Language) (cefr.Level, error)
}

// Deps are the collaborators of the practice screen. A Game that is not a
// language game plays tense rewrite.
type Deps struct {
	Game      difficulty.GameKind
	Language  language.Language
	Levels    LevelSource
	Generator language.Generator
	Grader    language.Grader
	Recorder  language.Recorder
	Clock     timer.Clock
	Logger    *slog.Logger
}

type loadedMsg struct {
	sess *language.Session
	err  error
}

type gradedMsg struct {
	eval *language.Evaluation
	err  error
}

type savedMsg struct{ err error }

// tickMsg refreshes the reading countdown.
type tickMsg struct{}

type state int

const (
	stateLoading state = iota
	stateLoadFailed
	stateReading
	stateAnswering
	stateGrading
	stateResults
)

const (
	rewriteCharLimit = 300
	summaryCharLimit = 1200
)

// Screen runs one language session.
type Screen struct {
	deps  Deps
	ctx   context.Context
	state state
	sess  *language.Session

	material  *language.Material
	readUntil time.Time
	current   int
	input     components.TextInput
	choice    components.Choice

	eval        *language.Evaluation
	saveErr     error
	errMsg      string
	confirmQuit bool
}

var (
	_ screen.Screen          = (*Screen)(nil)
	_ screen.KeyHintProvider = (*Screen)(nil)
	_ screen.Capturer        = (*Screen)(nil)
)

// New creates a practice screen.
func New(deps Deps) *Screen {
	if !deps.Game.Language() {
		deps.Game = difficulty.TenseRewrite
	}
	if deps.Clock == nil {
		deps.Clock = timer.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Screen{deps: deps, ctx: context.Background()}
}

func (s *Screen) Init() tea.Cmd {
	return s.load()
}

func (s *Screen) load() tea.Cmd {
	s.state = stateLoading
	deps, ctx := s.deps, s.ctx
	return func() tea.Msg {
		level, err := deps.Levels.Level(ctx, deps.Language)
		if err != nil {
			return loadedMsg{err: err}
		}
		sess := language.NewSession(deps.Game, deps.Language, level, language.Deps{
			Generator: deps.Generator,
			Grader:    deps.Grader,
			Recorder:  deps.Recorder,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		})
		return loadedMsg{sess: sess, err: sess.Load(ctx)}
	}
}

func (s *Screen) submit() tea.Cmd {
	s.state = stateGrading
	s.errMsg = ""
	sess, ctx := s.sess, s.ctx
	return func() tea.Msg {
		eval, err := sess.Submit(ctx)
		return gradedMsg{eval: eval, err: err}
	}
}

func (s *Screen) save() tea.Cmd {
	sess, ctx := s.sess, s.ctx
	return func() tea.Msg { return savedMsg{err: sess.Save(ctx)} }
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg{} })
}

func (s *Screen) Title() string {
	return s.deps.Game.DisplayName() + " · " + s.deps.Language.Name()
}

// CapturesEsc keeps Esc from leaving mid-session.
func (s *Screen) CapturesEsc() bool {
	return s.state == stateReading || s.state == stateAnswering || s.state == stateGrading
}

func (s *Screen) KeyHints() []layout.KeyHint {
	if s.confirmQuit {
		return []layout.KeyHint{{Key: "Y", Description: "Quit"}, {Key: "N", Description: "Stay"}}
	}
	switch s.state {
	case stateReading:
		return []layout.KeyHint{{Key: "Enter", Description: "Done reading"}, {Key: "Esc", Description: "Quit"}}
	case stateAnswering:
		if s.item().Kind == language.ItemChoice {
			return []layout.KeyHint{
				{Key: "1-4", Description: "Answer"},
				{Key: "←→", Description: "Move"},
				{Key: "Tab", Description: "Skip"},
				{Key: "Ctrl+S", Description: "Submit"},
				{Key: "Esc", Description: "Quit"},
			}
		}
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next"},
			{Key: "Tab", Description: "Skip"},
			{Key: "Ctrl+S", Description: "Submit"},
			{Key: "Esc", Description: "Quit"},
		}
	case stateLoadFailed:
		return []layout.KeyHint{{Key: "R", Description: "Retry"}, {Key: "Esc", Description: "Back"}}
	case stateResults:
		hints := []layout.KeyHint{{Key: "Enter", Description: "Home"}}
		if s.saveErr != nil {
			hints = append(hints, layout.KeyHint{Key: "S", Description: "Retry save"})
		}
		return hints
	}
	return nil
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			s.deps.Logger.Warn("language material not loaded", "game", s.deps.Game.String(), "err", msg.err)
			s.state = stateLoadFailed
			s.errMsg = llm.Describe(msg.err)
			return s, nil
		}
		s.sess = msg.sess
		s.material = msg.sess.Material()
		s.errMsg = ""
		if msg.sess.Phase() == language.PhaseReading {
			s.state = stateReading
			s.readUntil = s.deps.Clock.Now().Add(msg.sess.ReadingBudget())
			return s, tick()
		}
		s.state = stateAnswering
		return s, s.focus(0)

	case tickMsg:
		if s.state != stateReading {
			return s, nil
		}
		if !s.deps.Clock.Now().Before(s.readUntil) {
			return s, s.finishReading()
		}
		return s, tick()

	case gradedMsg:
		var (
			gradeErr  *language.GradeError
			answerErr *language.AnswerError
		)
		switch {
		case errors.As(msg.err, &answerErr):
			s.state = stateAnswering
			s.errMsg = answerErr.Error()
			return s, s.focus(answerErr.Index)
		case errors.As(msg.err, &gradeErr):
			s.state = stateAnswering
			s.errMsg = "Grading failed: " + sentence(llm.Describe(gradeErr.Err)) + " Press Ctrl+S to try again."
			return s, nil
		case msg.eval == nil:
			s.state = stateAnswering
			s.errMsg = msg.err.Error()
			return s, nil
		}
		s.eval = msg.eval
		s.saveErr = msg.err
		s.state = stateResults
		return s, nil

	case savedMsg:
		s.saveErr = msg.err
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.state == stateAnswering && s.item().Kind != language.ItemChoice {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func sentence(msg string) string {
	if strings.HasSuffix(msg, ".") {
		return msg
	}
	return msg + "."
}

func (s *Screen) finishReading() tea.Cmd {
	if err := s.sess.DoneReading(); err != nil {
		s.deps.Logger.Warn("reading not finished", "err", err)
		return nil
	}
	s.state = stateAnswering
	return s.focus(0)
}

func (s *Screen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	switch s.state {
	case stateLoadFailed:
		switch key {
		case "r":
			return s, s.load()
		case "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil

	case stateResults:
		switch key {
		case "s":
			if s.saveErr != nil {
				return s, s.save()
			}
		case "enter", "esc", "q":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
		return s, nil

	case stateReading, stateAnswering:
		if s.confirmQuit {
			switch key {
			case "y":
				return s, func() tea.Msg { return router.PopScreenMsg{} }
			case "n", "esc":
				s.confirmQuit = false
			}
			return s, nil
		}
		if key == "esc" {
			s.confirmQuit = true
			return s, nil
		}
		if s.state == stateReading {
			if key == "enter" {
				return s, s.finishReading()
			}
			return s, nil
		}
		return s.answerKey(msg)
	}
	return s, nil
}

func (s *Screen) answerKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	n := len(s.material.Exercises)
	switch msg.String() {
	case "ctrl+s":
		s.store()
		return s, s.submit()
	case "tab", "down":
		s.store()
		return s, s.focus((s.current + 1) % n)
	case "shift+tab", "up":
		s.store()
		return s, s.focus((s.current - 1 + n) % n)
	}

	if s.item().Kind == language.ItemChoice {
		s.choice = s.choice.Update(msg)
		picked, ok := s.choice.Picked()
		if !ok {
			return s, nil
		}
		s.setAnswer(strconv.Itoa(picked))
		return s, s.next()
	}

	if msg.String() == "enter" {
		s.store()
		return s, s.next()
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// next moves to the following item, or submits after the last one.
func (s *Screen) next() tea.Cmd {
	if s.current == len(s.material.Exercises)-1 {
		return s.submit()
	}
	return s.focus(s.current + 1)
}

func (s *Screen) item() language.Exercise {
	return s.material.Exercises[s.current]
}

// store copies the input into the session's answer for the current item.
// Choices are stored when picked.
func (s *Screen) store() {
	if s.item().Kind == language.ItemChoice {
		return
	}
	s.setAnswer(strings.TrimSpace(s.input.Value()))
}

func (s *Screen) setAnswer(text string) {
	if err := s.sess.SetAnswer(s.current, text); err != nil {
		s.deps.Logger.Warn("answer not stored", "index", s.current, "err", err)
	}
}

func (s *Screen) focus(i int) tea.Cmd {
	s.current = i
	ex := s.item()
	var prev string
	if answers := s.sess.Answers(); i < len(answers) {
		prev = answers[i]
	}

	switch ex.Kind {
	case language.ItemChoice:
		s.choice = components.NewChoice(ex.Options)
		if n, err := strconv.Atoi(prev); err == nil && n >= 0 && n < len(ex.Options) {
			s.choice.Selected = n
		}
		return nil
	case language.ItemSummary:
		s.input = components.NewTextInput("Write your summary…", summaryCharLimit)
	default:
		s.input = components.NewTextInput("Type your rewrite…", rewriteCharLimit)
	}
	s.input.SetWidth(60)
	s.input.SetValue(prev)
	return s.input.Init()
}
