package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/focuslab/internal/config"
	"github.com/abhisek/focuslab/internal/difficulty"
	"github.com/abhisek/focuslab/internal/language"
	"github.com/abhisek/focuslab/internal/llm"
	"github.com/abhisek/focuslab/internal/router"
	"github.com/abhisek/focuslab/internal/screen"
	"github.com/abhisek/focuslab/internal/screens/game"
	"github.com/abhisek/focuslab/internal/screens/history"
	"github.com/abhisek/focuslab/internal/screens/home"
	"github.com/abhisek/focuslab/internal/screens/practice"
	"github.com/abhisek/focuslab/internal/session"
	"github.com/abhisek/focuslab/internal/store"
	"github.com/abhisek/focuslab/internal/timer"
	"github.com/abhisek/focuslab/internal/ui/layout"
)

// Options are the dependencies of the TUI. Provider may be nil, in which
// case the language games are unavailable.
type Options struct {
	Store    *store.Store
	Settings config.Settings
	Provider llm.Provider
	Logger   *slog.Logger

	// Start opens a game directly on top of the home screen.
	Start *difficulty.GameKind
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	start  screen.Screen
	status string
	width  int
	height int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(opts Options) AppModel {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	st, s, log := opts.Store, opts.Settings, opts.Logger

	play := func(kind difficulty.GameKind) screen.Screen {
		return game.New(kind, game.Deps{
			NewRecorder: func() game.Recorder {
				return session.New(session.ReposFrom(st), session.WithLogger(log))
			},
			Config: s.TrialConfig(),
			Logger: log,
		})
	}

	tracker := language.NewTracker(language.TrackerReposFrom(st), s.Level, timer.SystemClock{}, log)
	deps := home.Deps{
		Aggregates: st.AggregateRepo(),
		Levels:     tracker,
		Language:   s.Language,
		Play:       play,
		Progress: func() screen.Screen {
			return history.New(st.SessionRepo(), st.AggregateRepo())
		},
	}

	status := "no LLM"
	if opts.Provider != nil {
		status = opts.Provider.ModelID()
		gens := generators(opts.Provider, s, log)
		grader := language.NewLLMGrader(opts.Provider, s.LanguageConfig())
		deps.Practice = func(kind difficulty.GameKind) screen.Screen {
			return practice.New(practice.Deps{
				Game:      kind,
				Language:  s.Language,
				Levels:    tracker,
				Generator: gens[kind],
				Grader:    grader,
				Recorder:  tracker,
				Logger:    log,
			})
		}
	}

	m := AppModel{
		router: router.New(home.New(deps)),
		status: status,
	}
	if opts.Start != nil {
		m.start = play(*opts.Start)
	}
	return m
}

// generators builds the material generator of each language game. The
// reading games take live headlines when a news key is set.
func generators(p llm.Provider, s config.Settings, log *slog.Logger) map[difficulty.GameKind]language.Generator {
	lcfg := s.LanguageConfig()
	var headlines language.HeadlineSource = language.BuiltinHeadlines{}
	if s.NewsAPIKey != "" {
		headlines = language.FallbackHeadlines{Primary: language.NewNewsAPI(s.NewsAPIKey), Logger: log}
	}
	return map[difficulty.GameKind]language.Generator{
		difficulty.TenseRewrite:  language.NewRewriteGenerator(p, lcfg),
		difficulty.Comprehension: language.NewComprehensionGenerator(p, headlines, lcfg),
		difficulty.SpeedSummary:  language.NewSummaryGenerator(p, headlines, lcfg),
	}
}

func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.router.Active().Init()}
	if m.start != nil {
		start := m.start
		cmds = append(cmds, func() tea.Msg { return router.PushScreenMsg{Screen: start} })
	}
	return tea.Batch(cmds...)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.stopAll()
			return m, tea.Quit
		case "esc":
			if c, ok := m.router.Active().(screen.Capturer); ok && c.CapturesEsc() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// stopAll gives every stacked screen with a live session a chance to save
// it, top first.
func (m AppModel) stopAll() {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	m.router.Each(func(s screen.Screen) {
		if st, ok := s.(screen.Stopper); ok {
			st.Stop(ctx)
		}
	})
}

const stopTimeout = 3 * time.Second

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the framed active screen at the current window size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	header := layout.RenderHeader(active.Title(), m.status, m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)

	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	var hints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		hints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		hints = []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
