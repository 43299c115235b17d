// Package home is the main menu with a small progress dashboard.
package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/focuslab/internal/cefr"
	"github.com/abhisek/focuslab/internal/difficulty"
	"github.com/abhisek/focuslab/internal/language"
	"github.com/abhisek/focuslab/internal/progress"
	"github.com/abhisek/focuslab/internal/router"
	"github.com/abhisek/focuslab/internal/screen"
	"github.com/abhisek/focuslab/internal/screens/notice"
	"github.com/abhisek/focuslab/internal/store"
	"github.com/abhisek/focuslab/internal/ui/components"
	"github.com/abhisek/focuslab/internal/ui/layout"
)

// LevelSource reports the learner's current level in a language.
type LevelSource interface {
	Level(ctx context.Context, lang language.Language) (cefr.Level, error)
}

// Deps wires the home screen to the screens it opens. A nil Practice
// means no LLM provider is configured.
type Deps struct {
	Aggregates store.AggregateRepo
	Levels     LevelSource
	Language   language.Language
	Play       func(kind difficulty.GameKind) screen.Screen
	Practice   func(kind difficulty.GameKind) screen.Screen
	Progress   func() screen.Screen
}

type dashboard struct {
	sessions      int
	bestLevel     difficulty.Level
	languageLevel string
	mascot        MascotVariant
}

type dashboardMsg struct{ dashboard }

// Screen is the home menu.
type Screen struct {
	deps Deps
	menu components.Menu
	dash dashboard
}

var (
	_ screen.Screen          = (*Screen)(nil)
	_ screen.KeyHintProvider = (*Screen)(nil)
	_ router.Refresher       = (*Screen)(nil)
)

// New creates the home screen.
func New(deps Deps) *Screen {
	push := func(s func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: s()} }
		}
	}

	var items []components.MenuItem
	for _, kind := range []difficulty.GameKind{difficulty.DividedAttention, difficulty.DoubleDecision, difficulty.IconSwap} {
		items = append(items, components.MenuItem{
			Label:  strings.ToUpper(kind.DisplayName()),
			Action: push(func() screen.Screen { return deps.Play(kind) }),
		})
	}

	for _, kind := range []difficulty.GameKind{difficulty.TenseRewrite, difficulty.Comprehension, difficulty.SpeedSummary} {
		open := func() screen.Screen { return noLLM(kind) }
		if deps.Practice != nil {
			open = func() screen.Screen { return deps.Practice(kind) }
		}
		items = append(items, components.MenuItem{
			Label:  strings.ToUpper(kind.DisplayName()),
			Action: push(open),
		})
	}
	items = append(items,
		components.MenuItem{Label: "PROGRESS", Action: push(deps.Progress)},
		components.MenuItem{Label: "EXIT", Action: func() tea.Cmd { return tea.Quit }},
	)

	return &Screen{
		deps: deps,
		menu: components.NewMenu(items),
		dash: dashboard{bestLevel: difficulty.MinLevel, languageLevel: "—"},
	}
}

func noLLM(kind difficulty.GameKind) screen.Screen {
	return notice.New(kind.DisplayName(), kind.DisplayName()+" needs an LLM provider.\nSet ANTHROPIC_API_KEY, OPENAI_API_KEY or GEMINI_API_KEY and restart.")
}

func (h *Screen) Init() tea.Cmd {
	return h.load()
}

// Refresh reloads the dashboard when a game or exercise returns here.
func (h *Screen) Refresh() tea.Cmd {
	return h.load()
}

func (h *Screen) load() tea.Cmd {
	deps := h.deps
	return func() tea.Msg {
		ctx := context.Background()
		d := dashboard{bestLevel: difficulty.MinLevel, languageLevel: "—"}
		if deps.Aggregates != nil {
			aggs, err := deps.Aggregates.List(ctx)
			if err == nil {
				d = summarize(aggs)
			}
		}
		if deps.Levels != nil {
			if lvl, err := deps.Levels.Level(ctx, deps.Language); err == nil {
				d.languageLevel = strings.ToUpper(string(deps.Language)) + " " + lvl.String()
			}
		}
		return dashboardMsg{d}
	}
}

func summarize(aggs []progress.AggregateStats) dashboard {
	d := dashboard{bestLevel: difficulty.MinLevel, languageLevel: "—"}
	improving, declining := false, false
	for _, a := range aggs {
		d.sessions += a.TotalSessions
		if a.Kind.Timed() && a.CurrentLevel > d.bestLevel {
			d.bestLevel = a.CurrentLevel
		}
		switch a.Trend {
		case progress.TrendImproving:
			improving = true
		case progress.TrendDeclining:
			declining = true
		}
	}
	switch {
	case declining:
		d.mascot = MascotAlert
	case improving:
		d.mascot = MascotCelebrating
	}
	return d
}

func (h *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if m, ok := msg.(dashboardMsg); ok {
		h.dash = m.dashboard
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *Screen) View(width, height int) string {
	// height is the content area; add back header and footer.
	compact := height+8 < 34 || width < 100
	cw := components.ContentWidth(width)

	sections := []string{renderTitle(cw, compact)}
	if !compact {
		sections = append(sections, centerBlock(RenderMascot(h.dash.mascot), cw))
	}
	sections = append(sections, renderStatsBar(h.dash, cw, compact))
	if h.deps.Practice == nil {
		sections = append(sections, renderLLMBanner(cw))
	}
	if layout.IsCompact(width, height) {
		sections = append(sections, centerBlock(h.menu.CompactView(), cw))
	} else {
		sections = append(sections, centerBlock(h.menu.View(buttonWidth), cw))
	}
	return components.Cabinet(strings.Join(sections, "\n\n"), width, height)
}

func (h *Screen) Title() string {
	return "Home"
}

func (h *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "1-8", Description: "Jump"},
	}
}
