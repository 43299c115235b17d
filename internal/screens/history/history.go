// Package history shows lifetime progress per game and the list of past
// sessions.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/focuslab/internal/difficulty"
	"github.com/abhisek/focuslab/internal/progress"
	"github.com/abhisek/focuslab/internal/router"
	"github.com/abhisek/focuslab/internal/screen"
	"github.com/abhisek/focuslab/internal/store"
	"github.com/abhisek/focuslab/internal/ui/components"
	"github.com/abhisek/focuslab/internal/ui/layout"
	"github.com/abhisek/focuslab/internal/ui/theme"
)

// sessionLimit caps the list of past sessions.
const sessionLimit = 50

type loadedMsg struct {
	aggregates []progress.AggregateStats
	sessions   []store.SessionRecord
	err        error
}

// Screen lists aggregates and past sessions. Enter expands a session.
type Screen struct {
	sessions   store.SessionRepo
	aggregates store.AggregateRepo

	aggs     []progress.AggregateStats
	records  []store.SessionRecord
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var (
	_ screen.Screen          = (*Screen)(nil)
	_ screen.KeyHintProvider = (*Screen)(nil)
)

// New creates a history screen.
func New(sessions store.SessionRepo, aggregates store.AggregateRepo) *Screen {
	return &Screen{
		sessions:   sessions,
		aggregates: aggregates,
		expanded:   make(map[int]bool),
	}
}

func (s *Screen) Init() tea.Cmd {
	sessions, aggregates := s.sessions, s.aggregates
	return func() tea.Msg {
		ctx := context.Background()
		aggs, err := aggregates.List(ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		recs, err := sessions.Recent(ctx, store.SessionFilter{FinishedOnly: true, Limit: sessionLimit})
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{aggregates: aggs, sessions: recs}
	}
}

func (s *Screen) Title() string { return "Progress" }

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			s.errMsg = msg.err.Error()
		} else {
			s.aggs = msg.aggregates
			s.records = msg.sessions
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.records)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	center := func(str string) string { return lipgloss.PlaceHorizontal(width, lipgloss.Center, str) }
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	switch {
	case s.errMsg != "":
		return center(lipgloss.NewStyle().Foreground(theme.Error).Render("\n\nError: " + s.errMsg))
	case !s.loaded:
		return center(dim.Render("\n\nLoading progress..."))
	case len(s.aggs) == 0 && len(s.records) == 0:
		return center(dim.Italic(true).Render("\n\nNo sessions yet. Play a game to get started!"))
	}

	var b strings.Builder
	b.WriteString("\n")
	for _, a := range s.aggs {
		b.WriteString(center(aggregateLine(a)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(center(dim.Render(strings.Repeat("─", min(components.ContentWidth(width)+20, width-4)))))
	b.WriteString("\n\n")

	// Keep the selected row in view.
	room := max(height-len(s.aggs)-6, 3)
	first := max(s.selected-room+1, 0)
	for i := first; i < len(s.records) && i < first+room; i++ {
		rec := s.records[i]
		style := lipgloss.NewStyle().Foreground(theme.Text)
		prefix := "  "
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
			prefix = "> "
		}
		b.WriteString(center(style.Render(prefix + sessionLine(rec))))
		b.WriteString("\n")
		if s.expanded[i] {
			for _, line := range detailLines(rec) {
				b.WriteString(center(dim.Render("    " + line)))
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func aggregateLine(a progress.AggregateStats) string {
	accs := make([]float64, len(a.RecentSessions))
	for i, r := range a.RecentSessions {
		accs[i] = r.Accuracy
	}
	name := layout.PadRight(a.Kind.DisplayName(), 18)
	stats := fmt.Sprintf("%3d sessions  %3.0f%%  best %3.0f%%  level %2d  ",
		a.TotalSessions, a.Accuracy*100, a.BestAccuracy*100, a.CurrentLevel)
	trend := theme.Trend(string(a.Trend)).Render(layout.PadRight(string(a.Trend), 10))
	return lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(name) +
		lipgloss.NewStyle().Foreground(theme.Text).Render(stats) +
		trend + components.Sparkline(accs)
}

func sessionLine(r store.SessionRecord) string {
	date := r.EndedAt.Local().Format("Jan 02 15:04")
	name := layout.PadRight(r.Game.DisplayName(), 18)
	if r.Game.Language() {
		return fmt.Sprintf("%s  %s  %s %s %s  score %.1f", date, name,
			r.Language, r.CEFRLevel, r.SubLevel, r.OverallScore)
	}
	return fmt.Sprintf("%s  %s  %3d trials  %3.0f%%  rating %3d", date, name,
		r.TotalTrials, r.Accuracy*100, r.Rating)
}

func itemNoun(k difficulty.GameKind) string {
	switch k {
	case difficulty.Comprehension:
		return "answers"
	case difficulty.SpeedSummary:
		return "summaries"
	}
	return "rewrites"
}

func detailLines(r store.SessionRecord) []string {
	d := r.EndedAt.Sub(r.StartedAt)
	lines := []string{fmt.Sprintf("Duration %d:%02d", int(d.Minutes()), int(d.Seconds())%60)}
	if r.Game.Language() {
		lines = append(lines, fmt.Sprintf("%d of %d %s correct", r.CorrectTrials, r.TotalTrials, itemNoun(r.Game)))
		if r.Feedback != "" {
			lines = append(lines, layout.Truncate(r.Feedback, 80))
		}
		return lines
	}
	return append(lines,
		fmt.Sprintf("Level %d → %d", r.StartLevel, r.FinalLevel),
		fmt.Sprintf("Average response %.0f ms", r.AvgResponseMs))
}
