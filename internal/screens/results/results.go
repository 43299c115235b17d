// Package results shows the outcome of a finished game session.
package results

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/focuslab/internal/progress"
	"github.com/abhisek/focuslab/internal/router"
	"github.com/abhisek/focuslab/internal/screen"
	"github.com/abhisek/focuslab/internal/trial"
	"github.com/abhisek/focuslab/internal/ui/components"
	"github.com/abhisek/focuslab/internal/ui/layout"
	"github.com/abhisek/focuslab/internal/ui/theme"
)

// Screen displays one session's statistics next to the lifetime
// aggregate of its game.
type Screen struct {
	result *trial.Result
	agg    progress.AggregateStats
}

var (
	_ screen.Screen          = (*Screen)(nil)
	_ screen.KeyHintProvider = (*Screen)(nil)
)

// New creates a results screen.
func New(result *trial.Result, agg progress.AggregateStats) *Screen {
	return &Screen{result: result, agg: agg}
}

func (s *Screen) Init() tea.Cmd { return nil }

func (s *Screen) Title() string { return "Session Results" }

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Home"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc", "q":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	r := s.result
	if r == nil {
		return ""
	}
	st := r.Stats
	center := func(str string) string { return lipgloss.PlaceHorizontal(width, lipgloss.Center, str) }
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	text := lipgloss.NewStyle().Foreground(theme.Text)

	var b strings.Builder
	b.WriteString(center(theme.Title.Render(r.Kind.DisplayName() + " complete")))
	b.WriteString("\n\n")

	d := r.EndedAt.Sub(r.StartedAt)
	b.WriteString(center(dim.Render(fmt.Sprintf("Duration %d:%02d", int(d.Minutes()), int(d.Seconds())%60))))
	b.WriteString("\n\n")

	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
		Render(fmt.Sprintf("Rating %d / 100", r.Rating))))
	b.WriteString("\n\n")

	cw := components.ContentWidth(width)
	b.WriteString(center(components.NewProgressBar("Accuracy", st.Accuracy, true, cw).View()))
	b.WriteString("\n\n")

	rows := [][2]string{
		{"Trials", fmt.Sprintf("%d (%d correct)", st.TotalTrials, st.CorrectTrials)},
		{"Median response", fmt.Sprintf("%.0f ms", st.MedianResponseTimeMs)},
		{"Average response", fmt.Sprintf("%.0f ms ± %.0f", st.AverageResponseTimeMs, st.ResponseTimeStdDev)},
		{"Fastest correct", msOrDash(st.FastestCorrectMs)},
		{"Level", levelPath(st)},
	}
	var table strings.Builder
	for _, row := range rows {
		table.WriteString(dim.Render(layout.PadRight(row[0], 20)))
		table.WriteString(text.Render(row[1]))
		table.WriteString("\n")
	}
	b.WriteString(center(table.String()))

	if s.agg.TotalSessions > 0 {
		b.WriteString("\n")
		b.WriteString(center(dim.Render(strings.Repeat("─", min(cw, width-8)))))
		b.WriteString("\n\n")
		line := fmt.Sprintf("%d sessions   lifetime accuracy %.0f%%   trend ",
			s.agg.TotalSessions, s.agg.Accuracy*100)
		b.WriteString(center(text.Render(line) + theme.Trend(string(s.agg.Trend)).Render(string(s.agg.Trend))))
		if r.SessionID == s.agg.BestSessionID {
			b.WriteString("\n")
			b.WriteString(center(theme.Correct.Render("New best accuracy!")))
		}
	}
	return b.String()
}

func msOrDash(ms float64) string {
	if ms <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f ms", ms)
}

// levelPath shows where the session started and finished.
func levelPath(st progress.SessionStats) string {
	if len(st.DifficultyProgression) == 0 {
		return fmt.Sprintf("%d", st.FinalDifficulty)
	}
	first := st.DifficultyProgression[0]
	if first == st.FinalDifficulty {
		return fmt.Sprintf("%d", first)
	}
	return fmt.Sprintf("%d → %d", first, st.FinalDifficulty)
}
