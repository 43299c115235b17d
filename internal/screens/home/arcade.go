package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/focuslab/internal/ui/theme"
)

const titleFull = `████   ██    ███  █  █   ███  █      ██   ███
█     █  █  █     █  █  █     █     █  █  █  █
███   █  █  █     █  █   ██   █     ████  ███
█     █  █  █     █  █     █  █     █  █  █  █
█      ██    ███   ██   ███   ████  █  █  ███`

const titleCompact = "F · O · C · U · S · L · A · B"

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 24

func renderTitle(cw int, compact bool) string {
	art := titleFull
	if compact {
		art = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true).Render(art))
}

// renderStatsBar renders the dashboard stats in a double-bordered box at
// content width.
func renderStatsBar(st dashboard, cw int, compact bool) string {
	sessions := lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true)
	level := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	lang := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)

	var stats string
	if compact {
		stats = fmt.Sprintf("%s %s %s",
			sessions.Render(fmt.Sprintf("◆%d", st.sessions)),
			level.Render(fmt.Sprintf("★%d", st.bestLevel)),
			lang.Render(st.languageLevel),
		)
	} else {
		stats = fmt.Sprintf("%s  %s  %s",
			sessions.Render(fmt.Sprintf("◆ %d SESSIONS", st.sessions)),
			level.Render(fmt.Sprintf("★ LEVEL %d", st.bestLevel)),
			lang.Render("⚑ "+st.languageLevel),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw-2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

// renderLLMBanner warns that the language games need a provider.
func renderLLMBanner(cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ Set an LLM API key for the language games (see focuslab --help)")
}

func centerBlock(s string, cw int) string {
	return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(s)
}
