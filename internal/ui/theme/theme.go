package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette: calm blues with warm highlights for feedback.
var (
	Primary   = lipgloss.Color("#6366F1") // Indigo
	Secondary = lipgloss.Color("#06B6D4") // Cyan
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#EF4444") // Red
	Text      = lipgloss.Color("#F1F5F9")
	TextDim   = lipgloss.Color("#94A3B8")
	BgDark    = lipgloss.Color("#0B1120")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")

	Highlight = lipgloss.Color("#FACC15") // selected buttons
	Target    = lipgloss.Color("#A855F7") // peripheral target marker
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Trend returns the style for an accuracy trend label.
func Trend(trend string) lipgloss.Style {
	switch trend {
	case "improving":
		return lipgloss.NewStyle().Foreground(Success)
	case "declining":
		return lipgloss.NewStyle().Foreground(Error)
	}
	return lipgloss.NewStyle().Foreground(TextDim)
}
