package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/focuslab/internal/ui/theme"
)

// ProgressBar displays a horizontal bar for a fraction in [0, 1].
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string
	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // "  100%"
	}
	barWidth := max(p.Width-lipgloss.Width(result)-percentWidth, 4)

	filled := min(max(int(float64(barWidth)*p.Percent), 0), barWidth)

	result += lipgloss.NewStyle().Background(theme.Secondary).Render(strings.Repeat(" ", filled))
	result += lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled))

	if p.ShowPercent {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %d%%", int(p.Percent*100)))
	}
	return result
}

// Sparkline renders values in [0, 1] as a row of block characters, one
// per value.
func Sparkline(values []float64) string {
	const blocks = "▁▂▃▄▅▆▇█"
	runes := []rune(blocks)
	var b strings.Builder
	for _, v := range values {
		i := int(v * float64(len(runes)-1))
		b.WriteRune(runes[min(max(i, 0), len(runes)-1)])
	}
	return lipgloss.NewStyle().Foreground(theme.Secondary).Render(b.String())
}
