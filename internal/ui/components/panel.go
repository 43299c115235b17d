package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/focuslab/internal/ui/theme"
)

// ContentWidth returns the uniform inner width shared by stacked panels so
// they line up.
func ContentWidth(frameWidth int) int {
	// Cabinet border (2) + inner padding (4).
	return min(max(frameWidth-6, 20), 64)
}

// Cabinet wraps content in a double border, centered in width x height.
func Cabinet(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// Panel wraps content in a rounded card at content width cw.
func Panel(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw-2).
		Align(lipgloss.Center).
		Padding(1, 2).
		Render(content)
}

// Button renders a fixed-width button. Disabled buttons are dimmed and
// never drawn as selected.
func Button(label string, selected, disabled bool, width int) string {
	style := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)

	switch {
	case disabled:
		return style.Foreground(theme.TextDim).BorderForeground(theme.Border).Render(label)
	case selected:
		return style.Bold(true).
			Foreground(theme.BgDark).
			Background(theme.Highlight).
			BorderForeground(theme.Highlight).
			Render("▸ " + label)
	}
	return style.Foreground(theme.Text).BorderForeground(theme.Border).Render(label)
}
