package components

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/focuslab/internal/ui/theme"
)

// Choice is a horizontal single-choice selector. Options are picked with
// left/right and Enter, or directly with their number.
type Choice struct {
	Options  []string
	Selected int
	picked   int
}

// NewChoice creates a selector over options.
func NewChoice(options []string) Choice {
	return Choice{Options: options, picked: -1}
}

// Update handles navigation. Once an option is picked further keys are
// ignored until Reset.
func (c Choice) Update(msg tea.Msg) Choice {
	if c.picked >= 0 {
		return c
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c
	}

	key := kmsg.String()
	switch key {
	case "left", "h":
		if c.Selected > 0 {
			c.Selected--
		}
	case "right", "l":
		if c.Selected < len(c.Options)-1 {
			c.Selected++
		}
	case "enter":
		c.picked = c.Selected
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(c.Options) {
			c.Selected = n - 1
			c.picked = n - 1
		}
	}
	return c
}

// Picked returns the chosen index once an option has been picked.
func (c Choice) Picked() (int, bool) {
	return c.picked, c.picked >= 0
}

// Reset clears the pick so the selector can be used again.
func (c *Choice) Reset() {
	c.picked = -1
}

// View renders the options on one line.
func (c Choice) View() string {
	parts := make([]string, 0, len(c.Options))
	for i, opt := range c.Options {
		label := fmt.Sprintf("%d) %s", i+1, opt)
		if i == c.Selected {
			parts = append(parts, lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.Highlight).
				Bold(true).
				Padding(0, 1).
				Render(label))
		} else {
			parts = append(parts, lipgloss.NewStyle().
				Foreground(theme.Text).
				Padding(0, 1).
				Render(label))
		}
	}
	return strings.Join(parts, "  ")
}

// ListView renders the options one per line, wrapped to width.
func (c Choice) ListView(width int) string {
	lines := make([]string, 0, len(c.Options))
	for i, opt := range c.Options {
		style := lipgloss.NewStyle().Foreground(theme.Text).Width(width).Padding(0, 1)
		marker := "  "
		if i == c.Selected {
			style = style.Foreground(theme.BgDark).Background(theme.Highlight).Bold(true)
			marker = "▸ "
		}
		lines = append(lines, style.Render(fmt.Sprintf("%s%d) %s", marker, i+1, opt)))
	}
	return strings.Join(lines, "\n")
}
