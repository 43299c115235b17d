package components

import (
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/focuslab/internal/ui/theme"
)

// MenuItem represents a single item in a navigation menu.
type MenuItem struct {
	Label    string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical navigation menu. Digits 1-9 jump to an item.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu creates a menu with the first enabled item selected.
func NewMenu(items []MenuItem) Menu {
	selected := 0
	for i, item := range items {
		if !item.Disabled {
			selected = i
			break
		}
	}
	return Menu{Items: items, Selected: selected}
}

// Update handles keyboard navigation.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		for i := m.Selected - 1; i >= 0; i-- {
			if !m.Items[i].Disabled {
				m.Selected = i
				break
			}
		}
	case "down", "j":
		for i := m.Selected + 1; i < len(m.Items); i++ {
			if !m.Items[i].Disabled {
				m.Selected = i
				break
			}
		}
	case "enter":
		return m, m.activate(m.Selected)
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(m.Items) {
			if !m.Items[n-1].Disabled {
				m.Selected = n - 1
				return m, m.activate(n - 1)
			}
		}
	}
	return m, nil
}

func (m Menu) activate(i int) tea.Cmd {
	if i < 0 || i >= len(m.Items) {
		return nil
	}
	item := m.Items[i]
	if item.Action == nil || item.Disabled {
		return nil
	}
	return item.Action()
}

// View renders the menu as a column of buttons of the given width.
func (m Menu) View(buttonWidth int) string {
	buttons := make([]string, 0, len(m.Items))
	for i, item := range m.Items {
		buttons = append(buttons, Button(item.Label, i == m.Selected, item.Disabled, buttonWidth))
	}
	return strings.Join(buttons, "\n")
}

// CompactView renders the menu as plain lines for small terminals where
// bordered buttons overflow.
func (m Menu) CompactView() string {
	lines := make([]string, 0, len(m.Items))
	for i, item := range m.Items {
		switch {
		case item.Disabled:
			lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextDim).Render("   "+item.Label))
		case i == m.Selected:
			lines = append(lines, lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.Highlight).
				Bold(true).
				Render(" ▸ "+item.Label+" "))
		default:
			lines = append(lines, lipgloss.NewStyle().Foreground(theme.Text).Render("   "+item.Label))
		}
	}
	return strings.Join(lines, "\n")
}
