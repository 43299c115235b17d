package notice

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/focuslab/internal/router"
	"github.com/abhisek/focuslab/internal/screen"
	"github.com/abhisek/focuslab/internal/ui/theme"
)

// Screen shows a message for a feature that cannot run yet, such as the
// language exercise without an LLM provider.
type Screen struct {
	title   string
	message string
}

var _ screen.Screen = (*Screen)(nil)

// New creates a notice screen.
func New(title, message string) *Screen {
	return &Screen{title: title, message: message}
}

func (s *Screen) Init() tea.Cmd {
	return nil
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && (k.String() == "enter" || k.String() == "q") {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Render("╌╌ " + s.title + " ╌╌\n\n" + s.message)
}

func (s *Screen) Title() string {
	return s.title
}
