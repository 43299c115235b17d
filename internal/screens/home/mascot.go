package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/focuslab/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota // default indigo
	MascotCelebrating                      // gold, star eyes: a game is trending up
	MascotAlert                            // amber, exclamation: a game is slipping
)

const mascotIdle = `┌─────┐
│ ◉ ◉ │
│  ▽  │
│ ◌◎◌ │
└─────┘`

const mascotCelebrating = `┌─────┐
│ ★ ★ │
│  ▿  │
│ ◌◎◌ │
└─╥═╥─┘
  ╚═╝`

const mascotAlert = `┌─────┐
│ ◉ ◉ │ !
│  ▽  │
│ ◌◎◌ │
└─────┘`

// RenderMascot returns the mascot art for the given variant.
func RenderMascot(v MascotVariant) string {
	art, fg := mascotIdle, theme.Primary
	switch v {
	case MascotCelebrating:
		art, fg = mascotCelebrating, theme.Highlight
	case MascotAlert:
		art, fg = mascotAlert, theme.Accent
	}
	return lipgloss.NewStyle().Foreground(fg).Render(art)
}
