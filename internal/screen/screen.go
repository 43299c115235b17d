package screen

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/focuslab/internal/ui/layout"
)

// Screen is one page of the TUI. The router owns the stack of screens and
// forwards messages to the top one.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the content area, excluding header and footer.
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Capturer is implemented by screens that handle Esc themselves, such as
// a running game that must confirm before quitting.
type Capturer interface {
	CapturesEsc() bool
}

// Stopper is implemented by screens holding a live session. Stop is called
// before the program quits.
type Stopper interface {
	Stop(ctx context.Context)
}
