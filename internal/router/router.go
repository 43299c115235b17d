package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/focuslab/internal/screen"
)

// PushScreenMsg pushes Screen onto the stack.
type PushScreenMsg struct {
	Screen screen.Screen
}

// PopScreenMsg pops the top screen.
type PopScreenMsg struct{}

// ReplaceScreenMsg swaps the top screen for Screen, so a finished game is
// followed by its results without the game staying underneath.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

// PopToRootMsg returns to the bottom screen.
type PopToRootMsg struct{}

// Router manages a stack of screens.
type Router struct {
	stack []screen.Screen
}

// New creates a Router with initial at the bottom.
func New(initial screen.Screen) *Router {
	return &Router{stack: []screen.Screen{initial}}
}

// Push adds s on top and runs its Init.
func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Pop removes the top screen. The bottom screen is never removed.
func (r *Router) Pop() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil
	}
	r.stack = r.stack[:len(r.stack)-1]
	return r.refresh()
}

// Replace swaps the top screen for s.
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	if len(r.stack) > 0 {
		r.stack = r.stack[:len(r.stack)-1]
	}
	return r.Push(s)
}

// PopToRoot removes every screen above the bottom one.
func (r *Router) PopToRoot() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil
	}
	r.stack = r.stack[:1]
	return r.refresh()
}

// refresh lets a revealed screen reload state that may have changed while
// it was covered.
func (r *Router) refresh() tea.Cmd {
	if rf, ok := r.Active().(Refresher); ok {
		return rf.Refresh()
	}
	return nil
}

// Refresher is implemented by screens that reload when they become active
// again.
type Refresher interface {
	Refresh() tea.Cmd
}

// Active returns the top screen.
func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// Each calls fn for every screen, top first.
func (r *Router) Each(fn func(screen.Screen)) {
	for i := len(r.stack) - 1; i >= 0; i-- {
		fn(r.stack[i])
	}
}

// Depth returns the number of screens on the stack.
func (r *Router) Depth() int {
	return len(r.stack)
}

// Update handles navigation messages and forwards everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	case PopToRootMsg:
		return r.PopToRoot()
	}

	active := r.Active()
	if active == nil {
		return nil
	}

	updated, cmd := active.Update(msg)
	r.stack[len(r.stack)-1] = updated
	return cmd
}

// View renders the active screen.
func (r *Router) View(width, height int) string {
	active := r.Active()
	if active == nil {
		return ""
	}
	return active.View(width, height)
}
