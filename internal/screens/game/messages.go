package game

import (
	"time"

	"github.com/abhisek/focuslab/internal/trial"
)

// readyMsg is sent once the engine has been started.
type readyMsg struct {
	engine *trial.Engine
	err    error
}

// changedMsg is sent when the engine reports a state change.
type changedMsg struct{}

// endedMsg is sent when End has returned.
type endedMsg struct {
	err error
}

// tickMsg redraws countdowns.
type tickMsg time.Time
