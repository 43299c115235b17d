package progress

import (
	"time"

	"github.com/abhisek/focuslab/internal/difficulty"
)

// Trial is one completed stimulus/response cycle. Trials are immutable once
// recorded.
type Trial struct {
	Number int // 1-based within the session
	Level  difficulty.Level

	Correct           bool
	CentralCorrect    bool
	PeripheralCorrect bool

	// Stimulus summary and the player's answers. For icon-swap the
	// peripheral fields hold the swap index and the picked card.
	CentralExpected    string
	CentralAnswer      string
	PeripheralExpected int
	PeripheralAnswer   int

	ResponseTime time.Duration
	TimedOut     bool
	At           time.Time
}

// IsCorrect lets trial logs feed difficulty.NextLevel directly.
func (t Trial) IsCorrect() bool { return t.Correct }

// ResponseMillis returns the response time in fractional milliseconds.
func (t Trial) ResponseMillis() float64 {
	return float64(t.ResponseTime) / float64(time.Millisecond)
}
