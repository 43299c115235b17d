package trial

// Phase is the engine's current state.
type Phase int

const (
	PhaseIdle               Phase = iota // Not started
	PhaseOpening                         // Waiting for the recorder to open the session
	PhaseCountdown                       // Pre-game countdown
	PhaseStimulus                        // Stimulus visible (flash or memorize)
	PhaseOcclusion                       // Icon-swap blink between memorize and reveal
	PhaseResponseCentral                 // First judgment, or the only one for icon-swap
	PhaseResponsePeripheral              // Second judgment of ring games
	PhaseFeedback                        // Showing the trial result
	PhaseContinuePrompt                  // Checkpoint: continue or end
	PhaseSaving                          // Waiting for the recorder to finalize
	PhaseEnd                             // Session closed
)

var phaseNames = [...]string{
	PhaseIdle:               "idle",
	PhaseOpening:            "opening",
	PhaseCountdown:          "countdown",
	PhaseStimulus:           "stimulus",
	PhaseOcclusion:          "occlusion",
	PhaseResponseCentral:    "response-central",
	PhaseResponsePeripheral: "response-peripheral",
	PhaseFeedback:           "feedback",
	PhaseContinuePrompt:     "continue-prompt",
	PhaseSaving:             "saving",
	PhaseEnd:                "end",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Responding reports whether the engine is waiting for player input on a
// trial.
func (p Phase) Responding() bool {
	return p == PhaseResponseCentral || p == PhaseResponsePeripheral
}

// endable reports whether End may be called in p.
func (p Phase) endable() bool {
	switch p {
	case PhaseIdle, PhaseOpening, PhaseSaving, PhaseEnd:
		return false
	}
	return true
}
