package domain

// Phase represents the current phase of a shiritori session
type Phase string

const (
	PhaseReset  Phase = "RESET"  // Clearing session data, advances to WAIT immediately
	PhaseWait   Phase = "WAIT"   // Listening for speech
	PhaseRecord Phase = "RECORD" // Interim speech detected
	PhaseCheck  Phase = "CHECK"  // Final transcription received, judging the word
	PhaseResult Phase = "RESULT" // Showing the outcome of the round
	PhaseNext   Phase = "NEXT"   // Committing the accepted word, advances to WAIT immediately
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// IsTransient reports whether the phase auto-advances and is never observable as a steady state
func (p Phase) IsTransient() bool {
	return p == PhaseReset || p == PhaseNext
}

// AcceptsSpeech reports whether recognition results are meaningful in this phase
func (p Phase) AcceptsSpeech() bool {
	return p == PhaseWait || p == PhaseRecord
}

// CanTransitionTo checks if a transition from current phase to target phase is valid
func (p Phase) CanTransitionTo(target Phase) bool {
	validTransitions := map[Phase][]Phase{
		PhaseReset:  {PhaseWait},
		PhaseWait:   {PhaseRecord, PhaseCheck},
		PhaseRecord: {PhaseCheck},
		PhaseCheck:  {PhaseResult, PhaseWait},
		PhaseResult: {PhaseNext},
		PhaseNext:   {PhaseWait},
	}

	// Reset is reachable from anywhere
	if target == PhaseReset {
		return true
	}

	allowed, ok := validTransitions[p]
	if !ok {
		return false
	}

	for _, phase := range allowed {
		if phase == target {
			return true
		}
	}
	return false
}
