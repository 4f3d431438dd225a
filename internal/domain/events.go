package domain

// EndReason explains why a session handed control back to its caller
type EndReason string

const (
	EndReasonGameOver  EndReason = "game_over" // A failed round was shown and its timer elapsed
	EndReasonFatal     EndReason = "fatal"     // An error outside the round taxonomy
	EndReasonCancelled EndReason = "cancelled" // Torn down from outside
)

// Payload types for different events

// PhaseChangedPayload is sent whenever a steady phase is entered
type PhaseChangedPayload struct {
	Phase         Phase   `json:"phase"`
	PreviousWord  string  `json:"previousWord"`
	CandidateWord string  `json:"candidateWord,omitempty"`
	Outcome       Outcome `json:"outcome,omitempty"`
	Success       bool    `json:"success"`
	Message       string  `json:"message,omitempty"`
	UsedCount     int     `json:"usedCount"`
}

// SessionEndedPayload is sent once when the game hands control back to the caller
type SessionEndedPayload struct {
	Reason    EndReason `json:"reason"`
	Outcome   Outcome   `json:"outcome,omitempty"`
	Message   string    `json:"message,omitempty"`
	UsedWords []string  `json:"usedWords"`
	Chain     int       `json:"chain"` // Words accepted from players
}
