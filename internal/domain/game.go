package domain

import (
	"slices"
	"time"
)

// DefaultStartingWord seeds every new session
const DefaultStartingWord = "しりとり"

// GameSettings holds configurable game parameters
type GameSettings struct {
	StartingWord string        `json:"startingWord"`
	SuccessDelay time.Duration `json:"successDelay"` // RESULT display time before the next round
	FailureDelay time.Duration `json:"failureDelay"` // RESULT display time before the session ends
}

// DefaultGameSettings returns the default game settings
func DefaultGameSettings() GameSettings {
	return GameSettings{
		StartingWord: DefaultStartingWord,
		SuccessDelay: 1500 * time.Millisecond,
		FailureDelay: 3 * time.Second,
	}
}

// Session is the data of a single shiritori game.
// It is a plain value: the state machine takes one and returns the next.
type Session struct {
	ID               string       `json:"id"`
	Phase            Phase        `json:"phase"`
	UsedWords        []string     `json:"usedWords"`
	PendingCandidate string       `json:"pendingCandidate,omitempty"`
	LastOutcome      Outcome      `json:"lastOutcome,omitempty"`
	Round            int          `json:"round"`
	Ended            bool         `json:"ended"`
	Settings         GameSettings `json:"settings"`
	CreatedAt        time.Time    `json:"createdAt"`
}

// NewSession creates a session in the RESET phase
func NewSession(id string, settings GameSettings) Session {
	if settings.StartingWord == "" {
		settings.StartingWord = DefaultStartingWord
	}
	return Session{
		ID:        id,
		Phase:     PhaseReset,
		UsedWords: []string{},
		Settings:  settings,
		CreatedAt: time.Now(),
	}
}

// PreviousWord returns the most recently accepted word
func (s Session) PreviousWord() string {
	if len(s.UsedWords) == 0 {
		return ""
	}
	return s.UsedWords[len(s.UsedWords)-1]
}

// Clone returns a copy that shares no memory with s
func (s Session) Clone() Session {
	s.UsedWords = slices.Clone(s.UsedWords)
	return s
}

// PhaseChanged builds the observer payload for the current phase
func (s Session) PhaseChanged() *PhaseChangedPayload {
	p := &PhaseChangedPayload{
		Phase:        s.Phase,
		PreviousWord: s.PreviousWord(),
		UsedCount:    len(s.UsedWords),
	}
	if s.Phase == PhaseResult {
		p.CandidateWord = s.PendingCandidate
		p.Outcome = s.LastOutcome
		p.Success = s.LastOutcome.IsSuccess()
		p.Message = s.LastOutcome.Message()
	}
	return p
}

// reset clears the session data and seeds the chain
func (s Session) reset() Session {
	s.UsedWords = []string{s.Settings.StartingWord}
	s.PendingCandidate = ""
	s.LastOutcome = OutcomeSuccess
	s.Round = 0
	return s
}

// commit appends the pending candidate to the chain
func (s Session) commit() Session {
	s.UsedWords = append(slices.Clone(s.UsedWords), s.PendingCandidate)
	s.PendingCandidate = ""
	s.LastOutcome = OutcomeSuccess
	return s
}
