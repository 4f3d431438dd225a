package domain

import "errors"

// Outcome is the result of a judged round. The zero value means success.
type Outcome string

const (
	OutcomeSuccess       Outcome = ""
	OutcomeNotChain      Outcome = "NOT_CHAIN"
	OutcomeAlreadyExists Outcome = "ALREADY_EXISTS"
	OutcomeEndGame       Outcome = "END_GAME"
)

var outcomeMessages = map[Outcome]string{
	OutcomeNotChain:      "しりとりに失敗しています",
	OutcomeAlreadyExists: "既に使った単語です",
	OutcomeEndGame:       "「ん」で終わったので負けです",
}

// String returns the string representation of the outcome
func (o Outcome) String() string {
	if o == OutcomeSuccess {
		return "SUCCESS"
	}
	return string(o)
}

// IsSuccess returns true if the round was accepted
func (o Outcome) IsSuccess() bool {
	return o == OutcomeSuccess
}

// Message returns the text shown to the player for a failed round
func (o Outcome) Message() string {
	return outcomeMessages[o]
}

// OutcomeFromError maps a round-ending validation error to its outcome.
// ok is false for errors outside the round-ending taxonomy.
func OutcomeFromError(err error) (outcome Outcome, ok bool) {
	switch {
	case err == nil:
		return OutcomeSuccess, true
	case errors.Is(err, ErrNotChain):
		return OutcomeNotChain, true
	case errors.Is(err, ErrAlreadyExists):
		return OutcomeAlreadyExists, true
	case errors.Is(err, ErrEndGame):
		return OutcomeEndGame, true
	default:
		return OutcomeSuccess, false
	}
}
