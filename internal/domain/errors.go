package domain

import "errors"

// Round errors. These form the closed taxonomy of judgement failures;
// anything else reaching the controller is fatal to the session.
var (
	ErrFailedRecognition = errors.New("failed to recognize a word")
	ErrNotChain          = errors.New("word does not continue the chain")
	ErrAlreadyExists     = errors.New("word has already been used")
	ErrEndGame           = errors.New("word ends with ん")
)

// Session and infrastructure errors
var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionClosed       = errors.New("session closed")
	ErrTooManySessions     = errors.New("too many active sessions")
	ErrInvalidTransition   = errors.New("invalid phase transition")
	ErrAnalyzerUnavailable = errors.New("morphological analyzer unavailable")
	ErrRecognizerFault     = errors.New("speech recognizer fault")
)

// IsRecoverable reports whether err should be retried silently
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrFailedRecognition)
}
