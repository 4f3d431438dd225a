package domain

// Validate judges candidate against the words used so far.
//
// The checks run in a fixed order because a word can fail several of them at
// once: a word ending in ん is always reported as ErrEndGame, a word that
// does not chain as ErrNotChain, and only a chaining word can be reported as
// ErrAlreadyExists.
func Validate(usedWords []string, candidate string) error {
	if candidate == "" || len(usedWords) == 0 {
		return ErrFailedRecognition
	}

	tail, hasTail := ChainTail(usedWords[len(usedWords)-1])

	if lastRune(candidate) == TerminalN {
		return ErrEndGame
	}

	if !hasTail || firstRune(candidate) != tail {
		return ErrNotChain
	}

	for _, w := range usedWords {
		if w == candidate {
			return ErrAlreadyExists
		}
	}

	return nil
}
