package domain

// TokenClass is the dictionary category of a token
type TokenClass string

const (
	TokenKnown   TokenClass = "KNOWN"
	TokenUnknown TokenClass = "UNKNOWN"
	TokenUser    TokenClass = "USER"
)

// Token is a morpheme produced by the morphological analyzer
type Token struct {
	Surface string     `json:"surface"`
	Reading string     `json:"reading,omitempty"`
	Class   TokenClass `json:"class"`
}

// Normalize turns analyzer output into the hiragana reading of the spoken word.
// Only the leading token is considered.
func Normalize(tokens []Token) (string, error) {
	if len(tokens) == 0 {
		return "", ErrFailedRecognition
	}

	lead := tokens[0]
	if lead.Class == TokenUnknown || lead.Reading == "" {
		return "", ErrFailedRecognition
	}

	return ToHiragana(lead.Reading), nil
}
