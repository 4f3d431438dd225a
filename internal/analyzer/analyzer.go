// Package analyzer turns transcribed text into morphemes with kana readings.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
	"golang.org/x/text/unicode/norm"

	"shiritori/internal/domain"
)

// Mode selects the kagome segmentation mode
type Mode string

const (
	ModeNormal   Mode = "normal"
	ModeSearch   Mode = "search"
	ModeExtended Mode = "extended"
)

// Analyzer wraps a kagome tokenizer loaded with the IPA dictionary.
// A single Analyzer is safe for concurrent use.
type Analyzer struct {
	tokenizer *tokenizer.Tokenizer
	mode      tokenizer.TokenizeMode
	logger    *slog.Logger
}

// New loads the dictionary and builds an analyzer
func New(mode Mode, logger *slog.Logger) (*Analyzer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAnalyzerUnavailable, err)
	}

	return &Analyzer{
		tokenizer: t,
		mode:      parseMode(mode),
		logger:    logger,
	}, nil
}

// Tokenize splits text into tokens. Text that folds to nothing is a
// recognition failure, not an analyzer fault.
func (a *Analyzer) Tokenize(ctx context.Context, text string) ([]domain.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a == nil || a.tokenizer == nil {
		return nil, domain.ErrAnalyzerUnavailable
	}

	folded := Fold(text)
	if folded == "" {
		return nil, domain.ErrFailedRecognition
	}

	ktoks := a.tokenizer.Analyze(folded, a.mode)
	tokens := make([]domain.Token, 0, len(ktoks))
	for _, kt := range ktoks {
		tokens = append(tokens, convertToken(kt))
	}

	a.logger.Debug("text analyzed", "text", folded, "tokens", len(tokens))

	return tokens, nil
}

// Fold applies NFKC so full-width ASCII and half-width katakana coming from
// recognizers reach the dictionary in their canonical forms.
func Fold(text string) string {
	return strings.TrimSpace(norm.NFKC.String(text))
}

func convertToken(kt tokenizer.Token) domain.Token {
	reading, ok := kt.Reading()
	if !ok || reading == "*" {
		reading = ""
	}

	return domain.Token{
		Surface: kt.Surface,
		Reading: reading,
		Class:   convertClass(kt.Class),
	}
}

func convertClass(c tokenizer.TokenClass) domain.TokenClass {
	switch c {
	case tokenizer.KNOWN:
		return domain.TokenKnown
	case tokenizer.USER:
		return domain.TokenUser
	default:
		return domain.TokenUnknown
	}
}

func parseMode(mode Mode) tokenizer.TokenizeMode {
	switch mode {
	case ModeSearch:
		return tokenizer.Search
	case ModeExtended:
		return tokenizer.Extended
	default:
		return tokenizer.Normal
	}
}
