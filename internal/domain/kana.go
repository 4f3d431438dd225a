package domain

import "strings"

const (
	katakanaFirst = 'ァ' // U+30A1
	katakanaLast  = 'ヶ' // U+30F6

	// kanaOffset is the distance between the katakana and hiragana blocks
	kanaOffset = 0x60

	// ProlongedSoundMark extends the preceding vowel
	ProlongedSoundMark = 'ー'

	// TerminalN is the kana that loses the game when a word ends with it
	TerminalN = 'ん'
)

// smallKana maps small kana forms to their full-size equivalents
var smallKana = map[rune]rune{
	'ぁ': 'あ',
	'ぃ': 'い',
	'ぅ': 'う',
	'ぇ': 'え',
	'ぉ': 'お',
	'っ': 'つ',
	'ゃ': 'や',
	'ゅ': 'ゆ',
	'ょ': 'よ',
	'ゎ': 'わ',
}

// ToHiragana converts every katakana codepoint in s to hiragana.
// Other characters, including ー, pass through unchanged.
func ToHiragana(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= katakanaFirst && r <= katakanaLast {
			r -= kanaOffset
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CanonicalKana returns the full-size form of a small kana, or r unchanged
func CanonicalKana(r rune) rune {
	if full, ok := smallKana[r]; ok {
		return full
	}
	return r
}

// ChainTail returns the character the next word has to start with.
// A single trailing ー is skipped; ok is false when no such character exists.
func ChainTail(word string) (tail rune, ok bool) {
	runes := []rune(word)
	if len(runes) == 0 {
		return 0, false
	}

	i := len(runes) - 1
	if runes[i] == ProlongedSoundMark {
		i--
	}
	if i < 0 {
		return 0, false
	}

	return CanonicalKana(runes[i]), true
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func lastRune(s string) rune {
	runes := []rune(s)
	if len(runes) == 0 {
		return 0
	}
	return runes[len(runes)-1]
}
