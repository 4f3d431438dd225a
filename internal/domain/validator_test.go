package domain

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		used      []string
		candidate string
		want      error
	}{
		{name: "chains from starting word", used: []string{"しりとり"}, candidate: "りんご", want: nil},
		{name: "accepted", used: []string{"しりとり"}, candidate: "りす", want: nil},
		{name: "ends with n", used: []string{"しりとり"}, candidate: "ごはん", want: ErrEndGame},
		{name: "ends with n and chains", used: []string{"しりとり"}, candidate: "りょかん", want: ErrEndGame},
		{name: "not chain", used: []string{"しりとり"}, candidate: "すいか", want: ErrNotChain},
		{name: "prolonged mark skipped", used: []string{"かー"}, candidate: "からす", want: nil},
		{name: "only one prolonged mark skipped", used: []string{"かーー"}, candidate: "からす", want: ErrNotChain},
		{name: "small ya canonicalized", used: []string{"きゃ"}, candidate: "やま", want: nil},
		{name: "small tsu canonicalized", used: []string{"あっ"}, candidate: "つき", want: nil},
		{name: "small vowel canonicalized", used: []string{"ふぁ"}, candidate: "あめ", want: nil},
		{name: "small wa canonicalized", used: []string{"くゎ"}, candidate: "わに", want: nil},
		{name: "prolonged after small kana", used: []string{"きゃー"}, candidate: "やぎ", want: nil},
		{name: "already used", used: []string{"しりとり", "りす", "すいか", "かり"}, candidate: "りす", want: ErrAlreadyExists},
		{name: "not chain reported before duplicate", used: []string{"しりとり", "すいか"}, candidate: "すいか", want: ErrNotChain},
		{name: "empty candidate", used: []string{"しりとり"}, candidate: "", want: ErrFailedRecognition},
		{name: "previous is only prolonged mark", used: []string{"ー"}, candidate: "あめ", want: ErrNotChain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Validate(tt.used, tt.candidate)
			if !errors.Is(got, tt.want) || (tt.want == nil && got != nil) {
				t.Fatalf("Validate(%q, %q) = %v, want %v", tt.used, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestValidateDoesNotModifyUsedWords(t *testing.T) {
	t.Parallel()

	used := []string{"しりとり", "りす"}
	_ = Validate(used, "すずめ")

	if len(used) != 2 || used[0] != "しりとり" || used[1] != "りす" {
		t.Fatalf("used words modified: %q", used)
	}
}

func TestOutcomeFromError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err     error
		want    Outcome
		wantOK  bool
		message string
	}{
		{err: nil, want: OutcomeSuccess, wantOK: true},
		{err: ErrNotChain, want: OutcomeNotChain, wantOK: true, message: "しりとりに失敗しています"},
		{err: ErrAlreadyExists, want: OutcomeAlreadyExists, wantOK: true, message: "既に使った単語です"},
		{err: ErrEndGame, want: OutcomeEndGame, wantOK: true, message: "「ん」で終わったので負けです"},
		{err: ErrFailedRecognition, wantOK: false},
		{err: errors.New("boom"), wantOK: false},
	}

	for _, tt := range tests {
		got, ok := OutcomeFromError(tt.err)
		if ok != tt.wantOK {
			t.Fatalf("OutcomeFromError(%v) ok = %v, want %v", tt.err, ok, tt.wantOK)
		}
		if !ok {
			continue
		}
		if got != tt.want {
			t.Fatalf("OutcomeFromError(%v) = %q, want %q", tt.err, got, tt.want)
		}
		if got.Message() != tt.message {
			t.Fatalf("message for %q = %q, want %q", got, got.Message(), tt.message)
		}
	}
}
