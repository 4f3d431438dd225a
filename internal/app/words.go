package app

import (
	"math/rand"

	"shiritori/internal/domain"
)

// RandomStartingWord as the configured starting word makes every session
// open with a word drawn from StartingWords
const RandomStartingWord = "random"

// StartingWords is a curated list of easy openers. None ends in ん or ー.
var StartingWords = []string{
	// Classic
	"しりとり", "りんご", "ごりら", "らっぱ", "ぱんだ",

	// Animals
	"ねこ", "いぬ", "うさぎ", "たぬき", "きつね",
	"かめ", "さる", "くじら", "めだか", "ことり",

	// Food
	"すいか", "いちご", "みそしる", "おにぎり", "たまご",
	"とまと", "なす", "もも", "ぶどう", "くり",

	// Things
	"めがね", "かさ", "つくえ", "えんぴつ", "ふね",
	"とけい", "はさみ", "くつした", "まくら", "てがみ",

	// Nature
	"さくら", "そら", "やま", "うみ", "ほし",
}

// GetRandomStartingWord returns a random word from the starting words list
func GetRandomStartingWord() string {
	return StartingWords[rand.Intn(len(StartingWords))]
}

// resolveSettings draws a starting word for a new session if the hub is
// configured with RandomStartingWord
func resolveSettings(settings domain.GameSettings) domain.GameSettings {
	if settings.StartingWord == RandomStartingWord {
		settings.StartingWord = GetRandomStartingWord()
	}
	return settings
}
