// Package sentiment scores chat message text with a signed word-weight
// lexicon (AFINN style): each known token carries a weight in [-5, 5] and the
// message score is the sum over matched tokens.
package sentiment

import "strings"

// Sentiment labels attached to stored messages.
const (
	Positive = "positive"
	Negative = "negative"
	Neutral  = "neutral"
)

// Label maps a score to its label. Thresholds are strict: scores of exactly
// 1 or -1 are neutral.
func Label(score float64) string {
	switch {
	case score > 1:
		return Positive
	case score < -1:
		return Negative
	default:
		return Neutral
	}
}

// Analyze tokenizes the text and returns its lexicon score with the label.
func Analyze(text string) (float64, string) {
	score := 0
	for _, tok := range tokenize(text) {
		score += lexicon[tok]
	}
	return float64(score), Label(float64(score))
}

// tokenize lowercases and splits on anything that is not a letter, digit, or
// apostrophe (apostrophes keep contractions like "can't" intact).
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z':
			return false
		case r >= '0' && r <= '9':
			return false
		case r == '\'':
			return false
		default:
			return true
		}
	})
}
