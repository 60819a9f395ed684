// Package sentiment scores headline text with a small polarity lexicon.
// Scores land in [-1, 1]; anything above zero reads positive, below zero
// negative, exactly zero neutral.
package sentiment

import (
	"strings"

	"github.com/clipperhouse/uax29/v2/words"
)

const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

// lexicon holds per-word polarity weights. Tuned for news headlines:
// strong words carry full weight, milder ones half.
var lexicon = map[string]float64{
	// positive
	"good": 0.5, "great": 1, "excellent": 1, "amazing": 1, "best": 1,
	"win": 0.5, "wins": 0.5, "won": 0.5, "winner": 0.5, "victory": 1,
	"success": 1, "successful": 1, "growth": 0.5, "gain": 0.5, "gains": 0.5,
	"rise": 0.5, "rises": 0.5, "soar": 1, "soars": 1, "surge": 0.5, "surges": 0.5,
	"record": 0.5, "breakthrough": 1, "recovery": 0.5, "recovered": 0.5,
	"hope": 0.5, "hopeful": 0.5, "improve": 0.5, "improves": 0.5, "improved": 0.5,
	"boost": 0.5, "boosts": 0.5, "strong": 0.5, "celebrate": 1, "celebrates": 1,
	"peace": 1, "agreement": 0.5, "progress": 0.5, "thriving": 1, "safe": 0.5,
	"happy": 1, "joy": 1, "love": 1, "praise": 0.5, "praised": 0.5,

	// negative
	"bad": -0.5, "worst": -1, "terrible": -1, "horrific": -1, "awful": -1,
	"crisis": -1, "disaster": -1, "catastrophe": -1, "tragedy": -1, "tragic": -1,
	"war": -1, "attack": -1, "attacks": -1, "killed": -1, "kills": -1, "dead": -1,
	"death": -1, "deaths": -1, "dies": -1, "died": -1, "injured": -0.5,
	"crash": -1, "crashes": -1, "collapse": -1, "collapses": -1,
	"fall": -0.5, "falls": -0.5, "drop": -0.5, "drops": -0.5, "plunge": -1, "plunges": -1,
	"loss": -0.5, "losses": -0.5, "lose": -0.5, "loses": -0.5, "lost": -0.5,
	"fear": -0.5, "fears": -0.5, "threat": -0.5, "threats": -0.5, "warning": -0.5,
	"fraud": -1, "scandal": -1, "corruption": -1, "arrested": -0.5, "arrest": -0.5,
	"fail": -1, "fails": -1, "failed": -1, "failure": -1, "weak": -0.5,
	"recession": -1, "layoffs": -1, "strike": -0.5, "strikes": -0.5,
	"violence": -1, "violent": -1, "outbreak": -1, "emergency": -0.5,
}

// negators flip the weight of the following sentiment word.
var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "without": {}, "hardly": {},
}

// Score rates text between -1 and 1. Zero means no sentiment words matched
// or positives and negatives balanced out.
func Score(text string) float64 {
	var sum float64
	var matched int
	negate := false

	tokens := words.FromString(strings.ToLower(text))
	for tokens.Next() {
		token := strings.TrimSpace(tokens.Value())
		if token == "" {
			continue
		}
		if _, ok := negators[token]; ok {
			negate = true
			continue
		}
		weight, ok := lexicon[token]
		if !ok {
			// A non-sentiment word between a negator and its target breaks
			// the negation only if it looks like a clause boundary.
			if token == "but" || token == "," || token == "." {
				negate = false
			}
			continue
		}
		if negate {
			weight = -weight
			negate = false
		}
		sum += weight
		matched++
	}

	if matched == 0 {
		return 0
	}
	score := sum / float64(matched)
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score
}

// Label maps a score to positive, negative or neutral.
func Label(score float64) string {
	switch {
	case score > 0:
		return LabelPositive
	case score < 0:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// Analyze is Score plus Label in one call.
func Analyze(text string) (float64, string) {
	score := Score(text)
	return score, Label(score)
}
