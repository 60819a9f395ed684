// Package wordstats computes word frequencies across headline text, the
// data behind the dashboard's word cloud.
package wordstats

import (
	"sort"
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
)

// WordCount is one word and how often it appeared.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "her": {}, "was": {}, "one": {},
	"our": {}, "out": {}, "his": {}, "has": {}, "had": {}, "how": {},
	"man": {}, "new": {}, "now": {}, "old": {}, "see": {}, "two": {},
	"way": {}, "who": {}, "its": {}, "say": {}, "says": {}, "said": {},
	"she": {}, "too": {}, "use": {}, "will": {}, "with": {}, "this": {},
	"that": {}, "from": {}, "they": {}, "them": {}, "then": {}, "than": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "while": {}, "would": {},
	"could": {}, "should": {}, "about": {}, "after": {}, "before": {},
	"over": {}, "under": {}, "into": {}, "onto": {}, "amid": {}, "among": {},
	"been": {}, "being": {}, "have": {}, "more": {}, "most": {}, "some": {},
	"such": {}, "only": {}, "also": {}, "just": {}, "here": {}, "there": {},
	"their": {}, "hers": {}, "your": {}, "yours": {}, "ours": {},
}

// Frequencies counts words across all texts and returns the topN most
// frequent. Ties break alphabetically so output is stable.
func Frequencies(texts []string, topN int) []WordCount {
	counts := make(map[string]int)

	for _, text := range texts {
		tokens := words.FromString(strings.ToLower(text))
		for tokens.Next() {
			token := strings.TrimSpace(tokens.Value())
			if !countable(token) {
				continue
			}
			counts[token]++
		}
	}

	result := make([]WordCount, 0, len(counts))
	for word, count := range counts {
		result = append(result, WordCount{Word: word, Count: count})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Word < result[j].Word
	})

	if topN > 0 && len(result) > topN {
		result = result[:topN]
	}
	return result
}

// countable keeps words of three or more letters that aren't stopwords.
func countable(token string) bool {
	if len(token) < 3 {
		return false
	}
	if _, ok := stopwords[token]; ok {
		return false
	}
	for _, r := range token {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
