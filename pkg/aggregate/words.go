package aggregate

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/open-sauced/pizza/gitstats/pkg/insights"
	"github.com/open-sauced/pizza/gitstats/pkg/tokenize"
)

// MaxCloudWords caps the number of distinct words in a word cloud.
const MaxCloudWords = 200

const minTokenRunes = 2

// DefaultStopWords are connectives and common commit-message verbs that say
// nothing about what a repository works on.
var DefaultStopWords = []string{
	"the", "a", "an", "and", "or", "to", "in", "for", "of", "with", "on", "at", "by",
	"is", "are", "was", "were", "i", "we", "this", "that", "it",
	"fix", "fixed", "update", "add", "remove", "clean", "up",
}

// StopWordSet lowercases words into a lookup set.
func StopWordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

// MessageText joins every non-empty commit message with a single space.
func MessageText(table *insights.CommitTable) string {
	var parts []string
	for i := 0; i < table.Len(); i++ {
		if msg := table.At(i).Message; msg != "" {
			parts = append(parts, msg)
		}
	}
	return strings.Join(parts, " ")
}

// FilterTokens keeps tokens that are at least two characters long, contain a
// letter or digit and are not stop words, compared case-insensitively.
func FilterTokens(tokens []string, stopWords map[string]struct{}) []string {
	var kept []string
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if utf8.RuneCountInString(tok) < minTokenRunes || !hasWordRune(tok) {
			continue
		}
		if _, stop := stopWords[strings.ToLower(tok)]; stop {
			continue
		}
		kept = append(kept, tok)
	}
	return kept
}

// MessageTokens tokenizes every commit message and filters the result.
func MessageTokens(table *insights.CommitTable, tok tokenize.Tokenizer, stopWords map[string]struct{}) []string {
	return FilterTokens(tok.Tokenize(MessageText(table)), stopWords)
}

// WordCount is the frequency of a word in the token stream.
type WordCount struct {
	Word  string
	Count int
}

// WordFrequencies counts tokens and returns at most max words, most frequent
// first and alphabetical among equal counts.
func WordFrequencies(tokens []string, max int) []WordCount {
	counts := make(map[string]int)
	for _, tok := range tokens {
		counts[tok]++
	}

	out := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		out = append(out, WordCount{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})

	if max >= 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
