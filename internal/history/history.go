// Package history rewrites a scenario's current question using its prior
// conversation turns. Both functions are pure: no I/O, no external calls,
// and identical inputs always produce identical outputs.
package history

import (
	"fmt"
	"strings"

	"github.com/giantswarm/rag-compare/internal/scenario"
)

// maxRetrievalKeywords bounds how many history keywords are appended to a
// retrieval query.
const maxRetrievalKeywords = 5

// stopwords are excluded from keyword extraction.
var stopwords = map[string]bool{
	"the": true, "and": true, "but": true, "for": true, "are": true,
	"with": true, "they": true, "this": true, "that": true, "have": true,
	"from": true, "not": true, "been": true, "has": true, "her": true,
	"his": true, "she": true, "can": true, "all": true, "any": true,
	"may": true, "had": true, "was": true, "were": true, "will": true,
	"you": true, "your": true, "what": true, "when": true, "where": true,
	"which": true, "how": true, "why": true, "does": true, "should": true,
	"would": true, "could": true, "about": true, "into": true, "then": true,
}

// Augment embeds the prior conversation above the current question so a
// single prompt carries the full context. An empty history returns the
// query unchanged.
func Augment(query string, turns []scenario.Turn) string {
	if len(turns) == 0 {
		return query
	}

	var b strings.Builder
	b.WriteString("Previous conversation:\n")
	for _, t := range turns {
		fmt.Fprintf(&b, "%s: %s\n", t.Role, t.Text)
	}
	b.WriteString("\nCurrent question: ")
	b.WriteString(query)
	return b.String()
}

// RetrievalQuery produces a compact search reformulation: the query plus up
// to five deduplicated history keywords in order of first appearance. An
// empty history returns the query unchanged.
func RetrievalQuery(query string, turns []scenario.Turn) string {
	if len(turns) == 0 {
		return query
	}

	keywords := extractKeywords(turns, tokenSet(query))
	if len(keywords) == 0 {
		return query
	}
	return query + " " + strings.Join(keywords, " ")
}

// extractKeywords collects significant terms from the turns, skipping
// stopwords, short words and anything already present in the query.
func extractKeywords(turns []scenario.Turn, exclude map[string]bool) []string {
	seen := make(map[string]bool)
	var keywords []string

	for _, t := range turns {
		for _, word := range tokenize(t.Text) {
			if seen[word] || exclude[word] {
				continue
			}
			seen[word] = true
			keywords = append(keywords, word)
			if len(keywords) == maxRetrievalKeywords {
				return keywords
			}
		}
	}
	return keywords
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range tokenize(text) {
		set[w] = true
	}
	return set
}

// Terms lowercases text and keeps words of three or more characters that
// are not stopwords. The evaluator shares this tokenization so rubric
// scores and retrieval reformulation agree on what counts as a term.
func Terms(text string) []string {
	return tokenize(text)
}

// tokenize lowercases text and keeps alphabetic words of three or more
// characters that are not stopwords.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})

	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 3 || stopwords[f] {
			continue
		}
		words = append(words, f)
	}
	return words
}
