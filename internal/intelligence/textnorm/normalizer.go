// Package textnorm cleans raw extracted document text before analysis and
// provides the sentence splitting and tokenization shared by the clause
// detector, the simplification pipeline and the readability scorer.
//
// All functions are total: any string, including the empty string, is valid
// input and no function returns an error.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/lexicon"
)

var (
	// disallowed matches every character outside the retained set: letters,
	// digits, underscore, whitespace and . , ; : ! ? ( ) -
	disallowed = regexp.MustCompile(`[^\p{L}\p{N}_\s\p{Z}\v.,;:!?()\-]`)

	// sentenceBreak matches runs of sentence terminators.
	sentenceBreak = regexp.MustCompile(`[.!?]+`)
)

// quoteFolding maps typographic quotes to their ASCII forms.
var quoteFolding = runes.Map(func(r rune) rune {
	switch r {
	case '“', '”', '„', '‟', '«', '»':
		return '"'
	case '‘', '’', '‚', '‛':
		return '\''
	}
	return r
})

// Normalize cleans raw text: it composes Unicode to NFC, folds curly quotes
// to straight quotes, removes every character outside the retained set,
// collapses whitespace runs to a single space and trims both ends.
//
// Normalize is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	// A fresh chain per call: transform.Chain keeps per-use state.
	folded, _, err := transform.String(transform.Chain(norm.NFC, quoteFolding), text)
	if err != nil {
		folded = text
	}
	stripped := norm.NFC.String(disallowed.ReplaceAllString(folded, ""))
	return strings.Join(strings.FieldsFunc(stripped, isSpace), " ")
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || unicode.Is(unicode.Zs, r)
}

// SplitSentences splits text on runs of '.', '!' and '?', trims each
// fragment and drops empty ones.  Fragment order follows the input.
func SplitSentences(text string) []string {
	if text == "" {
		return nil
	}
	parts := sentenceBreak.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CountSentenceBreaks returns the number of terminator runs in text.  The
// readability scorer uses it as the sentence count.
func CountSentenceBreaks(text string) int {
	return len(sentenceBreak.FindAllStringIndex(text, -1))
}

// WordCount returns the number of whitespace-separated tokens in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ExtractKeywords returns the legal keywords that occur in text as
// case-insensitive substrings, in keyword-list order.
func ExtractKeywords(text string) []string {
	lower := strings.ToLower(text)
	found := make([]string, 0)
	for _, kw := range lexicon.Keywords() {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}
	return found
}
