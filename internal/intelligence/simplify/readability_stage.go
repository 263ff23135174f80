package simplify

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// LongSentence is the length, in characters, above which a sentence is split
// at conjunctions.
const LongSentence = 150

var (
	sentenceEnd  = regexp.MustCompile(`[.!?]`)
	conjunction  = regexp.MustCompile(`\s+(and|or|but|however|nevertheless)\s+`)
	spaceRun     = regexp.MustCompile(`\s+`)
	doublePeriod = regexp.MustCompile(`\s*\.\s*\.`)
)

// improveReadability re-splits text into sentences, breaks long sentences at
// conjunctions and joins everything back with ". ".
func improveReadability(text string) string {
	var sentences []string
	for _, s := range sentenceEnd.Split(text, -1) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if utf8.RuneCountInString(s) > LongSentence {
			sentences = append(sentences, splitLong(s)...)
			continue
		}
		sentences = append(sentences, s)
	}

	out := strings.Join(sentences, ". ")
	out = spaceRun.ReplaceAllString(out, " ")
	out = doublePeriod.ReplaceAllString(out, ".")
	return strings.TrimSpace(out)
}

// splitLong breaks sentence at each conjunction.  The fragments alternate
// text, conjunction, text, ...; every text fragment that is followed by
// another text fragment becomes its own sentence and the conjunction is
// dropped.  A trailing conjunction with nothing after it is kept on the last
// sentence.
func splitLong(sentence string) []string {
	parts := splitKeepingConjunctions(sentence)
	if len(parts) == 1 {
		return []string{sentence}
	}
	var out []string
	current := parts[0]
	for i := 1; i < len(parts); i += 2 {
		if i+1 < len(parts) {
			out = append(out, strings.TrimSpace(current))
			current = parts[i+1]
		} else {
			current += " " + parts[i]
		}
	}
	return append(out, strings.TrimSpace(current))
}

// splitKeepingConjunctions splits s around conjunction matches and keeps the
// captured conjunction between the surrounding text fragments.
func splitKeepingConjunctions(s string) []string {
	matches := conjunction.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return []string{s}
	}
	parts := make([]string, 0, 2*len(matches)+1)
	prev := 0
	for _, m := range matches {
		parts = append(parts, s[prev:m[0]], s[m[2]:m[3]])
		prev = m[1]
	}
	return append(parts, s[prev:])
}
