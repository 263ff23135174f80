package simplify

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/lexicon"
)

// Rewrite is one (matcher, replacement) pair.  Rewrites in a stage are applied
// in sequence, each to the output of the previous one.
type Rewrite struct {
	Pattern     *regexp.Regexp
	Replacement string
	// Literal disables $-expansion in Replacement.
	Literal bool
	// WholeWord only accepts matches that start and end on a word edge.
	// Replacement is then always literal.
	WholeWord bool
}

// Apply rewrites every match of r.Pattern in text.
func (r Rewrite) Apply(text string) string {
	if r.WholeWord {
		return replaceWholeWords(r.Pattern, text, r.Replacement)
	}
	if r.Literal {
		return r.Pattern.ReplaceAllLiteralString(text, r.Replacement)
	}
	return r.Pattern.ReplaceAllString(text, r.Replacement)
}

// applyAll threads text through rewrites in order.
func applyAll(rewrites []Rewrite, text string) string {
	for _, r := range rewrites {
		text = r.Apply(text)
	}
	return text
}

// wholeWord builds case-insensitive whole-word rewrites from a substitution
// table, keeping table order.
func wholeWord(table []lexicon.Substitution) []Rewrite {
	out := make([]Rewrite, 0, len(table))
	for _, s := range table {
		out = append(out, Rewrite{
			Pattern:     regexp.MustCompile(`(?i)` + regexp.QuoteMeta(s.From)),
			Replacement: s.To,
			WholeWord:   true,
		})
	}
	return out
}

// replaceWholeWords replaces the matches of re that sit between word edges,
// scanning left to right.  A rejected match resumes the search one rune
// later so an overlapping candidate is still found.  Edges are Unicode
// aware, unlike RE2's \b.
func replaceWholeWords(re *regexp.Regexp, text, repl string) string {
	var b strings.Builder
	last, pos := 0, 0
	for pos < len(text) {
		loc := re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if end > start && isWordEdge(text, start) && isWordEdge(text, end) {
			b.WriteString(text[last:start])
			b.WriteString(repl)
			last, pos = end, end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + size
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

// isWordEdge reports whether byte offset i of s lies between a word and a
// non-word rune, with the ends of s counting as non-word.
func isWordEdge(s string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:i])
		before = isWordRune(r)
	}
	if i < len(s) {
		r, _ := utf8.DecodeRuneInString(s[i:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

var (
	phraseRewrites = wholeWord(lexicon.LegalPhraseSubstitutions())

	passiveRewrites = []Rewrite{
		{Pattern: regexp.MustCompile(`(?i)([\p{L}\p{N}_]+)\s+shall be\s+([\p{L}\p{N}_]+ed)`), Replacement: "${1} will be ${2}"},
		{Pattern: regexp.MustCompile(`(?i)is\s+required\s+to\s+be`), Replacement: "must be", Literal: true},
		{Pattern: regexp.MustCompile(`(?i)are\s+required\s+to`), Replacement: "must", Literal: true},
		{Pattern: regexp.MustCompile(`(?i)it\s+is\s+agreed\s+that`), Replacement: "the parties agree that", Literal: true},
	}

	conditionalRewrites = []Rewrite{
		{Pattern: regexp.MustCompile(`(?i)in\s+the\s+event\s+that`), Replacement: "if", Literal: true},
		{Pattern: regexp.MustCompile(`(?i)provided\s+that`), Replacement: "if", Literal: true},
		{Pattern: regexp.MustCompile(`(?i)subject\s+to\s+the\s+condition\s+that`), Replacement: "if", Literal: true},
		{Pattern: regexp.MustCompile(`(?i)on\s+the\s+condition\s+that`), Replacement: "if", Literal: true},
	}

	// structureRewrites keeps passive patterns ahead of conditional ones.
	structureRewrites = append(append([]Rewrite(nil), passiveRewrites...), conditionalRewrites...)

	wordRewrites = wholeWord(lexicon.WordSubstitutions())
)
