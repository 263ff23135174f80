// Package clause picks out the sentences of a document that carry
// contractual substance and tags each with a coarse topic.
package clause

import (
	"regexp"
	"unicode/utf8"

	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/textnorm"
)

const (
	// MinLength is the shortest trimmed sentence, in characters, that can be
	// reported as a clause.
	MinLength = 20

	// MaxClauses caps the number of clauses returned by Detect.
	MaxClauses = 10
)

// RE2's \b and \w only know ASCII, so word edges are spelled out with
// Unicode classes to keep accented words whole.
const (
	wordStart = `(?:^|[^\p{L}\p{N}_])`
	wordEnd   = `(?:$|[^\p{L}\p{N}_])`
)

// indicators are the clause-indicating rules.  A sentence qualifies when any
// rule matches anywhere in it.  A trailing run of word characters after a
// stem never changes whether a rule matches, so stems end without an edge.
var indicators = []*regexp.Regexp{
	regexp.MustCompile(`(?i)` + wordStart + `(whereas|hereby|therefore|shall|agreement|contract)` + wordEnd),
	regexp.MustCompile(`(?i)` + wordStart + `(liability|damages|breach|termination|indemnif)`),
	regexp.MustCompile(`(?i)` + wordStart + `(force majeure|confidential|proprietary|warranty)` + wordEnd),
	regexp.MustCompile(`(?i)` + wordStart + `(party|parties).*` + wordStart + `(agree|obligat|responsible)`),
	regexp.MustCompile(`(?i)` + wordStart + `(payment|fee|cost|expense)`),
	regexp.MustCompile(`(?i)` + wordStart + `(intellectual property|copyright|trademark)` + wordEnd),
}

// Candidate is a detected clause with its topic.
type Candidate struct {
	Text     string   `json:"text" yaml:"text"`
	Category Category `json:"category" yaml:"category"`
}

// Detect returns up to MaxClauses distinct sentences of text that look like
// clauses, in order of first appearance.  Sentences shorter than MinLength
// are never returned.
func Detect(text string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, MaxClauses)
	for _, sentence := range textnorm.SplitSentences(text) {
		if len(out) == MaxClauses {
			break
		}
		if utf8.RuneCountInString(sentence) < MinLength {
			continue
		}
		if !IsClause(sentence) {
			continue
		}
		if _, dup := seen[sentence]; dup {
			continue
		}
		seen[sentence] = struct{}{}
		out = append(out, sentence)
	}
	return out
}

// IsClause reports whether sentence matches at least one clause rule.  The
// length threshold is not applied here.
func IsClause(sentence string) bool {
	for _, re := range indicators {
		if re.MatchString(sentence) {
			return true
		}
	}
	return false
}

// DetectClassified is Detect followed by Classify on each clause.
func DetectClassified(text string) []Candidate {
	clauses := Detect(text)
	out := make([]Candidate, len(clauses))
	for i, c := range clauses {
		out[i] = Candidate{Text: c, Category: Classify(c)}
	}
	return out
}
