// Package termrec finds known legal terminology in text and groups it by
// dictionary category.
//
// Matching is a case-insensitive substring test with no word-boundary
// requirement, so a term embedded in a longer word still counts.
package termrec

import (
	"encoding/json"
	"strings"

	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/lexicon"
)

// CategoryTerms is the list of terms found for one category.
type CategoryTerms struct {
	Category lexicon.Category `json:"category" yaml:"category"`
	Terms    []string         `json:"terms" yaml:"terms"`
}

// Result maps every dictionary category to the terms recognized in a text.
// Categories appear in dictionary declaration order and are always present,
// even when empty.  Within a category, terms follow declaration order and
// each term appears at most once.
type Result []CategoryTerms

// Recognize scans text for every dictionary term.
func Recognize(text string) Result {
	lower := strings.ToLower(text)
	categories := lexicon.Categories()
	out := make(Result, 0, len(categories))
	for _, c := range categories {
		found := make([]string, 0)
		for _, term := range lexicon.Terms(c) {
			if strings.Contains(lower, strings.ToLower(term)) {
				found = append(found, term)
			}
		}
		out = append(out, CategoryTerms{Category: c, Terms: found})
	}
	return out
}

// Get returns the terms recognized for category, or nil when the category is
// not part of the result.
func (r Result) Get(category lexicon.Category) []string {
	for _, ct := range r {
		if ct.Category == category {
			return ct.Terms
		}
	}
	return nil
}

// Total returns the number of recognized terms across all categories.
func (r Result) Total() int {
	n := 0
	for _, ct := range r {
		n += len(ct.Terms)
	}
	return n
}

// Map converts the result into a plain category-name map.  Map iteration
// order is unspecified; use the Result itself when order matters.
func (r Result) Map() map[string][]string {
	m := make(map[string][]string, len(r))
	for _, ct := range r {
		m[string(ct.Category)] = append(make([]string, 0, len(ct.Terms)), ct.Terms...)
	}
	return m
}

// FromMap rebuilds a Result from a category-name map, restoring dictionary
// order for known categories.  Unknown categories are dropped.
func FromMap(m map[string][]string) Result {
	out := make(Result, 0, len(m))
	for _, c := range lexicon.Categories() {
		terms := m[string(c)]
		if terms == nil {
			terms = []string{}
		}
		out = append(out, CategoryTerms{Category: c, Terms: terms})
	}
	return out
}

// MarshalJSON encodes the result as a JSON object keyed by category name,
// writing keys in dictionary order.
func (r Result) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, ct := range r {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(string(ct.Category))
		if err != nil {
			return nil, err
		}
		terms := ct.Terms
		if terms == nil {
			terms = []string{}
		}
		val, err := json.Marshal(terms)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// UnmarshalJSON decodes the object form written by MarshalJSON.
func (r *Result) UnmarshalJSON(data []byte) error {
	var m map[string][]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*r = FromMap(m)
	return nil
}
