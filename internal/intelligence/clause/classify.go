package clause

import "strings"

// Category is the topic assigned to a clause.
type Category string

const (
	CategoryFinancial            Category = "Financial"
	CategoryLiability            Category = "Liability"
	CategoryTermination          Category = "Termination"
	CategoryConfidentiality      Category = "Confidentiality"
	CategoryIntellectualProperty Category = "Intellectual Property"
	CategoryGeneral              Category = "General"
)

type rule struct {
	category Category
	keywords []string
}

// rules are checked in priority order; the first hit wins.  "terminat" is a
// stem so that "terminated" and "terminate" count as well as "termination".
var rules = []rule{
	{CategoryFinancial, []string{"payment", "fee", "cost", "price"}},
	{CategoryLiability, []string{"liability", "damages", "breach"}},
	{CategoryTermination, []string{"terminat", "end", "expire"}},
	{CategoryConfidentiality, []string{"confidential", "proprietary", "secret"}},
	{CategoryIntellectualProperty, []string{"intellectual property", "copyright", "patent"}},
}

// Classify tags clause with the first category whose keywords occur in it
// (case-insensitive substring match), or CategoryGeneral.
func Classify(clause string) Category {
	lower := strings.ToLower(clause)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.category
			}
		}
	}
	return CategoryGeneral
}

// Categories lists every category in priority order, General last.
func Categories() []Category {
	out := make([]Category, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.category)
	}
	return append(out, CategoryGeneral)
}

// CountByCategory tallies candidates per category.
func CountByCategory(candidates []Candidate) map[Category]int {
	m := make(map[Category]int, len(rules)+1)
	for _, c := range candidates {
		m[c.Category]++
	}
	return m
}
