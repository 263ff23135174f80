// Package lexicon holds the static legal vocabulary shared by the analysis
// pipeline: the categorized term dictionary used for recognition, the
// legal-phrase and complex-word substitution tables used for simplification,
// plain-language definitions and the keyword list used for extraction.
//
// Every table is built once at package initialisation and never mutated, so
// all accessors are safe for concurrent use without locking.  Accessors hand
// out copies; callers cannot alter the shared tables.
package lexicon

import "strings"

// Category names a group of related legal terms.
type Category string

const (
	CategoryLatin    Category = "Latin Terms"
	CategoryContract Category = "Contract Terms"
	CategoryPhrase   Category = "Legal Phrases"
)

// Entry is one term of the dictionary.  Substitute is empty when the term has
// no plain-language replacement in the simplification tables.
type Entry struct {
	Surface    string   `json:"surface" yaml:"surface"`
	Category   Category `json:"category" yaml:"category"`
	Substitute string   `json:"substitute,omitempty" yaml:"substitute,omitempty"`
}

// Substitution is an ordered (from, to) rewrite pair.
type Substitution struct {
	From string
	To   string
}

// ─────────────────────────────────────────────────────────────────────────────
// Tables
// ─────────────────────────────────────────────────────────────────────────────

// categoryOrder fixes the iteration order of the term dictionary.  Recognition
// output follows this order, not the order of appearance in the text.
var categoryOrder = []Category{CategoryLatin, CategoryContract, CategoryPhrase}

var termsByCategory = map[Category][]string{
	CategoryLatin: {
		"ad hoc", "bona fide", "de facto", "prima facie", "quid pro quo",
		"res ipsa loquitur", "sine qua non", "ultra vires",
	},
	CategoryContract: {
		"consideration", "covenant", "indemnification", "liquidated damages",
		"specific performance", "breach of contract", "force majeure",
		"boilerplate", "severability", "entire agreement",
	},
	CategoryPhrase: {
		"notwithstanding", "heretofore", "hereinafter", "aforementioned",
		"pursuant to", "in lieu of", "subject to", "provided that",
		"to the extent", "mutatis mutandis",
	},
}

// legalPhraseSubstitutions drives the first simplification stage.
var legalPhraseSubstitutions = []Substitution{
	{"notwithstanding", "despite"},
	{"heretofore", "before this"},
	{"hereinafter", "from now on"},
	{"aforementioned", "mentioned above"},
	{"pursuant to", "according to"},
	{"in lieu of", "instead of"},
	{"mutatis mutandis", "with necessary changes"},
	{"prima facie", "at first sight"},
	{"sine qua non", "essential requirement"},
}

// wordSubstitutions drives the third simplification stage.  Order matters:
// each entry is applied to the output of the previous one.
var wordSubstitutions = []Substitution{
	{"utilize", "use"},
	{"commence", "start"},
	{"terminate", "end"},
	{"subsequent", "later"},
	{"prior", "before"},
	{"obtain", "get"},
	{"provide", "give"},
	{"maintain", "keep"},
	{"establish", "set up"},
	{"determine", "decide"},
	{"sufficient", "enough"},
	{"additional", "extra"},
	{"approximately", "about"},
	{"demonstrate", "show"},
	{"indicate", "show"},
	{"substantial", "large"},
	{"component", "part"},
	{"constitute", "make up"},
	{"endeavor", "try"},
	{"facilitate", "help"},
	{"implement", "carry out"},
	{"modification", "change"},
	{"notification", "notice"},
	{"obligation", "duty"},
	{"occurrence", "event"},
	{"remuneration", "payment"},
}

var definitions = []Substitution{
	{"consideration", "Something of value exchanged between parties in a contract"},
	{"indemnification", "Protection against financial loss or legal liability"},
	{"force majeure", "Unforeseeable circumstances preventing contract fulfillment"},
	{"liquidated damages", "Pre-agreed compensation for breach of contract"},
	{"severability", "If one part of contract is invalid, rest remains enforceable"},
	{"bona fide", "In good faith, genuine"},
	{"quid pro quo", "Something for something, mutual exchange"},
	{"ultra vires", "Beyond legal power or authority"},
}

var keywords = []string{
	"agreement", "contract", "party", "parties", "shall", "hereby",
	"whereas", "therefore", "obligation", "liability", "breach",
	"termination", "clause", "provision", "indemnify", "warranty",
	"damages", "force majeure", "confidential", "proprietary",
}

// substituteIndex maps a lowercased surface form to its plain substitute.
var substituteIndex = func() map[string]string {
	idx := make(map[string]string, len(legalPhraseSubstitutions))
	for _, s := range legalPhraseSubstitutions {
		idx[s.From] = s.To
	}
	return idx
}()

// ─────────────────────────────────────────────────────────────────────────────
// Accessors
// ─────────────────────────────────────────────────────────────────────────────

// Categories returns the dictionary categories in declaration order.
func Categories() []Category {
	return append([]Category(nil), categoryOrder...)
}

// Terms returns the surface forms of category in declaration order, or nil
// for an unknown category.
func Terms(category Category) []string {
	terms, ok := termsByCategory[category]
	if !ok {
		return nil
	}
	return append([]string(nil), terms...)
}

// Entries returns the full dictionary flattened in category then term order.
func Entries() []Entry {
	var out []Entry
	for _, c := range categoryOrder {
		for _, t := range termsByCategory[c] {
			out = append(out, Entry{Surface: t, Category: c, Substitute: substituteIndex[t]})
		}
	}
	return out
}

// Lookup finds the dictionary entry for surface (case-insensitive).
func Lookup(surface string) (Entry, bool) {
	key := strings.ToLower(strings.TrimSpace(surface))
	for _, c := range categoryOrder {
		for _, t := range termsByCategory[c] {
			if t == key {
				return Entry{Surface: t, Category: c, Substitute: substituteIndex[t]}, true
			}
		}
	}
	return Entry{}, false
}

// LegalPhraseSubstitutions returns the ordered legal phrase rewrite table.
func LegalPhraseSubstitutions() []Substitution {
	return append([]Substitution(nil), legalPhraseSubstitutions...)
}

// WordSubstitutions returns the ordered complex-word rewrite table.
func WordSubstitutions() []Substitution {
	return append([]Substitution(nil), wordSubstitutions...)
}

// Definitions returns plain-language definitions as ordered (term, meaning)
// pairs.
func Definitions() []Substitution {
	return append([]Substitution(nil), definitions...)
}

// Definition returns the definition of term (case-insensitive).
func Definition(term string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(term))
	for _, d := range definitions {
		if d.From == key {
			return d.To, true
		}
	}
	return "", false
}

// Keywords returns the legal keyword list used for keyword extraction.
func Keywords() []string {
	return append([]string(nil), keywords...)
}
