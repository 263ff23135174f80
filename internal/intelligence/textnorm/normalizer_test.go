package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", " \t\n ", ""},
		{"collapses whitespace", "The  party\n\nshall\tpay.", "The party shall pay."},
		{"trims", "   hello world   ", "hello world"},
		{"keeps punctuation", "Fees (net), due: now; ok? yes! a-b.", "Fees (net), due: now; ok? yes! a-b."},
		{"strips symbols", "Price: $100 & 5% @ #1", "Price: 100 5 1"},
		{"strips quotes", "the “party” and the ‘agent’ said \"no\"", "the party and the agent said no"},
		{"keeps accented letters", "résumé café", "résumé café"},
		{"composes decomposed accents", "cafe\u0301", "caf\u00e9"},
		{"non-breaking space", "a\u00a0\u00a0b", "a b"},
		{"underscore and digits", "clause_12 section 3", "clause_12 section 3"},
		{"symbol between spaces", "A © B", "A B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"WHEREAS the Parties’ “agreement” — dated 1/2/2024 — is binding.",
		"  Multiple   spaces\tand\nnewlines  ",
		"café © ™ ®",
		"ᄀ ☃ ᅡ",
		"Mixed: [brackets] {braces} <angles> |pipes|",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestSplitSentences(t *testing.T) {
	assert.Nil(t, SplitSentences(""))
	assert.Equal(t,
		[]string{"First one", "Second", "Third"},
		SplitSentences("First one. Second!! Third?"))
	assert.Equal(t,
		[]string{"a", "b"},
		SplitSentences("...a...   ?! b..."))
	assert.Empty(t, SplitSentences(" . ! ? "))
}

func TestCountSentenceBreaks(t *testing.T) {
	assert.Equal(t, 0, CountSentenceBreaks(""))
	assert.Equal(t, 0, CountSentenceBreaks("no terminator"))
	assert.Equal(t, 3, CountSentenceBreaks("One. Two!? Three..."))
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 4, WordCount("  the party shall pay  "))
	assert.Equal(t, 2, WordCount("a \n b"))
}

func TestExtractKeywords(t *testing.T) {
	assert.Empty(t, ExtractKeywords(""))
	got := ExtractKeywords("WHEREAS the Parties enter this Agreement subject to Force Majeure.")
	assert.Equal(t, []string{"agreement", "parties", "whereas", "force majeure"}, got)
}
