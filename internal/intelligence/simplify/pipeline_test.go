package simplify

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimplify_Empty(t *testing.T) {
	assert.Equal(t, "", Simplify(""))
}

func TestSimplify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "legal phrase",
			input: "Notwithstanding the terms of this lease, the tenant may stay.",
			want:  "despite the terms of this lease, the tenant may stay",
		},
		{
			name:  "complex word",
			input: "The party shall utilize the equipment.",
			want:  "The party shall use the equipment",
		},
		{
			name:  "passive shall be",
			input: "The goods shall be delivered to the buyer.",
			want:  "The goods will be delivered to the buyer",
		},
		{
			name:  "required to",
			input: "Employees are required to sign. The fee is required to be paid.",
			want:  "Employees must sign. The fee must be paid",
		},
		{
			name:  "passive then conditional then word",
			input: "In the event that the tenant fails to pay, it is agreed that the landlord may terminate the lease.",
			want:  "if the tenant fails to pay, the parties agree that the landlord may end the lease",
		},
		{
			name:  "provided that",
			input: "Payment is due provided that the work is done.",
			want:  "Payment is due if the work is done",
		},
		{
			name:  "case-insensitive word",
			input: "We shall COMMENCE work.",
			want:  "We shall start work",
		},
		{
			name:  "whole words only",
			input: "The priority list.",
			want:  "The priority list",
		},
		{
			name:  "no rules apply",
			input: "Cats sleep",
			want:  "Cats sleep",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Simplify(tt.input))
		})
	}
}

func TestSimplify_AccentedWords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"passive after accented subject", "The café shall be signed.", "The café will be signed"},
		{"passive with accented verb", "The naïve clause shall be réformed.", "The naïve clause will be réformed"},
		{"accented letter joins the word", "We réutilize it.", "We réutilize it"},
		{"accented neighbour is not an edge", "Utilizeé tools.", "Utilizeé tools"},
		{"accented word before a term", "Le café utilize it.", "Le café use it"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Simplify(tt.input))
		})
	}
}

func TestReplaceWholeWords(t *testing.T) {
	re := regexp.MustCompile(`(?i)aa`)
	assert.Equal(t, "x x", replaceWholeWords(re, "aa AA", "x"))
	assert.Equal(t, "aaa", replaceWholeWords(re, "aaa", "x"))
	assert.Equal(t, "baa x", replaceWholeWords(re, "baa aa", "x"))
	assert.Equal(t, "", replaceWholeWords(re, "", "x"))
}

func TestSimplify_NotwithstandingRemoved(t *testing.T) {
	out := Simplify("The fee applies notwithstanding the terms above.")
	assert.Contains(t, out, "despite the terms")
	assert.NotContains(t, strings.ToLower(out), "notwithstanding")
}

func TestSimplify_NoLeftoverUtilize(t *testing.T) {
	out := Simplify("The party shall utilize the equipment.")
	assert.Contains(t, out, "use the equipment")
	assert.NotContains(t, out, "utilize")
}

func TestReadability_SplitsLongSentences(t *testing.T) {
	a := strings.TrimSpace(strings.Repeat("word ", 20))
	b := strings.TrimSpace(strings.Repeat("text ", 20))
	c := strings.TrimSpace(strings.Repeat("more ", 20))

	out := Readability.Apply(a + " and " + b + " but " + c + ".")
	assert.Equal(t, a+". "+b+". "+c, out)
}

func TestReadability_ShortSentencesUnchanged(t *testing.T) {
	assert.Equal(t, "Rent and fees are due. Pay or leave", Readability.Apply("Rent and fees are due. Pay or leave."))
}

func TestReadability_ConjunctionsAreCaseSensitive(t *testing.T) {
	a := strings.TrimSpace(strings.Repeat("word ", 20))
	b := strings.TrimSpace(strings.Repeat("text ", 20))
	long := a + " However " + b
	assert.Equal(t, long, Readability.Apply(long))
}

func TestReadability_SqueezesPeriods(t *testing.T) {
	assert.Equal(t, "First. Second", Readability.Apply("First.. Second!"))
	assert.Equal(t, "", Readability.Apply("...!?"))
}

func TestSplitKeepingConjunctions(t *testing.T) {
	assert.Equal(t, []string{"a", "and", "b", "or", "c"}, splitKeepingConjunctions("a and b  or c"))
	assert.Equal(t, []string{"abc"}, splitKeepingConjunctions("abc"))
}

func TestPipeline_Trace(t *testing.T) {
	input := "Pursuant to the contract, the seller shall be obligated to commence delivery."
	p := New()
	steps := p.Trace(input)
	require.Len(t, steps, 4)
	assert.Equal(t, p.StageNames(), []string{steps[0].Stage, steps[1].Stage, steps[2].Stage, steps[3].Stage})
	assert.Equal(t, "according to the contract, the seller shall be obligated to commence delivery.", steps[0].Output)
	assert.Equal(t, "according to the contract, the seller will be obligated to commence delivery.", steps[1].Output)
	assert.Equal(t, "according to the contract, the seller will be obligated to start delivery.", steps[2].Output)
	assert.Equal(t, Simplify(input), steps[3].Output)

	assert.Nil(t, p.Trace(""))
}

func TestPipeline_CustomStages(t *testing.T) {
	p := New(WordSubstitution)
	assert.Equal(t, []string{"word_substitution"}, p.StageNames())
	assert.Equal(t, "use it.", p.Simplify("utilize it."))

	upper := NewStage("upper", strings.ToUpper)
	assert.Equal(t, "USE IT.", New(WordSubstitution, upper).Simplify("utilize it."))
}

func TestStage_ZeroValueIsIdentity(t *testing.T) {
	assert.Equal(t, "x", Stage{}.Apply("x"))
}
