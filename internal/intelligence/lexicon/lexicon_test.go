package lexicon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategories_DeclarationOrder(t *testing.T) {
	assert.Equal(t, []Category{CategoryLatin, CategoryContract, CategoryPhrase}, Categories())
}

func TestCategories_ReturnsCopy(t *testing.T) {
	c := Categories()
	c[0] = "mutated"
	assert.Equal(t, CategoryLatin, Categories()[0])
}

func TestTerms(t *testing.T) {
	latin := Terms(CategoryLatin)
	require.Len(t, latin, 8)
	assert.Equal(t, "ad hoc", latin[0])
	assert.Contains(t, latin, "bona fide")

	assert.Len(t, Terms(CategoryContract), 10)
	assert.Contains(t, Terms(CategoryPhrase), "pursuant to")
	assert.Nil(t, Terms("Unknown"))
}

func TestTerms_AllLowercase(t *testing.T) {
	for _, e := range Entries() {
		assert.Equal(t, strings.ToLower(e.Surface), e.Surface)
	}
}

func TestLookup(t *testing.T) {
	e, ok := Lookup("  Pursuant To ")
	require.True(t, ok)
	assert.Equal(t, CategoryPhrase, e.Category)
	assert.Equal(t, "according to", e.Substitute)

	e, ok = Lookup("covenant")
	require.True(t, ok)
	assert.Equal(t, CategoryContract, e.Category)
	assert.Empty(t, e.Substitute)

	_, ok = Lookup("widget")
	assert.False(t, ok)
}

func TestLegalPhraseSubstitutions(t *testing.T) {
	subs := LegalPhraseSubstitutions()
	require.Len(t, subs, 9)
	assert.Equal(t, Substitution{"notwithstanding", "despite"}, subs[0])
	assert.Equal(t, Substitution{"sine qua non", "essential requirement"}, subs[8])
}

func TestWordSubstitutions(t *testing.T) {
	subs := WordSubstitutions()
	require.Len(t, subs, 26)
	assert.Equal(t, Substitution{"utilize", "use"}, subs[0])
	assert.Equal(t, Substitution{"remuneration", "payment"}, subs[25])

	// Replacement text never reintroduces a key of the same table ahead of
	// its own position, so one ordered pass is stable.
	keys := map[string]int{}
	for i, s := range subs {
		keys[s.From] = i
	}
	for i, s := range subs {
		if j, ok := keys[s.To]; ok {
			assert.Less(t, j, i, "%q rewrites into a later key", s.From)
		}
	}
}

func TestDefinitions(t *testing.T) {
	assert.Len(t, Definitions(), 8)

	d, ok := Definition("Force Majeure")
	require.True(t, ok)
	assert.Equal(t, "Unforeseeable circumstances preventing contract fulfillment", d)

	_, ok = Definition("estoppel")
	assert.False(t, ok)
}

func TestKeywords(t *testing.T) {
	kw := Keywords()
	assert.Len(t, kw, 20)
	assert.Equal(t, "agreement", kw[0])
	assert.Equal(t, "proprietary", kw[19])
}
