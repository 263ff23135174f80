package glossary

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LegalEase-Intelligence/internal/domain/document"
	"github.com/turtacn/LegalEase-Intelligence/internal/testutil"
	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

var errTermNotFound = errors.New(errors.ErrCodeGlossaryTermNotFound, "glossary term not found")

func TestBuiltin(t *testing.T) {
	entries := Builtin()
	// 5 seed terms plus 8 dictionary definitions, "force majeure" shared.
	require.Len(t, entries, 12)

	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Key(), entries[i].Key())
	}

	var fm *document.GlossaryEntry
	for _, e := range entries {
		if e.Key() == "force majeure" {
			fm = e
		}
	}
	require.NotNil(t, fm)
	assert.Equal(t, document.GlossarySourceSeed, fm.Source)
	assert.Equal(t, "Unforeseeable circumstances that prevent a party from fulfilling a contract", fm.Definition)
}

func TestLookup_Builtin(t *testing.T) {
	svc := NewService(nil, nil)

	e, err := svc.Lookup(context.Background(), "  BREACH ")
	require.NoError(t, err)
	assert.Equal(t, "Breaking or violating the terms of an agreement", e.Definition)

	e, err = svc.Lookup(context.Background(), "ultra vires")
	require.NoError(t, err)
	assert.Equal(t, document.GlossarySourceDictionary, e.Source)

	_, err = svc.Lookup(context.Background(), "estoppel")
	assert.True(t, errors.IsNotFound(err))

	_, err = svc.Lookup(context.Background(), " ")
	assert.True(t, errors.IsValidation(err))
}

func TestLookup_RepositoryFirst(t *testing.T) {
	repo := new(testutil.MockGlossaryRepository)
	custom := &document.GlossaryEntry{Term: "Breach", Definition: "Custom", Source: document.GlossarySourceUser}
	repo.On("FindByTerm", mock.Anything, "breach").Return(custom, nil)
	repo.On("FindByTerm", mock.Anything, "liability").Return(nil, errTermNotFound)
	svc := NewService(repo, nil)

	e, err := svc.Lookup(context.Background(), "breach")
	require.NoError(t, err)
	assert.Same(t, custom, e)

	e, err = svc.Lookup(context.Background(), "liability")
	require.NoError(t, err)
	assert.Equal(t, document.GlossarySourceSeed, e.Source)
}

func TestList_StoredOverridesBuiltin(t *testing.T) {
	repo := new(testutil.MockGlossaryRepository)
	repo.On("List", mock.Anything).Return([]*document.GlossaryEntry{
		{Term: "liability", Definition: "Override", Source: document.GlossarySourceUser},
		{Term: "Estoppel", Definition: "A bar to asserting a claim", Source: document.GlossarySourceUser},
	}, nil)
	svc := NewService(repo, nil)

	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 13)
	for _, e := range entries {
		if e.Key() == "liability" {
			assert.Equal(t, "Override", e.Definition)
		}
	}
}

func TestDefine(t *testing.T) {
	repo := new(testutil.MockGlossaryRepository)
	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(e *document.GlossaryEntry) bool {
		return e.Term == "Estoppel" && e.Source == document.GlossarySourceUser
	})).Return(nil)
	svc := NewService(repo, nil)

	e, err := svc.Define(context.Background(), " Estoppel ", "A bar to asserting a claim")
	require.NoError(t, err)
	assert.Equal(t, "Estoppel", e.Term)

	_, err = svc.Define(context.Background(), "Estoppel", "")
	assert.True(t, errors.IsValidation(err))

	_, err = NewService(nil, nil).Define(context.Background(), "a", "b")
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}

func TestSeed_SkipsExisting(t *testing.T) {
	repo := new(testutil.MockGlossaryRepository)
	repo.On("List", mock.Anything).Return([]*document.GlossaryEntry{
		{Term: "Liability", Definition: "Mine", Source: document.GlossarySourceUser},
	}, nil)
	repo.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	svc := NewService(repo, nil)

	n, err := svc.Seed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.MatchedBy(func(e *document.GlossaryEntry) bool {
		return e.Key() == "liability"
	}))
}
