package document

import (
	"context"
	"strings"

	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

// GlossarySource tells where a glossary definition came from.
type GlossarySource string

const (
	GlossarySourceSeed       GlossarySource = "seed"
	GlossarySourceDictionary GlossarySource = "dictionary"
	GlossarySourceUser       GlossarySource = "user"
)

// GlossaryEntry is a plain-language definition of a legal term.
type GlossaryEntry struct {
	Term       string         `json:"term" yaml:"term"`
	Definition string         `json:"definition" yaml:"definition"`
	Source     GlossarySource `json:"source" yaml:"source"`
}

// NewGlossaryEntry validates and builds an entry.
func NewGlossaryEntry(term, definition string, source GlossarySource) (*GlossaryEntry, error) {
	term = strings.TrimSpace(term)
	definition = strings.TrimSpace(definition)
	if term == "" {
		return nil, errors.New(errors.ErrCodeValidation, "glossary term cannot be empty")
	}
	if definition == "" {
		return nil, errors.New(errors.ErrCodeValidation, "glossary definition cannot be empty")
	}
	return &GlossaryEntry{Term: term, Definition: definition, Source: source}, nil
}

// Key is the case-insensitive lookup key of the entry.
func (g *GlossaryEntry) Key() string {
	return GlossaryKey(g.Term)
}

// GlossaryKey normalizes a term for lookup.
func GlossaryKey(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// GlossaryRepository persists glossary entries.
type GlossaryRepository interface {
	List(ctx context.Context) ([]*GlossaryEntry, error)
	FindByTerm(ctx context.Context, term string) (*GlossaryEntry, error)
	Upsert(ctx context.Context, entry *GlossaryEntry) error
}
