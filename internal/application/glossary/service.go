// Package glossary serves plain-language definitions of legal terms.  The
// built-in entries combine the seed glossary with the dictionary definitions;
// a repository, when configured, adds user entries and overrides.
package glossary

import (
	"context"
	"sort"

	"github.com/turtacn/LegalEase-Intelligence/internal/domain/document"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/lexicon"
	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

// seedEntries is the glossary shipped with the application.
var seedEntries = []document.GlossaryEntry{
	{Term: "Liability", Definition: "Legal responsibility for damages or losses", Source: document.GlossarySourceSeed},
	{Term: "Indemnify", Definition: "To protect someone from legal responsibility for damages", Source: document.GlossarySourceSeed},
	{Term: "Breach", Definition: "Breaking or violating the terms of an agreement", Source: document.GlossarySourceSeed},
	{Term: "Jurisdiction", Definition: "The authority of a court to hear and decide a case", Source: document.GlossarySourceSeed},
	{Term: "Force Majeure", Definition: "Unforeseeable circumstances that prevent a party from fulfilling a contract", Source: document.GlossarySourceSeed},
}

// Builtin returns the seed glossary merged with the dictionary definitions.
// A seed entry wins over a dictionary entry for the same term.
func Builtin() []*document.GlossaryEntry {
	byKey := make(map[string]*document.GlossaryEntry)
	for _, d := range lexicon.Definitions() {
		e := &document.GlossaryEntry{Term: d.From, Definition: d.To, Source: document.GlossarySourceDictionary}
		byKey[e.Key()] = e
	}
	for i := range seedEntries {
		e := seedEntries[i]
		byKey[e.Key()] = &e
	}
	return sorted(byKey)
}

// Service defines the glossary operations.
type Service interface {
	List(ctx context.Context) ([]*document.GlossaryEntry, error)
	Lookup(ctx context.Context, term string) (*document.GlossaryEntry, error)
	Define(ctx context.Context, term, definition string) (*document.GlossaryEntry, error)
	Seed(ctx context.Context) (int, error)
}

type serviceImpl struct {
	repo   document.GlossaryRepository
	logger logging.Logger
}

// NewService creates a glossary service.  repo may be nil, in which case
// only the built-in entries are served and Define is unavailable.
func NewService(repo document.GlossaryRepository, logger logging.Logger) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{repo: repo, logger: logger}
}

// List returns every entry sorted by term.  Stored entries override built-in
// ones with the same term.
func (s *serviceImpl) List(ctx context.Context) ([]*document.GlossaryEntry, error) {
	byKey := make(map[string]*document.GlossaryEntry)
	for _, e := range Builtin() {
		byKey[e.Key()] = e
	}
	if s.repo != nil {
		stored, err := s.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range stored {
			byKey[e.Key()] = e
		}
	}
	return sorted(byKey), nil
}

// Lookup finds a term case-insensitively.
func (s *serviceImpl) Lookup(ctx context.Context, term string) (*document.GlossaryEntry, error) {
	key := document.GlossaryKey(term)
	if key == "" {
		return nil, errors.InvalidParam("term is required")
	}
	if s.repo != nil {
		e, err := s.repo.FindByTerm(ctx, term)
		if err == nil {
			return e, nil
		}
		if !errors.IsNotFound(err) {
			return nil, err
		}
	}
	for _, e := range Builtin() {
		if e.Key() == key {
			return e, nil
		}
	}
	return nil, errors.New(errors.ErrCodeGlossaryTermNotFound, "glossary term not found").WithDetail(term)
}

// Define stores a user definition for term.
func (s *serviceImpl) Define(ctx context.Context, term, definition string) (*document.GlossaryEntry, error) {
	if s.repo == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "glossary storage is not configured")
	}
	e, err := document.NewGlossaryEntry(term, definition, document.GlossarySourceUser)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, e); err != nil {
		return nil, err
	}
	s.logger.Info("glossary term defined", logging.String("term", e.Term))
	return e, nil
}

// Seed writes the built-in entries that the repository does not hold yet
// and returns how many were written.  User entries are never overwritten.
func (s *serviceImpl) Seed(ctx context.Context) (int, error) {
	if s.repo == nil {
		return 0, nil
	}
	stored, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	have := make(map[string]struct{}, len(stored))
	for _, e := range stored {
		have[e.Key()] = struct{}{}
	}

	n := 0
	for _, e := range Builtin() {
		if _, ok := have[e.Key()]; ok {
			continue
		}
		if err := s.repo.Upsert(ctx, e); err != nil {
			return n, err
		}
		n++
	}
	if n > 0 {
		s.logger.Info("glossary seeded", logging.Int("entries", n))
	}
	return n, nil
}

func sorted(byKey map[string]*document.GlossaryEntry) []*document.GlossaryEntry {
	out := make([]*document.GlossaryEntry, 0, len(byKey))
	for _, e := range byKey {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}
