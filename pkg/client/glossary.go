package client

import (
	"context"
	"net/url"
	"strings"

	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

// GlossaryClient reads and extends the legal glossary.
type GlossaryClient struct {
	client *Client
}

// GlossaryEntry is one glossary definition.
type GlossaryEntry struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Source     string `json:"source"`
}

// List returns every glossary entry sorted by term.
func (g *GlossaryClient) List(ctx context.Context) ([]GlossaryEntry, error) {
	var out []GlossaryEntry
	if err := g.client.get(ctx, "/api/v1/glossary", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Lookup returns the definition of term, matched case-insensitively.
func (g *GlossaryClient) Lookup(ctx context.Context, term string) (*GlossaryEntry, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, errors.InvalidParam("term is required")
	}
	var out GlossaryEntry
	if err := g.client.get(ctx, "/api/v1/glossary/"+url.PathEscape(term), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Define adds or replaces a definition.  Servers running in release mode
// do not expose this route.
func (g *GlossaryClient) Define(ctx context.Context, term, definition string) (*GlossaryEntry, error) {
	if strings.TrimSpace(term) == "" || strings.TrimSpace(definition) == "" {
		return nil, errors.InvalidParam("term and definition are required")
	}
	var out GlossaryEntry
	body := map[string]string{"term": term, "definition": definition}
	if err := g.client.post(ctx, "/api/v1/glossary", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
