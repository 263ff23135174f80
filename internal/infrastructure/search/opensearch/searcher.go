package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

const (
	defaultPageSize   = 10
	maxPageSize       = 100
	maxClauseMatches  = 3
	highlightFragment = 150
)

// Query selects documents by free text and optional clause category.
type Query struct {
	Text     string
	Category string
	Page     int
	PageSize int
}

// Hit is one matching document.
type Hit struct {
	ID                string        `json:"id"`
	Filename          string        `json:"filename"`
	Status            string        `json:"status"`
	Score             float64       `json:"score"`
	ReadabilityBefore int           `json:"readability_before"`
	ReadabilityAfter  int           `json:"readability_after"`
	CreatedAt         time.Time     `json:"created_at"`
	Highlights        []string      `json:"highlights,omitempty"`
	MatchedClauses    []ClauseEntry `json:"matched_clauses,omitempty"`
}

// Result is a page of hits.
type Result struct {
	Total  int64 `json:"total"`
	TookMs int64 `json:"took_ms"`
	Hits   []Hit `json:"hits"`
}

// Searcher runs full-text queries over simplified text and clauses.
type Searcher struct {
	client *Client
	logger logging.Logger
}

// NewSearcher creates a Searcher.
func NewSearcher(client *Client, logger logging.Logger) *Searcher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Searcher{client: client, logger: logger}
}

// Search returns documents whose simplified text, filename or clauses match
// q.Text. A category restricts results to documents with a clause of that
// category.
func (s *Searcher) Search(ctx context.Context, q Query) (*Result, error) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" && q.Category == "" {
		return nil, errors.New(errors.ErrCodeValidation, "search text or category required")
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}

	body, err := json.Marshal(buildQueryDSL(q))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal query DSL")
	}

	index := s.client.IndexName(DocumentsIndex)
	start := time.Now()
	resp, err := opensearchapi.SearchRequest{
		Index: []string{index},
		Body:  bytes.NewReader(body),
	}.Do(ctx, s.client.client)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.New(errors.ErrCodeTimeout, "search request timed out")
		}
		return nil, errors.Wrap(err, errors.ErrCodeSearchError, "search request failed")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return nil, responseError(resp, "search failed")
	}

	result, err := parseSearchResponse(resp.Body)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Search executed",
		logging.String("index", index),
		logging.String("text", q.Text),
		logging.Duration("elapsed", time.Since(start)),
		logging.Int64("hits", result.Total))
	return result, nil
}

func buildQueryDSL(q Query) map[string]interface{} {
	boolQuery := map[string]interface{}{}
	if q.Text != "" {
		boolQuery["should"] = []interface{}{
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":  q.Text,
					"fields": []string{"simplified_text", "filename^2"},
				},
			},
			map[string]interface{}{
				"nested": map[string]interface{}{
					"path":       "clauses",
					"query":      map[string]interface{}{"match": map[string]interface{}{"clauses.text": q.Text}},
					"inner_hits": map[string]interface{}{"size": maxClauseMatches},
				},
			},
		}
		boolQuery["minimum_should_match"] = 1
	} else {
		boolQuery["must"] = map[string]interface{}{"match_all": map[string]interface{}{}}
	}
	if q.Category != "" {
		boolQuery["filter"] = []interface{}{
			map[string]interface{}{"term": map[string]interface{}{"clause_categories": q.Category}},
		}
	}

	return map[string]interface{}{
		"from":    (q.Page - 1) * q.PageSize,
		"size":    q.PageSize,
		"_source": []string{"id", "filename", "status", "readability_before", "readability_after", "created_at"},
		"query":   map[string]interface{}{"bool": boolQuery},
		"highlight": map[string]interface{}{
			"fields": map[string]interface{}{
				"simplified_text": map[string]interface{}{
					"fragment_size":       highlightFragment,
					"number_of_fragments": 3,
				},
			},
		},
		"sort": []interface{}{"_score", map[string]interface{}{"created_at": "desc"}},
	}
}

func parseSearchResponse(body io.Reader) (*Result, error) {
	var resp struct {
		Took int64 `json:"took"`
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID        string              `json:"_id"`
				Score     float64             `json:"_score"`
				Source    Hit                 `json:"_source"`
				Highlight map[string][]string `json:"highlight"`
				InnerHits map[string]struct {
					Hits struct {
						Hits []struct {
							Source ClauseEntry `json:"_source"`
						} `json:"hits"`
					} `json:"hits"`
				} `json:"inner_hits"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode search response")
	}

	result := &Result{Total: resp.Hits.Total.Value, TookMs: resp.Took, Hits: make([]Hit, 0, len(resp.Hits.Hits))}
	for _, h := range resp.Hits.Hits {
		hit := h.Source
		if hit.ID == "" {
			hit.ID = h.ID
		}
		hit.Score = h.Score
		hit.Highlights = h.Highlight["simplified_text"]
		for _, ih := range h.InnerHits["clauses"].Hits.Hits {
			hit.MatchedClauses = append(hit.MatchedClauses, ih.Source)
		}
		result.Hits = append(result.Hits, hit)
	}
	return result, nil
}
