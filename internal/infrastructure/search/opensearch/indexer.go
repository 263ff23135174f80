package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/LegalEase-Intelligence/internal/domain/document"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

// DocumentsIndex is the suffix of the index holding analyzed documents.
const DocumentsIndex = "documents"

// ClauseEntry is one detected clause with its category.
type ClauseEntry struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// SearchDocument is the indexed form of an analyzed document.
type SearchDocument struct {
	ID                string              `json:"id"`
	Filename          string              `json:"filename"`
	Status            string              `json:"status"`
	SimplifiedText    string              `json:"simplified_text"`
	Clauses           []ClauseEntry       `json:"clauses"`
	ClauseCategories  []string            `json:"clause_categories"`
	Terms             map[string][]string `json:"terms"`
	ReadabilityBefore int                 `json:"readability_before"`
	ReadabilityAfter  int                 `json:"readability_after"`
	CreatedAt         time.Time           `json:"created_at"`
}

// NewSearchDocument builds the indexed form of d. categories holds the
// category of each clause in d.Clauses, by position.
func NewSearchDocument(d *document.Document, categories []string) SearchDocument {
	sd := SearchDocument{
		ID:                d.ID,
		Filename:          d.Filename,
		Status:            string(d.Status),
		SimplifiedText:    d.SimplifiedText,
		Terms:             d.Terms,
		ReadabilityBefore: d.ReadabilityBefore,
		ReadabilityAfter:  d.ReadabilityAfter,
		CreatedAt:         d.CreatedAt,
	}
	seen := make(map[string]bool)
	for i, text := range d.Clauses {
		cat := ""
		if i < len(categories) {
			cat = categories[i]
		}
		sd.Clauses = append(sd.Clauses, ClauseEntry{Text: text, Category: cat})
		if cat != "" && !seen[cat] {
			seen[cat] = true
			sd.ClauseCategories = append(sd.ClauseCategories, cat)
		}
	}
	return sd
}

// BulkResult summarizes a bulk index request.
type BulkResult struct {
	Succeeded int
	Failed    int
	Errors    map[string]string
}

// Indexer writes analyzed documents to the search index.
type Indexer struct {
	client  *Client
	logger  logging.Logger
	refresh string
}

// NewIndexer creates an Indexer. refresh is passed to write requests
// ("true", "false" or "wait_for"); empty means "false".
func NewIndexer(client *Client, refresh string, logger logging.Logger) *Indexer {
	if refresh == "" {
		refresh = "false"
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Indexer{client: client, logger: logger, refresh: refresh}
}

func (i *Indexer) index() string { return i.client.IndexName(DocumentsIndex) }

// EnsureIndex creates the documents index when it does not exist.
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	resp, err := opensearchapi.IndicesExistsRequest{Index: []string{i.index()}}.Do(ctx, i.client.client)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSearchError, "failed to check index existence")
	}
	resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return errors.Newf(errors.ErrCodeSearchError, "index existence check returned status %d", resp.StatusCode)
	}

	body, err := json.Marshal(DocumentIndexMapping())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal index mapping")
	}
	resp, err = opensearchapi.IndicesCreateRequest{Index: i.index(), Body: bytes.NewReader(body)}.Do(ctx, i.client.client)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSearchError, "failed to create index")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return responseError(resp, "index creation failed")
	}
	i.logger.Info("Index created", logging.String("index", i.index()))
	return nil
}

// IndexDocument writes one document, replacing any previous version.
func (i *Indexer) IndexDocument(ctx context.Context, doc SearchDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal document")
	}
	resp, err := opensearchapi.IndexRequest{
		Index:      i.index(),
		DocumentID: doc.ID,
		Body:       bytes.NewReader(body),
		Refresh:    i.refresh,
	}.Do(ctx, i.client.client)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSearchError, "index request failed").WithDetail(doc.ID)
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return responseError(resp, "document index failed")
	}
	return nil
}

// DeleteDocument removes id from the index. A missing document is not an error.
func (i *Indexer) DeleteDocument(ctx context.Context, id string) error {
	resp, err := opensearchapi.DeleteRequest{Index: i.index(), DocumentID: id, Refresh: i.refresh}.Do(ctx, i.client.client)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSearchError, "delete request failed").WithDetail(id)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.IsError() {
		return responseError(resp, "document delete failed")
	}
	return nil
}

// BulkIndex writes docs in a single bulk request and reports per-item failures.
func (i *Indexer) BulkIndex(ctx context.Context, docs []SearchDocument) (*BulkResult, error) {
	result := &BulkResult{Errors: make(map[string]string)}
	if len(docs) == 0 {
		return result, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, d := range docs {
		meta := map[string]map[string]string{"index": {"_index": i.index(), "_id": d.ID}}
		if err := enc.Encode(meta); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode bulk action")
		}
		if err := enc.Encode(d); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode bulk document")
		}
	}

	resp, err := opensearchapi.BulkRequest{Body: &buf, Refresh: i.refresh}.Do(ctx, i.client.client)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSearchError, "bulk request failed")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return nil, responseError(resp, "bulk request failed")
	}

	var bulkResp struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
			Error  struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&bulkResp); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode bulk response")
	}

	for _, item := range bulkResp.Items {
		for _, info := range item {
			if info.Status >= 200 && info.Status < 300 {
				result.Succeeded++
			} else {
				result.Failed++
				result.Errors[info.ID] = info.Error.Type + ": " + info.Error.Reason
			}
		}
	}
	i.logger.Info("Bulk indexed",
		logging.Int("succeeded", result.Succeeded),
		logging.Int("failed", result.Failed))
	return result, nil
}

// DocumentIndexMapping returns the settings and mappings of the documents index.
func DocumentIndexMapping() map[string]interface{} {
	return map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 1,
			"analysis": map[string]interface{}{
				"analyzer": map[string]interface{}{
					"legal_text": map[string]interface{}{
						"type":      "custom",
						"tokenizer": "standard",
						"filter":    []string{"lowercase", "asciifolding", "english_stemmer"},
					},
				},
				"filter": map[string]interface{}{
					"english_stemmer": map[string]interface{}{"type": "stemmer", "language": "english"},
				},
			},
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id":              map[string]interface{}{"type": "keyword"},
				"filename":        map[string]interface{}{"type": "text", "fields": map[string]interface{}{"raw": map[string]interface{}{"type": "keyword"}}},
				"status":          map[string]interface{}{"type": "keyword"},
				"simplified_text": map[string]interface{}{"type": "text", "analyzer": "legal_text"},
				"clauses": map[string]interface{}{
					"type": "nested",
					"properties": map[string]interface{}{
						"text":     map[string]interface{}{"type": "text", "analyzer": "legal_text"},
						"category": map[string]interface{}{"type": "keyword"},
					},
				},
				"clause_categories":  map[string]interface{}{"type": "keyword"},
				"terms":              map[string]interface{}{"type": "object", "dynamic": true},
				"readability_before": map[string]interface{}{"type": "integer"},
				"readability_after":  map[string]interface{}{"type": "integer"},
				"created_at":         map[string]interface{}{"type": "date"},
			},
		},
	}
}
