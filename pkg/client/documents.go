package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

// DocumentsClient uploads documents and reads their results.
type DocumentsClient struct {
	client *Client
}

// Document is an uploaded document and its analysis.
type Document struct {
	ID                string              `json:"id"`
	Filename          string              `json:"filename"`
	FileType          string              `json:"file_type"`
	SizeBytes         int64               `json:"size_bytes"`
	ContentHash       string              `json:"content_hash,omitempty"`
	OriginalText      string              `json:"original_text,omitempty"`
	SimplifiedText    string              `json:"simplified_text,omitempty"`
	Clauses           []string            `json:"clauses"`
	Terms             map[string][]string `json:"terms,omitempty"`
	ReadabilityBefore int                 `json:"readability_before"`
	ReadabilityAfter  int                 `json:"readability_after"`
	Status            string              `json:"status"`
	FailureReason     string              `json:"failure_reason,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// IsDone reports whether processing has finished, successfully or not.
func (d *Document) IsDone() bool {
	return d.Status == "completed" || d.Status == "failed"
}

// DocumentSummary is the list view of a document.
type DocumentSummary struct {
	ID                string    `json:"id"`
	Filename          string    `json:"filename"`
	Status            string    `json:"status"`
	ClauseCount       int       `json:"clause_count"`
	ReadabilityBefore int       `json:"readability_before"`
	ReadabilityAfter  int       `json:"readability_after"`
	CreatedAt         time.Time `json:"created_at"`
}

// DocumentList is one page of documents.
type DocumentList struct {
	Documents []DocumentSummary `json:"documents"`
	Total     int64             `json:"total"`
	Page      int               `json:"page"`
	PageSize  int               `json:"page_size"`
}

// HasMore reports whether later pages exist.
func (l *DocumentList) HasMore() bool {
	return int64(l.Page*l.PageSize) < l.Total
}

// ListOptions filters List.  Zero values use the server defaults.
type ListOptions struct {
	Page     int
	PageSize int
	Status   string
	Filename string
}

// UploadOptions tunes Upload.
type UploadOptions struct {
	// Async queues the document and returns it in the pending state.
	Async bool
}

// Report is a downloaded plain-text report.
type Report struct {
	Filename    string
	ContentType string
	Content     []byte
}

// PublishedReport is a report stored server side with a download link.
type PublishedReport struct {
	DocumentID string    `json:"document_id"`
	Filename   string    `json:"filename"`
	ObjectKey  string    `json:"object_key"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ChartStats are the figures behind the report charts.
type ChartStats struct {
	DocumentID        string         `json:"document_id"`
	OriginalWords     int            `json:"original_words"`
	SimplifiedWords   int            `json:"simplified_words"`
	Clauses           int            `json:"clauses"`
	ComplexClauses    int            `json:"complex_clauses"`
	ReadabilityBefore int            `json:"readability_before"`
	ReadabilityAfter  int            `json:"readability_after"`
	LabelBefore       string         `json:"label_before"`
	LabelAfter        string         `json:"label_after"`
	ClauseCategories  map[string]int `json:"clause_categories"`
}

// Upload sends a PDF or DOCX file for analysis.
func (d *DocumentsClient) Upload(ctx context.Context, filename string, r io.Reader, opts *UploadOptions) (*Document, error) {
	if filename == "" {
		return nil, errors.InvalidParam("filename is required")
	}
	if r == nil {
		return nil, errors.InvalidParam("file content is required")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	path := "/api/v1/documents"
	if opts != nil && opts.Async {
		path += "?async=true"
	}
	resp, err := d.client.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        buf.Bytes(),
		contentType: mw.FormDataContentType(),
	})
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := decodeData(resp.body, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Get returns one document.
func (d *DocumentsClient) Get(ctx context.Context, id string) (*Document, error) {
	if id == "" {
		return nil, errors.InvalidParam("document id is required")
	}
	var doc Document
	if err := d.client.get(ctx, documentPath(id), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// WaitForCompletion polls an asynchronously uploaded document until it is
// done or ctx ends.
func (d *DocumentsClient) WaitForCompletion(ctx context.Context, id string, interval time.Duration) (*Document, error) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		doc, err := d.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if doc.IsDone() {
			return doc, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// List returns a page of documents, newest first.
func (d *DocumentsClient) List(ctx context.Context, opts *ListOptions) (*DocumentList, error) {
	q := url.Values{}
	if opts != nil {
		if opts.Page > 0 {
			q.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.PageSize > 0 {
			q.Set("page_size", strconv.Itoa(opts.PageSize))
		}
		if opts.Status != "" {
			q.Set("status", opts.Status)
		}
		if opts.Filename != "" {
			q.Set("filename", opts.Filename)
		}
	}
	path := "/api/v1/documents"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out DocumentList
	if err := d.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a document.
func (d *DocumentsClient) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.InvalidParam("document id is required")
	}
	return d.client.delete(ctx, documentPath(id))
}

// DownloadReport returns the plain-text report of a completed document.
func (d *DocumentsClient) DownloadReport(ctx context.Context, id string) (*Report, error) {
	if id == "" {
		return nil, errors.InvalidParam("document id is required")
	}
	resp, err := d.client.do(ctx, request{
		method: http.MethodGet,
		path:   documentPath(id) + "/report",
		accept: "text/plain",
	})
	if err != nil {
		return nil, err
	}
	report := &Report{ContentType: resp.header.Get("Content-Type"), Content: resp.body}
	if _, params, err := mime.ParseMediaType(resp.header.Get("Content-Disposition")); err == nil {
		report.Filename = params["filename"]
	}
	return report, nil
}

// PublishReport stores the report server side and returns a download link.
func (d *DocumentsClient) PublishReport(ctx context.Context, id string) (*PublishedReport, error) {
	if id == "" {
		return nil, errors.InvalidParam("document id is required")
	}
	var out PublishedReport
	if err := d.client.post(ctx, documentPath(id)+"/report", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats returns the chart figures of a document.
func (d *DocumentsClient) Stats(ctx context.Context, id string) (*ChartStats, error) {
	if id == "" {
		return nil, errors.InvalidParam("document id is required")
	}
	var out ChartStats
	if err := d.client.get(ctx, documentPath(id)+"/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func documentPath(id string) string {
	return "/api/v1/documents/" + url.PathEscape(id)
}

// UploadDocument is shorthand for Documents().Upload.
func (c *Client) UploadDocument(ctx context.Context, filename string, r io.Reader, opts *UploadOptions) (*Document, error) {
	return c.Documents().Upload(ctx, filename, r, opts)
}

// GetDocument is shorthand for Documents().Get.
func (c *Client) GetDocument(ctx context.Context, id string) (*Document, error) {
	return c.Documents().Get(ctx, id)
}

// ListDocuments is shorthand for Documents().List.
func (c *Client) ListDocuments(ctx context.Context, opts *ListOptions) (*DocumentList, error) {
	return c.Documents().List(ctx, opts)
}

// DownloadReport is shorthand for Documents().DownloadReport.
func (c *Client) DownloadReport(ctx context.Context, id string) (*Report, error) {
	return c.Documents().DownloadReport(ctx, id)
}
