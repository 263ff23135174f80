// Package document models uploaded legal documents, their analysis results
// and the plain-language glossary.
package document

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
	"github.com/turtacn/LegalEase-Intelligence/pkg/types/common"
)

// Status defines the processing state of a document.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further processing will happen.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// MaxFilenameLength bounds Document.Filename.
const MaxFilenameLength = 255

// Document is an uploaded legal document together with its analysis.  The
// four analysis fields that must survive persistence are OriginalText,
// SimplifiedText, Clauses and the readability scores.
type Document struct {
	ID                string              `json:"id" yaml:"id"`
	Filename          string              `json:"filename" yaml:"filename"`
	FileType          string              `json:"file_type" yaml:"file_type"`
	SizeBytes         int64               `json:"size_bytes" yaml:"size_bytes"`
	ObjectKey         string              `json:"object_key,omitempty" yaml:"object_key,omitempty"`
	ContentHash       string              `json:"content_hash,omitempty" yaml:"content_hash,omitempty"`
	OriginalText      string              `json:"original_text,omitempty" yaml:"original_text,omitempty"`
	SimplifiedText    string              `json:"simplified_text,omitempty" yaml:"simplified_text,omitempty"`
	Clauses           []string            `json:"clauses" yaml:"clauses"`
	Terms             map[string][]string `json:"terms,omitempty" yaml:"terms,omitempty"`
	ReadabilityBefore int                 `json:"readability_before" yaml:"readability_before"`
	ReadabilityAfter  int                 `json:"readability_after" yaml:"readability_after"`
	Status            Status              `json:"status" yaml:"status"`
	FailureReason     string              `json:"failure_reason,omitempty" yaml:"failure_reason,omitempty"`
	CreatedAt         time.Time           `json:"created_at" yaml:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at" yaml:"updated_at"`
}

// Result carries the analysis output recorded on a document.
type Result struct {
	OriginalText      string
	SimplifiedText    string
	Clauses           []string
	Terms             map[string][]string
	ReadabilityBefore int
	ReadabilityAfter  int
}

// NewDocument creates a pending document for an uploaded file.
func NewDocument(filename string, size int64) (*Document, error) {
	filename = strings.TrimSpace(filepath.Base(filename))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		return nil, errors.New(errors.ErrCodeDocumentInvalid, "filename cannot be empty")
	}
	if len(filename) > MaxFilenameLength {
		return nil, errors.New(errors.ErrCodeDocumentInvalid, "filename is too long")
	}
	if size < 0 {
		return nil, errors.New(errors.ErrCodeDocumentInvalid, "size cannot be negative")
	}

	now := time.Time(common.NewTimestamp())
	return &Document{
		ID:        string(common.NewID()),
		Filename:  filename,
		FileType:  strings.ToLower(filepath.Ext(filename)),
		SizeBytes: size,
		Clauses:   []string{},
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Validate validates the document entity.
func (d *Document) Validate() error {
	if d.ID == "" {
		return errors.New(errors.ErrCodeDocumentInvalid, "ID cannot be empty")
	}
	if d.Filename == "" {
		return errors.New(errors.ErrCodeDocumentInvalid, "filename cannot be empty")
	}
	if len(d.Filename) > MaxFilenameLength {
		return errors.New(errors.ErrCodeDocumentInvalid, "filename is too long")
	}
	if !d.Status.IsValid() {
		return errors.New(errors.ErrCodeDocumentInvalid, "invalid status: "+string(d.Status))
	}
	if !validScore(d.ReadabilityBefore) || !validScore(d.ReadabilityAfter) {
		return errors.New(errors.ErrCodeDocumentInvalid, "readability score out of range")
	}
	return nil
}

func validScore(s int) bool {
	switch s {
	case 0, 30, 50, 70, 90:
		return true
	}
	return false
}

// MarkProcessing moves a pending document to processing.
func (d *Document) MarkProcessing() error {
	if d.Status != StatusPending && d.Status != StatusFailed {
		return errors.New(errors.ErrCodeConflict, "can only process a pending or failed document")
	}
	d.Status = StatusProcessing
	d.FailureReason = ""
	d.touch()
	return nil
}

// Complete records the analysis result.  Completing an already completed
// document is rejected.
func (d *Document) Complete(r Result) error {
	if d.Status == StatusCompleted {
		return errors.New(errors.ErrCodeConflict, "document already completed")
	}
	d.OriginalText = r.OriginalText
	d.SimplifiedText = r.SimplifiedText
	d.Clauses = append([]string{}, r.Clauses...)
	d.Terms = r.Terms
	d.ReadabilityBefore = r.ReadabilityBefore
	d.ReadabilityAfter = r.ReadabilityAfter
	d.Status = StatusCompleted
	d.FailureReason = ""
	d.touch()
	return nil
}

// Fail records a processing failure.
func (d *Document) Fail(reason string) {
	d.Status = StatusFailed
	d.FailureReason = reason
	d.touch()
}

// Stem returns the filename without its extension.
func (d *Document) Stem() string {
	return strings.TrimSuffix(d.Filename, filepath.Ext(d.Filename))
}

func (d *Document) touch() {
	d.UpdatedAt = time.Time(common.NewTimestamp())
}

// Summary is the list view of a document.
type Summary struct {
	ID                string    `json:"id" yaml:"id"`
	Filename          string    `json:"filename" yaml:"filename"`
	Status            Status    `json:"status" yaml:"status"`
	ClauseCount       int       `json:"clause_count" yaml:"clause_count"`
	ReadabilityBefore int       `json:"readability_before" yaml:"readability_before"`
	ReadabilityAfter  int       `json:"readability_after" yaml:"readability_after"`
	CreatedAt         time.Time `json:"created_at" yaml:"created_at"`
}

// Summarize builds the list view of d.
func (d *Document) Summarize() Summary {
	return Summary{
		ID:                d.ID,
		Filename:          d.Filename,
		Status:            d.Status,
		ClauseCount:       len(d.Clauses),
		ReadabilityBefore: d.ReadabilityBefore,
		ReadabilityAfter:  d.ReadabilityAfter,
		CreatedAt:         d.CreatedAt,
	}
}
