package reporting

import (
	"context"
	"time"

	"github.com/turtacn/LegalEase-Intelligence/internal/domain/document"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

// Service defines the report application operations.
type Service interface {
	// Download renders the report of a stored document.
	Download(ctx context.Context, documentID string) (*Report, error)
	// Publish renders the report, stores it and returns a download link.
	Publish(ctx context.Context, documentID string) (*PublishedReport, error)
	// Stats returns the chart figures of a stored document.
	Stats(ctx context.Context, documentID string) (*ChartStats, error)
}

// Report is a rendered download report.
type Report struct {
	DocumentID  string `json:"document_id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"-"`
}

// PublishedReport is a report kept in object storage.
type PublishedReport struct {
	DocumentID string    `json:"document_id"`
	Filename   string    `json:"filename"`
	ObjectKey  string    `json:"object_key"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ObjectStorage stores rendered reports.
type ObjectStorage interface {
	PutReport(ctx context.Context, docID, reportName string, content []byte) (string, error)
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// serviceImpl implements the Service interface.
type serviceImpl struct {
	repo    document.Repository
	storage ObjectStorage
	expiry  time.Duration
	logger  logging.Logger
}

// NewService creates a new reporting service.  storage may be nil, in which
// case Publish is unavailable.
func NewService(repo document.Repository, storage ObjectStorage, linkExpiry time.Duration, logger logging.Logger) Service {
	if linkExpiry <= 0 {
		linkExpiry = time.Hour
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{repo: repo, storage: storage, expiry: linkExpiry, logger: logger}
}

func (s *serviceImpl) Download(ctx context.Context, documentID string) (*Report, error) {
	doc, err := s.load(ctx, documentID)
	if err != nil {
		return nil, err
	}
	content, err := DownloadReport(doc)
	if err != nil {
		return nil, err
	}
	return &Report{
		DocumentID:  doc.ID,
		Filename:    ReportFilename(doc),
		ContentType: ContentType,
		Content:     content,
	}, nil
}

func (s *serviceImpl) Publish(ctx context.Context, documentID string) (*PublishedReport, error) {
	if s.storage == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "object storage is not configured")
	}
	r, err := s.Download(ctx, documentID)
	if err != nil {
		return nil, err
	}
	key, err := s.storage.PutReport(ctx, r.DocumentID, r.Filename, r.Content)
	if err != nil {
		s.logger.Error("failed to store report", logging.String("document_id", r.DocumentID), logging.Err(err))
		return nil, err
	}
	url, err := s.storage.PresignedURL(ctx, key, s.expiry)
	if err != nil {
		return nil, err
	}

	s.logger.Info("report published",
		logging.String("document_id", r.DocumentID),
		logging.String("object_key", key))
	return &PublishedReport{
		DocumentID: r.DocumentID,
		Filename:   r.Filename,
		ObjectKey:  key,
		URL:        url,
		Size:       int64(len(r.Content)),
		ExpiresAt:  time.Now().Add(s.expiry).UTC(),
	}, nil
}

func (s *serviceImpl) Stats(ctx context.Context, documentID string) (*ChartStats, error) {
	doc, err := s.load(ctx, documentID)
	if err != nil {
		return nil, err
	}
	stats := NewChartStats(doc)
	return &stats, nil
}

func (s *serviceImpl) load(ctx context.Context, id string) (*document.Document, error) {
	if id == "" {
		return nil, errors.InvalidParam("document id is required")
	}
	return s.repo.FindByID(ctx, id)
}
