package minio

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

const (
	originalsPrefix = "originals/"
	reportsPrefix   = "reports/"

	contentTypePDF  = "application/pdf"
	contentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	contentTypeText = "text/plain; charset=utf-8"
)

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
	Metadata     map[string]string
}

// ObjectStore keeps uploaded originals and generated reports for documents.
type ObjectStore struct {
	client *Client
	logger logging.Logger
}

// NewObjectStore builds an ObjectStore on top of client.
func NewObjectStore(client *Client, log logging.Logger) *ObjectStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ObjectStore{client: client, logger: log}
}

// OriginalKey is the object key for an uploaded source file.
func OriginalKey(docID, filename string) string {
	return originalsPrefix + docID + "/" + path.Base(filename)
}

// ReportKey is the object key for a generated report.
func ReportKey(docID, reportName string) string {
	return reportsPrefix + docID + "/" + path.Base(reportName)
}

// PutOriginal stores the uploaded file and returns its object key.
func (s *ObjectStore) PutOriginal(ctx context.Context, docID, filename string, data []byte) (string, error) {
	key := OriginalKey(docID, filename)
	meta := map[string]string{"document-id": docID, "filename": path.Base(filename)}
	if err := s.put(ctx, key, data, contentTypeFor(filename, data), meta); err != nil {
		return "", err
	}
	return key, nil
}

// PutReport stores a plain-text report and returns its object key.
func (s *ObjectStore) PutReport(ctx context.Context, docID, reportName string, content []byte) (string, error) {
	key := ReportKey(docID, reportName)
	if err := s.put(ctx, key, content, contentTypeText, map[string]string{"document-id": docID}); err != nil {
		return "", err
	}
	return key, nil
}

func (s *ObjectStore) put(ctx context.Context, key string, data []byte, contentType string, meta map[string]string) error {
	api, err := s.client.get()
	if err != nil {
		return err
	}
	info, err := api.PutObject(ctx, s.client.Bucket(), key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: meta,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "upload failed").WithDetail(key)
	}
	s.logger.Debug("Object stored",
		logging.String("key", key),
		logging.Int64("size", info.Size),
		logging.String("content_type", contentType))
	return nil
}

// Get reads the whole object.
func (s *ObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	api, err := s.client.get()
	if err != nil {
		return nil, err
	}
	obj, err := api.GetObject(ctx, s.client.Bucket(), key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapError(err, key, "download failed")
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.mapError(err, key, "download failed")
	}
	return data, nil
}

// Stat returns object metadata.
func (s *ObjectStore) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	api, err := s.client.get()
	if err != nil {
		return nil, err
	}
	info, err := api.StatObject(ctx, s.client.Bucket(), key, minio.StatObjectOptions{})
	if err != nil {
		return nil, s.mapError(err, key, "stat failed")
	}
	return &ObjectInfo{
		Key:          key,
		Size:         info.Size,
		ContentType:  info.ContentType,
		ETag:         info.ETag,
		LastModified: info.LastModified,
		Metadata:     info.UserMetadata,
	}, nil
}

// Exists reports whether key is present.
func (s *ObjectStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.Stat(ctx, key)
	if err == nil {
		return true, nil
	}
	if errors.IsCode(err, errors.ErrCodeObjectNotFound) {
		return false, nil
	}
	return false, err
}

// Delete removes key. Removing a missing object is not an error.
func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	api, err := s.client.get()
	if err != nil {
		return err
	}
	if err := api.RemoveObject(ctx, s.client.Bucket(), key, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "delete failed").WithDetail(key)
	}
	return nil
}

// PresignedURL returns a time-limited download URL. A zero expiry uses the
// configured default.
func (s *ObjectStore) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	api, err := s.client.get()
	if err != nil {
		return "", err
	}
	if expiry <= 0 {
		expiry = s.client.cfg.PresignExpiry
	}
	params := url.Values{}
	params.Set("response-content-disposition", `attachment; filename="`+path.Base(key)+`"`)
	u, err := api.PresignedGetObject(ctx, s.client.Bucket(), key, expiry, params)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "presign failed").WithDetail(key)
	}
	return u.String(), nil
}

func (s *ObjectStore) mapError(err error, key, msg string) error {
	if isNoSuchKey(err) {
		return errors.New(errors.ErrCodeObjectNotFound, "object not found").WithDetail(key).WithCause(err)
	}
	return errors.Wrap(err, errors.ErrCodeStorageError, msg).WithDetail(key)
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchObject"
}

func contentTypeFor(filename string, data []byte) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".pdf":
		return contentTypePDF
	case ".docx":
		return contentTypeDOCX
	case ".txt":
		return contentTypeText
	}
	if len(data) == 0 {
		return "application/octet-stream"
	}
	return http.DetectContentType(data[:min(512, len(data))])
}
