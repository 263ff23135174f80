// Package extraction turns uploaded PDF and DOCX files into raw text.
//
// Every failure is an ExtractionError in the EXT_ error family: an
// unsupported extension (EXT_001), an unreadable or corrupt file (EXT_002) or
// a file that yields no text (EXT_003).  Extraction errors are fatal to a
// single request and are never retried.
package extraction

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

// FormatExtractor reads one document format.
type FormatExtractor interface {
	// Extensions lists the lowercase extensions, with leading dot, this
	// extractor handles.
	Extensions() []string
	// ExtractText reads the whole document from r.
	ExtractText(ctx context.Context, r io.ReaderAt, size int64) (string, error)
}

// Extractor is the extraction collaborator consumed by the analysis service.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
	ExtractBytes(ctx context.Context, filename string, data []byte) (string, error)
	Supports(filename string) bool
}

// Service dispatches to a FormatExtractor by file extension.
type Service struct {
	formats map[string]FormatExtractor
	logger  logging.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithFormat registers an additional format, replacing any extractor already
// registered for the same extensions.
func WithFormat(f FormatExtractor) Option {
	return func(s *Service) { s.register(f) }
}

// NewService returns a Service that reads PDF and DOCX files.
func NewService(log logging.Logger, opts ...Option) *Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	s := &Service{formats: make(map[string]FormatExtractor), logger: log}
	s.register(NewPDFExtractor())
	s.register(NewDOCXExtractor())
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) register(f FormatExtractor) {
	for _, ext := range f.Extensions() {
		s.formats[strings.ToLower(ext)] = f
	}
}

// SupportedExtensions lists registered extensions in sorted order.
func (s *Service) SupportedExtensions() []string {
	out := make([]string, 0, len(s.formats))
	for ext := range s.formats {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Supports reports whether filename has a registered extension.
func (s *Service) Supports(filename string) bool {
	_, ok := s.formats[Ext(filename)]
	return ok
}

// Extract reads the file at path.
func (s *Service) Extract(ctx context.Context, path string) (string, error) {
	f, err := s.lookup(path)
	if err != nil {
		return "", err
	}

	file, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeExtractionFailed, "cannot open file").WithDetail(err.Error())
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeExtractionFailed, "cannot stat file").WithDetail(err.Error())
	}
	return s.run(ctx, f, path, file, info.Size())
}

// ExtractBytes reads an in-memory upload; filename selects the format.
func (s *Service) ExtractBytes(ctx context.Context, filename string, data []byte) (string, error) {
	f, err := s.lookup(filename)
	if err != nil {
		return "", err
	}
	return s.run(ctx, f, filename, bytes.NewReader(data), int64(len(data)))
}

func (s *Service) lookup(filename string) (FormatExtractor, error) {
	ext := Ext(filename)
	f, ok := s.formats[ext]
	if !ok {
		return nil, errors.Extraction(errors.ErrCodeUnsupportedFileType, "Unsupported file type: "+ext)
	}
	return f, nil
}

func (s *Service) run(ctx context.Context, f FormatExtractor, name string, r io.ReaderAt, size int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeAnalysisCancelled, "extraction cancelled")
	}
	text, err := f.ExtractText(ctx, r, size)
	if err != nil {
		s.logger.Warn("text extraction failed",
			logging.String("file", filepath.Base(name)),
			logging.Err(err))
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.Extraction(errors.ErrCodeExtractionEmpty, "no text could be extracted").WithDetail(filepath.Base(name))
	}
	s.logger.Debug("text extracted",
		logging.String("file", filepath.Base(name)),
		logging.Int("chars", len(text)))
	return text, nil
}

// Ext returns the lowercase extension of filename, including the dot.
func Ext(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
