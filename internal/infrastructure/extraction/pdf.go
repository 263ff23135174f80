package extraction

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

// PDFExtractor reads the plain text of every page of a PDF.
type PDFExtractor struct{}

// NewPDFExtractor returns a PDFExtractor.
func NewPDFExtractor() *PDFExtractor { return &PDFExtractor{} }

// Extensions implements FormatExtractor.
func (*PDFExtractor) Extensions() []string { return []string{".pdf"} }

// ExtractText implements FormatExtractor.  Pages are separated by newlines.
// The PDF reader panics on some malformed inputs, so panics are converted to
// extraction errors.
func (*PDFExtractor) ExtractText(ctx context.Context, r io.ReaderAt, size int64) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			text = ""
			err = pdfError(fmt.Errorf("%v", p))
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", pdfError(err)
	}

	var b strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", errors.Wrap(err, errors.ErrCodeAnalysisCancelled, "extraction cancelled")
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", pdfError(err)
		}
		b.WriteString(content)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func pdfError(cause error) error {
	return errors.Wrap(cause, errors.ErrCodeExtractionFailed, "Error reading PDF").WithDetail(cause.Error())
}
