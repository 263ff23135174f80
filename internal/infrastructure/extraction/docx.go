package extraction

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

// documentPart is the main story of a WordprocessingML package.
const documentPart = "word/document.xml"

// DOCXExtractor reads the paragraph text of a DOCX file.
type DOCXExtractor struct{}

// NewDOCXExtractor returns a DOCXExtractor.
func NewDOCXExtractor() *DOCXExtractor { return &DOCXExtractor{} }

// Extensions implements FormatExtractor.
func (*DOCXExtractor) Extensions() []string { return []string{".docx"} }

// ExtractText implements FormatExtractor.  Each w:p paragraph becomes one
// line; w:tab and w:br become a tab and a newline.
func (*DOCXExtractor) ExtractText(ctx context.Context, r io.ReaderAt, size int64) (string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return "", docxError(err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", docxError(errors.New(errors.ErrCodeExtractionFailed, "missing "+documentPart))
	}

	rc, err := part.Open()
	if err != nil {
		return "", docxError(err)
	}
	defer rc.Close()

	text, err := paragraphs(ctx, rc)
	if errors.IsCode(err, errors.ErrCodeAnalysisCancelled) {
		return "", err
	}
	if err != nil {
		return "", docxError(err)
	}
	return text, nil
}

// paragraphs streams WordprocessingML and collects run text per paragraph.
func paragraphs(ctx context.Context, r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		out    strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return out.String(), nil
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				out.WriteByte('\t')
			case "br", "cr":
				out.WriteByte('\n')
			case "p":
				if err := ctx.Err(); err != nil {
					return "", errors.Wrap(err, errors.ErrCodeAnalysisCancelled, "extraction cancelled")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				out.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				out.Write(t)
			}
		}
	}
}

func docxError(cause error) error {
	return errors.Wrap(cause, errors.ErrCodeExtractionFailed, "Error reading DOCX").WithDetail(cause.Error())
}
