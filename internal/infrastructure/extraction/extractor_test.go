package extraction

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>This Agreement is entered into by the parties.</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">The Tenant shall pay </w:t></w:r><w:r><w:t>rent monthly.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Fees</w:t><w:tab/><w:t>USD 100</w:t></w:r></w:p>
  </w:body>
</w:document>`

func buildDOCX(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExt(t *testing.T) {
	assert.Equal(t, ".pdf", Ext("Lease.PDF"))
	assert.Equal(t, ".docx", Ext("/tmp/a.b/contract.Docx"))
	assert.Equal(t, "", Ext("README"))
}

func TestService_Supports(t *testing.T) {
	svc := NewService(nil)
	assert.True(t, svc.Supports("a.pdf"))
	assert.True(t, svc.Supports("A.DOCX"))
	assert.False(t, svc.Supports("a.txt"))
	assert.False(t, svc.Supports("a.doc"))
	assert.Equal(t, []string{".docx", ".pdf"}, svc.SupportedExtensions())
}

func TestService_ExtractBytes_DOCX(t *testing.T) {
	svc := NewService(nil)
	data := buildDOCX(t, map[string]string{documentPart: documentXML})

	text, err := svc.ExtractBytes(context.Background(), "lease.docx", data)
	require.NoError(t, err)
	assert.Equal(t,
		"This Agreement is entered into by the parties.\nThe Tenant shall pay rent monthly.\nFees\tUSD 100",
		text)
}

func TestService_ExtractBytes_Unsupported(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.ExtractBytes(context.Background(), "notes.TXT", []byte("hello"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnsupportedFileType))
	assert.True(t, errors.IsExtraction(err))
	assert.Contains(t, err.Error(), "Unsupported file type: .txt")
}

func TestService_ExtractBytes_CorruptDOCX(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.ExtractBytes(context.Background(), "broken.docx", []byte("not a zip archive"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeExtractionFailed))
	assert.Contains(t, err.Error(), "Error reading DOCX")
}

func TestService_ExtractBytes_DOCXMissingBody(t *testing.T) {
	svc := NewService(nil)
	data := buildDOCX(t, map[string]string{"word/styles.xml": "<w:styles/>"})
	_, err := svc.ExtractBytes(context.Background(), "empty.docx", data)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeExtractionFailed))
}

func TestService_ExtractBytes_EmptyDOCX(t *testing.T) {
	svc := NewService(nil)
	body := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p/></w:body></w:document>`
	data := buildDOCX(t, map[string]string{documentPart: body})
	_, err := svc.ExtractBytes(context.Background(), "blank.docx", data)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeExtractionEmpty))
}

func TestService_ExtractBytes_CorruptPDF(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.ExtractBytes(context.Background(), "broken.pdf", []byte("%PDF-1.4 garbage"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeExtractionFailed))
	assert.Contains(t, err.Error(), "Error reading PDF")
}

func TestService_Extract_FromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contract.docx")
	require.NoError(t, os.WriteFile(path, buildDOCX(t, map[string]string{documentPart: documentXML}), 0o600))

	text, err := NewService(nil).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, text, "The Tenant shall pay rent monthly.")
}

func TestService_Extract_MissingFile(t *testing.T) {
	_, err := NewService(nil).Extract(context.Background(), filepath.Join(t.TempDir(), "gone.pdf"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeExtractionFailed))
}

func TestService_Extract_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	data := buildDOCX(t, map[string]string{documentPart: documentXML})
	_, err := NewService(nil).ExtractBytes(ctx, "lease.docx", data)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAnalysisCancelled))
}

func TestDOCXExtractor_CancelledWhileParsing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	data := buildDOCX(t, map[string]string{documentPart: documentXML})

	_, err := NewDOCXExtractor().ExtractText(ctx, bytes.NewReader(data), int64(len(data)))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAnalysisCancelled))
	assert.False(t, errors.IsCode(err, errors.ErrCodeExtractionFailed))
}

type plainText struct{}

func (plainText) Extensions() []string { return []string{".TXT"} }
func (plainText) ExtractText(_ context.Context, r io.ReaderAt, size int64) (string, error) {
	buf := make([]byte, size)
	_, err := r.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return "", err
	}
	return string(buf), nil
}

func TestService_WithFormat(t *testing.T) {
	svc := NewService(nil, WithFormat(plainText{}))
	assert.True(t, svc.Supports("notes.txt"))
	text, err := svc.ExtractBytes(context.Background(), "notes.txt", []byte("  The fee is due.  "))
	require.NoError(t, err)
	assert.Equal(t, "The fee is due.", text)
}
