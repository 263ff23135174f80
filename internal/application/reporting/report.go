// Package reporting renders the plain-text download report and the chart
// figures of an analyzed document, and publishes reports to object storage.
package reporting

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/turtacn/LegalEase-Intelligence/internal/domain/document"
	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/clause"
	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/readability"
	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/textnorm"
	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

// ContentType is the media type of the download report.
const ContentType = "text/plain; charset=utf-8"

const ruleWidth = 50

const downloadTemplate = `Original: {{.Filename}}
{{rule}}

SIMPLIFIED:
{{with .SimplifiedText}}{{.}}{{else}}No text{{end}}

{{rule}}
CLAUSES:
{{range $i, $c := .Clauses}}{{inc $i}}. {{$c}}
{{end}}`

var reportTmpl = template.Must(template.New("download").Funcs(template.FuncMap{
	"rule": func() string { return strings.Repeat("=", ruleWidth) },
	"inc":  func(i int) int { return i + 1 },
}).Parse(downloadTemplate))

// DownloadReport renders the plain-text report of doc: the original
// filename, the simplified text ("No text" when empty) and the numbered
// clauses.
func DownloadReport(doc *document.Document) ([]byte, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeReportFailed, "no document to report on")
	}
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "failed to render report").WithDetail(doc.ID)
	}
	return buf.Bytes(), nil
}

// ReportFilename is the attachment name of the report of doc:
// simplified_<stem>.txt.
func ReportFilename(doc *document.Document) string {
	return "simplified_" + doc.Stem() + ".txt"
}

// ChartStats are the figures behind the document charts.
type ChartStats struct {
	DocumentID        string         `json:"document_id" yaml:"document_id"`
	OriginalWords     int            `json:"original_words" yaml:"original_words"`
	SimplifiedWords   int            `json:"simplified_words" yaml:"simplified_words"`
	Clauses           int            `json:"clauses" yaml:"clauses"`
	ComplexClauses    int            `json:"complex_clauses" yaml:"complex_clauses"`
	ReadabilityBefore int            `json:"readability_before" yaml:"readability_before"`
	ReadabilityAfter  int            `json:"readability_after" yaml:"readability_after"`
	LabelBefore       string         `json:"label_before" yaml:"label_before"`
	LabelAfter        string         `json:"label_after" yaml:"label_after"`
	// ClauseCategories counts the clauses per topic.  Every topic is
	// present, with zero when no clause has it.
	ClauseCategories  map[string]int `json:"clause_categories" yaml:"clause_categories"`
}

// NewChartStats computes the chart figures of doc.  The complex-clause
// figure is a third of the clauses, and never below one.
func NewChartStats(doc *document.Document) ChartStats {
	n := len(doc.Clauses)
	return ChartStats{
		DocumentID:        doc.ID,
		OriginalWords:     textnorm.WordCount(doc.OriginalText),
		SimplifiedWords:   textnorm.WordCount(doc.SimplifiedText),
		Clauses:           n,
		ComplexClauses:    max(1, n/3),
		ReadabilityBefore: doc.ReadabilityBefore,
		ReadabilityAfter:  doc.ReadabilityAfter,
		LabelBefore:       readability.Label(doc.ReadabilityBefore),
		LabelAfter:        readability.Label(doc.ReadabilityAfter),
		ClauseCategories:  clauseCategories(doc.Clauses),
	}
}

func clauseCategories(clauses []string) map[string]int {
	candidates := make([]clause.Candidate, len(clauses))
	for i, c := range clauses {
		candidates[i] = clause.Candidate{Text: c, Category: clause.Classify(c)}
	}
	counts := clause.CountByCategory(candidates)
	out := make(map[string]int, len(counts))
	for _, c := range clause.Categories() {
		out[string(c)] = counts[c]
	}
	return out
}
