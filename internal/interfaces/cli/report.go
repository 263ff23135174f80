package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/turtacn/LegalEase-Intelligence/internal/application/reporting"
	"github.com/turtacn/LegalEase-Intelligence/internal/domain/document"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

// NewReportCmd writes the plain-text report of a document.
func NewReportCmd() *cobra.Command {
	var (
		out   string
		stats bool
	)
	cmd := &cobra.Command{
		Use:   "report <file|document-id>",
		Short: "Write the simplified report of a document",
		Long: "Write the report of a local PDF or DOCX file, or of a document saved with\n" +
			"analyze --save.  The report is written to simplified_<name>.txt unless\n" +
			"--out says otherwise; --out - writes it to stdout.",
		Example: `  legalease report lease.pdf
  legalease report 0f8c2f1e-... --out -
  legalease report lease.pdf --stats -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			doc, err := loadReportDocument(cmd, cliCtx, args[0])
			if err != nil {
				return err
			}

			if stats {
				cs := reporting.NewChartStats(doc)
				return PrintResult(cmd, Result{
					Data: cs,
					Text: func(w *Writer) {
						w.Linef("Words: %d -> %d", cs.OriginalWords, cs.SimplifiedWords)
						w.Linef("Clauses: %d (%d complex)", cs.Clauses, cs.ComplexClauses)
						w.Linef("Readability: %s -> %s", scoreString(cs.ReadabilityBefore), scoreString(cs.ReadabilityAfter))
					},
					Headers: []string{"Metric", "Before", "After"},
					Rows: [][]string{
						{"Words", fmt.Sprintf("%d", cs.OriginalWords), fmt.Sprintf("%d", cs.SimplifiedWords)},
						{"Readability", cs.LabelBefore, cs.LabelAfter},
					},
				})
			}

			content, err := reporting.DownloadReport(doc)
			if err != nil {
				return err
			}
			if out == "-" {
				_, err := cmd.OutOrStdout().Write(content)
				return err
			}
			if out == "" {
				out = reporting.ReportFilename(doc)
			}
			if err := os.WriteFile(out, content, 0o644); err != nil {
				return errors.Wrap(err, errors.ErrCodeReportFailed, "failed to write report").WithDetail(out)
			}
			cliCtx.Logger.Info("report written", logging.String("path", out), logging.Int("bytes", len(content)))
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output path, - for stdout (default simplified_<name>.txt)")
	cmd.Flags().BoolVar(&stats, "stats", false, "print chart figures instead of writing the report")
	return cmd
}

// loadReportDocument analyzes ref when it names a local file (PDF, DOCX or
// plain text) and otherwise reads it from the document store by id.
func loadReportDocument(cmd *cobra.Command, cliCtx *CLIContext, ref string) (*document.Document, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		text, err := readFile(cmd, ref)
		if err != nil {
			return nil, err
		}
		svc, err := cliCtx.AnalysisService(false)
		if err != nil {
			return nil, err
		}
		a, err := svc.IngestAndAnalyze(cmd.Context(), text)
		if err != nil {
			return nil, err
		}
		doc, err := document.NewDocument(filepath.Base(ref), info.Size())
		if err != nil {
			return nil, err
		}
		if err := doc.Complete(a.Result(text)); err != nil {
			return nil, err
		}
		return doc, nil
	}

	store, err := cliCtx.existingStore()
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New(errors.ErrCodeDocumentNotFound, "no such file and no document store").WithDetail(ref)
	}
	return store.FindByID(cmd.Context(), ref)
}
