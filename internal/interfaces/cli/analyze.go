package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/LegalEase-Intelligence/internal/application/analysis"
	"github.com/turtacn/LegalEase-Intelligence/internal/domain/document"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

// defaultTextName is the filename recorded for saved text input.
const defaultTextName = "pasted-text.txt"

type analyzeOptions struct {
	text  string
	name  string
	save  bool
	trace bool
}

// NewAnalyzeCmd runs the full pipeline over files or text.
func NewAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze [file...]",
		Short: "Analyze legal documents or text",
		Long: "Extract PDF and DOCX files, then recognize terms, detect clauses, simplify\n" +
			"and score readability.  Without files the text comes from --text or stdin.\n" +
			"With --save every analyzed document is kept in the local store.",
		Example: `  legalease analyze lease.pdf nda.docx
  legalease analyze --save -o json contract.pdf
  pbpaste | legalease analyze`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			svc, err := cliCtx.AnalysisService(opts.save)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return analyzeText(cmd, cliCtx, svc, opts)
			}
			if opts.save {
				return analyzeAndSaveFiles(cmd, cliCtx, svc, args)
			}
			return analyzeFiles(cmd, cliCtx, svc, args, opts.trace)
		},
	}
	cmd.Flags().StringVarP(&opts.text, "text", "t", "", "text to analyze instead of files")
	cmd.Flags().StringVar(&opts.name, "name", defaultTextName, "filename recorded when saving text input")
	cmd.Flags().BoolVar(&opts.save, "save", false, "save analyzed documents to the local store")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "include the text after every simplification stage")
	return cmd
}

func analyzeText(cmd *cobra.Command, cliCtx *CLIContext, svc analysis.Service, opts *analyzeOptions) error {
	var args []string
	if opts.text != "" {
		args = []string{opts.text}
	}
	text, err := readInput(cmd, args, "")
	if err != nil {
		return err
	}
	analyze := svc.IngestAndAnalyze
	if opts.trace {
		analyze = svc.TraceAnalyze
	}
	a, err := analyze(cmd.Context(), text)
	if err != nil {
		return err
	}
	if !opts.trace {
		a.Steps = nil
	}

	if opts.save {
		doc, err := saveText(cmd, cliCtx, opts.name, text, a)
		if err != nil {
			return err
		}
		return PrintResult(cmd, documentResult(doc))
	}
	return PrintResult(cmd, analysisResult(a))
}

// saveText records analyzed text input as a completed document.
func saveText(cmd *cobra.Command, cliCtx *CLIContext, name, text string, a *analysis.Analysis) (*document.Document, error) {
	store, err := cliCtx.Store()
	if err != nil {
		return nil, err
	}
	doc, err := document.NewDocument(name, int64(len(text)))
	if err != nil {
		return nil, err
	}
	doc.ContentHash = analysis.ContentHash([]byte(text))
	if err := doc.Complete(a.Result(text)); err != nil {
		return nil, err
	}
	if err := store.Save(cmd.Context(), doc); err != nil {
		return nil, err
	}
	cliCtx.Logger.Info("text analysis saved", logging.String("document_id", doc.ID))
	return doc, nil
}

func analyzeFiles(cmd *cobra.Command, cliCtx *CLIContext, svc analysis.Service, paths []string, trace bool) error {
	results := make([]*analysis.FileAnalysis, 0, len(paths))
	for _, p := range paths {
		fa, err := svc.AnalyzeFile(cmd.Context(), p)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		if !trace {
			fa.Analysis.Steps = nil
		}
		cliCtx.Logger.Debug("file analyzed", logging.String("path", p))
		results = append(results, fa)
	}

	if len(results) == 1 {
		r := analysisResult(results[0].Analysis)
		r.Data = results[0]
		return PrintResult(cmd, r)
	}

	rows := make([][]string, len(results))
	for i, fa := range results {
		a := fa.Analysis
		rows[i] = []string{
			filepath.Base(fa.Path),
			fmt.Sprintf("%d", len(a.Clauses)),
			fmt.Sprintf("%d", a.Terms.Total()),
			scoreString(a.ReadabilityBefore),
			scoreString(a.ReadabilityAfter),
		}
	}
	return PrintResult(cmd, Result{
		Data: results,
		Text: func(w *Writer) {
			for i, fa := range results {
				if i > 0 {
					w.Blank()
				}
				w.Heading("== " + fa.Path)
				writeAnalysis(w, fa.Analysis)
			}
		},
		Headers: []string{"File", "Clauses", "Terms", "Before", "After"},
		Rows:    rows,
	})
}

func analyzeAndSaveFiles(cmd *cobra.Command, cliCtx *CLIContext, svc analysis.Service, paths []string) error {
	docs := make([]*document.Document, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read input file").WithDetail(p)
		}
		doc, err := svc.AnalyzeUpload(cmd.Context(), &analysis.UploadInput{Filename: filepath.Base(p), Data: data})
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		docs = append(docs, doc)
	}

	if len(docs) == 1 {
		return PrintResult(cmd, documentResult(docs[0]))
	}
	return PrintResult(cmd, summaryResult(docs))
}

// ─────────────────────────────────────────────────────────────────────────────
// Renderers
// ─────────────────────────────────────────────────────────────────────────────

func analysisResult(a *analysis.Analysis) Result {
	rows := [][]string{
		{"Readability before", scoreString(a.ReadabilityBefore)},
		{"Readability after", scoreString(a.ReadabilityAfter)},
		{"Words", fmt.Sprintf("%d -> %d", a.WordsBefore, a.WordsAfter)},
		{"Clauses", fmt.Sprintf("%d", len(a.Clauses))},
		{"Legal terms", fmt.Sprintf("%d", a.Terms.Total())},
		{"Keywords", strings.Join(a.Keywords, ", ")},
	}
	return Result{
		Data:    a,
		Text:    func(w *Writer) { writeAnalysis(w, a) },
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}
}

func writeAnalysis(w *Writer, a *analysis.Analysis) {
	w.Linef("Readability: %s -> %s", scoreString(a.ReadabilityBefore), scoreString(a.ReadabilityAfter))
	w.Linef("Words: %d -> %d", a.WordsBefore, a.WordsAfter)
	if len(a.Keywords) > 0 {
		w.Linef("Keywords: %s", strings.Join(a.Keywords, ", "))
	}

	if a.Terms.Total() > 0 {
		w.Blank()
		w.Heading("Legal terms")
		for _, ct := range a.Terms {
			if len(ct.Terms) > 0 {
				w.Linef("  %s: %s", ct.Category, strings.Join(ct.Terms, ", "))
			}
		}
	}

	w.Blank()
	w.Heading("Clauses")
	if len(a.ClauseCandidates) == 0 {
		w.Line("  none detected")
	}
	for i, c := range a.ClauseCandidates {
		w.Linef("  %d. [%s] %s", i+1, c.Category, c.Text)
	}

	for _, s := range a.Steps {
		w.Blank()
		w.Heading("Stage: " + s.Stage)
		w.Line(s.Output)
	}

	w.Blank()
	w.Heading("Simplified text")
	w.Line(a.SimplifiedText)
}

func documentResult(doc *document.Document) Result {
	rows := [][]string{
		{"ID", doc.ID},
		{"Filename", doc.Filename},
		{"Status", string(doc.Status)},
		{"Readability before", scoreString(doc.ReadabilityBefore)},
		{"Readability after", scoreString(doc.ReadabilityAfter)},
		{"Clauses", fmt.Sprintf("%d", len(doc.Clauses))},
		{"Created", doc.CreatedAt.Format("2006-01-02 15:04:05")},
	}
	return Result{
		Data: doc,
		Text: func(w *Writer) {
			w.Linef("Document %s (%s)", doc.ID, doc.Filename)
			w.Linef("Status: %s", doc.Status)
			if doc.FailureReason != "" {
				w.Linef("Failure: %s", doc.FailureReason)
			}
			w.Linef("Readability: %s -> %s", scoreString(doc.ReadabilityBefore), scoreString(doc.ReadabilityAfter))
			if len(doc.Clauses) > 0 {
				w.Blank()
				w.Heading("Clauses")
				for i, c := range doc.Clauses {
					w.Linef("  %d. %s", i+1, c)
				}
			}
			if doc.SimplifiedText != "" {
				w.Blank()
				w.Heading("Simplified text")
				w.Line(doc.SimplifiedText)
			}
		},
		Headers: []string{"Field", "Value"},
		Rows:    rows,
	}
}

func summaryResult(docs []*document.Document) Result {
	summaries := make([]document.Summary, len(docs))
	for i, d := range docs {
		summaries[i] = d.Summarize()
	}
	return summariesResult(summaries, int64(len(summaries)))
}

func summariesResult(summaries []document.Summary, total int64) Result {
	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		rows[i] = []string{
			s.ID,
			truncateString(s.Filename, 40),
			string(s.Status),
			fmt.Sprintf("%d", s.ClauseCount),
			fmt.Sprintf("%d -> %d", s.ReadabilityBefore, s.ReadabilityAfter),
			s.CreatedAt.Format("2006-01-02 15:04"),
		}
	}
	headers := []string{"ID", "Filename", "Status", "Clauses", "Readability", "Created"}
	return Result{
		Data: summaries,
		Text: func(w *Writer) {
			if len(summaries) == 0 {
				w.Line("No documents.")
				return
			}
			w.Line(strings.TrimRight(FormatTable(headers, rows), "\n"))
			w.Linef("%d of %d document(s)", len(summaries), total)
		},
		Headers: headers,
		Rows:    rows,
	}
}
