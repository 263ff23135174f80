package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/extraction"
	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/clause"
	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/lexicon"
	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/readability"
	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/simplify"
	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/termrec"
	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/textnorm"
	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

// readInput returns the text a command works on: the --file contents, the
// positional arguments joined by spaces, or stdin, in that order.
func readInput(cmd *cobra.Command, args []string, file string) (string, error) {
	if file != "" {
		return readFile(cmd, file)
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read stdin")
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", errors.InvalidParam("no input text: pass it as arguments, with --file or on stdin")
	}
	return text, nil
}

// readFile extracts PDF and DOCX files and reads anything else as plain text.
func readFile(cmd *cobra.Command, path string) (string, error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return "", err
	}
	ext := extraction.NewService(cliCtx.Logger)
	if ext.Supports(path) {
		return ext.Extract(cmd.Context(), path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read input file").WithDetail(path)
	}
	return string(data), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// simplify
// ─────────────────────────────────────────────────────────────────────────────

// SimplifyResult is the output of the simplify command.
type SimplifyResult struct {
	SimplifiedText string          `json:"simplified_text" yaml:"simplified_text"`
	Steps          []simplify.Step `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// NewSimplifyCmd rewrites text into plain English.
func NewSimplifyCmd() *cobra.Command {
	var (
		file  string
		trace bool
	)
	cmd := &cobra.Command{
		Use:   "simplify [text...]",
		Short: "Rewrite legal text into plain English",
		Long: "Run text through the four simplification stages: legal phrases, complex\n" +
			"words, definition expansion and sentence splitting.  Use --trace to print\n" +
			"the text after every stage.",
		Example: `  legalease simplify "The lessee shall remit payment prior to the due date."
  cat contract.txt | legalease simplify --trace`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args, file)
			if err != nil {
				return err
			}
			p := simplify.New()
			res := SimplifyResult{}
			normalized := textnorm.Normalize(text)
			if trace {
				res.Steps = p.Trace(normalized)
				if n := len(res.Steps); n > 0 {
					res.SimplifiedText = res.Steps[n-1].Output
				}
			} else {
				res.SimplifiedText = p.Simplify(normalized)
			}

			rows := make([][]string, len(res.Steps))
			for i, s := range res.Steps {
				rows[i] = []string{fmt.Sprintf("%d", i+1), s.Stage, truncateString(s.Output, 80)}
			}
			return PrintResult(cmd, Result{
				Data: res,
				Text: func(w *Writer) {
					for i, s := range res.Steps {
						w.Heading(fmt.Sprintf("Stage %d: %s", i+1, s.Stage))
						w.Line(s.Output)
						w.Blank()
					}
					if len(res.Steps) == 0 {
						w.Line(res.SimplifiedText)
					}
				},
				Headers: []string{"#", "Stage", "Output"},
				Rows:    rows,
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read text from a file (PDF, DOCX or plain text)")
	cmd.Flags().BoolVar(&trace, "trace", false, "print the text after every stage")
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// terms
// ─────────────────────────────────────────────────────────────────────────────

// NewTermsCmd lists the legal terms found in text, by category.
func NewTermsCmd() *cobra.Command {
	var (
		file string
		list bool
	)
	cmd := &cobra.Command{
		Use:   "terms [text...]",
		Short: "Recognize legal terms by category",
		Long: "Recognize dictionary terms in text, grouped by category.  Terms that the\n" +
			"simplifier rewrites are shown with their plain-English form.  Use --list to\n" +
			"print the whole dictionary instead.",
		Example: `  legalease terms "The parties act in good faith, notwithstanding the above."
  legalease terms --list -o table`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				return PrintResult(cmd, dictionaryResult(lexicon.Entries()))
			}
			text, err := readInput(cmd, args, file)
			if err != nil {
				return err
			}
			terms := termrec.Recognize(textnorm.Normalize(text))

			rows := make([][]string, 0, len(terms))
			for _, ct := range terms {
				rows = append(rows, []string{string(ct.Category), strings.Join(ct.Terms, ", ")})
			}
			return PrintResult(cmd, Result{
				Data: terms,
				Text: func(w *Writer) {
					if terms.Total() == 0 {
						w.Line("No legal terms found.")
						return
					}
					for _, ct := range terms {
						if len(ct.Terms) == 0 {
							continue
						}
						shown := make([]string, len(ct.Terms))
						for i, t := range ct.Terms {
							shown[i] = t
							if e, ok := lexicon.Lookup(t); ok && e.Substitute != "" {
								shown[i] = fmt.Sprintf("%s (%s)", t, e.Substitute)
							}
						}
						w.Linef("%s: %s", ct.Category, strings.Join(shown, ", "))
					}
				},
				Headers: []string{"Category", "Terms"},
				Rows:    rows,
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read text from a file (PDF, DOCX or plain text)")
	cmd.Flags().BoolVar(&list, "list", false, "print every dictionary term instead of scanning text")
	return cmd
}

func dictionaryResult(entries []lexicon.Entry) Result {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Surface, string(e.Category), e.Substitute}
	}
	return Result{
		Data: entries,
		Text: func(w *Writer) {
			var current lexicon.Category
			for _, e := range entries {
				if e.Category != current {
					if current != "" {
						w.Blank()
					}
					w.Heading(string(e.Category))
					current = e.Category
				}
				if e.Substitute != "" {
					w.Linef("%s -> %s", e.Surface, e.Substitute)
				} else {
					w.Line(e.Surface)
				}
			}
		},
		Headers: []string{"Term", "Category", "Plain English"},
		Rows:    rows,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// clauses
// ─────────────────────────────────────────────────────────────────────────────

// NewClausesCmd lists the clauses detected in text.
func NewClausesCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "clauses [text...]",
		Short: "Detect and classify clauses",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args, file)
			if err != nil {
				return err
			}
			candidates := clause.DetectClassified(textnorm.Normalize(text))

			rows := make([][]string, len(candidates))
			for i, c := range candidates {
				rows[i] = []string{fmt.Sprintf("%d", i+1), string(c.Category), truncateString(c.Text, 80)}
			}
			return PrintResult(cmd, Result{
				Data: candidates,
				Text: func(w *Writer) {
					if len(candidates) == 0 {
						w.Line("No clauses detected.")
						return
					}
					for i, c := range candidates {
						w.Linef("%d. [%s] %s", i+1, c.Category, c.Text)
					}
				},
				Headers: []string{"#", "Category", "Clause"},
				Rows:    rows,
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read text from a file (PDF, DOCX or plain text)")
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// score
// ─────────────────────────────────────────────────────────────────────────────

// ScoreResult is the output of the score command.
type ScoreResult struct {
	Score                 int     `json:"score" yaml:"score"`
	Label                 string  `json:"label" yaml:"label"`
	AverageSentenceLength float64 `json:"average_sentence_length" yaml:"average_sentence_length"`
	SimplifiedScore       *int    `json:"simplified_score,omitempty" yaml:"simplified_score,omitempty"`
	Improvement           *int    `json:"improvement,omitempty" yaml:"improvement,omitempty"`
}

// NewScoreCmd scores the readability of text.
func NewScoreCmd() *cobra.Command {
	var (
		file    string
		compare bool
	)
	cmd := &cobra.Command{
		Use:   "score [text...]",
		Short: "Score readability on the 0-90 scale",
		Long: "Score text by its average sentence length: 90 is very readable, 0 means\n" +
			"no sentences were found.  Use --compare to also score the simplified text.",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args, file)
			if err != nil {
				return err
			}
			res := ScoreResult{Score: readability.Score(text)}
			res.Label = readability.Label(res.Score)
			if avg, ok := readability.AverageSentenceLength(text); ok {
				res.AverageSentenceLength = avg
			}
			if compare {
				c := readability.Compare(text, simplify.Simplify(textnorm.Normalize(text)))
				after, gain := c.After, c.Improvement()
				res.SimplifiedScore, res.Improvement = &after, &gain
			}

			rows := [][]string{{"original", fmt.Sprintf("%d", res.Score), res.Label}}
			if res.SimplifiedScore != nil {
				rows = append(rows, []string{"simplified", fmt.Sprintf("%d", *res.SimplifiedScore), readability.Label(*res.SimplifiedScore)})
			}
			return PrintResult(cmd, Result{
				Data: res,
				Text: func(w *Writer) {
					w.Linef("Readability: %s", scoreString(res.Score))
					w.Linef("Average sentence length: %.1f words", res.AverageSentenceLength)
					if res.SimplifiedScore != nil {
						w.Linef("Simplified:  %s", scoreString(*res.SimplifiedScore))
						w.Linef("Improvement: %+d", *res.Improvement)
					}
				},
				Headers: []string{"Text", "Score", "Label"},
				Rows:    rows,
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read text from a file (PDF, DOCX or plain text)")
	cmd.Flags().BoolVar(&compare, "compare", false, "also score the simplified text")
	return cmd
}
